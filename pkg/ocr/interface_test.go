package ocr

import (
	"reflect"
	"testing"
)

func box(x1, y1, x2, y2 int) []Point {
	return []Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
}

func TestSortLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  []string
	}{
		{
			name:  "empty",
			lines: nil,
			want:  nil,
		},
		{
			name: "already ordered",
			lines: []Line{
				{Text: "Bill To", Box: box(0, 0, 100, 20)},
				{Text: "Acme Corp", Box: box(0, 30, 100, 50)},
			},
			want: []string{"Bill To", "Acme Corp"},
		},
		{
			name: "reversed vertical order",
			lines: []Line{
				{Text: "Tax ID: 1", Box: box(0, 90, 100, 110)},
				{Text: "Acme Corp", Box: box(0, 30, 100, 50)},
				{Text: "Bill To", Box: box(0, 0, 100, 20)},
			},
			want: []string{"Bill To", "Acme Corp", "Tax ID: 1"},
		},
		{
			name: "same row ordered left to right",
			lines: []Line{
				{Text: "right", Box: box(200, 11, 300, 31)},
				{Text: "left", Box: box(0, 10, 100, 30)},
			},
			want: []string{"left", "right"},
		},
		{
			name: "slanted polygon uses its top edge",
			lines: []Line{
				{Text: "second", Box: []Point{{5, 70}, {95, 74}, {95, 94}, {5, 90}}},
				{Text: "first", Box: []Point{{5, 10}, {95, 14}, {95, 34}, {5, 30}}},
			},
			want: []string{"first", "second"},
		},
		{
			name: "mixed heights on one row, tall line height wins",
			lines: []Line{
				{Text: "short", Box: box(200, 40, 260, 50)},
				{Text: "tall", Box: box(0, 0, 100, 100)},
			},
			want: []string{"tall", "short"},
		},
		{
			name: "mixed heights on one row, reversed input",
			lines: []Line{
				{Text: "tall", Box: box(0, 0, 100, 100)},
				{Text: "short", Box: box(200, 40, 260, 50)},
			},
			want: []string{"tall", "short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortLines(tt.lines)
			var got []string
			for _, line := range tt.lines {
				got = append(got, line.Text)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultTexts(t *testing.T) {
	result := Result{Lines: []Line{
		{Text: "Bill To"},
		{Text: "Acme Corp"},
	}}
	want := []string{"Bill To", "Acme Corp"}
	if !reflect.DeepEqual(result.Texts(), want) {
		t.Errorf("Texts() = %v, want %v", result.Texts(), want)
	}
}

func TestResultMeanScore(t *testing.T) {
	empty := Result{}
	if empty.MeanScore() != 0 {
		t.Errorf("MeanScore() for empty result = %f, want 0", empty.MeanScore())
	}

	result := Result{Lines: []Line{
		{Score: 0.9},
		{Score: 0.7},
	}}
	if got := result.MeanScore(); got < 0.79 || got > 0.81 {
		t.Errorf("MeanScore() = %f, want 0.8", got)
	}
}
