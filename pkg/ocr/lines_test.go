package ocr

import (
	"testing"
)

func TestGroupWordsIntoLines(t *testing.T) {
	tests := []struct {
		name      string
		words     []WordBox
		wantLines int
		wantTexts []string
	}{
		{
			name:      "no words",
			words:     nil,
			wantLines: 0,
		},
		{
			name: "single word",
			words: []WordBox{
				{X: 10, Y: 10, Width: 40, Height: 20, Text: "Acme"},
			},
			wantLines: 1,
			wantTexts: []string{"Acme"},
		},
		{
			name: "two words on one line",
			words: []WordBox{
				{X: 10, Y: 10, Width: 40, Height: 20, Text: "Acme"},
				{X: 60, Y: 12, Width: 40, Height: 20, Text: "Corp"},
			},
			wantLines: 1,
			wantTexts: []string{"Acme Corp"},
		},
		{
			name: "two separate lines",
			words: []WordBox{
				{X: 10, Y: 10, Width: 40, Height: 20, Text: "Acme"},
				{X: 10, Y: 60, Width: 40, Height: 20, Text: "Corp"},
			},
			wantLines: 2,
			wantTexts: []string{"Acme", "Corp"},
		},
		{
			name: "out of order words are sorted into reading order",
			words: []WordBox{
				{X: 10, Y: 60, Width: 60, Height: 20, Text: "Street"},
				{X: 60, Y: 11, Width: 40, Height: 20, Text: "Corp"},
				{X: 10, Y: 10, Width: 40, Height: 20, Text: "Acme"},
				{X: 80, Y: 62, Width: 20, Height: 20, Text: "1"},
			},
			wantLines: 2,
			wantTexts: []string{"Acme Corp", "Street 1"},
		},
		{
			name: "slight vertical jitter stays on one line",
			words: []WordBox{
				{X: 10, Y: 100, Width: 40, Height: 30, Text: "Tax"},
				{X: 60, Y: 104, Width: 30, Height: 30, Text: "ID:"},
				{X: 100, Y: 98, Width: 60, Height: 30, Text: "123456"},
			},
			wantLines: 1,
			wantTexts: []string{"Tax ID: 123456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := GroupWordsIntoLines(tt.words)
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines, want %d", len(lines), tt.wantLines)
			}
			for i, want := range tt.wantTexts {
				if got := lines[i].Text(); got != want {
					t.Errorf("line %d text = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestLineBoxGeometry(t *testing.T) {
	words := []WordBox{
		{X: 10, Y: 12, Width: 40, Height: 18, Text: "Acme", Conf: 0.9},
		{X: 60, Y: 10, Width: 40, Height: 20, Text: "Corp", Conf: 0.7},
	}
	lines := GroupWordsIntoLines(words)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}

	line := lines[0]
	if line.X != 10 || line.Y != 10 {
		t.Errorf("line origin = (%d,%d), want (10,10)", line.X, line.Y)
	}
	if line.Width != 90 || line.Height != 20 {
		t.Errorf("line size = %dx%d, want 90x20", line.Width, line.Height)
	}
	if got := line.Confidence(); got < 0.79 || got > 0.81 {
		t.Errorf("confidence = %f, want 0.8", got)
	}
}

func TestLinesFromWords(t *testing.T) {
	words := []WordBox{
		{X: 10, Y: 10, Width: 40, Height: 20, Text: "Acme", Conf: 1.0},
		{X: 10, Y: 60, Width: 40, Height: 20, Text: "Corp", Conf: 0.5},
	}
	result := LinesFromWords(words)

	if len(result.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(result.Lines))
	}

	first := result.Lines[0]
	if first.Text != "Acme" {
		t.Errorf("first line text = %q, want Acme", first.Text)
	}
	if len(first.Box) != 4 {
		t.Fatalf("expected a 4-point polygon, got %d points", len(first.Box))
	}
	want := []Point{{10, 10}, {50, 10}, {50, 30}, {10, 30}}
	for i, p := range want {
		if first.Box[i] != p {
			t.Errorf("corner %d = %v, want %v", i, first.Box[i], p)
		}
	}
}

func TestLinesFromWordsEmpty(t *testing.T) {
	result := LinesFromWords(nil)
	if len(result.Lines) != 0 {
		t.Errorf("expected no lines, got %d", len(result.Lines))
	}
}
