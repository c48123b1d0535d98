package ocr

import (
	"context"
	"sort"
	"time"
)

// Config represents the configuration for an OCR backend
type Config struct {
	Provider string
	Model    string
	Lang     string
	Timeout  time.Duration

	// Backend toggles, all off by default. Paddle-style backends accept
	// these directly; other backends ignore what they cannot honor.
	OrientationClassify bool
	Unwarp              bool
	TextlineOrientation bool
}

// Point is a pixel coordinate in the submitted image
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Line is a single recognized text line with its bounding polygon
// and the backend's confidence score
type Line struct {
	Text  string  `json:"text"`
	Box   []Point `json:"box"`
	Score float64 `json:"score"`
}

// Result holds all recognized lines for one image
type Result struct {
	Lines []Line `json:"lines"`
}

// Texts returns the recognized line texts in their current order
func (r Result) Texts() []string {
	texts := make([]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		texts = append(texts, line.Text)
	}
	return texts
}

// MeanScore returns the average confidence across all lines, 0 for no lines
func (r Result) MeanScore() float64 {
	if len(r.Lines) == 0 {
		return 0
	}
	var sum float64
	for _, line := range r.Lines {
		sum += line.Score
	}
	return sum / float64(len(r.Lines))
}

// Provider interface that all OCR backends must implement
type Provider interface {
	// Recognize runs text detection + recognition over an encoded image
	// and returns the recognized lines
	Recognize(ctx context.Context, config Config, image []byte) (Result, error)
	// Name returns the provider's name
	Name() string
	// ValidateConfig validates the provider-specific configuration
	ValidateConfig(config Config) error
}

// top returns the highest (smallest Y) corner of a polygon
func top(box []Point) int {
	if len(box) == 0 {
		return 0
	}
	t := box[0].Y
	for _, p := range box[1:] {
		if p.Y < t {
			t = p.Y
		}
	}
	return t
}

// left returns the leftmost corner of a polygon
func left(box []Point) int {
	if len(box) == 0 {
		return 0
	}
	l := box[0].X
	for _, p := range box[1:] {
		if p.X < l {
			l = p.X
		}
	}
	return l
}

// height returns the vertical extent of a polygon
func height(box []Point) int {
	if len(box) == 0 {
		return 0
	}
	minY, maxY := box[0].Y, box[0].Y
	for _, p := range box[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return maxY - minY
}

// SortLines orders lines top-to-bottom, breaking ties left-to-right.
// Lines whose tops are within half the taller line's height of each
// other are considered the same row, so the comparison is symmetric
// when line heights differ.
func SortLines(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		hi := max(height(lines[i].Box), height(lines[j].Box))
		if hi < 2 {
			hi = 2
		}
		if abs(top(lines[i].Box)-top(lines[j].Box)) < hi/2 {
			return left(lines[i].Box) < left(lines[j].Box)
		}
		return top(lines[i].Box) < top(lines[j].Box)
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
