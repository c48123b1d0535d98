package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestDraw(t *testing.T) {
	src := imaging.New(200, 200, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	boxes := []Box{
		{
			Poly:  []image.Point{{10, 10}, {60, 10}, {60, 30}, {10, 30}},
			Text:  "Acme",
			Score: 0.95,
		},
	}

	out := Draw(src, boxes, image.Pt(20, 40))

	if out.Bounds() != src.Bounds() {
		t.Errorf("output bounds %v differ from source %v", out.Bounds(), src.Bounds())
	}

	// the polygon's top-left corner lands at (30, 50) after the offset
	if got := out.NRGBAAt(30, 50); got != boxColor {
		t.Errorf("expected box color at shifted corner, got %v", got)
	}

	// the source must be untouched
	if got := src.NRGBAAt(30, 50); got == boxColor {
		t.Error("Draw modified the source image")
	}

	// something red was drawn somewhere
	red := 0
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if out.NRGBAAt(x, y) == boxColor {
				red++
			}
		}
	}
	if red < 100 {
		t.Errorf("expected a visible box outline, found %d colored pixels", red)
	}
}

func TestDrawOutOfBounds(t *testing.T) {
	src := imaging.New(50, 50, color.NRGBA{A: 255})
	boxes := []Box{
		{
			// partially outside the image
			Poly:  []image.Point{{-20, -20}, {80, -20}, {80, 80}, {-20, 80}},
			Text:  "huge",
			Score: 0.5,
		},
		{
			// degenerate polygon is skipped
			Poly: []image.Point{{5, 5}},
			Text: "dot",
		},
	}

	// must not panic
	out := Draw(src, boxes, image.Pt(0, 0))
	if out.Bounds() != src.Bounds() {
		t.Errorf("output bounds changed: %v", out.Bounds())
	}
}

func TestDrawEmpty(t *testing.T) {
	src := imaging.New(10, 10, color.NRGBA{A: 255})
	out := Draw(src, nil, image.Pt(0, 0))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if out.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed with no boxes", x, y)
			}
		}
	}
}
