// Package overlay draws recognized bounding boxes and their text back
// onto the original image for visual verification of a run.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var boxColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// Box is one recognized region with its label
type Box struct {
	Poly  []image.Point
	Text  string
	Score float64
}

// Draw copies the source image and renders each box's polygon plus a
// "text (score)" label. The offset shifts crop-relative coordinates back
// into the original image's frame.
func Draw(src image.Image, boxes []Box, offset image.Point) *image.NRGBA {
	img := imaging.Clone(src)

	for _, box := range boxes {
		if len(box.Poly) < 2 {
			continue
		}

		shifted := make([]image.Point, 0, len(box.Poly))
		for _, p := range box.Poly {
			shifted = append(shifted, p.Add(offset))
		}

		for i := range shifted {
			drawLine(img, shifted[i], shifted[(i+1)%len(shifted)])
		}

		drawLabel(img, shifted, fmt.Sprintf("%s (%.2f)", box.Text, box.Score))
	}

	return img
}

// drawLine plots a 2px line between two points, clipped to the image
func drawLine(img *image.NRGBA, a, b image.Point) {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	steps := max(dx, dy)
	if steps == 0 {
		steps = 1
	}

	for i := 0; i <= steps; i++ {
		x := a.X + (b.X-a.X)*i/steps
		y := a.Y + (b.Y-a.Y)*i/steps
		setThick(img, x, y)
	}
}

func setThick(img *image.NRGBA, x, y int) {
	bounds := img.Bounds()
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			if image.Pt(x+dx, y+dy).In(bounds) {
				img.SetNRGBA(x+dx, y+dy, boxColor)
			}
		}
	}
}

// drawLabel places the label just right of the polygon, vertically
// centered on its right edge, nudged back in-bounds when it would fall
// off the image
func drawLabel(img *image.NRGBA, poly []image.Point, label string) {
	right, top, bottom := poly[0].X, poly[0].Y, poly[0].Y
	for _, p := range poly[1:] {
		if p.X > right {
			right = p.X
		}
		if p.Y < top {
			top = p.Y
		}
		if p.Y > bottom {
			bottom = p.Y
		}
	}

	face := basicfont.Face7x13
	x := right + 5
	y := (top + bottom) / 2

	bounds := img.Bounds()
	textWidth := font.MeasureString(face, label).Ceil()
	if x+textWidth > bounds.Max.X {
		x = bounds.Max.X - textWidth
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	if y < bounds.Min.Y+face.Ascent {
		y = bounds.Min.Y + face.Ascent
	}
	if y > bounds.Max.Y {
		y = bounds.Max.Y
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(boxColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(label)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
