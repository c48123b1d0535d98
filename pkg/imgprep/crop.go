package imgprep

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// The client block sits in the upper-right of these invoices: the right
// half of the page (plus a small margin) between 10% and 30% of the height.
const (
	cropWidthRatio  = 0.50
	cropWidthMargin = 10
	cropTopRatio    = 0.10
	cropBottomRatio = 0.70 // measured up from the bottom edge
)

// CropClientRegion cuts the client-information block out of an invoice
// image and returns it together with the crop's top-left offset in the
// original image. The rectangle is always clamped to the image bounds.
func CropClientRegion(img image.Image) (*image.NRGBA, image.Point) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	cropW := int(float64(w)*cropWidthRatio) + cropWidthMargin
	if cropW > w {
		cropW = w
	}

	x1 := w - cropW
	y1 := int(float64(h) * cropTopRatio)
	y2 := h - int(float64(h)*cropBottomRatio)
	if y2 <= y1 {
		y2 = y1 + 1
	}
	if y2 > h {
		y2 = h
	}
	if y1 >= h {
		y1 = h - 1
	}

	rect := image.Rect(b.Min.X+x1, b.Min.Y+y1, b.Min.X+w, b.Min.Y+y2)
	return imaging.Crop(img, rect), image.Pt(x1, y1)
}

// EncodePNG encodes an image to PNG bytes for submission to an OCR backend
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
