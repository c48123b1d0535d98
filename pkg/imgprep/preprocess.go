package imgprep

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	binarizeThreshold = 200
	minOCRHeight      = 400
	upscaledHeight    = 800
)

// ForOCR applies a cleanup chain that OCR engines tend to like for
// scanned paper: grayscale, mild contrast and sharpening, an upscale for
// small crops, and a hard black/white threshold.
func ForOCR(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)

	if gray.Bounds().Dy() < minOCRHeight {
		gray = imaging.Resize(gray, 0, upscaledHeight, imaging.Lanczos)
	}

	return binarize(gray, binarizeThreshold)
}

// binarize maps every pixel to pure black or white. The image is already
// grayscale, so the red channel serves as the brightness.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}
