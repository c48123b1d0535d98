package tesseract

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/invex/pkg/ocr"
	"github.com/otiai10/gosseract/v2"
)

// Provider implements a local OCR backend over the Tesseract engine
type Provider struct{}

// New creates a new Tesseract provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "tesseract"
}

// ValidateConfig validates the Tesseract configuration
func (p *Provider) ValidateConfig(config ocr.Config) error {
	// Model selection does not apply to a local Tesseract install
	return nil
}

// Recognize runs Tesseract over the image. Tesseract reports word-level
// boxes, so words are regrouped into reading-order lines here.
func (p *Provider) Recognize(ctx context.Context, config ocr.Config, image []byte) (ocr.Result, error) {
	// The C call cannot be cancelled mid-flight, so honor the context
	// up front only.
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(tessLang(config.Lang)); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	result := ocr.LinesFromWords(toWordBoxes(boxes))
	ocr.SortLines(result.Lines)
	return result, nil
}

// toWordBoxes converts gosseract boxes to geometry words, dropping empty
// detections
func toWordBoxes(boxes []gosseract.BoundingBox) []ocr.WordBox {
	var words []ocr.WordBox
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		words = append(words, ocr.WordBox{
			X:      b.Box.Min.X,
			Y:      b.Box.Min.Y,
			Width:  b.Box.Dx(),
			Height: b.Box.Dy(),
			Text:   b.Word,
			Conf:   b.Confidence / 100.0,
		})
	}
	return words
}

// tessLang maps two-letter language codes to Tesseract's traineddata names
func tessLang(lang string) string {
	switch lang {
	case "", "en":
		return "eng"
	case "de":
		return "deu"
	case "fr":
		return "fra"
	case "es":
		return "spa"
	default:
		return lang
	}
}
