package vision

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/lehigh-university-libraries/invex/pkg/ocr"
)

// Provider implements an OCR backend over the Google Cloud Vision
// document text detection API
type Provider struct{}

// New creates a new Vision provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "vision"
}

// ValidateConfig validates the Vision configuration
func (p *Provider) ValidateConfig(config ocr.Config) error {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable not set")
	}
	return nil
}

// Recognize runs the image through Cloud Vision document text detection
func (p *Provider) Recognize(ctx context.Context, config ocr.Config, image []byte) (ocr.Result, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to create vision client: %w", err)
	}
	defer client.Close()

	var ictx *visionpb.ImageContext
	if config.Lang != "" {
		ictx = &visionpb.ImageContext{
			LanguageHints: []string{config.Lang},
		}
	}

	annotation, err := client.DetectDocumentText(ctx, &visionpb.Image{Content: image}, ictx)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("vision API call failed: %w", err)
	}

	result := flattenAnnotation(annotation)
	ocr.SortLines(result.Lines)
	return result, nil
}

// flattenAnnotation reduces the page/block/paragraph/word hierarchy to
// one line per paragraph
func flattenAnnotation(annotation *visionpb.TextAnnotation) ocr.Result {
	if annotation == nil {
		return ocr.Result{}
	}

	var lines []ocr.Line
	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, paragraph := range block.GetParagraphs() {
				text := paragraphText(paragraph)
				if text == "" {
					continue
				}
				lines = append(lines, ocr.Line{
					Text:  text,
					Box:   convertPoly(paragraph.GetBoundingBox()),
					Score: float64(paragraph.GetConfidence()),
				})
			}
		}
	}

	return ocr.Result{Lines: lines}
}

func paragraphText(paragraph *visionpb.Paragraph) string {
	var words []string
	for _, word := range paragraph.GetWords() {
		var sb strings.Builder
		for _, symbol := range word.GetSymbols() {
			sb.WriteString(symbol.GetText())
		}
		if sb.Len() > 0 {
			words = append(words, sb.String())
		}
	}
	return strings.Join(words, " ")
}

func convertPoly(poly *visionpb.BoundingPoly) []ocr.Point {
	var box []ocr.Point
	for _, v := range poly.GetVertices() {
		box = append(box, ocr.Point{X: int(v.GetX()), Y: int(v.GetY())})
	}
	return box
}
