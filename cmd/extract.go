package cmd

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/invex/internal/utils"
	"github.com/lehigh-university-libraries/invex/pkg/fields"
	"github.com/lehigh-university-libraries/invex/pkg/imgprep"
	"github.com/lehigh-university-libraries/invex/pkg/ocr"
	"github.com/lehigh-university-libraries/invex/pkg/overlay"
	"github.com/lehigh-university-libraries/invex/pkg/paddle"
	"github.com/lehigh-university-libraries/invex/pkg/report"
	"github.com/lehigh-university-libraries/invex/pkg/tesseract"
	"github.com/lehigh-university-libraries/invex/pkg/vision"
	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"
)

type ExtractConfig struct {
	Provider            string `json:"provider"`
	Model               string `json:"model"`
	Lang                string `json:"lang"`
	InputDir            string `json:"input_dir"`
	OutputPath          string `json:"output_path"`
	AnnotateDir         string `json:"annotate_dir,omitempty"`
	Preprocess          bool   `json:"preprocess"`
	OrientationClassify bool   `json:"orientation_classify"`
	Unwarp              bool   `json:"unwarp"`
	TextlineOrientation bool   `json:"textline_orientation"`
	Timestamp           string `json:"timestamp"`
}

type FileResult struct {
	SourceFile    string  `json:"source_file"`
	ClientName    string  `json:"client_name"`
	ClientAddress string  `json:"client_address"`
	TaxID         string  `json:"tax_id"`
	TaxIDVerified bool    `json:"tax_id_verified"`
	LineCount     int     `json:"line_count"`
	MeanScore     float64 `json:"mean_score"`
}

type SkippedFile struct {
	SourceFile string `json:"source_file"`
	Reason     string `json:"reason"`
}

type RunSummary struct {
	Config  ExtractConfig `json:"config"`
	Results []FileResult  `json:"results"`
	Skipped []SkippedFile `json:"skipped"`
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract client information from a directory of invoice images",
	Long: `Extract client information from a directory of invoice images.

Each image is cropped to the client-information block, the crop is sent to
an OCR backend, and the recognized lines are parsed into client name,
client address, and tax id. The aggregated rows are written to an Excel
spreadsheet, one row per successfully processed image. Files that cannot
be read or recognized are logged and skipped.`,
	RunE: runExtract,
}

var (
	inputDir            string
	outputPath          string
	extractProvider     string
	extractModel        string
	extractLang         string
	extractTimeout      time.Duration
	preprocess          bool
	annotateDir         string
	orientationClassify bool
	unwarp              bool
	textlineOrientation bool
)

func init() {
	RootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory of invoice images to process (required)")
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "client_info.xlsx", "Path for the output spreadsheet")
	extractCmd.Flags().StringVar(&extractProvider, "provider", "paddle", "OCR backend to use: paddle, tesseract, vision")
	extractCmd.Flags().StringVarP(&extractModel, "model", "m", "PP-OCRv4_server_rec", "Recognition model name (backend-specific)")
	extractCmd.Flags().StringVar(&extractLang, "lang", "en", "Recognition language")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 60*time.Second, "Per-image OCR timeout")
	extractCmd.Flags().BoolVar(&preprocess, "preprocess", false, "Apply OCR-oriented image cleanup to each crop")
	extractCmd.Flags().StringVar(&annotateDir, "annotate-dir", "", "Also write overlay images with recognized boxes to this directory")
	extractCmd.Flags().BoolVar(&orientationClassify, "orientation-classify", false, "Enable document orientation classification in the backend")
	extractCmd.Flags().BoolVar(&unwarp, "unwarp", false, "Enable document unwarping in the backend")
	extractCmd.Flags().BoolVar(&textlineOrientation, "textline-orientation", false, "Enable text line orientation detection in the backend")

	if err := extractCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	config := ExtractConfig{
		Provider:            extractProvider,
		Model:               extractModel,
		Lang:                extractLang,
		InputDir:            inputDir,
		OutputPath:          outputPath,
		AnnotateDir:         annotateDir,
		Preprocess:          preprocess,
		OrientationClassify: orientationClassify,
		Unwarp:              unwarp,
		TextlineOrientation: textlineOrientation,
		Timestamp:           time.Now().Format("2006-01-02_15-04-05"),
	}

	registry := newProviderRegistry()
	providerInstance, err := registry.Get(config.Provider)
	if err != nil {
		return fmt.Errorf("unsupported provider: %s", config.Provider)
	}

	ocrConfig := ocrConfigFrom(config)
	if err := providerInstance.ValidateConfig(ocrConfig); err != nil {
		return fmt.Errorf("provider configuration validation failed: %w", err)
	}

	images, err := listImages(config.InputDir)
	if err != nil {
		return err
	}

	if config.AnnotateDir != "" {
		if err := os.MkdirAll(config.AnnotateDir, 0755); err != nil {
			return fmt.Errorf("failed to create annotate directory: %w", err)
		}
	}

	slog.Info("Starting extraction", "provider", config.Provider, "model", config.Model, "images", len(images))

	var records []fields.Record
	var results []FileResult
	var skipped []SkippedFile

	for _, imagePath := range images {
		record, result, err := processImage(cmd.Context(), providerInstance, ocrConfig, config, imagePath)
		if err != nil {
			// backend errors can embed the endpoint URL and its credentials
			maskedErr := utils.MaskSensitiveError(err)
			slog.Error("Skipping file", "file", imagePath, "err", maskedErr)
			skipped = append(skipped, SkippedFile{
				SourceFile: filepath.Base(imagePath),
				Reason:     maskedErr.Error(),
			})
			continue
		}

		records = append(records, record)
		results = append(results, FileResult{
			SourceFile:    record.SourceFile,
			ClientName:    record.ClientName,
			ClientAddress: record.ClientAddress,
			TaxID:         record.TaxID,
			TaxIDVerified: record.TaxIDVerified,
			LineCount:     len(result.Lines),
			MeanScore:     result.MeanScore(),
		})

		slog.Info("Processed", "file", record.SourceFile, "client", record.ClientName, "lines", len(result.Lines))
		if !record.TaxIDVerified && record.TaxID != "" {
			slog.Warn("Tax id recovered by positional fallback, value is unverified", "file", record.SourceFile, "tax_id", record.TaxID)
		}
	}

	if len(records) == 0 {
		return fmt.Errorf("no extractable data in %s, not writing %s", config.InputDir, config.OutputPath)
	}

	if err := report.WriteWorkbook(config.OutputPath, records); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	summary := RunSummary{
		Config:  config,
		Results: results,
		Skipped: skipped,
	}
	summaryPath, err := saveRunSummary(summary)
	if err != nil {
		return fmt.Errorf("failed to save run summary: %w", err)
	}

	fmt.Printf("\nExtraction completed: %d rows written to %s (%d skipped)\n", len(records), config.OutputPath, len(skipped))
	fmt.Printf("Run summary saved to: %s\n", summaryPath)

	return nil
}

// newProviderRegistry wires up all supported OCR backends
func newProviderRegistry() *ocr.Registry {
	registry := ocr.NewRegistry()
	registry.Register(paddle.New())
	registry.Register(tesseract.New())
	registry.Register(vision.New())
	return registry
}

func ocrConfigFrom(config ExtractConfig) ocr.Config {
	return ocr.Config{
		Provider:            config.Provider,
		Model:               config.Model,
		Lang:                config.Lang,
		Timeout:             extractTimeout,
		OrientationClassify: config.OrientationClassify,
		Unwarp:              config.Unwarp,
		TextlineOrientation: config.TextlineOrientation,
	}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// listImages returns the image files in dir in lexical order. A missing
// or unreadable directory is an error.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}

	return images, nil
}

// processImage runs the full per-file pipeline: read, crop, OCR, parse.
// Any failure is returned to the caller so the batch loop can skip the
// file and keep going.
func processImage(ctx context.Context, provider ocr.Provider, ocrConfig ocr.Config, config ExtractConfig, imagePath string) (fields.Record, ocr.Result, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return fields.Record{}, ocr.Result{}, fmt.Errorf("failed to read image: %w", err)
	}

	cropped, offset := imgprep.CropClientRegion(img)

	var ocrInput image.Image = cropped
	if config.Preprocess {
		ocrInput = imgprep.ForOCR(cropped)
	}

	encoded, err := imgprep.EncodePNG(ocrInput)
	if err != nil {
		return fields.Record{}, ocr.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, ocrConfig.Timeout)
	defer cancel()

	result, err := provider.Recognize(ctx, ocrConfig, encoded)
	if err != nil {
		return fields.Record{}, ocr.Result{}, fmt.Errorf("recognition failed: %w", err)
	}

	record := fields.Parse(result.Texts())
	record.SourceFile = filepath.Base(imagePath)

	if config.AnnotateDir != "" {
		annotated := overlay.Draw(img, overlayBoxes(result), offset)
		outPath := filepath.Join(config.AnnotateDir, annotatedName(imagePath))
		if err := imaging.Save(annotated, outPath); err != nil {
			slog.Warn("Failed to save overlay image", "file", imagePath, "err", err)
		}
	}

	return record, result, nil
}

// overlayBoxes converts recognized lines to drawable overlay boxes
func overlayBoxes(result ocr.Result) []overlay.Box {
	var boxes []overlay.Box
	for _, line := range result.Lines {
		poly := make([]image.Point, 0, len(line.Box))
		for _, p := range line.Box {
			poly = append(poly, image.Pt(p.X, p.Y))
		}
		boxes = append(boxes, overlay.Box{
			Poly:  poly,
			Text:  line.Text,
			Score: line.Score,
		})
	}
	return boxes
}

func annotatedName(imagePath string) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_annotated.jpg"
}

func saveRunSummary(summary RunSummary) (string, error) {
	runsDir := "runs"
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	outputPath := filepath.Join(runsDir, fmt.Sprintf("extract_%s.yaml", summary.Config.Timestamp))
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", err
	}

	return outputPath, nil
}
