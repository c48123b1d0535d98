package paddle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/invex/pkg/ocr"
)

// Provider implements an OCR backend over a PaddleOCR serving endpoint
type Provider struct{}

// request is the serving payload. The toggles mirror the engine's
// initialization flags and are all off for plain invoice scans.
type request struct {
	Images              []string `json:"images"`
	RecModel            string   `json:"rec_model,omitempty"`
	Lang                string   `json:"lang,omitempty"`
	OrientationClassify bool     `json:"use_doc_orientation_classify"`
	Unwarp              bool     `json:"use_doc_unwarping"`
	TextlineOrientation bool     `json:"use_textline_orientation"`
}

// response is the serving result: one slice of recognized regions per
// submitted image
type response struct {
	Msg     string     `json:"msg"`
	Status  string     `json:"status"`
	Results [][]region `json:"results"`
}

type region struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	TextRegion [][2]int `json:"text_region"`
}

// New creates a new Paddle provider
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "paddle"
}

// ValidateConfig validates the Paddle configuration
func (p *Provider) ValidateConfig(config ocr.Config) error {
	endpoint := os.Getenv("PADDLE_OCR_URL")
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PADDLE_OCR_URL is not a valid URL: %s", endpoint)
	}
	return nil
}

// Recognize runs the image through the PaddleOCR serving API
func (p *Provider) Recognize(ctx context.Context, config ocr.Config, image []byte) (ocr.Result, error) {
	endpoint := os.Getenv("PADDLE_OCR_URL")
	if endpoint == "" {
		endpoint = "http://localhost:8866/predict/ocr_system"
	}

	reqBody := request{
		Images:              []string{base64.StdEncoding.EncodeToString(image)},
		RecModel:            config.Model,
		Lang:                config.Lang,
		OrientationClassify: config.OrientationClassify,
		Unwarp:              config.Unwarp,
		TextlineOrientation: config.TextlineOrientation,
	}

	requestJSON, err := json.Marshal(reqBody)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", strings.TrimSuffix(endpoint, "/"), bytes.NewBuffer(requestJSON))
	if err != nil {
		return ocr.Result{}, err
	}

	req.Header.Set("Content-Type", "application/json")

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return ocr.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return ocr.Result{}, fmt.Errorf("paddle API error: %d - %s", resp.StatusCode, string(body))
	}

	var paddleResp response
	if err := json.NewDecoder(resp.Body).Decode(&paddleResp); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to parse paddle response: %w", err)
	}

	if paddleResp.Status != "" && paddleResp.Status != "000" {
		return ocr.Result{}, fmt.Errorf("paddle serving error: %s - %s", paddleResp.Status, paddleResp.Msg)
	}

	if len(paddleResp.Results) == 0 {
		return ocr.Result{}, fmt.Errorf("no results from paddle")
	}

	result := convertRegions(paddleResp.Results[0])
	ocr.SortLines(result.Lines)
	return result, nil
}

func convertRegions(regions []region) ocr.Result {
	var lines []ocr.Line
	for _, r := range regions {
		box := make([]ocr.Point, 0, len(r.TextRegion))
		for _, pt := range r.TextRegion {
			box = append(box, ocr.Point{X: pt[0], Y: pt[1]})
		}
		lines = append(lines, ocr.Line{
			Text:  r.Text,
			Box:   box,
			Score: r.Confidence,
		})
	}
	return ocr.Result{Lines: lines}
}
