package cmd

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"
)

var (
	reviewRunPath     string
	reviewImageDir    string
	reviewHost        string
	reviewPort        string
	reviewSummary     RunSummary
	reviewSummaryFile string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start a web interface to review an extraction run",
	Long:  "Start a local web server that lists the rows of a finished extraction run alongside its annotated overlay images",
	RunE:  runReview,
}

func init() {
	RootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVar(&reviewRunPath, "run", "", "Path to a run summary YAML (default: latest file under runs/)")
	reviewCmd.Flags().StringVar(&reviewImageDir, "annotate-dir", "", "Directory of overlay images from the run")
	reviewCmd.Flags().StringVar(&reviewHost, "host", "localhost", "Host to bind the web server to")
	reviewCmd.Flags().StringVar(&reviewPort, "port", "8888", "Port to run the web server on")
}

func runReview(cmd *cobra.Command, args []string) error {
	runPath := reviewRunPath
	if runPath == "" {
		latest, err := latestRunSummary("runs")
		if err != nil {
			return err
		}
		runPath = latest
	}

	summary, err := loadRunSummary(runPath)
	if err != nil {
		return fmt.Errorf("failed to load run summary: %w", err)
	}
	reviewSummary = summary
	reviewSummaryFile = runPath

	imageDir := reviewImageDir
	if imageDir == "" {
		imageDir = summary.Config.AnnotateDir
	}

	slog.Info("Starting review interface", "run", runPath, "rows", len(summary.Results))

	http.HandleFunc("/", handleReviewIndex)
	http.HandleFunc("/api/summary", handleReviewSummary)
	if imageDir != "" {
		http.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(imageDir))))
	}

	addr := fmt.Sprintf("%s:%s", reviewHost, reviewPort)
	slog.Info("Review interface available", "url", fmt.Sprintf("http://%s", addr))

	return http.ListenAndServe(addr, nil)
}

// latestRunSummary returns the newest yaml file under dir
func latestRunSummary(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "extract_*.yaml"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no run summaries found in %s, run extract first or pass --run", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func loadRunSummary(path string) (RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunSummary{}, err
	}

	var summary RunSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return RunSummary{}, err
	}
	return summary, nil
}

func handleReviewSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reviewSummary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

var reviewTemplate = template.Must(template.New("review").Parse(`<!DOCTYPE html>
<html>
<head>
<title>invex review</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f0f0f0; }
.unverified { color: #b00; }
img { max-width: 480px; display: block; }
</style>
</head>
<body>
<h1>Extraction run {{.File}}</h1>
<p>{{len .Rows}} rows, {{len .Summary.Skipped}} skipped ({{.Summary.Config.Provider}}/{{.Summary.Config.Model}})</p>
<table>
<tr><th>source_file</th><th>client_name</th><th>client_address</th><th>tax_id</th><th>lines</th><th>overlay</th></tr>
{{range .Rows}}
<tr>
<td>{{.SourceFile}}</td>
<td>{{.ClientName}}</td>
<td>{{.ClientAddress}}</td>
<td{{if not .TaxIDVerified}} class="unverified" title="positional fallback, unverified"{{end}}>{{.TaxID}}</td>
<td>{{.LineCount}}</td>
<td><a href="/images/{{.Overlay}}">view</a></td>
</tr>
{{end}}
</table>
{{if .Summary.Skipped}}
<h2>Skipped</h2>
<ul>
{{range .Summary.Skipped}}<li>{{.SourceFile}}: {{.Reason}}</li>{{end}}
</ul>
{{end}}
</body>
</html>`))

type reviewRow struct {
	FileResult
	Overlay string
}

func handleReviewIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	rows := make([]reviewRow, 0, len(reviewSummary.Results))
	for _, result := range reviewSummary.Results {
		rows = append(rows, reviewRow{
			FileResult: result,
			Overlay:    annotatedName(result.SourceFile),
		})
	}

	data := struct {
		File    string
		Summary RunSummary
		Rows    []reviewRow
	}{
		File:    filepath.Base(reviewSummaryFile),
		Summary: reviewSummary,
		Rows:    rows,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reviewTemplate.Execute(w, data); err != nil {
		slog.Error("Failed to render review page", "err", err)
	}
}
