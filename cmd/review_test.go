package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunSummaryRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := os.Chdir(cwd); err != nil {
			t.Fatal(err)
		}
	}()

	summary := RunSummary{
		Config: ExtractConfig{
			Provider:   "paddle",
			Model:      "PP-OCRv4_server_rec",
			Lang:       "en",
			InputDir:   "invoices",
			OutputPath: "client_info.xlsx",
			Timestamp:  "2026-01-02_15-04-05",
		},
		Results: []FileResult{
			{
				SourceFile:    "batch1-0001.jpg",
				ClientName:    "Acme Corp",
				TaxID:         "12-345",
				TaxIDVerified: true,
				LineCount:     5,
				MeanScore:     0.97,
			},
		},
		Skipped: []SkippedFile{
			{SourceFile: "blurry.jpg", Reason: "recognition failed"},
		},
	}

	path, err := saveRunSummary(summary)
	if err != nil {
		t.Fatalf("saveRunSummary() error = %v", err)
	}

	loaded, err := loadRunSummary(path)
	if err != nil {
		t.Fatalf("loadRunSummary() error = %v", err)
	}

	if loaded.Config.Provider != "paddle" || loaded.Config.Timestamp != summary.Config.Timestamp {
		t.Errorf("config = %+v", loaded.Config)
	}
	if len(loaded.Results) != 1 || loaded.Results[0].ClientName != "Acme Corp" {
		t.Errorf("results = %+v", loaded.Results)
	}
	if !loaded.Results[0].TaxIDVerified {
		t.Error("TaxIDVerified lost in round trip")
	}
	if len(loaded.Skipped) != 1 || loaded.Skipped[0].SourceFile != "blurry.jpg" {
		t.Errorf("skipped = %+v", loaded.Skipped)
	}
}

func TestLatestRunSummary(t *testing.T) {
	dir := t.TempDir()

	if _, err := latestRunSummary(dir); err == nil {
		t.Error("Expected error for empty runs directory")
	}

	for _, name := range []string{"extract_2026-01-01_00-00-00.yaml", "extract_2026-02-01_00-00-00.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("config:\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := latestRunSummary(dir)
	if err != nil {
		t.Fatalf("latestRunSummary() error = %v", err)
	}
	if filepath.Base(latest) != "extract_2026-02-01_00-00-00.yaml" {
		t.Errorf("latest = %s", latest)
	}
}
