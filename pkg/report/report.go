// Package report writes the aggregated extraction results to an Excel
// workbook, one row per successfully processed invoice.
package report

import (
	"fmt"

	"github.com/lehigh-university-libraries/invex/pkg/fields"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// Header is the fixed column layout of the output workbook
var Header = []string{"source_file", "client_name", "client_address", "tax_id"}

// WriteWorkbook saves records to an .xlsx file at path
func WriteWorkbook(path string, records []fields.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &Header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", i+2, err)
		}
		row := []interface{}{
			record.SourceFile,
			record.ClientName,
			record.ClientAddress,
			record.TaxID,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}
