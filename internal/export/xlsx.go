package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter writes one workbook per report with one sheet per table.
type XLSXWriter struct{}

func (XLSXWriter) Format() string { return "xlsx" }

func (XLSXWriter) Write(r *Report, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, t := range r.Tables() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, t, bold); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}

	path := filepath.Join(dir, "bibnet.xlsx")
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("saving %s: %w", path, err)
	}
	return []string{path}, nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
