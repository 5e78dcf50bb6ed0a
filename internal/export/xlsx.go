package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// SummaryWorkbook renders the summary table as an XLSX workbook and returns
// its bytes.
func (w *Writer) SummaryWorkbook(rows []SummaryRow) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Bills of Lading"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Filename",
		"BOL Number",
		"Shipper",
		"Consignee",
		"Vessel",
		"Containers",
		"Issue Date",
		"Port of Loading",
		"Port of Discharge",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Filename)
		write(2, orBlank(r.BOLNumber))
		write(3, orBlank(r.ShipperCompany))
		write(4, orBlank(r.ConsigneeCompany))
		write(5, orBlank(r.VesselName))
		write(6, r.ContainerCount)
		write(7, orBlank(r.IssueDate))
		write(8, orBlank(r.PortOfLoading))
		write(9, orBlank(r.PortOfDischarge))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 32) // filename
	_ = f.SetColWidth(sheet, "B", "B", 18) // bol number
	_ = f.SetColWidth(sheet, "C", "D", 28) // parties
	_ = f.SetColWidth(sheet, "E", "E", 24) // vessel
	_ = f.SetColWidth(sheet, "F", "F", 11) // containers
	_ = f.SetColWidth(sheet, "G", "G", 14) // issue date
	_ = f.SetColWidth(sheet, "H", "I", 24) // ports

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	w.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteSummaryXLSX writes summary.xlsx next to summary.json and returns the
// path written.
func (w *Writer) WriteSummaryXLSX(rows []SummaryRow) (string, error) {
	data, err := w.SummaryWorkbook(rows)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, "summary.xlsx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write summary %s: %w", path, err)
	}
	return path, nil
}

func orBlank(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
