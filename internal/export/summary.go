package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/freightdocs/bol-extractor/internal/bol"
)

// SummaryRow is the per-document line of the batch summary table.
type SummaryRow struct {
	Filename         string  `json:"filename"`
	BOLNumber        *string `json:"bol_number"`
	ShipperCompany   *string `json:"shipper_company"`
	ConsigneeCompany *string `json:"consignee_company"`
	VesselName       *string `json:"vessel_name"`
	ContainerCount   int     `json:"container_count"`
	IssueDate        *string `json:"issue_date"`
	PortOfLoading    *string `json:"port_of_loading"`
	PortOfDischarge  *string `json:"port_of_discharge"`
}

// RowFromRecord flattens a record into its summary line.
func RowFromRecord(rec *bol.Record) SummaryRow {
	row := SummaryRow{
		Filename:        rec.Filename,
		BOLNumber:       rec.BOLNumber,
		ContainerCount:  len(rec.Containers),
		IssueDate:       rec.IssueDate,
		PortOfLoading:   rec.PortOfLoading,
		PortOfDischarge: rec.PortOfDischarge,
	}
	if rec.Shipper != nil {
		row.ShipperCompany = rec.Shipper.CompanyName
	}
	if rec.Consignee != nil {
		row.ConsigneeCompany = rec.Consignee.CompanyName
	}
	if rec.Vessel != nil {
		row.VesselName = rec.Vessel.Name
	}
	return row
}

// WriteSummary writes summary.json, a plain array of rows, and returns the
// path written.
func (w *Writer) WriteSummary(rows []SummaryRow) (string, error) {
	if rows == nil {
		rows = []SummaryRow{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	path := filepath.Join(w.dir, "summary.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write summary %s: %w", path, err)
	}
	w.logger.Info("summary written", "path", path, "rows", len(rows))
	return path, nil
}
