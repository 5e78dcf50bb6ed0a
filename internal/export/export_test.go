package export

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/freightdocs/bol-extractor/internal/bol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := NewWriter(filepath.Join(t.TempDir(), "out"), testLogger())
	require.NoError(t, err)
	return w
}

func sampleRecord() *bol.Record {
	number := "MEDUP1966175"
	shipper := "MUSCAT TRADING LLC"
	vessel := "MSC ANNA"
	loading := "SOHAR, OMAN"
	discharge := "JEBEL ALI, UAE"
	issued := "12-Mar-2024"

	rec := bol.NewRecord("manifest-001.pdf")
	rec.BOLNumber = &number
	rec.Shipper = &bol.Party{CompanyName: &shipper}
	rec.Vessel = &bol.VesselInfo{Name: &vessel}
	rec.PortOfLoading = &loading
	rec.PortOfDischarge = &discharge
	rec.IssueDate = &issued
	rec.Containers = []bol.Container{
		{ContainerNumber: "TRHU7586290", Context: "40' HIGH CUBE"},
		{ContainerNumber: "TCLU9988776", Context: "40' HIGH CUBE"},
	}
	return rec
}

func TestRecordFilename(t *testing.T) {
	assert.Equal(t, "manifest-001_extracted.json", RecordFilename("manifest-001.pdf"))
	assert.Equal(t, "doc_extracted.json", RecordFilename("/inbox/nested/doc.PDF"))
	assert.Equal(t, "noext_extracted.json", RecordFilename("noext"))
}

func TestWriteRecordRoundTrip(t *testing.T) {
	w := newTestWriter(t)
	rec := sampleRecord()

	path, err := w.WriteRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "manifest-001_extracted.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded bol.Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.BOLNumber)
	assert.Equal(t, "MEDUP1966175", *decoded.BOLNumber)
	assert.Len(t, decoded.Containers, 2)

	// Null fields must be spelled out, not omitted.
	assert.Contains(t, string(data), `"consignee": null`)
}

func TestRowFromRecord(t *testing.T) {
	row := RowFromRecord(sampleRecord())
	require.NotNil(t, row.BOLNumber)
	assert.Equal(t, "MEDUP1966175", *row.BOLNumber)
	require.NotNil(t, row.ShipperCompany)
	assert.Equal(t, "MUSCAT TRADING LLC", *row.ShipperCompany)
	assert.Nil(t, row.ConsigneeCompany)
	require.NotNil(t, row.VesselName)
	assert.Equal(t, "MSC ANNA", *row.VesselName)
	assert.Equal(t, 2, row.ContainerCount)
}

func TestRowFromSparseRecord(t *testing.T) {
	row := RowFromRecord(bol.NewRecord("empty.pdf"))
	assert.Equal(t, "empty.pdf", row.Filename)
	assert.Nil(t, row.BOLNumber)
	assert.Nil(t, row.ShipperCompany)
	assert.Nil(t, row.VesselName)
	assert.Zero(t, row.ContainerCount)
}

func TestWriteSummaryIsPlainArray(t *testing.T) {
	w := newTestWriter(t)

	rows := []SummaryRow{RowFromRecord(sampleRecord()), RowFromRecord(bol.NewRecord("empty.pdf"))}
	path, err := w.WriteSummary(rows)
	require.NoError(t, err)
	assert.Equal(t, "summary.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")))

	var decoded []SummaryRow
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "manifest-001.pdf", decoded[0].Filename)
	assert.Nil(t, decoded[1].BOLNumber)
}

func TestWriteSummaryEmpty(t *testing.T) {
	w := newTestWriter(t)
	path, err := w.WriteSummary(nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestSummaryWorkbook(t *testing.T) {
	w := newTestWriter(t)

	rows := []SummaryRow{RowFromRecord(sampleRecord()), RowFromRecord(bol.NewRecord("empty.pdf"))}
	data, err := w.SummaryWorkbook(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Bills of Lading"

	got, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Filename", got)

	got, err = f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "MEDUP1966175", got)

	got, err = f.GetCellValue(sheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	// Sparse rows render as blank cells, not "nil" strings.
	got, err = f.GetCellValue(sheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestWriteSummaryXLSX(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteSummaryXLSX([]SummaryRow{RowFromRecord(sampleRecord())})
	require.NoError(t, err)
	assert.Equal(t, "summary.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Bills of Lading", "A2")
	require.NoError(t, err)
	assert.Equal(t, "manifest-001.pdf", got)
}
