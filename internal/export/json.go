// Package export writes finished extraction results to disk: one pretty JSON
// file per document, plus a batch summary as JSON and as an XLSX workbook.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/freightdocs/bol-extractor/internal/bol"
)

// Writer is a small façade that owns the output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates the output directory if it does not exist yet.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Dir returns the output directory the writer was created with.
func (w *Writer) Dir() string {
	return w.dir
}

// RecordFilename maps a source document name to its JSON output name,
// e.g. "manifest-001.pdf" -> "manifest-001_extracted.json".
func RecordFilename(sourceName string) string {
	base := filepath.Base(sourceName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_extracted.json"
}

// MarshalRecord renders a record as indented JSON with a trailing newline,
// the same form the files on disk carry.
func MarshalRecord(rec *bol.Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", rec.Filename, err)
	}
	return append(data, '\n'), nil
}

// WriteRecord writes one extracted record into the output directory and
// returns the path written.
func (w *Writer) WriteRecord(rec *bol.Record) (string, error) {
	data, err := MarshalRecord(rec)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, RecordFilename(rec.Filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write record %s: %w", path, err)
	}
	w.logger.Debug("record written", "path", path)
	return path, nil
}
