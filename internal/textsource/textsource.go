// Package textsource feeds page and region text to the field extractors.
// Two implementations exist: Direct reads the document's embedded text
// layer, OCR rasterizes pages and recognizes them. Field extractors only
// see the Source interface, so strategy code is identical in both modes.
package textsource

import (
	"context"

	"github.com/freightdocs/bol-extractor/internal/document"
)

// Source hands out the text of an open document. Implementations are not
// safe for concurrent use; one document is processed by one goroutine.
type Source interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageText returns the full text of page i (0-based).
	PageText(ctx context.Context, i int) (string, error)
	// RegionText returns the text inside rect on page i, preserving line
	// structure. rect is in page points, top-left origin.
	RegionText(ctx context.Context, i int, rect document.Rect) (string, error)
}
