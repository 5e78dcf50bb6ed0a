package textsource

import (
	"context"

	"github.com/freightdocs/bol-extractor/internal/document"
)

// Direct reads from the document's embedded text layer.
type Direct struct {
	doc document.Reader
}

var _ Source = (*Direct)(nil)

// NewDirect wraps an open document.
func NewDirect(doc document.Reader) *Direct {
	return &Direct{doc: doc}
}

func (s *Direct) PageCount() int { return s.doc.PageCount() }

func (s *Direct) PageText(_ context.Context, i int) (string, error) {
	return s.doc.PageText(i)
}

// RegionText keeps every word whose bounding box overlaps rect and joins
// them back into lines, so positional strategies can split a region into a
// first line and the remainder.
func (s *Direct) RegionText(_ context.Context, i int, rect document.Rect) (string, error) {
	words, err := s.doc.PageWords(i)
	if err != nil {
		return "", err
	}
	var hit []document.Word
	for _, w := range words {
		if w.Rect.Intersects(rect) {
			hit = append(hit, w)
		}
	}
	return document.JoinLines(document.Lines(hit)), nil
}
