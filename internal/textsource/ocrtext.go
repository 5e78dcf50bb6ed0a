package textsource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freightdocs/bol-extractor/internal/document"
)

// PageRasterizer renders a page, or a clipped region of one, to an image
// file. The returned cleanup func removes the image.
type PageRasterizer interface {
	RenderPage(ctx context.Context, path string, page int) (string, func(), error)
	RenderRegion(ctx context.Context, path string, page int, clip document.Rect) (string, func(), error)
}

// Recognizer turns a page image into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// OCR reads pages by rasterizing them and running the recognizer. Full-page
// results are cached per page index for the lifetime of the source, because
// several field strategies revisit the same page. Region results are never
// cached: each rectangle is recognized fresh.
type OCR struct {
	doc    document.Reader
	rast   PageRasterizer
	engine Recognizer
	logger *slog.Logger

	// pages is insertion-only and grows to at most PageCount entries.
	pages map[int]string
}

var _ Source = (*OCR)(nil)

// NewOCR wraps an open document with an OCR-backed source.
func NewOCR(doc document.Reader, rast PageRasterizer, engine Recognizer, logger *slog.Logger) *OCR {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCR{
		doc:    doc,
		rast:   rast,
		engine: engine,
		logger: logger,
		pages:  make(map[int]string),
	}
}

func (s *OCR) PageCount() int { return s.doc.PageCount() }

func (s *OCR) PageText(ctx context.Context, i int) (string, error) {
	if i < 0 || i >= s.doc.PageCount() {
		return "", fmt.Errorf("%w: %d", document.ErrPageOutOfRange, i)
	}
	if text, ok := s.pages[i]; ok {
		return text, nil
	}

	img, cleanup, err := s.rast.RenderPage(ctx, s.doc.Path(), i)
	if err != nil {
		return "", err
	}
	defer cleanup()

	text, err := s.engine.Recognize(ctx, img)
	if err != nil {
		return "", err
	}
	s.pages[i] = text
	s.logger.Debug("ocr page cached", "page", i, "chars", len(text))
	return text, nil
}

func (s *OCR) RegionText(ctx context.Context, i int, rect document.Rect) (string, error) {
	if i < 0 || i >= s.doc.PageCount() {
		return "", fmt.Errorf("%w: %d", document.ErrPageOutOfRange, i)
	}

	img, cleanup, err := s.rast.RenderRegion(ctx, s.doc.Path(), i, rect)
	if err != nil {
		return "", err
	}
	defer cleanup()

	return s.engine.Recognize(ctx, img)
}
