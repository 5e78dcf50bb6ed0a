package textsource

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdocs/bol-extractor/internal/document"
)

type fakeRast struct {
	pageCalls   []int
	regionCalls []document.Rect
}

func (f *fakeRast) RenderPage(_ context.Context, _ string, page int) (string, func(), error) {
	f.pageCalls = append(f.pageCalls, page)
	return fmt.Sprintf("img-page-%d.png", page), func() {}, nil
}

func (f *fakeRast) RenderRegion(_ context.Context, _ string, page int, clip document.Rect) (string, func(), error) {
	f.regionCalls = append(f.regionCalls, clip)
	return fmt.Sprintf("img-region-%d.png", page), func() {}, nil
}

type fakeRecognizer struct {
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, imagePath string) (string, error) {
	f.calls++
	return "text from " + imagePath, nil
}

func TestOCRPageTextCachesPerPage(t *testing.T) {
	rast := &fakeRast{}
	rec := &fakeRecognizer{}
	src := NewOCR(&stubDoc{path: "/docs/bol.pdf", pages: []string{"", ""}}, rast, rec, nil)

	first, err := src.PageText(context.Background(), 0)
	require.NoError(t, err)
	again, err := src.PageText(context.Background(), 0)
	require.NoError(t, err)
	other, err := src.PageText(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "text from img-page-0.png", first)
	assert.Equal(t, first, again)
	assert.Equal(t, "text from img-page-1.png", other)

	// Page 0 was requested twice but rendered and recognized once.
	assert.Equal(t, []int{0, 1}, rast.pageCalls)
	assert.Equal(t, 2, rec.calls)
}

func TestOCRRegionTextNeverCached(t *testing.T) {
	rast := &fakeRast{}
	rec := &fakeRecognizer{}
	src := NewOCR(&stubDoc{path: "/docs/bol.pdf", pages: []string{""}}, rast, rec, nil)

	rect := document.Rect{X0: 400, Y0: 20, X1: 580, Y1: 60}
	_, err := src.RegionText(context.Background(), 0, rect)
	require.NoError(t, err)
	_, err = src.RegionText(context.Background(), 0, rect)
	require.NoError(t, err)

	assert.Len(t, rast.regionCalls, 2)
	assert.Empty(t, rast.pageCalls, "region reads never render full pages")
}

func TestOCRPageOutOfRange(t *testing.T) {
	src := NewOCR(&stubDoc{pages: []string{""}}, &fakeRast{}, &fakeRecognizer{}, nil)

	_, err := src.PageText(context.Background(), 3)
	assert.ErrorIs(t, err, document.ErrPageOutOfRange)
	_, err = src.RegionText(context.Background(), -1, document.Rect{})
	assert.ErrorIs(t, err, document.ErrPageOutOfRange)
}
