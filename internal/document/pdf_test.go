package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureWord places a single text run at a baseline position. Coordinates
// follow the PDF convention: bottom-left origin, points.
type fixtureWord struct {
	x, y float64
	s    string
}

// writeFixturePDF builds a one-page uncompressed PDF with a Helvetica font
// that declares explicit glyph widths (500/1000 per char), so every word's
// geometry is predictable: at size 12 each character advances 6pt.
func writeFixturePDF(t *testing.T, words []fixtureWord) string {
	t.Helper()

	var stream strings.Builder
	stream.WriteString("BT\n/F1 12 Tf\n")
	for _, w := range words {
		fmt.Fprintf(&stream, "1 0 0 1 %g %g Tm (%s) Tj\n", w.x, w.y, w.s)
	}
	stream.WriteString("ET\n")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 6)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica "+
		"/FirstChar 32 /LastChar 126 /Widths ["+widths+"] >>")
	writeObj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", stream.Len(), stream.String()))

	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
}

func TestPDFPageText(t *testing.T) {
	path := writeFixturePDF(t, []fixtureWord{
		{x: 420, y: 750, s: "MEDUP1234567"},
		{x: 72, y: 720, s: "BILL"},
		{x: 110, y: 720, s: "OF"},
		{x: 130, y: 720, s: "LADING"},
	})

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, path, doc.Path())

	text, err := doc.PageText(0)
	require.NoError(t, err)
	assert.Equal(t, "MEDUP1234567\nBILL OF LADING", text)
}

func TestPDFPageWordsGeometry(t *testing.T) {
	path := writeFixturePDF(t, []fixtureWord{
		{x: 420, y: 750, s: "MEDUP1234567"},
		{x: 72, y: 720, s: "SHIPPER"},
	})

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	words, err := doc.PageWords(0)
	require.NoError(t, err)
	require.Len(t, words, 2)

	// Page height 792, baseline 750, size 12: top = 792-750-12 = 30.
	token := words[0]
	assert.Equal(t, "MEDUP1234567", token.Text)
	assert.InDelta(t, 420, token.Rect.X0, 0.5)
	assert.InDelta(t, 30, token.Rect.Y0, 0.5)
	assert.InDelta(t, 42, token.Rect.Y1, 0.5)
	// 12 chars at 6pt each.
	assert.InDelta(t, 492, token.Rect.X1, 1.0)

	header := Rect{X0: 400, Y0: 20, X1: 580, Y1: 60}
	assert.True(t, token.Rect.Intersects(header))
	assert.False(t, words[1].Rect.Intersects(header))
}

func TestPDFPageOutOfRange(t *testing.T) {
	path := writeFixturePDF(t, []fixtureWord{{x: 72, y: 720, s: "ONLY"}})

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	_, err = doc.PageText(1)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = doc.PageWords(-1)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}
