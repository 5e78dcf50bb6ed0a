// Package document reads the pages of a PDF file and exposes their text and
// word geometry. Coordinates use points with the origin at the top-left
// corner of the page, so a smaller Y is higher on the page.
package document

import (
	"errors"
	"sort"
	"strings"
)

// ErrPageOutOfRange is returned when a page index falls outside
// [0, PageCount).
var ErrPageOutOfRange = errors.New("document: page out of range")

// Rect is an axis-aligned region on a page, in points, top-left origin.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Word is a run of characters on a page together with its bounding box.
type Word struct {
	Text string
	Rect Rect
}

// Reader exposes the pages of an open document. Implementations are not
// safe for concurrent use; a document is processed by one goroutine at a
// time.
type Reader interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageText returns the text of page i in reading order, one line per
	// visual row.
	PageText(i int) (string, error)
	// PageWords returns the words of page i with their bounding boxes, in
	// reading order.
	PageWords(i int) ([]Word, error)
	// Path returns the file path the document was opened from.
	Path() string
	// Close releases the underlying file handle.
	Close() error
}

// lineTolerance is the maximum vertical distance, in points, between word
// tops that still count as the same text line.
const lineTolerance = 3.0

// Lines groups words into visual lines ordered top to bottom, left to right.
func Lines(words []Word) [][]Word {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rect.Y0 < sorted[j].Rect.Y0
	})

	var lines [][]Word
	current := []Word{sorted[0]}
	for _, w := range sorted[1:] {
		if w.Rect.Y0-current[0].Rect.Y0 <= lineTolerance {
			current = append(current, w)
			continue
		}
		lines = append(lines, current)
		current = []Word{w}
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].Rect.X0 < line[j].Rect.X0
		})
	}
	return lines
}

// JoinLines renders grouped words as text, words separated by single spaces
// and lines by newlines.
func JoinLines(lines [][]Word) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, w := range line {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(w.Text)
		}
	}
	return b.String()
}
