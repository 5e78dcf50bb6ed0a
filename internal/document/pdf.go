package document

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// rowTolerance is the maximum distance, in points, between the baselines
	// of two characters that still belong to the same visual row.
	rowTolerance = 3.0
	// wordGapFactor scales font size into the widest horizontal gap that
	// still joins two character runs into one word.
	wordGapFactor = 0.3
	// defaultPageHeight is assumed when a page carries no MediaBox
	// (US Letter, 11in at 72dpi).
	defaultPageHeight = 792.0
)

// PDF reads pages from a PDF file through its embedded text layer.
type PDF struct {
	path   string
	file   *os.File
	reader *pdf.Reader
}

var _ Reader = (*PDF)(nil)

// Open opens the PDF at path. The caller owns the returned document and
// must Close it.
func Open(path string) (*PDF, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: open %s: %w", path, err)
	}
	return &PDF{path: path, file: f, reader: r}, nil
}

func (d *PDF) Path() string { return d.path }

func (d *PDF) Close() error { return d.file.Close() }

func (d *PDF) PageCount() int { return d.reader.NumPage() }

// PageText joins the words of page i into newline-separated rows.
func (d *PDF) PageText(i int) (string, error) {
	words, err := d.PageWords(i)
	if err != nil {
		return "", err
	}
	return JoinLines(Lines(words)), nil
}

// PageWords decodes the characters of page i and merges them into words in
// reading order.
func (d *PDF) PageWords(i int) ([]Word, error) {
	if i < 0 || i >= d.reader.NumPage() {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, i)
	}

	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		return nil, fmt.Errorf("document: page %d of %s is unreadable", i, d.path)
	}

	height := pageHeight(page)
	var words []Word
	for _, row := range groupRows(page.Content().Text) {
		words = append(words, mergeRow(row, height)...)
	}
	return words, nil
}

// pageHeight resolves the page's MediaBox height, walking up the page tree
// when the attribute is inherited.
func pageHeight(p pdf.Page) float64 {
	dict := p.V
	for depth := 0; depth < 16 && !dict.IsNull(); depth++ {
		if mb := dict.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			if h := mb.Index(3).Float64() - mb.Index(1).Float64(); h > 0 {
				return h
			}
		}
		dict = dict.Key("Parent")
	}
	return defaultPageHeight
}

// groupRows buckets characters into visual rows. The text layer uses a
// bottom-left origin, so a larger Y is higher on the page.
func groupRows(texts []pdf.Text) [][]pdf.Text {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]pdf.Text
	current := []pdf.Text{sorted[0]}
	for _, t := range sorted[1:] {
		if current[0].Y-t.Y <= rowTolerance {
			current = append(current, t)
			continue
		}
		rows = append(rows, current)
		current = []pdf.Text{t}
	}
	return append(rows, current)
}

// mergeRow joins a row's characters into words. A run breaks on an explicit
// space character or on a horizontal gap wider than wordGapFactor times the
// font size.
func mergeRow(row []pdf.Text, pageHeight float64) []Word {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].X < row[j].X
	})

	var (
		words      []Word
		b          strings.Builder
		x0, x1     float64
		yTop, yBot float64
	)
	flush := func() {
		if b.Len() == 0 {
			return
		}
		text := strings.TrimSpace(b.String())
		if text != "" {
			words = append(words, Word{
				Text: text,
				Rect: Rect{X0: x0, Y0: yTop, X1: x1, Y1: yBot},
			})
		}
		b.Reset()
	}

	for _, t := range row {
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		top := pageHeight - t.Y - t.FontSize
		bot := pageHeight - t.Y
		if b.Len() > 0 && t.X-x1 > wordGapFactor*t.FontSize {
			flush()
		}
		if b.Len() == 0 {
			x0, x1, yTop, yBot = t.X, t.X+t.W, top, bot
		} else {
			if top < yTop {
				yTop = top
			}
			if bot > yBot {
				yBot = bot
			}
			if t.X+t.W > x1 {
				x1 = t.X + t.W
			}
		}
		b.WriteString(t.S)
	}
	flush()
	return words
}
