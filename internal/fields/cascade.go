// Package fields implements the per-field extraction strategies for bills
// of lading. Every field runs an ordered list of strategies against the
// text source; the first strategy that yields a value wins and the rest
// never run. There is no backtracking: a later strategy cannot override an
// earlier hit.
package fields

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/freightdocs/bol-extractor/constants"
	"github.com/freightdocs/bol-extractor/internal/ocr"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

// headerPages bounds how many leading pages the header strategies scan.
// BOL numbers and party blocks live on the first sheet; a second page covers
// carriers that repeat the header on a rider page.
const headerPages = 2

// strategy is one way to resolve a field. ok reports whether the strategy
// found a value; err is reserved for infrastructure failures.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context, src textsource.Source) (T, bool, error)
}

// runCascade tries each strategy in order and returns the first hit.
// Strategy errors are logged and treated as misses so one failing probe
// cannot poison the whole field, with one exception: a vanished OCR engine
// aborts the document rather than producing a partial record.
func runCascade[T any](ctx context.Context, logger *slog.Logger, field string, src textsource.Source, strategies []strategy[T]) (T, bool, error) {
	var zero T
	for _, st := range strategies {
		v, ok, err := st.run(ctx, src)
		if err != nil {
			if errors.Is(err, ocr.ErrEngineUnavailable) {
				return zero, false, err
			}
			logger.Debug("field strategy failed", "field", field, "strategy", st.name, "error", err)
			continue
		}
		if ok {
			logger.Debug("field resolved", "field", field, "strategy", st.name)
			return v, true, nil
		}
	}
	logger.Debug("field unresolved", "field", field)
	return zero, false, nil
}

// Extractor holds the compiled patterns shared by the field strategies.
type Extractor struct {
	logger    *slog.Logger
	reCarrier *regexp.Regexp
}

// NewExtractor builds an Extractor. carrierPrefixes drive the
// highest-confidence BOL number strategy; empty falls back to the default
// carrier set.
func NewExtractor(carrierPrefixes []string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(carrierPrefixes) == 0 {
		carrierPrefixes = constants.DefaultCarrierBOLPrefixes
	}
	quoted := make([]string, len(carrierPrefixes))
	for i, p := range carrierPrefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return &Extractor{
		logger:    logger,
		reCarrier: regexp.MustCompile(`(?:` + strings.Join(quoted, "|") + `)[A-Z]*\d{6,}`),
	}
}

var reWhitespaceRun = regexp.MustCompile(`\s+`)

// collapseSpaces flattens any whitespace run, newlines included, into a
// single space.
func collapseSpaces(s string) string {
	return strings.TrimSpace(reWhitespaceRun.ReplaceAllString(s, " "))
}
