// Package containers discovers container numbers on a bill of lading and
// attaches the seal number, package count, and weight printed near each one.
// Discovery is anchor driven: size-class phrases and the container table
// section mark the regions worth scanning, and every candidate keeps a
// context snippet so the secondary patterns never search the whole page.
package containers

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/freightdocs/bol-extractor/constants"
	"github.com/freightdocs/bol-extractor/internal/bol"
	"github.com/freightdocs/bol-extractor/internal/ocr"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

// Character windows around an anchor match and around each container token.
// Secondary patterns run inside the token snippet only.
const (
	anchorWindow  = 200
	snippetBefore = 100
	snippetAfter  = 200
)

var (
	// ISO 6346 owner code and serial: four letters, seven digits.
	reToken = regexp.MustCompile(`[A-Z]{4}\d{7}`)

	// Size-class phrase that sits next to container numbers on most layouts.
	reAnchor = regexp.MustCompile(`(?i)40(?:'|FT)\s+HIGH\s+CUBE`)

	// The labeled container table, bounded by whichever section follows it.
	reSection = regexp.MustCompile(`(?is)Container Numbers,?\s*Seal(.*?)(?:PLACE AND DATE OF ISSUE|SHIPPED ON BOARD|FREIGHT & CHARGES)`)

	// Secondary patterns, applied to one candidate's snippet at a time.
	// A seal identifier always carries at least one digit, which keeps the
	// "Seal Numbers and Marks" column header from matching.
	reSeal     = regexp.MustCompile(`(?i)Seal\s*(?:Number|No\.?)?:?\s*(\w*\d\w*)`)
	rePackages = regexp.MustCompile(`(?i)(\d+)\s+(?:PALLETS?|PKGS|PACKAGES)`)
	reWeight   = regexp.MustCompile(`(?i)(\d+[\.,]\d+)\s*kgs?`)
)

// candidate is one discovered token plus its discovery rank. The rank
// restores first-found order after score-based reconciliation.
type candidate struct {
	bol.Container
	seq int
}

// Extractor finds the containers carried under one bill of lading.
type Extractor struct {
	logger   *slog.Logger
	rePrefix *regexp.Regexp
}

// NewExtractor builds a container extractor. carrierPrefixes name the BOL
// number prefixes whose tokens must be rejected even when they match the
// container shape; empty falls back to the default carrier set.
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
		logger:   logger,
		rePrefix: regexp.MustCompile(`^(?:` + strings.Join(quoted, "|") + `)`),
	}
}

// Extract scans every page for container candidates, rejects false
// positives, and reconciles the survivors against refCount when the caller
// knows how many containers this document should carry (refCount <= 0 means
// unknown). bolNumber, when already resolved, is excluded from the result.
//
// The returned slice is unique by container number and ordered by first
// discovery across pages.
func (e *Extractor) Extract(ctx context.Context, src textsource.Source, bolNumber string, refCount int) ([]bol.Container, error) {
	var cands []candidate
	seen := make(map[string]struct{})

	for i := 0; i < src.PageCount(); i++ {
		text, err := src.PageText(ctx, i)
		if err != nil {
			if errors.Is(err, ocr.ErrEngineUnavailable) {
				return nil, err
			}
			e.logger.Debug("container scan skipped page", "page", i, "error", err)
			continue
		}
		e.scanPage(text, i, bolNumber, seen, &cands)
	}

	kept := reconcile(cands, refCount)

	out := make([]bol.Container, 0, len(kept))
	for _, c := range kept {
		out = append(out, c.Container)
	}
	e.logger.Debug("containers extracted", "discovered", len(cands), "kept", len(out))
	return out, nil
}

// scanPage collects the page's candidate tokens in reading order. A token
// counts only when it sits inside an anchor window or the container table
// section; everything it carries (seal, packages, weight) is parsed from a
// snippet clamped to that same region.
func (e *Extractor) scanPage(text string, page int, bolNumber string, seen map[string]struct{}, cands *[]candidate) {
	spans := discoverSpans(text)
	if len(spans) == 0 {
		return
	}

	for _, tok := range reToken.FindAllStringIndex(text, -1) {
		span, ok := containingSpan(spans, tok[0], tok[1])
		if !ok {
			continue
		}
		number := text[tok[0]:tok[1]]
		if _, dup := seen[number]; dup {
			continue
		}
		// First discovery decides: a token rejected here never gets a
		// second chance from a later occurrence.
		seen[number] = struct{}{}

		if number == bolNumber {
			e.logger.Debug("container token rejected", "token", number, "reason", "bol number")
			continue
		}
		if e.rePrefix.MatchString(number) {
			e.logger.Debug("container token rejected", "token", number, "reason", "carrier prefix")
			continue
		}

		snippet := text[snap(text, max(span.start, tok[0]-snippetBefore)):snap(text, min(span.end, tok[1]+snippetAfter))]
		if !isPlausible(snippet) {
			e.logger.Debug("container token rejected", "token", number, "reason", "no corroborating context", "page", page)
			continue
		}

		*cands = append(*cands, candidate{
			Container: bol.Container{
				ContainerNumber: number,
				SealNumber:      matchString(reSeal, snippet),
				PackageCount:    matchInt(rePackages, snippet),
				WeightKg:        matchWeight(reWeight, snippet),
				Context:         snippet,
			},
			seq: len(*cands),
		})
	}
}

// span is a half-open [start, end) byte range of one page's text.
type span struct {
	start, end int
}

// discoverSpans returns the page regions worth scanning for tokens: a
// window around every size-class anchor plus the container table section.
func discoverSpans(text string) []span {
	var spans []span
	for _, m := range reAnchor.FindAllStringIndex(text, -1) {
		spans = append(spans, span{
			start: snap(text, max(0, m[0]-anchorWindow)),
			end:   snap(text, min(len(text), m[1]+anchorWindow)),
		})
	}
	if loc := reSection.FindStringSubmatchIndex(text); loc != nil {
		spans = append(spans, span{start: loc[2], end: loc[3]})
	}
	return spans
}

func containingSpan(spans []span, start, end int) (span, bool) {
	for _, s := range spans {
		if start >= s.start && end <= s.end {
			return s, true
		}
	}
	return span{}, false
}

// snap moves i back to the nearest rune boundary so window arithmetic never
// slices a multibyte character in half.
func snap(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func matchString(re *regexp.Regexp, snippet string) *string {
	m := re.FindStringSubmatch(snippet)
	if m == nil {
		return nil
	}
	return &m[1]
}

func matchInt(re *regexp.Regexp, snippet string) *int {
	m := re.FindStringSubmatch(snippet)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// matchWeight parses the captured decimal, accepting the comma separator
// used on European carrier templates.
func matchWeight(re *regexp.Regexp, snippet string) *float64 {
	m := re.FindStringSubmatch(snippet)
	if m == nil {
		return nil
	}
	w, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return nil
	}
	return &w
}
