package fields

import (
	"context"
	"regexp"

	"github.com/freightdocs/bol-extractor/internal/document"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

var (
	reBOLLabel       = regexp.MustCompile(`(?i)BILL OF LADING No\.?\s*([A-Z0-9]+)`)
	reBOLHeaderToken = regexp.MustCompile(`[A-Z]{5}\d{6,}`)
	reBOLFuzzy       = regexp.MustCompile(`(?i)(?:BOL|B/L|BILL).*?([A-Z]{4,}\d{6,})`)
)

// bolHeaderRegion is the top-right corner of the first page, where carriers
// print the document number.
var bolHeaderRegion = document.Rect{X0: 400, Y0: 20, X1: 580, Y1: 60}

// BOLNumber resolves the bill of lading number. Strategy order runs from
// the most specific evidence to the loosest match.
func (e *Extractor) BOLNumber(ctx context.Context, src textsource.Source) (string, bool, error) {
	return runCascade(ctx, e.logger, "bol_number", src, []strategy[string]{
		{name: "carrier_pattern", run: e.bolByCarrierPattern},
		{name: "label", run: e.bolByLabel},
		{name: "header_region", run: e.bolByHeaderRegion},
		{name: "fuzzy", run: e.bolByFuzzySearch},
	})
}

func (e *Extractor) bolByCarrierPattern(ctx context.Context, src textsource.Source) (string, bool, error) {
	for i := 0; i < src.PageCount() && i < headerPages; i++ {
		text, err := src.PageText(ctx, i)
		if err != nil {
			return "", false, err
		}
		if m := e.reCarrier.FindString(text); m != "" {
			return m, true, nil
		}
	}
	return "", false, nil
}

func (e *Extractor) bolByLabel(ctx context.Context, src textsource.Source) (string, bool, error) {
	for i := 0; i < src.PageCount() && i < headerPages; i++ {
		text, err := src.PageText(ctx, i)
		if err != nil {
			return "", false, err
		}
		if m := reBOLLabel.FindStringSubmatch(text); m != nil {
			return m[1], true, nil
		}
	}
	return "", false, nil
}

func (e *Extractor) bolByHeaderRegion(ctx context.Context, src textsource.Source) (string, bool, error) {
	text, err := src.RegionText(ctx, 0, bolHeaderRegion)
	if err != nil {
		return "", false, err
	}
	if m := reBOLHeaderToken.FindString(text); m != "" {
		return m, true, nil
	}
	return "", false, nil
}

func (e *Extractor) bolByFuzzySearch(ctx context.Context, src textsource.Source) (string, bool, error) {
	for i := 0; i < src.PageCount() && i < headerPages; i++ {
		text, err := src.PageText(ctx, i)
		if err != nil {
			return "", false, err
		}
		if m := reBOLFuzzy.FindStringSubmatch(text); m != nil {
			return m[1], true, nil
		}
	}
	return "", false, nil
}
