package fields

import (
	"context"
	"regexp"

	"github.com/freightdocs/bol-extractor/internal/document"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

// Routing labels sit side by side in a table row, so each capture stops at
// the next PORT/PLACE label or at the end of the text.
var (
	rePortOfLoading   = regexp.MustCompile(`(?i)PORT\s+OF\s+LOADING\s*:?\s*([A-Za-z\s,.]+?)(?:PORT|PLACE|$)`)
	rePortOfDischarge = regexp.MustCompile(`(?i)PORT\s+OF\s+DISCHARGE\s*:?\s*([A-Za-z\s,.]+?)(?:PORT|PLACE|$)`)
	rePlaceOfReceipt  = regexp.MustCompile(`(?i)PLACE\s+OF\s+RECEIPT\s*:?\s*([A-Za-z\s,.]+?)(?:PORT|PLACE|$)`)
	rePlaceOfDelivery = regexp.MustCompile(`(?i)PLACE\s+OF\s+DELIVERY\s*:?\s*([A-Za-z\s,.]+?)(?:PORT|PLACE|$)`)

	// A value that ran into a neighboring column or another routing label
	// is noise, not a port.
	rePortNoise = regexp.MustCompile(`(?i)BOOKING|REF|AGENT|PLACE\s+OF\s+(?:RECEIPT|DELIVERY)|PORT\s+OF\s+(?:LOADING|DISCHARGE)`)
)

var (
	loadingPortRegion   = document.Rect{X0: 280, Y0: 260, X1: 400, Y1: 280}
	dischargePortRegion = document.Rect{X0: 280, Y0: 280, X1: 400, Y1: 300}
)

// PortOfLoading resolves the load port, with a positional fallback.
func (e *Extractor) PortOfLoading(ctx context.Context, src textsource.Source) (string, bool, error) {
	return runCascade(ctx, e.logger, "port_of_loading", src, []strategy[string]{
		{name: "label", run: portByLabel(rePortOfLoading)},
		{name: "region", run: e.portByRegion(loadingPortRegion)},
	})
}

// PortOfDischarge resolves the discharge port, with a positional fallback.
func (e *Extractor) PortOfDischarge(ctx context.Context, src textsource.Source) (string, bool, error) {
	return runCascade(ctx, e.logger, "port_of_discharge", src, []strategy[string]{
		{name: "label", run: portByLabel(rePortOfDischarge)},
		{name: "region", run: e.portByRegion(dischargePortRegion)},
	})
}

// PlaceOfReceipt resolves the inland receipt point. No positional fallback:
// the field is optional on most templates.
func (e *Extractor) PlaceOfReceipt(ctx context.Context, src textsource.Source) (string, bool, error) {
	return runCascade(ctx, e.logger, "place_of_receipt", src, []strategy[string]{
		{name: "label", run: portByLabel(rePlaceOfReceipt)},
	})
}

// PlaceOfDelivery resolves the inland delivery point.
func (e *Extractor) PlaceOfDelivery(ctx context.Context, src textsource.Source) (string, bool, error) {
	return runCascade(ctx, e.logger, "place_of_delivery", src, []strategy[string]{
		{name: "label", run: portByLabel(rePlaceOfDelivery)},
	})
}

// portByLabel scans every page and keeps the first capture that is not
// column noise.
func portByLabel(re *regexp.Regexp) func(ctx context.Context, src textsource.Source) (string, bool, error) {
	return func(ctx context.Context, src textsource.Source) (string, bool, error) {
		for i := 0; i < src.PageCount(); i++ {
			text, err := src.PageText(ctx, i)
			if err != nil {
				return "", false, err
			}
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := collapseSpaces(m[1])
			if value == "" || rePortNoise.MatchString(value) {
				continue
			}
			return value, true, nil
		}
		return "", false, nil
	}
}

func (e *Extractor) portByRegion(rect document.Rect) func(ctx context.Context, src textsource.Source) (string, bool, error) {
	return func(ctx context.Context, src textsource.Source) (string, bool, error) {
		text, err := src.RegionText(ctx, 0, rect)
		if err != nil {
			return "", false, err
		}
		value := collapseSpaces(text)
		if value == "" || rePortNoise.MatchString(value) {
			return "", false, nil
		}
		return value, true, nil
	}
}
