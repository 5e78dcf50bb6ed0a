package fields

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/freightdocs/bol-extractor/internal/bol"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

var (
	reCargoItems  = regexp.MustCompile(`Total Items\s*(\d+)`)
	reCargoWeight = regexp.MustCompile(`(?i)Total Gross Weight\s*(\d+[\.,]\d+)\s*Kgs`)
	reCargoDesc   = regexp.MustCompile(`(?s)Description of Packages and Goods(.*?)Gross`)
)

// Cargo resolves the document's cargo totals. Pages are scanned in order
// and each subfield keeps its first match; later pages never overwrite it.
func (e *Extractor) Cargo(ctx context.Context, src textsource.Source) (bol.CargoSummary, bool, error) {
	return runCascade(ctx, e.logger, "cargo", src, []strategy[bol.CargoSummary]{
		{name: "totals_scan", run: e.cargoByTotals},
	})
}

func (e *Extractor) cargoByTotals(ctx context.Context, src textsource.Source) (bol.CargoSummary, bool, error) {
	var out bol.CargoSummary
	for i := 0; i < src.PageCount(); i++ {
		text, err := src.PageText(ctx, i)
		if err != nil {
			return bol.CargoSummary{}, false, err
		}

		if out.PackageCount == nil {
			if m := reCargoItems.FindStringSubmatch(text); m != nil {
				if n, convErr := strconv.Atoi(m[1]); convErr == nil {
					out.PackageCount = &n
				}
			}
		}
		if out.GrossWeightKg == nil {
			if m := reCargoWeight.FindStringSubmatch(text); m != nil {
				if w, convErr := parseDecimal(m[1]); convErr == nil {
					out.GrossWeightKg = &w
				}
			}
		}
		if out.Description == nil {
			if m := reCargoDesc.FindStringSubmatch(text); m != nil {
				if d := collapseSpaces(m[1]); d != "" {
					out.Description = &d
				}
			}
		}
	}

	found := out.PackageCount != nil || out.GrossWeightKg != nil || out.Description != nil
	return out, found, nil
}

// parseDecimal reads a decimal that may use a comma separator, as European
// carrier templates print weights like "19841,00".
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
