package fields

import (
	"context"
	"regexp"
	"strings"

	"github.com/freightdocs/bol-extractor/internal/bol"
	"github.com/freightdocs/bol-extractor/internal/document"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

var (
	// "VESSEL AND VOYAGE NO. MSC ANNA / 429A" style combined headers. OCR
	// output sometimes lowercases the label, so the match ignores case.
	reVesselCombined = regexp.MustCompile(`(?i)VESSEL AND VOYAGE.*?([A-Z\s]+)/\s*([A-Z0-9]+)`)
	// Separate VESSEL / VOYAGE labels anywhere on the line.
	reVesselSplit = regexp.MustCompile(`VESSEL.*?:?\s*([A-Z\s]+).*?VOYAGE.*?:?\s*([A-Z0-9]+)`)
)

var vesselRegion = document.Rect{X0: 20, Y0: 260, X1: 150, Y1: 280}

// Vessel resolves the carrying vessel's name and voyage number. Label
// strategies scan the header pages; the region fallback reads the first
// page only.
func (e *Extractor) Vessel(ctx context.Context, src textsource.Source) (bol.VesselInfo, bool, error) {
	return runCascade(ctx, e.logger, "vessel", src, []strategy[bol.VesselInfo]{
		{name: "combined_label", run: vesselByPattern(reVesselCombined)},
		{name: "split_labels", run: vesselByPattern(reVesselSplit)},
		{name: "region", run: e.vesselByRegion},
	})
}

func vesselByPattern(re *regexp.Regexp) func(ctx context.Context, src textsource.Source) (bol.VesselInfo, bool, error) {
	return func(ctx context.Context, src textsource.Source) (bol.VesselInfo, bool, error) {
		for i := 0; i < src.PageCount() && i < headerPages; i++ {
			text, err := src.PageText(ctx, i)
			if err != nil {
				return bol.VesselInfo{}, false, err
			}
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			name := collapseSpaces(m[1])
			if name == "" {
				continue
			}
			voyage := strings.TrimSpace(m[2])
			info := bol.VesselInfo{Name: &name}
			if voyage != "" {
				info.Voyage = &voyage
			}
			return info, true, nil
		}
		return bol.VesselInfo{}, false, nil
	}
}

// vesselByRegion reads the vessel cell; "NAME / VOYAGE" splits on the
// slash, anything else is taken as the bare vessel name.
func (e *Extractor) vesselByRegion(ctx context.Context, src textsource.Source) (bol.VesselInfo, bool, error) {
	text, err := src.RegionText(ctx, 0, vesselRegion)
	if err != nil {
		return bol.VesselInfo{}, false, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return bol.VesselInfo{}, false, nil
	}

	if name, voyage, found := strings.Cut(text, "/"); found {
		n := collapseSpaces(name)
		v := strings.TrimSpace(voyage)
		if n == "" {
			return bol.VesselInfo{}, false, nil
		}
		info := bol.VesselInfo{Name: &n}
		if v != "" {
			info.Voyage = &v
		}
		return info, true, nil
	}

	name := collapseSpaces(text)
	return bol.VesselInfo{Name: &name}, true, nil
}
