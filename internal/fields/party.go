package fields

import (
	"context"
	"regexp"
	"strings"

	"github.com/freightdocs/bol-extractor/internal/bol"
	"github.com/freightdocs/bol-extractor/internal/document"
	"github.com/freightdocs/bol-extractor/internal/textsource"
)

// rePackingNoise drops the "NO. OF PACKAGES" style column headers that sit
// inside party blocks on tabular layouts.
var rePackingNoise = regexp.MustCompile(`^NO\.\s+OF`)

// nonNegotiableBoilerplate shows up inside the consignee block on some
// carrier templates.
const nonNegotiableBoilerplate = "This B/L is not negotiable"

// partyBounds describes where one party block lives: the header that opens
// it, the headers that terminate it, and the positional fallback rectangle.
type partyBounds struct {
	field  string
	start  string
	ends   []string
	region document.Rect
}

var (
	shipperBounds = partyBounds{
		field:  "shipper",
		start:  "SHIPPER",
		ends:   []string{"CONSIGNEE", "NOTIFY PARTY"},
		region: document.Rect{X0: 20, Y0: 80, X1: 300, Y1: 120},
	}
	consigneeBounds = partyBounds{
		field:  "consignee",
		start:  "CONSIGNEE",
		ends:   []string{"NOTIFY PARTY", "VESSEL AND VOYAGE"},
		region: document.Rect{X0: 20, Y0: 130, X1: 300, Y1: 180},
	}
	notifyPartyBounds = partyBounds{
		field:  "notify_party",
		start:  "NOTIFY PARTY",
		ends:   []string{"VESSEL AND VOYAGE"},
		region: document.Rect{X0: 20, Y0: 180, X1: 300, Y1: 240},
	}
)

// Shipper resolves the shipper block on the first page.
func (e *Extractor) Shipper(ctx context.Context, src textsource.Source) (bol.Party, bool, error) {
	return e.party(ctx, src, shipperBounds)
}

// Consignee resolves the consignee block on the first page.
func (e *Extractor) Consignee(ctx context.Context, src textsource.Source) (bol.Party, bool, error) {
	return e.party(ctx, src, consigneeBounds)
}

// NotifyParty resolves the notify party block on the first page.
func (e *Extractor) NotifyParty(ctx context.Context, src textsource.Source) (bol.Party, bool, error) {
	return e.party(ctx, src, notifyPartyBounds)
}

func (e *Extractor) party(ctx context.Context, src textsource.Source, b partyBounds) (bol.Party, bool, error) {
	return runCascade(ctx, e.logger, b.field, src, []strategy[bol.Party]{
		{name: "section", run: func(ctx context.Context, src textsource.Source) (bol.Party, bool, error) {
			return e.partyBySection(ctx, src, b)
		}},
		{name: "region", run: func(ctx context.Context, src textsource.Source) (bol.Party, bool, error) {
			return e.partyByRegion(ctx, src, b.region)
		}},
	})
}

// partyBySection captures the text between the party's header and the next
// section header, then filters out layout noise line by line.
func (e *Extractor) partyBySection(ctx context.Context, src textsource.Source, b partyBounds) (bol.Party, bool, error) {
	text, err := src.PageText(ctx, 0)
	if err != nil {
		return bol.Party{}, false, err
	}

	start := strings.Index(text, b.start)
	if start < 0 {
		return bol.Party{}, false, nil
	}
	section := text[start+len(b.start):]
	end := len(section)
	for _, stop := range b.ends {
		if i := strings.Index(section, stop); i >= 0 && i < end {
			end = i
		}
	}
	section = section[:end]

	lines := cleanPartyLines(section)
	if len(lines) == 0 {
		return bol.Party{}, false, nil
	}
	return buildParty(lines, strings.TrimSpace(section)), true, nil
}

// partyByRegion reads the party's fixed rectangle on the first page. The
// same line filter as the section capture applies, so layout noise inside
// the rectangle never becomes the company name.
func (e *Extractor) partyByRegion(ctx context.Context, src textsource.Source, rect document.Rect) (bol.Party, bool, error) {
	text, err := src.RegionText(ctx, 0, rect)
	if err != nil {
		return bol.Party{}, false, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return bol.Party{}, false, nil
	}

	lines := cleanPartyLines(text)
	if len(lines) == 0 {
		return bol.Party{}, false, nil
	}
	return buildParty(lines, text), true, nil
}

func cleanPartyLines(section string) []string {
	var lines []string
	for _, raw := range strings.Split(section, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
		case strings.HasPrefix(line, ":"):
		case rePackingNoise.MatchString(line):
		case strings.Contains(line, nonNegotiableBoilerplate):
		default:
			lines = append(lines, line)
		}
	}
	return lines
}

func buildParty(lines []string, raw string) bol.Party {
	company := lines[0]
	p := bol.Party{CompanyName: &company, RawText: &raw}
	if len(lines) > 1 {
		address := strings.Join(lines[1:], " ")
		p.Address = &address
	}
	return p
}
