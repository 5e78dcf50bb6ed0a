package fields

import (
	"context"
	"regexp"

	"github.com/freightdocs/bol-extractor/internal/textsource"
)

// dateToken accepts both "12-Mar-2024" and purely numeric "12/03/2024"
// shapes. Values are captured verbatim; no parsing or reformatting happens
// downstream.
const dateToken = `(\d{1,2}-[A-Za-z]{3}-\d{4}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`

// The label and its date can be separated by column junk, so allow a short
// bounded window between them instead of anchoring to the same line.
var (
	reIssueDate   = regexp.MustCompile(`(?s)PLACE AND DATE OF ISSUE.{0,120}?` + dateToken)
	reShippedDate = regexp.MustCompile(`(?s)SHIPPED ON BOARD DATE.{0,120}?` + dateToken)
)

// IssueDate resolves the issue date printed near the "PLACE AND DATE OF
// ISSUE" label.
func (e *Extractor) IssueDate(ctx context.Context, src textsource.Source) (string, bool, error) {
	return e.dateNearLabel(ctx, src, "issue_date", reIssueDate)
}

// ShippedDate resolves the shipped-on-board date.
func (e *Extractor) ShippedDate(ctx context.Context, src textsource.Source) (string, bool, error) {
	return e.dateNearLabel(ctx, src, "shipped_date", reShippedDate)
}

func (e *Extractor) dateNearLabel(ctx context.Context, src textsource.Source, field string, re *regexp.Regexp) (string, bool, error) {
	return runCascade(ctx, e.logger, field, src, []strategy[string]{
		{name: "label_window", run: func(ctx context.Context, src textsource.Source) (string, bool, error) {
			for i := 0; i < src.PageCount(); i++ {
				text, err := src.PageText(ctx, i)
				if err != nil {
					return "", false, err
				}
				if m := re.FindStringSubmatch(text); m != nil {
					return m[1], true, nil
				}
			}
			return "", false, nil
		}},
	})
}
