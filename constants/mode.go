package constants

import (
	"strings"
)

// ExtractionMode selects how page text is read from a document.
type ExtractionMode string

const (
	// ModeAuto reads the embedded text layer and falls back to OCR when a
	// page is effectively blank.
	ModeAuto ExtractionMode = "auto"
	// ModeDirect reads only the embedded text layer.
	ModeDirect ExtractionMode = "direct"
	// ModeOCR rasterizes pages and runs them through the OCR engine.
	ModeOCR ExtractionMode = "ocr"
)

var allModes = []ExtractionMode{ModeAuto, ModeDirect, ModeOCR}

// ModesAsStringSlice returns the accepted mode names for flag help text.
func ModesAsStringSlice() []string {
	result := make([]string, len(allModes))
	for i, m := range allModes {
		result[i] = string(m)
	}
	return result
}

// CanonicalizeMode maps a user-supplied mode name to its canonical value.
// Unknown input falls back to ModeAuto.
func CanonicalizeMode(input string) (ExtractionMode, bool) {
	if input == "" {
		return ModeAuto, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]ExtractionMode{
		"text":      ModeDirect,
		"native":    ModeDirect,
		"layer":     ModeDirect,
		"tesseract": ModeOCR,
		"scan":      ModeOCR,
	}

	if m, ok := synonyms[normalized]; ok {
		return m, true
	}

	for _, m := range allModes {
		if normalized == string(m) {
			return m, true
		}
	}

	return ModeAuto, false
}
