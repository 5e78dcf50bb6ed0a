package containers

import (
	"regexp"
	"sort"
)

var (
	// A real container's snippet mentions equipment vocabulary or a size
	// class; bare tokens next to unrelated tables carry neither.
	rePlausible = regexp.MustCompile(`(?i)HIGH\s+CUBE|CONTAINER|SEAL|PALLET|[24]0'|[24]0FT`)

	reScoreHighCube = regexp.MustCompile(`(?i)HIGH\s+CUBE`)
	reScoreSeal     = regexp.MustCompile(`(?i)SEAL`)
	reScorePallet   = regexp.MustCompile(`(?i)PALLET`)
)

func isPlausible(snippet string) bool {
	return rePlausible.MatchString(snippet)
}

// score weighs how strongly a candidate's snippet reads like a container
// table row. Keyword evidence outweighs parsed subfields so that a snippet
// with the full vocabulary beats one that merely happened to parse.
func score(c candidate) int {
	s := 0
	if reScoreHighCube.MatchString(c.Context) {
		s += 3
	}
	if reScoreSeal.MatchString(c.Context) {
		s += 2
	}
	if reScorePallet.MatchString(c.Context) {
		s += 1
	}
	if c.SealNumber != nil {
		s += 2
	}
	if c.PackageCount != nil {
		s += 1
	}
	return s
}

// reconcile trims the candidate set down to refCount when the caller knows
// the document's true container count: the highest-scoring candidates
// survive, ties broken by first discovery, and the survivors come back in
// discovery order.
func reconcile(cands []candidate, refCount int) []candidate {
	if refCount <= 0 || len(cands) <= refCount {
		return cands
	}

	ranked := make([]candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	ranked = ranked[:refCount]

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].seq < ranked[j].seq
	})
	return ranked
}
