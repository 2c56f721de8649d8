// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selector

import (
	"sort"
	"strings"

	"github.com/pdiddy/casedeck/pkg/types"
)

// sectorBonus is added when the entry's sector string appears verbatim in
// the profile description.
const sectorBonus = 2

// rankByOverlap scores every catalog entry against the profile description
// and returns the top 4 ids. Identical input always yields identical
// output: scores tie-break on catalog insertion order.
func rankByOverlap(description string, cases []types.CaseStudy) []string {
	words := tokenize(description)

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(cases))
	for i, cs := range cases {
		ranked[i] = scored{index: i, score: overlapScore(words, cs, description)}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	ids := make([]string, 0, types.SelectionSize)
	for _, r := range ranked[:types.SelectionSize] {
		ids = append(ids, cases[r.index].ID)
	}
	return ids
}

// overlapScore counts shared tokens between the profile word set and the
// entry's sector plus summary, with a fixed bonus for a verbatim sector
// mention. A zero score is still a valid rank.
func overlapScore(profileWords map[string]bool, cs types.CaseStudy, description string) int {
	entryWords := tokenize(string(cs.Sector) + " " + cs.Summary)
	score := 0
	for w := range entryWords {
		if profileWords[w] {
			score++
		}
	}
	if strings.Contains(strings.ToLower(description), strings.ToLower(string(cs.Sector))) {
		score += sectorBonus
	}
	return score
}

// tokenize lowercases text and splits it into a set of alphanumeric words.
func tokenize(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
