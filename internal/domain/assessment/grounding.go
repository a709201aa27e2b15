package assessment

import (
	"regexp"
	"sort"
	"strings"
)

// MaxGroundingSnippets caps how many policy texts are linked to one risk.
const MaxGroundingSnippets = 2

// Tokens of this length or shorter are skipped as a stop-word proxy.
const minTokenLen = 3

var nonWord = regexp.MustCompile(`\W+`)

// GroundingState tells the renderer which variant of the grounding block to show.
type GroundingState string

const (
	GroundingLinked     GroundingState = "linked"
	GroundingUnlinked   GroundingState = "unlinked"
	GroundingNoPolicies GroundingState = "no_policies"
)

// PolicyMatch pairs a risk with its ranked policy snippets.
type PolicyMatch struct {
	Risk     RiskFinding    `json:"risk"`
	Snippets []string       `json:"snippets"`
	State    GroundingState `json:"state"`
}

// riskTokens lower-cases category+reason, splits on non-word runs and keeps the
// distinct tokens longer than minTokenLen.
func riskTokens(r RiskFinding) []string {
	text := strings.ToLower(r.Category + " " + r.Reason)
	seen := make(map[string]bool)
	var out []string
	for _, w := range nonWord.Split(text, -1) {
		if len(w) <= minTokenLen || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// GroundRisk returns up to two policy texts that share the most tokens with the
// risk. Matching is substring based, so "encrypt" hits "encryption". Ties keep
// input order. An empty result means nothing could be linked.
func GroundRisk(r RiskFinding, policies []string) []string {
	tokens := riskTokens(r)
	if len(tokens) == 0 || len(policies) == 0 {
		return []string{}
	}

	type scored struct {
		text string
		hits int
	}
	var candidates []scored
	for _, p := range policies {
		lower := strings.ToLower(p)
		hits := 0
		for _, t := range tokens {
			if strings.Contains(lower, t) {
				hits++
			}
		}
		if hits > 0 {
			candidates = append(candidates, scored{text: p, hits: hits})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].hits > candidates[j].hits
	})

	if len(candidates) > MaxGroundingSnippets {
		candidates = candidates[:MaxGroundingSnippets]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.text)
	}
	return out
}

// GroundRisks grounds every risk, keeping risks with no match as unlinked
// entries rather than dropping them.
func GroundRisks(risks []RiskFinding, policies []string) []PolicyMatch {
	out := make([]PolicyMatch, 0, len(risks))
	for _, r := range risks {
		m := PolicyMatch{Risk: r, Snippets: GroundRisk(r, policies)}
		switch {
		case len(m.Snippets) > 0:
			m.State = GroundingLinked
		case len(policies) == 0:
			m.State = GroundingNoPolicies
		default:
			m.State = GroundingUnlinked
		}
		out = append(out, m)
	}
	return out
}
