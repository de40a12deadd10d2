// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package strategy

import (
	"fmt"
	"strings"

	"github.com/suplementia/evidence-engine/pkg/types"
)

// negativeResultKeywords is the keyword disjunction of the negative-result
// strategy. Kept as a table so the predicate stays independently testable
// and decoupled from query assembly.
var negativeResultKeywords = []string{
	"no effect",
	"ineffective",
	"no significant difference",
	"did not improve",
	"no significant effect",
	"failed to improve",
}

// MentionsNegativeResult reports whether text contains one of the
// negative-result phrases. Used to sanity-check strategy output in tests
// and diagnostics; the real filtering happens server-side in the query.
func MentionsNegativeResult(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range negativeResultKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// scopedTerm builds the base PubMed term for a candidate. Short terms are
// field-scoped to Title/Abstract for precision; longer phrases keep a
// broader supplement-scoped query. With proximity enabled, multi-word terms
// use a proximity-scoped phrase instead of an exact one.
func scopedTerm(term string, proximity bool) string {
	term = strings.TrimSpace(term)
	words := strings.Fields(term)

	if len(words) > 1 && proximity {
		return fmt.Sprintf(`"%s"[Title/Abstract:~3]`, term)
	}
	if len(words) <= 3 {
		return fmt.Sprintf(`"%s"[Title/Abstract]`, term)
	}
	return fmt.Sprintf(`%s AND (supplement[Title/Abstract] OR supplementation[Title/Abstract])`, term)
}

// A queryBuilder produces the full ESearch term of one strategy. base is
// the session reference ("#1") of the candidate's base result set.
type queryBuilder func(base string) string

// strategySpec names one query strategy.
type strategySpec struct {
	name  string
	build queryBuilder
}

// strategiesFor returns the strategy set for one candidate term. All
// strategies intersect against the base result set via the session handle.
func strategiesFor(cfg types.SearchConfig, currentYear int) []strategySpec {
	recentFrom := currentYear - cfg.RecentYears

	return []strategySpec{
		{
			name: "high_quality",
			build: func(base string) string {
				return base + ` AND (randomized controlled trial[Publication Type] OR meta-analysis[Publication Type] OR systematic review[Publication Type])`
			},
		},
		{
			name: "recent",
			build: func(base string) string {
				return fmt.Sprintf(`%s AND ("%d"[Date - Publication] : "3000"[Date - Publication])`, base, recentFrom)
			},
		},
		{
			name: "registry",
			build: func(base string) string {
				return base + ` AND "Cochrane Database Syst Rev"[Journal]`
			},
		},
		{
			name: "negative",
			build: func(base string) string {
				clauses := make([]string, len(negativeResultKeywords))
				for i, kw := range negativeResultKeywords {
					clauses[i] = fmt.Sprintf(`"%s"[Title/Abstract]`, kw)
				}
				return fmt.Sprintf(`%s AND (%s) AND (clinical trial[Publication Type] OR randomized controlled trial[Publication Type])`,
					base, strings.Join(clauses, " OR "))
			},
		},
	}
}

// rctFilter narrows a term to randomized controlled trials.
func rctFilter(term string) string {
	return term + ` AND randomized controlled trial[Publication Type]`
}
