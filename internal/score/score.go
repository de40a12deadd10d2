// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes the deterministic 0-100 study score. Everything
// here is a pure function of the study attributes and the given date; no
// I/O, no global state, reproducible across calls.
package score

import (
	"strings"
	"time"

	"github.com/suplementia/evidence-engine/pkg/types"
)

// Methodology point bands, descending rank. A registry-grade systematic
// review outranks a plain meta-analysis.
const (
	pointsRegistryReview   = 50
	pointsMetaAnalysis     = 40
	pointsSystematicReview = 35
	pointsRCT              = 30
	pointsCohort           = 20
	pointsCaseReport       = 10
)

// topTierJournals contribute the 5 journal points. Matching is normalized
// substring containment so "The Lancet" and "Lancet" both hit.
var topTierJournals = []string{
	"new england journal of medicine",
	"lancet",
	"jama",
	"bmj",
	"annals of internal medicine",
	"nature",
	"science",
	"cochrane database of systematic reviews",
	"american journal of clinical nutrition",
	"plos medicine",
}

// Score computes the breakdown for one study as of now. Identical inputs
// within the same day produce identical output.
func Score(study types.Study, now time.Time) types.ScoreBreakdown {
	b := types.ScoreBreakdown{
		Methodology: methodologyPoints(study),
		Recency:     recencyPoints(study.Year, now.Year()),
		SampleSize:  samplePoints(study.Participants),
		Journal:     journalPoints(study.Journal),
	}

	total := b.Methodology + b.Recency + b.SampleSize + b.Journal
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	b.Total = total
	b.Tier = types.TierFor(total)
	return b
}

func methodologyPoints(study types.Study) int {
	switch study.Type {
	case types.TypeSystematicReview:
		if study.FromRegistry {
			return pointsRegistryReview
		}
		return pointsSystematicReview
	case types.TypeMetaAnalysis:
		return pointsMetaAnalysis
	case types.TypeRCT:
		return pointsRCT
	case types.TypeCohort:
		return pointsCohort
	case types.TypeCaseReport:
		return pointsCaseReport
	default:
		return 0
	}
}

// recencyPoints decays in bands; an unknown year earns nothing and the
// result is never negative.
func recencyPoints(year, currentYear int) int {
	if year <= 0 {
		return 0
	}
	age := currentYear - year
	if age < 0 {
		// Ahead-of-print records dated next year.
		age = 0
	}
	switch {
	case age < 2:
		return 20
	case age < 5:
		return 15
	case age < 10:
		return 10
	default:
		return 0
	}
}

func samplePoints(participants int) int {
	switch {
	case participants >= 1000:
		return 20
	case participants >= 500:
		return 15
	case participants >= 100:
		return 10
	case participants >= 30:
		return 5
	default:
		return 0
	}
}

func journalPoints(journal string) int {
	lower := strings.ToLower(journal)
	for _, top := range topTierJournals {
		if strings.Contains(lower, top) {
			return 5
		}
	}
	return 0
}

// Less is the canonical ordering for scored studies: higher total first,
// ties broken by more recent year, then larger sample, then lexicographic
// PMID for reproducibility.
func Less(a, b types.RankedStudy) bool {
	if a.Score.Total != b.Score.Total {
		return a.Score.Total > b.Score.Total
	}
	if a.Study.Year != b.Study.Year {
		return a.Study.Year > b.Study.Year
	}
	if a.Study.Participants != b.Study.Participants {
		return a.Study.Participants > b.Study.Participants
	}
	return a.Study.PMID < b.Study.PMID
}
