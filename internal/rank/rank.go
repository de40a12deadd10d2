// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank partitions classified studies into a balanced verdict: the
// top five positive and top five negative studies, a consensus derived from
// score-weighted mass, and a 0-100 confidence score. The consensus and
// confidence are heuristic aggregates, not a statistical meta-analysis; the
// thresholds live in RankerConfig, not in code.
package rank

import (
	"sort"

	"github.com/suplementia/evidence-engine/internal/score"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// Rank produces the balanced ranking for one supplement's evidence set.
// scores and sentiments are positional: scores[i] and sentiments[i] belong
// to studies[i].
func Rank(studies []types.Study, scores []types.ScoreBreakdown, sentiments []types.SentimentResult, cfg types.RankerConfig) types.RankingResult {
	if cfg.StrongRatio <= 0 {
		cfg.StrongRatio = 3.0
	}
	if cfg.ModerateRatio <= 0 {
		cfg.ModerateRatio = 1.6
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}

	var positive, negative, neutral []types.RankedStudy
	for i, s := range studies {
		rs := types.RankedStudy{Study: s, Score: scores[i], Sentiment: sentiments[i]}
		switch sentiments[i].Label {
		case types.SentimentPositive:
			positive = append(positive, rs)
		case types.SentimentNegative:
			negative = append(negative, rs)
		default:
			neutral = append(neutral, rs)
		}
	}

	sortRanked(positive)
	sortRanked(negative)

	totals := types.RankTotals{
		Positive: len(positive),
		Negative: len(negative),
		Neutral:  len(neutral),
	}

	posMass := mass(positive)
	negMass := mass(negative)

	selectedPos := top(positive, cfg.TopN)
	selectedNeg := top(negative, cfg.TopN)

	return types.RankingResult{
		Positive:        selectedPos,
		Negative:        selectedNeg,
		Consensus:       consensus(posMass, negMass, cfg),
		ConfidenceScore: confidence(totals, selectedPos, selectedNeg, posMass, negMass),
		EvidenceGrade:   types.EvidenceGradeFor(totals.Total()),
		Totals:          totals,
	}
}

func sortRanked(studies []types.RankedStudy) {
	sort.SliceStable(studies, func(i, j int) bool {
		return score.Less(studies[i], studies[j])
	})
}

// top returns the first n studies without padding: fewer when the partition
// is smaller, never filled with lower-quality studies from elsewhere.
func top(studies []types.RankedStudy, n int) []types.RankedStudy {
	if len(studies) > n {
		studies = studies[:n]
	}
	out := make([]types.RankedStudy, len(studies))
	copy(out, studies)
	return out
}

// mass is the score-weighted weight of one partition: the sum of study
// totals, so one strong meta-analysis can outweigh several weak trials.
func mass(studies []types.RankedStudy) float64 {
	var m float64
	for _, s := range studies {
		m += float64(s.Score.Total)
	}
	return m
}

// consensus compares the partitions' score mass against the configured
// ratios. Comparable mass, or no directional evidence at all, is mixed.
func consensus(posMass, negMass float64, cfg types.RankerConfig) types.Consensus {
	switch {
	case posMass == 0 && negMass == 0:
		return types.ConsensusMixed
	case negMass == 0:
		return types.ConsensusStrongPositive
	case posMass == 0:
		return types.ConsensusStrongNegative
	}

	switch ratio := posMass / negMass; {
	case ratio >= cfg.StrongRatio:
		return types.ConsensusStrongPositive
	case ratio >= cfg.ModerateRatio:
		return types.ConsensusModeratePositive
	case 1/ratio >= cfg.StrongRatio:
		return types.ConsensusStrongNegative
	case 1/ratio >= cfg.ModerateRatio:
		return types.ConsensusModerateNegative
	default:
		return types.ConsensusMixed
	}
}

// tierPoints weights the average quality of the selected studies.
var tierPoints = map[types.QualityTier]int{
	types.TierExceptional: 30,
	types.TierHigh:        22,
	types.TierModerate:    12,
	types.TierLow:         5,
}

// confidence combines three additive parts: evidence volume (0-40),
// average selected quality (0-30), and positive/negative agreement (0-30).
// Small evidence sets and 50/50 splits both pull the score down.
func confidence(totals types.RankTotals, selectedPos, selectedNeg []types.RankedStudy, posMass, negMass float64) int {
	volume := totals.Total() * 4
	if volume > 40 {
		volume = 40
	}

	quality := 0
	if n := len(selectedPos) + len(selectedNeg); n > 0 {
		sum := 0
		for _, s := range selectedPos {
			sum += tierPoints[s.Score.Tier]
		}
		for _, s := range selectedNeg {
			sum += tierPoints[s.Score.Tier]
		}
		quality = sum / n
	}

	agreement := 0
	if total := posMass + negMass; total > 0 {
		dominant := posMass
		if negMass > dominant {
			dominant = negMass
		}
		// 50/50 split -> 0, unanimous -> 30.
		agreement = int((dominant/total - 0.5) * 2 * 30)
	}

	c := volume + quality + agreement
	if c > 100 {
		c = 100
	}
	if c < 0 {
		c = 0
	}
	return c
}
