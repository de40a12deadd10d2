// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Consensus summarizes whether the evidence leans positive or negative.
type Consensus string

const (
	ConsensusStrongPositive   Consensus = "strong_positive"
	ConsensusModeratePositive Consensus = "moderate_positive"
	ConsensusMixed            Consensus = "mixed"
	ConsensusModerateNegative Consensus = "moderate_negative"
	ConsensusStrongNegative   Consensus = "strong_negative"
)

// RankedStudy pairs a study with its score and sentiment classification.
type RankedStudy struct {
	Study     Study           `json:"study" yaml:"study"`
	Score     ScoreBreakdown  `json:"score" yaml:"score"`
	Sentiment SentimentResult `json:"sentiment" yaml:"sentiment"`
}

// RankTotals counts studies per sentiment partition before top-N selection.
type RankTotals struct {
	Positive int `json:"positive" yaml:"positive"`
	Negative int `json:"negative" yaml:"negative"`
	Neutral  int `json:"neutral" yaml:"neutral"`
}

// Total returns the number of classified studies.
func (t RankTotals) Total() int {
	return t.Positive + t.Negative + t.Neutral
}

// RankingResult is the balanced "works for / doesn't work for" verdict for
// one supplement. It is derived from its source studies and scores and is
// never persisted independently of them.
//
// Consensus and ConfidenceScore are heuristic aggregates over the evidence,
// not a statistical meta-analysis.
type RankingResult struct {
	// Supplement is the normalized supplement name the caller asked about.
	Supplement string `json:"supplement" yaml:"supplement"`

	// SearchedTerm is the candidate term that produced the evidence set.
	SearchedTerm string `json:"searched_term" yaml:"searched_term"`

	// Positive and Negative hold at most five studies each, best first,
	// never padded with lower-quality filler.
	Positive []RankedStudy `json:"positive" yaml:"positive"`
	Negative []RankedStudy `json:"negative" yaml:"negative"`

	Consensus Consensus `json:"consensus" yaml:"consensus"`

	// ConfidenceScore is 0-100: evidence volume, average selected quality
	// tier, and positive/negative agreement combined.
	ConfidenceScore int `json:"confidence_score" yaml:"confidence_score"`

	// EvidenceGrade is a letter grade (A-E) derived from total evidence
	// volume.
	EvidenceGrade string `json:"evidence_grade" yaml:"evidence_grade"`

	Totals RankTotals `json:"totals" yaml:"totals"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// CacheEntry is one stored ranking with its lifecycle metadata.
type CacheEntry struct {
	Key         string        `json:"key" yaml:"key"`
	Result      RankingResult `json:"result" yaml:"result"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	ExpiresAt   time.Time     `json:"expires_at" yaml:"expires_at"`
	Quality     string        `json:"quality" yaml:"quality"`
	AccessCount int64         `json:"access_count" yaml:"access_count"`
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// RankOptions are the caller-facing options of the evidence ranking entry
// point.
type RankOptions struct {
	// MaxResults caps the number of studies fetched per candidate term.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MinStudies is the minimum evidence set size before a candidate term
	// is considered satisfied (default 3).
	MinStudies int `json:"min_studies" yaml:"min_studies"`

	// RCTOnly restricts the evidence set to randomized controlled trials.
	RCTOnly bool `json:"rct_only" yaml:"rct_only"`

	// YearFrom and YearTo bound the publication window (0 = unbounded).
	YearFrom int `json:"year_from" yaml:"year_from"`
	YearTo   int `json:"year_to" yaml:"year_to"`

	// ForceRefresh bypasses cached results and regenerates.
	ForceRefresh bool `json:"force_refresh" yaml:"force_refresh"`
}

// EvidenceGradeFor maps total study volume onto a letter grade (A-E).
func EvidenceGradeFor(studyCount int) string {
	switch {
	case studyCount >= 100:
		return "A"
	case studyCount >= 50:
		return "B"
	case studyCount >= 10:
		return "C"
	case studyCount >= 3:
		return "D"
	default:
		return "E"
	}
}
