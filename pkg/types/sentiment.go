// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SentimentLabel is the direction of a study's conclusion about the
// supplement under analysis.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// SentimentResult is the per-study classification outcome. A failed or
// unavailable classification degrades to neutral with zero confidence
// instead of aborting the pipeline.
type SentimentResult struct {
	PMID       string         `json:"pmid" yaml:"pmid"`
	Label      SentimentLabel `json:"label" yaml:"label"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Rationale  string         `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// NeutralSentiment returns the degraded classification used when the
// classifier is unavailable or exhausted its retries.
func NeutralSentiment(pmid string) SentimentResult {
	return SentimentResult{
		PMID:      pmid,
		Label:     SentimentNeutral,
		Rationale: "classification unavailable",
	}
}
