// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QualityTier buckets a numeric study score.
type QualityTier string

const (
	TierExceptional QualityTier = "exceptional" // total >= 90
	TierHigh        QualityTier = "high"        // total >= 70
	TierModerate    QualityTier = "moderate"    // total >= 40
	TierLow         QualityTier = "low"         // total < 40
)

// ScoreBreakdown is the deterministic 0-100 score of a single study,
// decomposed into its scoring dimensions. It is a pure function of the
// study attributes and the current year.
type ScoreBreakdown struct {
	// Methodology contributes 0-50 points based on study design rank.
	Methodology int `json:"methodology" yaml:"methodology"`

	// Recency contributes 0-20 points, banded by publication age.
	Recency int `json:"recency" yaml:"recency"`

	// SampleSize contributes 0-20 points, banded by participant count.
	SampleSize int `json:"sample_size" yaml:"sample_size"`

	// Journal contributes 0-5 points for top-tier venues.
	Journal int `json:"journal" yaml:"journal"`

	// Total is the clipped sum in [0, 100].
	Total int `json:"total" yaml:"total"`

	// Tier is derived from Total via fixed thresholds.
	Tier QualityTier `json:"tier" yaml:"tier"`
}

// TierFor maps a total score onto its quality tier.
func TierFor(total int) QualityTier {
	switch {
	case total >= 90:
		return TierExceptional
	case total >= 70:
		return TierHigh
	case total >= 40:
		return TierModerate
	default:
		return TierLow
	}
}
