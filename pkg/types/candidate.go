// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Provenance records how a search candidate was derived from the raw term.
type Provenance string

const (
	ProvenanceTranslation  Provenance = "translation"
	ProvenanceSynonym      Provenance = "synonym"
	ProvenanceScientific   Provenance = "scientific_name"
	ProvenanceFuzzyMatch   Provenance = "fuzzy_match"
	ProvenanceAbbreviation Provenance = "abbreviation_expansion"
	ProvenanceOriginal     Provenance = "original"
)

// SearchCandidate is one normalized search term derived from user input.
// Candidates are ordered by descending confidence; the original term is
// always present as the last-resort fallback.
type SearchCandidate struct {
	Term       string     `json:"term" yaml:"term"`
	Provenance Provenance `json:"provenance" yaml:"provenance"`

	// Confidence is in [0, 1]. Downstream search tries candidates in
	// confidence order.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
