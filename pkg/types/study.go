// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine pipeline.
package types

import "fmt"

// StudyType classifies the methodology of a study.
type StudyType string

const (
	TypeMetaAnalysis     StudyType = "meta-analysis"
	TypeSystematicReview StudyType = "systematic-review"
	TypeRCT              StudyType = "rct"
	TypeCohort           StudyType = "cohort"
	TypeCaseReport       StudyType = "case-report"
	TypeOther            StudyType = "other"
)

// Study represents one literature record fetched from PubMed. A Study is
// immutable once fetched; identity is the PMID.
type Study struct {
	// PMID is the PubMed unique identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Abstract is the article abstract, empty when the record carries none.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Year is the publication year (0 when unknown).
	Year int `json:"year" yaml:"year"`

	// Journal is the full journal title.
	Journal string `json:"journal" yaml:"journal"`

	// Type is the study methodology derived from PubMed publication types.
	Type StudyType `json:"study_type" yaml:"study_type"`

	// Participants is the participant count parsed from the abstract
	// (0 when unknown).
	Participants int `json:"participants,omitempty" yaml:"participants,omitempty"`

	// FromRegistry marks systematic reviews from a standardized-methodology
	// registry (the Cochrane library).
	FromRegistry bool `json:"from_registry,omitempty" yaml:"from_registry,omitempty"`

	// URL is the canonical PubMed record URL.
	URL string `json:"url" yaml:"url"`
}

// RecordURL returns the canonical PubMed URL for a PMID.
func RecordURL(pmid string) string {
	return fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid)
}
