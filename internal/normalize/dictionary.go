// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "github.com/suplementia/evidence-engine/pkg/types"

// dictEntry is one static alternative for a known raw term.
type dictEntry struct {
	term       string
	provenance types.Provenance
}

// dictionary maps lowercased raw terms to known English alternatives,
// ordered by relevance. It backs the offline path when the model is
// disabled or failing, and seeds fuzzy matching.
var dictionary = map[string][]dictEntry{
	// Abbreviations.
	"hmb": {
		{"beta-hydroxy beta-methylbutyrate", types.ProvenanceAbbreviation},
	},
	"nac": {
		{"n-acetyl cysteine", types.ProvenanceAbbreviation},
		{"n-acetylcysteine", types.ProvenanceAbbreviation},
	},
	"coq10": {
		{"coenzyme q10", types.ProvenanceAbbreviation},
		{"ubiquinone", types.ProvenanceSynonym},
	},
	"5-htp": {
		{"5-hydroxytryptophan", types.ProvenanceAbbreviation},
	},
	"bcaa": {
		{"branched-chain amino acids", types.ProvenanceAbbreviation},
	},
	"msm": {
		{"methylsulfonylmethane", types.ProvenanceAbbreviation},
	},
	"ala": {
		{"alpha-lipoic acid", types.ProvenanceAbbreviation},
	},
	"gaba": {
		{"gamma-aminobutyric acid", types.ProvenanceAbbreviation},
	},
	"epa": {
		{"eicosapentaenoic acid", types.ProvenanceAbbreviation},
	},
	"dha": {
		{"docosahexaenoic acid", types.ProvenanceAbbreviation},
	},

	// Translations (Spanish / Portuguese).
	"creatina": {
		{"creatine", types.ProvenanceTranslation},
	},
	"magnesio": {
		{"magnesium", types.ProvenanceTranslation},
	},
	"cafeína": {
		{"caffeine", types.ProvenanceTranslation},
	},
	"cafeina": {
		{"caffeine", types.ProvenanceTranslation},
	},
	"cúrcuma": {
		{"turmeric", types.ProvenanceTranslation},
		{"curcumin", types.ProvenanceSynonym},
	},
	"curcuma": {
		{"turmeric", types.ProvenanceTranslation},
		{"curcumin", types.ProvenanceSynonym},
	},
	"melatonina": {
		{"melatonin", types.ProvenanceTranslation},
	},
	"proteína": {
		{"protein", types.ProvenanceTranslation},
	},
	"colágeno": {
		{"collagen", types.ProvenanceTranslation},
	},
	"hierro": {
		{"iron", types.ProvenanceTranslation},
	},
	"zinc": {
		{"zinc", types.ProvenanceSynonym},
	},
	"vitamina d": {
		{"vitamin d", types.ProvenanceTranslation},
		{"cholecalciferol", types.ProvenanceScientific},
	},
	"vitamina c": {
		{"vitamin c", types.ProvenanceTranslation},
		{"ascorbic acid", types.ProvenanceScientific},
	},

	// Scientific names.
	"ashwagandha": {
		{"withania somnifera", types.ProvenanceScientific},
	},
	"rhodiola": {
		{"rhodiola rosea", types.ProvenanceScientific},
	},
	"turmeric": {
		{"curcumin", types.ProvenanceSynonym},
		{"curcuma longa", types.ProvenanceScientific},
	},
	"fish oil": {
		{"omega-3 fatty acids", types.ProvenanceSynonym},
	},
	"vitamin d": {
		{"cholecalciferol", types.ProvenanceScientific},
	},
}
