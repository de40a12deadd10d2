// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns a raw user term into ranked candidate search
// terms via translation, abbreviation expansion, and fuzzy matching against
// a synonym table. Normalize never returns an empty candidate list and
// never fails: every path terminates with at least the original term.
package normalize

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/suplementia/evidence-engine/internal/llm"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// expansionSystemPrompt is the fixed system prompt for translation and
// abbreviation expansion. The canonical examples anchor the output format;
// the model must answer with a bare JSON array of strings.
const expansionSystemPrompt = `You are a supplement and nutrition expert. Given a supplement search query, provide alternative search terms that might match the same supplement.

Provide, in order of relevance:
1. The English translation, if the query is in another language.
2. The full scientific name, if the query is an abbreviation.
3. Common alternative names.

Return ONLY a JSON array of strings ordered by relevance. Maximum 4 terms. Do not repeat the original query.

Examples:
- "NAC" -> ["N-Acetyl Cysteine", "N-Acetylcysteine", "Acetylcysteine"]
- "CoQ10" -> ["Coenzyme Q10", "Ubiquinone", "Ubidecarenone"]
- "HMB" -> ["beta-hydroxy beta-methylbutyrate", "hydroxymethylbutyrate"]
- "peptidos bioactivos" -> ["bioactive peptides", "bioactive peptide"]

Output only the JSON array, nothing else.`

// maxFuzzyDistance is the edit-distance ceiling for dictionary fuzzy
// matching.
const maxFuzzyDistance = 3

// Normalizer derives search candidates from raw user terms. The model
// client may be nil, in which case only the static dictionary and fuzzy
// matching are used.
type Normalizer struct {
	model  llm.Client
	cfg    types.NormalizeConfig
	logger *slog.Logger
}

// New builds a Normalizer. model may be nil to disable translation.
func New(model llm.Client, cfg types.NormalizeConfig, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 4
	}
	if cfg.TranslationTimeout <= 0 {
		cfg.TranslationTimeout = 8 * time.Second
	}
	return &Normalizer{model: model, cfg: cfg, logger: logger}
}

// Normalize returns ranked search candidates for term. The result is never
// empty and always ends with the original term as last-resort fallback;
// when no alternative is found the original is the sole candidate with
// confidence 1.0.
func (n *Normalizer) Normalize(ctx context.Context, term string) []types.SearchCandidate {
	original := sanitize(term)
	if original == "" {
		original = strings.TrimSpace(term)
	}
	if original == "" {
		return []types.SearchCandidate{{Term: "", Provenance: types.ProvenanceOriginal, Confidence: 1.0}}
	}

	var alternatives []types.SearchCandidate

	if looksAbbreviated(original) || looksNonEnglish(original) {
		alternatives = n.expandWithModel(ctx, original)
	}
	if len(alternatives) == 0 {
		alternatives = dictionaryCandidates(original)
	}
	if len(alternatives) == 0 {
		alternatives = fuzzyCandidates(original)
	}

	return assemble(original, alternatives, n.cfg.MaxCandidates)
}

// expandWithModel asks the inference endpoint for translations and
// expansions under a bounded timeout. Any failure returns nil so the
// caller falls back to the dictionary.
func (n *Normalizer) expandWithModel(ctx context.Context, term string) []types.SearchCandidate {
	if n.model == nil || n.cfg.DisableTranslation {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.TranslationTimeout)
	defer cancel()

	raw, err := n.model.Infer(ctx, expansionSystemPrompt, `Query: "`+term+`"`)
	if err != nil {
		n.logger.Warn("query expansion failed, falling back to dictionary",
			"term", term, "error", err)
		return nil
	}

	var terms []string
	if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &terms); err != nil {
		n.logger.Warn("query expansion returned malformed JSON", "term", term, "error", err)
		return nil
	}

	provenance := types.ProvenanceTranslation
	if looksAbbreviated(term) {
		provenance = types.ProvenanceAbbreviation
	}

	confidence := 0.95
	var out []types.SearchCandidate
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || strings.EqualFold(t, term) {
			continue
		}
		out = append(out, types.SearchCandidate{Term: t, Provenance: provenance, Confidence: confidence})
		confidence -= 0.1
		if confidence < 0.3 {
			confidence = 0.3
		}
	}
	return out
}

// dictionaryCandidates looks the term up in the static synonym table.
func dictionaryCandidates(term string) []types.SearchCandidate {
	entries, ok := dictionary[strings.ToLower(term)]
	if !ok {
		return nil
	}
	confidence := 0.9
	out := make([]types.SearchCandidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.SearchCandidate{Term: e.term, Provenance: e.provenance, Confidence: confidence})
		confidence -= 0.1
	}
	return out
}

// fuzzyCandidates matches the term against dictionary keys within the
// edit-distance ceiling, then returns that key's alternatives.
func fuzzyCandidates(term string) []types.SearchCandidate {
	lower := strings.ToLower(term)

	bestKey := ""
	bestDist := maxFuzzyDistance + 1
	for key := range dictionary {
		d := levenshtein.ComputeDistance(lower, key)
		if d < bestDist || (d == bestDist && key < bestKey) {
			bestKey, bestDist = key, d
		}
	}
	if bestDist > maxFuzzyDistance || bestDist == 0 {
		return nil
	}

	var out []types.SearchCandidate
	out = append(out, types.SearchCandidate{Term: bestKey, Provenance: types.ProvenanceFuzzyMatch, Confidence: 0.6})
	for _, e := range dictionary[bestKey] {
		out = append(out, types.SearchCandidate{Term: e.term, Provenance: types.ProvenanceFuzzyMatch, Confidence: 0.5})
		break
	}
	return out
}

// assemble deduplicates the alternatives, caps the list, and appends the
// original term as the guaranteed fallback.
func assemble(original string, alternatives []types.SearchCandidate, maxCandidates int) []types.SearchCandidate {
	seen := map[string]bool{strings.ToLower(original): true}
	var out []types.SearchCandidate

	for _, c := range alternatives {
		key := strings.ToLower(c.Term)
		if c.Term == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == maxCandidates-1 {
			break
		}
	}

	if len(out) == 0 {
		return []types.SearchCandidate{{Term: original, Provenance: types.ProvenanceOriginal, Confidence: 1.0}}
	}

	// The original rides along with a confidence below the last alternative.
	last := out[len(out)-1].Confidence
	fallback := last - 0.1
	if fallback < 0.1 {
		fallback = 0.1
	}
	return append(out, types.SearchCandidate{Term: original, Provenance: types.ProvenanceOriginal, Confidence: fallback})
}
