// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/suplementia/evidence-engine/internal/llm"
	"github.com/suplementia/evidence-engine/pkg/types"
)

func newTestNormalizer(model llm.Client) *Normalizer {
	return New(model, types.NormalizeConfig{}, nil)
}

func TestNormalizeNeverEmpty(t *testing.T) {
	n := newTestNormalizer(nil)

	for _, term := range []string{"", "   ", "creatine", "xyzzyqqwww", "HMB"} {
		got := n.Normalize(context.Background(), term)
		if len(got) == 0 {
			t.Errorf("Normalize(%q) returned empty candidate list", term)
		}
		last := got[len(got)-1]
		if last.Provenance != types.ProvenanceOriginal {
			t.Errorf("Normalize(%q) last candidate provenance = %q, want original", term, last.Provenance)
		}
	}
}

func TestNormalizeUnknownTermIsSoleOriginal(t *testing.T) {
	n := newTestNormalizer(nil)

	got := n.Normalize(context.Background(), "xyzzyqqwww")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (%v)", len(got), got)
	}
	if got[0].Term != "xyzzyqqwww" || got[0].Confidence != 1.0 {
		t.Errorf("sole candidate = %+v, want original with confidence 1.0", got[0])
	}
}

func TestNormalizeAbbreviationFromDictionary(t *testing.T) {
	n := newTestNormalizer(nil)

	got := n.Normalize(context.Background(), "HMB")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(got), got)
	}
	if got[0].Term != "beta-hydroxy beta-methylbutyrate" {
		t.Errorf("first candidate = %q, want expansion", got[0].Term)
	}
	if got[0].Provenance != types.ProvenanceAbbreviation {
		t.Errorf("provenance = %q", got[0].Provenance)
	}
	if got[1].Term != "HMB" {
		t.Errorf("last candidate = %q, want original term", got[1].Term)
	}
	if got[0].Confidence <= got[1].Confidence {
		t.Errorf("expansion confidence %f should exceed original %f", got[0].Confidence, got[1].Confidence)
	}
}

func TestNormalizeSpanishTranslation(t *testing.T) {
	n := newTestNormalizer(nil)

	got := n.Normalize(context.Background(), "creatina")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(got), got)
	}
	if got[0].Term != "creatine" || got[0].Provenance != types.ProvenanceTranslation {
		t.Errorf("first candidate = %+v, want creatine/translation", got[0])
	}
}

func TestNormalizeModelExpansion(t *testing.T) {
	var gotUser string
	model := llm.InferFunc(func(_ context.Context, _, user string) (string, error) {
		gotUser = user
		return `["N-Acetyl Cysteine", "N-Acetylcysteine", "Acetylcysteine"]`, nil
	})
	n := newTestNormalizer(model)

	got := n.Normalize(context.Background(), "NAC")
	if gotUser == "" {
		t.Fatal("model was never called for an abbreviation")
	}
	// 3 expansions capped at maxCandidates-1, plus the original.
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4 (%v)", len(got), got)
	}
	if got[0].Term != "N-Acetyl Cysteine" || got[0].Provenance != types.ProvenanceAbbreviation {
		t.Errorf("first candidate = %+v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Errorf("confidence not descending at %d: %v", i, got)
		}
	}
	if got[3].Term != "NAC" || got[3].Provenance != types.ProvenanceOriginal {
		t.Errorf("last candidate = %+v, want original", got[3])
	}
}

func TestNormalizeModelFailureFallsBackToDictionary(t *testing.T) {
	model := llm.InferFunc(func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("endpoint down")
	})
	n := newTestNormalizer(model)

	got := n.Normalize(context.Background(), "NAC")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (%v)", len(got), got)
	}
	if got[0].Term != "n-acetyl cysteine" {
		t.Errorf("first candidate = %q, want dictionary expansion", got[0].Term)
	}
}

func TestNormalizeModelMalformedJSONFallsBack(t *testing.T) {
	model := llm.InferFunc(func(_ context.Context, _, _ string) (string, error) {
		return "Sure! Here are some terms:", nil
	})
	n := newTestNormalizer(model)

	got := n.Normalize(context.Background(), "coq10")
	if got[0].Term != "coenzyme q10" {
		t.Errorf("first candidate = %q, want dictionary fallback", got[0].Term)
	}
}

func TestNormalizeModelCodeFences(t *testing.T) {
	model := llm.InferFunc(func(_ context.Context, _, _ string) (string, error) {
		return "```json\n[\"Coenzyme Q10\"]\n```", nil
	})
	n := newTestNormalizer(model)

	got := n.Normalize(context.Background(), "CoQ10")
	if got[0].Term != "Coenzyme Q10" {
		t.Errorf("first candidate = %q, want fenced JSON to parse", got[0].Term)
	}
}

func TestNormalizeDisableTranslation(t *testing.T) {
	model := llm.InferFunc(func(_ context.Context, _, _ string) (string, error) {
		t.Fatal("model must not be called when translation is disabled")
		return "", nil
	})
	n := New(model, types.NormalizeConfig{DisableTranslation: true}, nil)

	got := n.Normalize(context.Background(), "NAC")
	if got[0].Term != "n-acetyl cysteine" {
		t.Errorf("first candidate = %q, want dictionary expansion", got[0].Term)
	}
}

func TestNormalizeFuzzyMatch(t *testing.T) {
	n := newTestNormalizer(nil)

	// One deletion away from "ashwagandha".
	got := n.Normalize(context.Background(), "ashwaganda")
	if len(got) < 2 {
		t.Fatalf("len = %d, want fuzzy candidates (%v)", len(got), got)
	}
	if got[0].Term != "ashwagandha" || got[0].Provenance != types.ProvenanceFuzzyMatch {
		t.Errorf("first candidate = %+v, want fuzzy-corrected key", got[0])
	}
}

func TestNormalizeStripsSupplementSuffix(t *testing.T) {
	n := newTestNormalizer(nil)

	got := n.Normalize(context.Background(), "creatina supplement")
	last := got[len(got)-1]
	if last.Term != "creatina" {
		t.Errorf("original candidate = %q, want suffix stripped", last.Term)
	}
	if got[0].Term != "creatine" {
		t.Errorf("first candidate = %q, want translation of stripped term", got[0].Term)
	}
}

func TestNormalizeModelEchoAndDuplicatesDropped(t *testing.T) {
	model := llm.InferFunc(func(_ context.Context, _, _ string) (string, error) {
		return `["NAC", "n-acetyl cysteine", "N-Acetyl Cysteine", ""]`, nil
	})
	n := newTestNormalizer(model)

	got := n.Normalize(context.Background(), "NAC")
	// Echo of the query is dropped inside expansion, the case-duplicate and
	// the empty string are dropped during assembly.
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(got), got)
	}
	if got[0].Term != "n-acetyl cysteine" {
		t.Errorf("first candidate = %q", got[0].Term)
	}
}
