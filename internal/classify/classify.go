// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify labels each study positive, negative, or neutral with
// respect to the supplement under analysis. Classification is partial-
// failure tolerant: a study whose classification fails lands in neutral
// with zero confidence instead of failing the ranking.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/suplementia/evidence-engine/internal/llm"
	"github.com/suplementia/evidence-engine/internal/retry"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// Classifier labels a single study. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Classify(ctx context.Context, supplement string, study types.Study) (types.SentimentResult, error)
}

// classifySystemPrompt instructs the model to judge the study conclusion.
const classifySystemPrompt = `You are a clinical evidence analyst. Given a study title and abstract about a dietary supplement, decide whether the study's findings support the supplement's effectiveness (positive), contradict it (negative), or are inconclusive/unrelated (neutral).

Respond with ONLY a JSON object:
{"label": "positive"|"negative"|"neutral", "confidence": 0.0-1.0, "rationale": "one short sentence"}

Base the label on the study's own conclusion, not on your prior knowledge of the supplement.`

// modelVerdict is the JSON shape the model must return.
type modelVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// LLMClassifier classifies via the inference endpoint with retries.
type LLMClassifier struct {
	model  llm.Client
	policy retry.Policy
	cfg    types.ClassifyConfig
}

// NewLLM builds an LLMClassifier.
func NewLLM(model llm.Client, cfg types.ClassifyConfig) *LLMClassifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &LLMClassifier{
		model:  model,
		policy: retry.Policy{MaxAttempts: cfg.MaxRetries},
		cfg:    cfg,
	}
}

// Classify labels one study. Transient endpoint failures retry with
// backoff; malformed output is a permanent failure for this study.
func (c *LLMClassifier) Classify(ctx context.Context, supplement string, study types.Study) (types.SentimentResult, error) {
	prompt := buildPrompt(supplement, study)

	verdict, err := retry.Do(ctx, c.policy, func() (modelVerdict, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		raw, err := c.model.Infer(callCtx, classifySystemPrompt, prompt)
		if err != nil {
			return modelVerdict{}, err
		}

		var v modelVerdict
		if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &v); err != nil {
			return modelVerdict{}, retry.Permanent(fmt.Errorf("malformed classification: %w", err))
		}
		return v, nil
	})
	if err != nil {
		return types.SentimentResult{}, err
	}

	label, ok := parseLabel(verdict.Label)
	if !ok {
		return types.SentimentResult{}, fmt.Errorf("unknown sentiment label %q", verdict.Label)
	}

	return types.SentimentResult{
		PMID:       study.PMID,
		Label:      label,
		Confidence: clamp01(verdict.Confidence),
		Rationale:  strings.TrimSpace(verdict.Rationale),
	}, nil
}

func buildPrompt(supplement string, study types.Study) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Supplement: %s\n", supplement)
	fmt.Fprintf(&sb, "Title: %s\n", study.Title)
	if study.Abstract != "" {
		fmt.Fprintf(&sb, "Abstract: %s\n", study.Abstract)
	}
	return sb.String()
}

func parseLabel(s string) (types.SentimentLabel, bool) {
	switch types.SentimentLabel(strings.ToLower(strings.TrimSpace(s))) {
	case types.SentimentPositive:
		return types.SentimentPositive, true
	case types.SentimentNegative:
		return types.SentimentNegative, true
	case types.SentimentNeutral:
		return types.SentimentNeutral, true
	default:
		return "", false
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ClassifyAll classifies every study through a worker pool bounded at
// maxConcurrent in-flight calls, as backpressure against the endpoint's
// throughput and cost caps. Results keep the input order; failed studies
// degrade to neutral with zero confidence.
func ClassifyAll(ctx context.Context, c Classifier, supplement string, studies []types.Study, maxConcurrent int, logger *slog.Logger) []types.SentimentResult {
	if logger == nil {
		logger = slog.Default()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	results := make([]types.SentimentResult, len(studies))

	pool, err := ants.NewPool(maxConcurrent)
	if err != nil {
		logger.Warn("worker pool unavailable, degrading all classifications", "error", err)
		for i, s := range studies {
			results[i] = types.NeutralSentiment(s.PMID)
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, study := range studies {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			r, err := c.Classify(ctx, supplement, study)
			if err != nil {
				logger.Warn("classification degraded to neutral",
					"pmid", study.PMID, "error", err)
				r = types.NeutralSentiment(study.PMID)
			}
			results[i] = r
		})
		if submitErr != nil {
			results[i] = types.NeutralSentiment(study.PMID)
			wg.Done()
		}
	}
	wg.Wait()

	return results
}
