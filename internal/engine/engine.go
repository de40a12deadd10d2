// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine wires the evidence pipeline: normalizer, orchestrator,
// scorer, classifier, and ranker, memoized by the tiered cache. It exposes
// the single entry point callers use to get a balanced verdict for a
// supplement.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/suplementia/evidence-engine/internal/cache"
	"github.com/suplementia/evidence-engine/internal/classify"
	"github.com/suplementia/evidence-engine/internal/normalize"
	"github.com/suplementia/evidence-engine/internal/rank"
	"github.com/suplementia/evidence-engine/internal/score"
	"github.com/suplementia/evidence-engine/internal/strategy"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// maxQueryLength caps user input; anything longer is rejected outright.
const maxQueryLength = 200

// Engine runs the full evidence pipeline.
type Engine struct {
	normalizer   *normalize.Normalizer
	orchestrator *strategy.Orchestrator
	classifier   classify.Classifier
	cache        *cache.Cache
	cfg          types.EngineConfig
	logger       *slog.Logger

	// now is injectable so scoring stays reproducible in tests.
	now func() time.Time
}

// New builds an Engine from its stages.
func New(normalizer *normalize.Normalizer, orchestrator *strategy.Orchestrator, classifier classify.Classifier, evidenceCache *cache.Cache, cfg types.EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Defaults()
	return &Engine{
		normalizer:   normalizer,
		orchestrator: orchestrator,
		classifier:   classifier,
		cache:        evidenceCache,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// GetEvidenceRanking returns the balanced verdict for supplementName,
// serving from the cache when possible. Expected failure modes surface as
// typed errors: ValidationError for bad input, InsufficientEvidenceError
// when every candidate and fallback is exhausted below the study minimum.
func (e *Engine) GetEvidenceRanking(ctx context.Context, supplementName string, opts types.RankOptions) (types.RankingResult, cache.Source, error) {
	key, err := cacheKey(supplementName)
	if err != nil {
		return types.RankingResult{}, cache.SourceGenerated, err
	}

	return e.cache.GetOrGenerate(ctx, key, opts.ForceRefresh, func(ctx context.Context) (types.RankingResult, error) {
		return e.generate(ctx, key, opts)
	})
}

// generate runs the pipeline once for a normalized key. A request-level
// timeout bounds the whole run; when it expires mid-classification the
// unclassified studies default to neutral and the partial result is
// returned rather than an error.
func (e *Engine) generate(ctx context.Context, key string, opts types.RankOptions) (types.RankingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	start := e.now()

	candidates := e.normalizer.Normalize(ctx, key)
	e.logger.Info("normalized query", "supplement", key, "candidates", len(candidates))

	outcome, err := e.orchestrator.Search(ctx, candidates, opts)
	if err != nil {
		return types.RankingResult{}, err
	}
	e.logger.Info("evidence search complete",
		"supplement", key,
		"term", outcome.Term,
		"studies", len(outcome.Studies),
		"strategy_hits", outcome.StrategyHits)

	now := e.now()
	scores := make([]types.ScoreBreakdown, len(outcome.Studies))
	for i, s := range outcome.Studies {
		scores[i] = score.Score(s, now)
	}

	sentiments := classify.ClassifyAll(ctx, e.classifier, key, outcome.Studies, e.cfg.Classify.MaxConcurrent, e.logger)

	result := rank.Rank(outcome.Studies, scores, sentiments, e.cfg.Ranker)
	result.Supplement = key
	result.SearchedTerm = outcome.Term
	result.GeneratedAt = now

	e.logger.Info("ranking generated",
		"supplement", key,
		"consensus", result.Consensus,
		"confidence", result.ConfidenceScore,
		"elapsed", e.now().Sub(start))
	return result, nil
}

// Invalidate expires the cached verdict for supplementName.
func (e *Engine) Invalidate(ctx context.Context, supplementName string) error {
	key, err := cacheKey(supplementName)
	if err != nil {
		return err
	}
	return e.cache.Invalidate(ctx, key)
}

// cacheKey validates and normalizes a supplement name into the cache key.
func cacheKey(name string) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if key == "" {
		return "", &types.ValidationError{Field: "supplement name", Reason: "must not be empty"}
	}
	if len(key) > maxQueryLength {
		return "", &types.ValidationError{Field: "supplement name", Reason: "must be at most 200 characters"}
	}
	return key, nil
}
