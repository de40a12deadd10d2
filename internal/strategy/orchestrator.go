// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package strategy runs the multi-strategy literature search. For each
// candidate term it fans out the query strategies concurrently over one
// shared session, unions the results by PMID, and advances to the next
// candidate only when the union stays below the minimum study count.
package strategy

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/suplementia/evidence-engine/internal/normalize"
	"github.com/suplementia/evidence-engine/internal/pubmed"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// LiteratureClient is the slice of the PubMed client the orchestrator
// needs. Tests substitute a fake.
type LiteratureClient interface {
	Search(ctx context.Context, term string, opts pubmed.SearchOptions, sess *pubmed.Session) (pubmed.SearchResult, error)
	FetchSummaries(ctx context.Context, pmids []string) ([]types.Study, error)
}

// Outcome reports which term and strategies produced the evidence set.
type Outcome struct {
	// Term is the candidate that satisfied the minimum study count.
	Term string

	// Provenance is the winning candidate's provenance.
	Provenance types.Provenance

	// Studies is the deduplicated, fetched evidence set.
	Studies []types.Study

	// StrategyHits counts PMIDs contributed per strategy name, for
	// observability.
	StrategyHits map[string]int

	// TotalMatches is the server-side match count of the base query.
	TotalMatches int
}

// Orchestrator coordinates candidate terms and query strategies.
type Orchestrator struct {
	client LiteratureClient
	cfg    types.SearchConfig
	logger *slog.Logger

	// now is injectable for deterministic recent-window tests.
	now func() time.Time
}

// New builds an Orchestrator.
func New(client LiteratureClient, cfg types.SearchConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinStudies <= 0 {
		cfg.MinStudies = 3
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 30
	}
	if cfg.RecentYears <= 0 {
		cfg.RecentYears = 5
	}
	return &Orchestrator{client: client, cfg: cfg, logger: logger, now: time.Now}
}

// Search tries each candidate in confidence order and returns the first
// evidence set meeting the minimum study count. When every candidate is
// exhausted it makes one last attempt on the base ingredient of the first
// candidate before returning InsufficientEvidenceError.
func (o *Orchestrator) Search(ctx context.Context, candidates []types.SearchCandidate, opts types.RankOptions) (Outcome, error) {
	if len(candidates) == 0 {
		return Outcome{}, &types.ValidationError{Field: "candidates", Reason: "empty candidate list"}
	}

	minStudies := opts.MinStudies
	if minStudies <= 0 {
		minStudies = o.cfg.MinStudies
	}

	bestFound := 0
	for _, cand := range candidates {
		outcome, err := o.searchTerm(ctx, cand, opts)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, err
			}
			o.logger.Warn("candidate term failed, advancing to next",
				"term", cand.Term, "error", err)
			continue
		}
		if len(outcome.Studies) >= minStudies {
			return outcome, nil
		}
		if len(outcome.Studies) > bestFound {
			bestFound = len(outcome.Studies)
		}
		o.logger.Info("candidate term below minimum",
			"term", cand.Term, "found", len(outcome.Studies), "minimum", minStudies)
	}

	// Terminal fallback: the broadest base-ingredient term of the first
	// candidate, e.g. "creatine monohydrate" -> "creatine".
	base := normalize.BaseIngredient(candidates[0].Term)
	if base != "" && !equalsAnyTerm(base, candidates) {
		fallback := types.SearchCandidate{Term: base, Provenance: types.ProvenanceSynonym, Confidence: 0.1}
		outcome, err := o.searchTerm(ctx, fallback, opts)
		if err == nil && len(outcome.Studies) >= minStudies {
			return outcome, nil
		}
		if err == nil && len(outcome.Studies) > bestFound {
			bestFound = len(outcome.Studies)
		}
	}

	return Outcome{}, &types.InsufficientEvidenceError{
		Term:    candidates[0].Term,
		Found:   bestFound,
		Minimum: minStudies,
	}
}

// searchTerm runs the base query plus all strategies for one candidate,
// sharing a session so strategies combine the base result set server-side.
func (o *Orchestrator) searchTerm(ctx context.Context, cand types.SearchCandidate, opts types.RankOptions) (Outcome, error) {
	sess := &pubmed.Session{}

	baseTerm := scopedTerm(cand.Term, o.cfg.Proximity)
	if opts.RCTOnly {
		baseTerm = rctFilter(baseTerm)
	}

	searchOpts := pubmed.SearchOptions{
		RetMax:   o.retMax(opts),
		YearFrom: opts.YearFrom,
		YearTo:   opts.YearTo,
	}

	baseResult, err := o.client.Search(ctx, baseTerm, searchOpts, sess)
	if err != nil {
		return Outcome{}, err
	}

	union := make(map[string]bool, len(baseResult.PMIDs))
	hits := map[string]int{"base": len(baseResult.PMIDs)}
	for _, id := range baseResult.PMIDs {
		union[id] = true
	}

	baseRef := sess.BaseRef()
	if baseRef != "" {
		o.runStrategies(ctx, sess, baseRef, searchOpts, union, hits)
	}

	if len(union) == 0 {
		return Outcome{Term: cand.Term, Provenance: cand.Provenance, StrategyHits: hits}, nil
	}

	// Fetch even below the minimum so the caller can report how much was
	// actually found.
	studies, err := o.fetch(ctx, union, opts)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Term:         cand.Term,
		Provenance:   cand.Provenance,
		Studies:      studies,
		StrategyHits: hits,
		TotalMatches: baseResult.Count,
	}, nil
}

// runStrategies fans the strategies out concurrently over the shared
// session and merges their PMIDs into union. A failed strategy is skipped
// with a warning; it never fails the term.
func (o *Orchestrator) runStrategies(ctx context.Context, sess *pubmed.Session, baseRef string, searchOpts pubmed.SearchOptions, union map[string]bool, hits map[string]int) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, spec := range strategiesFor(o.cfg, o.now().Year()) {
		g.Go(func() error {
			result, err := o.client.Search(gctx, spec.build(baseRef), searchOpts, sess)
			if err != nil {
				o.logger.Warn("strategy failed, skipping", "strategy", spec.name, "error", err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			hits[spec.name] = len(result.PMIDs)
			for _, id := range result.PMIDs {
				union[id] = true
			}
			return nil
		})
	}
	g.Wait()
}

// fetch retrieves summaries for the union and applies client-side filters
// the server could not express.
func (o *Orchestrator) fetch(ctx context.Context, union map[string]bool, opts types.RankOptions) ([]types.Study, error) {
	pmids := make([]string, 0, len(union))
	for id := range union {
		pmids = append(pmids, id)
	}
	sort.Strings(pmids)
	if limit := o.retMax(opts); len(pmids) > limit {
		pmids = pmids[:limit]
	}

	studies, err := o.client.FetchSummaries(ctx, pmids)
	if err != nil {
		return nil, err
	}

	filtered := studies[:0]
	for _, s := range studies {
		if opts.RCTOnly && s.Type != types.TypeRCT && s.Type != types.TypeMetaAnalysis && s.Type != types.TypeSystematicReview {
			continue
		}
		if opts.YearFrom > 0 && s.Year > 0 && s.Year < opts.YearFrom {
			continue
		}
		if opts.YearTo > 0 && s.Year > opts.YearTo {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered, nil
}

func (o *Orchestrator) retMax(opts types.RankOptions) int {
	if opts.MaxResults > 0 {
		return opts.MaxResults
	}
	return o.cfg.MaxResults
}

func equalsAnyTerm(term string, candidates []types.SearchCandidate) bool {
	for _, c := range candidates {
		if c.Term == term {
			return true
		}
	}
	return false
}
