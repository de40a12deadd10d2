// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package strategy

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/suplementia/evidence-engine/internal/pubmed"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// fakeClient scripts Search responses by term predicate and records every
// query. It mimics the real client's session bookkeeping.
type fakeClient struct {
	mu       sync.Mutex
	searched []string
	fetched  [][]string

	search func(term string) (pubmed.SearchResult, error)
	fetch  func(pmids []string) ([]types.Study, error)
}

func (f *fakeClient) Search(_ context.Context, term string, _ pubmed.SearchOptions, sess *pubmed.Session) (pubmed.SearchResult, error) {
	f.mu.Lock()
	f.searched = append(f.searched, term)
	n := len(f.searched)
	f.mu.Unlock()

	res, err := f.search(term)
	if err == nil && sess != nil {
		sess.Record("MCID_fake", n)
	}
	return res, err
}

func (f *fakeClient) FetchSummaries(_ context.Context, pmids []string) ([]types.Study, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, pmids)
	f.mu.Unlock()

	if f.fetch != nil {
		return f.fetch(pmids)
	}
	studies := make([]types.Study, len(pmids))
	for i, id := range pmids {
		studies[i] = types.Study{PMID: id, Title: "study " + id, Type: types.TypeRCT, Year: 2022}
	}
	return studies, nil
}

func (f *fakeClient) searchTerms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searched...)
}

func candidates(terms ...string) []types.SearchCandidate {
	out := make([]types.SearchCandidate, len(terms))
	for i, t := range terms {
		out[i] = types.SearchCandidate{Term: t, Provenance: types.ProvenanceSynonym, Confidence: 0.9}
	}
	return out
}

func isStrategyQuery(term string) bool {
	return strings.HasPrefix(term, "#1 AND")
}

func TestSearchFirstCandidateSatisfies(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			return pubmed.SearchResult{PMIDs: []string{"1", "2", "3"}, Count: 57}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	outcome, err := o.Search(context.Background(), candidates("creatine"), types.RankOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if outcome.Term != "creatine" {
		t.Errorf("Term = %q", outcome.Term)
	}
	if len(outcome.Studies) != 3 {
		t.Errorf("len(Studies) = %d, want 3", len(outcome.Studies))
	}
	if outcome.TotalMatches != 57 {
		t.Errorf("TotalMatches = %d, want 57", outcome.TotalMatches)
	}
	if outcome.StrategyHits["base"] != 3 {
		t.Errorf("StrategyHits = %v", outcome.StrategyHits)
	}

	// Base query plus the four strategies ran.
	terms := client.searchTerms()
	if len(terms) != 5 {
		t.Fatalf("searches = %v, want 5", terms)
	}
	if terms[0] != `"creatine"[Title/Abstract]` {
		t.Errorf("base term = %q", terms[0])
	}
	strategyCount := 0
	for _, term := range terms[1:] {
		if isStrategyQuery(term) {
			strategyCount++
		}
	}
	if strategyCount != 4 {
		t.Errorf("strategy queries = %d, want 4", strategyCount)
	}
}

func TestSearchUnionsStrategyResults(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			switch {
			case strings.Contains(term, "meta-analysis[Publication Type]"):
				return pubmed.SearchResult{PMIDs: []string{"2", "4"}}, nil
			case strings.Contains(term, "no effect"):
				return pubmed.SearchResult{PMIDs: []string{"5"}}, nil
			case isStrategyQuery(term):
				return pubmed.SearchResult{}, nil
			default:
				return pubmed.SearchResult{PMIDs: []string{"1", "2", "3"}, Count: 3}, nil
			}
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	outcome, err := o.Search(context.Background(), candidates("creatine"), types.RankOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Union of {1,2,3}, {2,4}, {5} without duplicates, fetched in sorted order.
	if len(client.fetched) != 1 {
		t.Fatalf("fetch calls = %d, want 1", len(client.fetched))
	}
	want := []string{"1", "2", "3", "4", "5"}
	got := client.fetched[0]
	if len(got) != len(want) {
		t.Fatalf("fetched = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fetched = %v, want %v", got, want)
		}
	}
	if outcome.StrategyHits["high_quality"] != 2 || outcome.StrategyHits["negative"] != 1 {
		t.Errorf("StrategyHits = %v", outcome.StrategyHits)
	}
}

func TestSearchAdvancesPastFailingCandidate(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if strings.Contains(term, "kreatin") {
				return pubmed.SearchResult{}, &types.ExternalServiceError{Service: "pubmed", Err: errors.New("boom")}
			}
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			return pubmed.SearchResult{PMIDs: []string{"1", "2", "3"}}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	outcome, err := o.Search(context.Background(), candidates("kreatin", "creatine"), types.RankOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if outcome.Term != "creatine" {
		t.Errorf("Term = %q, want the second candidate", outcome.Term)
	}
}

func TestSearchAdvancesPastThinCandidate(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			if strings.Contains(term, "creatina") {
				return pubmed.SearchResult{PMIDs: []string{"9"}}, nil
			}
			return pubmed.SearchResult{PMIDs: []string{"1", "2", "3"}}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	outcome, err := o.Search(context.Background(), candidates("creatina", "creatine"), types.RankOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if outcome.Term != "creatine" {
		t.Errorf("Term = %q, want the richer candidate", outcome.Term)
	}
}

func TestSearchBaseIngredientFallback(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			// Only the stripped base ingredient has enough evidence.
			if strings.Contains(term, `"creatine"`) {
				return pubmed.SearchResult{PMIDs: []string{"1", "2", "3", "4"}}, nil
			}
			return pubmed.SearchResult{PMIDs: []string{"1"}}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	outcome, err := o.Search(context.Background(), candidates("creatine monohydrate"), types.RankOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if outcome.Term != "creatine" {
		t.Errorf("Term = %q, want base ingredient", outcome.Term)
	}
	if outcome.Provenance != types.ProvenanceSynonym {
		t.Errorf("Provenance = %q", outcome.Provenance)
	}
}

func TestSearchInsufficientEvidence(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			return pubmed.SearchResult{PMIDs: []string{"1", "2"}}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	_, err := o.Search(context.Background(), candidates("obscurium"), types.RankOptions{})

	var insErr *types.InsufficientEvidenceError
	if !errors.As(err, &insErr) {
		t.Fatalf("want InsufficientEvidenceError, got %v", err)
	}
	if insErr.Term != "obscurium" || insErr.Found != 2 || insErr.Minimum != 3 {
		t.Errorf("error = %+v", insErr)
	}
}

func TestSearchEmptyCandidates(t *testing.T) {
	o := New(&fakeClient{}, types.SearchConfig{}, nil)

	_, err := o.Search(context.Background(), nil, types.RankOptions{})
	var vErr *types.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestSearchRCTOnly(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			return pubmed.SearchResult{PMIDs: []string{"1", "2", "3", "4"}}, nil
		},
		fetch: func(pmids []string) ([]types.Study, error) {
			return []types.Study{
				{PMID: "1", Type: types.TypeRCT, Year: 2022},
				{PMID: "2", Type: types.TypeCaseReport, Year: 2022},
				{PMID: "3", Type: types.TypeMetaAnalysis, Year: 2021},
				{PMID: "4", Type: types.TypeCohort, Year: 2020},
			}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	outcome, err := o.Search(context.Background(), candidates("creatine"), types.RankOptions{RCTOnly: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	terms := client.searchTerms()
	if !strings.Contains(terms[0], "randomized controlled trial[Publication Type]") {
		t.Errorf("base term missing RCT filter: %q", terms[0])
	}
	// Case report and cohort filtered client-side.
	if len(outcome.Studies) != 2 {
		t.Fatalf("Studies = %v, want RCT and meta-analysis only", outcome.Studies)
	}
	for _, s := range outcome.Studies {
		if s.Type == types.TypeCaseReport || s.Type == types.TypeCohort {
			t.Errorf("study %q of type %q should be filtered", s.PMID, s.Type)
		}
	}
}

func TestSearchYearBoundsFilterFetchedStudies(t *testing.T) {
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			return pubmed.SearchResult{PMIDs: []string{"1", "2", "3", "4"}}, nil
		},
		fetch: func(pmids []string) ([]types.Study, error) {
			return []types.Study{
				{PMID: "1", Type: types.TypeRCT, Year: 2010},
				{PMID: "2", Type: types.TypeRCT, Year: 2018},
				{PMID: "3", Type: types.TypeRCT, Year: 2024},
				{PMID: "4", Type: types.TypeRCT, Year: 0}, // unknown year kept
			}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	outcome, err := o.Search(context.Background(), candidates("creatine"), types.RankOptions{YearFrom: 2015, YearTo: 2020})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(outcome.Studies) != 2 {
		t.Fatalf("Studies = %v, want 2018 study and unknown-year study", outcome.Studies)
	}
}

func TestSearchContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{
		search: func(string) (pubmed.SearchResult, error) {
			return pubmed.SearchResult{}, ctx.Err()
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	_, err := o.Search(ctx, candidates("creatine", "kreatin"), types.RankOptions{})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	// Cancellation aborts instead of advancing through remaining candidates.
	if terms := client.searchTerms(); len(terms) != 1 {
		t.Errorf("searches after cancel = %v, want 1", terms)
	}
}

func TestSearchMaxResultsCapsFetch(t *testing.T) {
	ids := make([]string, 40)
	for i := range ids {
		ids[i] = string(rune('a' + i%26)) + string(rune('0'+i/26))
	}
	client := &fakeClient{
		search: func(term string) (pubmed.SearchResult, error) {
			if isStrategyQuery(term) {
				return pubmed.SearchResult{}, nil
			}
			return pubmed.SearchResult{PMIDs: ids}, nil
		},
	}
	o := New(client, types.SearchConfig{}, nil)

	_, err := o.Search(context.Background(), candidates("creatine"), types.RankOptions{MaxResults: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(client.fetched[0]) != 10 {
		t.Errorf("fetched %d PMIDs, want cap of 10", len(client.fetched[0]))
	}
}
