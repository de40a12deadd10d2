// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed is a stateless adapter to the NCBI E-utilities API. It
// exposes the WebEnv/QueryKey session so several queries over one term can
// be combined server-side instead of re-fetched.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/suplementia/evidence-engine/internal/retry"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// eutilsBase is the E-utilities endpoint. Declared as a var so tests can
// substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// efetchChunk is the maximum number of PMIDs fetched per EFetch request.
const efetchChunk = 200

// Session is a server-side result-set handle. Queries run against the same
// session may reference earlier result sets as "#<querykey>" terms, so the
// orchestrator's strategies cost O(strategies) requests per term instead of
// O(strategies x refetches).
type Session struct {
	mu      sync.Mutex
	webEnv  string
	lastKey int
}

// BaseRef returns the "#k" reference of the first query recorded in the
// session, or "" when the session is empty.
func (s *Session) BaseRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastKey == 0 {
		return ""
	}
	return "#1"
}

func (s *Session) snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.webEnv
}

// Record notes a query's result-set handle. The first WebEnv wins; the
// highest query key is kept.
func (s *Session) Record(webEnv string, key int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.webEnv == "" {
		s.webEnv = webEnv
	}
	if key > s.lastKey {
		s.lastKey = key
	}
}

// SearchOptions bound one ESearch request.
type SearchOptions struct {
	// RetMax caps the returned PMID list (default 30).
	RetMax int

	// YearFrom and YearTo bound the publication window (0 = unbounded).
	YearFrom int
	YearTo   int
}

// Client calls the E-utilities ESearch and EFetch endpoints. It enforces a
// token-bucket request ceiling because NCBI imposes global throughput caps:
// 3 requests per second without an API key, 10 with one.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	cfg     types.LiteratureConfig
	policy  retry.Policy
	logger  *slog.Logger
}

// NewClient builds a Client from configuration.
func NewClient(cfg types.LiteratureConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		if cfg.APIKey != "" {
			rps = 10
		} else {
			rps = 3
		}
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
		policy:  retry.Policy{MaxAttempts: cfg.MaxRetries},
		logger:  logger,
	}
}

// esearchEnvelope mirrors the ESearch JSON response.
type esearchEnvelope struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count    string   `json:"count"`
	IDList   []string `json:"idlist"`
	WebEnv   string   `json:"webenv"`
	QueryKey string   `json:"querykey"`
}

// SearchResult is the outcome of one ESearch call.
type SearchResult struct {
	// PMIDs are the matching record identifiers, relevance order.
	PMIDs []string

	// Count is the total number of matches on the server, which may exceed
	// len(PMIDs).
	Count int
}

// Search runs an ESearch for term. When sess is non-nil the query joins the
// session's history: its result set is recorded under a fresh query key and
// term may reference earlier sets as "#k".
func (c *Client) Search(ctx context.Context, term string, opts SearchOptions, sess *Session) (SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return SearchResult{}, &types.ValidationError{Field: "term", Reason: "empty query"}
	}

	retMax := opts.RetMax
	if retMax <= 0 {
		retMax = 30
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(retMax)},
		"sort":    {"relevance"},
	}
	if sess != nil {
		params.Set("usehistory", "y")
		if webEnv := sess.snapshot(); webEnv != "" {
			params.Set("WebEnv", webEnv)
		}
	}
	if opts.YearFrom > 0 || opts.YearTo > 0 {
		params.Set("datetype", "pdat")
		if opts.YearFrom > 0 {
			params.Set("mindate", strconv.Itoa(opts.YearFrom))
		}
		if opts.YearTo > 0 {
			params.Set("maxdate", strconv.Itoa(opts.YearTo))
		} else {
			params.Set("maxdate", "3000")
		}
		if opts.YearFrom == 0 {
			params.Set("mindate", "1800")
		}
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return SearchResult{}, err
	}

	var envelope esearchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return SearchResult{}, &types.ExternalServiceError{
			Service: "pubmed esearch",
			Err:     fmt.Errorf("parsing response: %w", err),
		}
	}

	if sess != nil && envelope.Result.WebEnv != "" {
		key, _ := strconv.Atoi(envelope.Result.QueryKey)
		sess.Record(envelope.Result.WebEnv, key)
	}

	count, _ := strconv.Atoi(envelope.Result.Count)
	return SearchResult{PMIDs: envelope.Result.IDList, Count: count}, nil
}

// FetchSummaries retrieves full records for the given PMIDs via EFetch and
// maps them onto Studies. The input order is not preserved across chunks;
// callers that care about order sort by score afterwards.
func (c *Client) FetchSummaries(ctx context.Context, pmids []string) ([]types.Study, error) {
	var studies []types.Study

	for start := 0; start < len(pmids); start += efetchChunk {
		end := min(start+efetchChunk, len(pmids))

		params := url.Values{
			"db":      {"pubmed"},
			"id":      {strings.Join(pmids[start:end], ",")},
			"retmode": {"xml"},
		}
		if c.cfg.APIKey != "" {
			params.Set("api_key", c.cfg.APIKey)
		}

		body, err := c.get(ctx, "/efetch.fcgi", params)
		if err != nil {
			return nil, err
		}

		chunk, err := parseArticleSet(body)
		if err != nil {
			return nil, &types.ExternalServiceError{Service: "pubmed efetch", Err: err}
		}
		studies = append(studies, chunk...)
	}

	return studies, nil
}

// get performs one rate-limited GET with retries on transient failures.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := eutilsBase + path + "?" + params.Encode()

	body, err := retry.Do(ctx, c.policy, func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, retry.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return data, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		default:
			return nil, retry.Permanent(fmt.Errorf("HTTP %d", resp.StatusCode))
		}
	})
	if err != nil {
		return nil, &types.ExternalServiceError{Service: "pubmed", Err: err}
	}
	return body, nil
}
