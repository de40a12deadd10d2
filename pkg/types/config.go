// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LiteratureConfig holds settings for the PubMed E-utilities client.
type LiteratureConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional NCBI API key. With a key the request ceiling
	// rises from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerSecond overrides the token-bucket rate (0 = derive from
	// APIKey presence).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the retry cap for transient API failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AIConfig holds shared settings for stages that call the inference
// endpoint.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-3-5-haiku-latest").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the inference API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// NormalizeConfig holds settings for query normalization.
type NormalizeConfig struct {
	// TranslationTimeout bounds the model call for translation and
	// abbreviation expansion (default 8s).
	TranslationTimeout time.Duration `json:"translation_timeout" yaml:"translation_timeout"`

	// MaxCandidates caps the candidate list length (default 4).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// DisableTranslation skips the model and uses only the static
	// dictionary and fuzzy matching.
	DisableTranslation bool `json:"disable_translation" yaml:"disable_translation"`
}

// SearchConfig holds settings for the search orchestrator.
type SearchConfig struct {
	// MinStudies is the default minimum evidence set size (default 3).
	MinStudies int `json:"min_studies" yaml:"min_studies"`

	// MaxResults caps studies fetched per candidate term (default 30).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// RecentYears is the window of the recent-publications strategy
	// (default 5).
	RecentYears int `json:"recent_years" yaml:"recent_years"`

	// Proximity enables proximity-scoped queries for multi-word terms.
	// Whether proximity improves recall over plain AND queries is a tunable
	// assumption, not a guaranteed behavior.
	Proximity bool `json:"proximity" yaml:"proximity"`
}

// ClassifyConfig holds settings for sentiment classification.
type ClassifyConfig struct {
	AIConfig `yaml:",inline"`

	// MaxConcurrent bounds simultaneous in-flight classification calls
	// (default 10).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// Timeout bounds a single classification call (default 8s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RankerConfig holds the consensus and confidence thresholds. The ratios
// are heuristic constants with no statistical derivation; they are
// configuration, not invariants.
type RankerConfig struct {
	// StrongRatio is the score-mass ratio above which the consensus is
	// strong (default 3.0).
	StrongRatio float64 `json:"strong_ratio" yaml:"strong_ratio"`

	// ModerateRatio is the score-mass ratio above which the consensus is
	// moderate (default 1.6).
	ModerateRatio float64 `json:"moderate_ratio" yaml:"moderate_ratio"`

	// TopN is the per-partition selection size (default 5).
	TopN int `json:"top_n" yaml:"top_n"`
}

// CacheConfig holds settings for the tiered evidence cache.
type CacheConfig struct {
	// Path is the SQLite database file for the persistent tier.
	Path string `json:"path" yaml:"path"`

	// TTL is the persistent-tier entry lifetime (default 14 days; the
	// accepted range is 7-30 days).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// EngineConfig groups all stage configurations for the pipeline.
type EngineConfig struct {
	Literature LiteratureConfig `json:"literature" yaml:"literature"`
	Normalize  NormalizeConfig  `json:"normalize" yaml:"normalize"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Classify   ClassifyConfig   `json:"classify" yaml:"classify"`
	Ranker     RankerConfig     `json:"ranker" yaml:"ranker"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`

	// RequestTimeout bounds one whole ranking request. On expiry the
	// engine returns the best available partial result (scored studies
	// with unclassified ones defaulting to neutral).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// Defaults fills zero-valued fields with their documented defaults.
func (c *EngineConfig) Defaults() {
	if c.Literature.Timeout == 0 {
		c.Literature.Timeout = 10 * time.Second
	}
	if c.Literature.UserAgent == "" {
		c.Literature.UserAgent = "evidence-engine/0.1"
	}
	if c.Literature.MaxRetries == 0 {
		c.Literature.MaxRetries = 3
	}
	if c.Normalize.TranslationTimeout == 0 {
		c.Normalize.TranslationTimeout = 8 * time.Second
	}
	if c.Normalize.MaxCandidates == 0 {
		c.Normalize.MaxCandidates = 4
	}
	if c.Search.MinStudies == 0 {
		c.Search.MinStudies = 3
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 30
	}
	if c.Search.RecentYears == 0 {
		c.Search.RecentYears = 5
	}
	if c.Classify.MaxConcurrent == 0 {
		c.Classify.MaxConcurrent = 10
	}
	if c.Classify.Timeout == 0 {
		c.Classify.Timeout = 8 * time.Second
	}
	if c.Classify.MaxRetries == 0 {
		c.Classify.MaxRetries = 3
	}
	if c.Ranker.StrongRatio == 0 {
		c.Ranker.StrongRatio = 3.0
	}
	if c.Ranker.ModerateRatio == 0 {
		c.Ranker.ModerateRatio = 1.6
	}
	if c.Ranker.TopN == 0 {
		c.Ranker.TopN = 5
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 14 * 24 * time.Hour
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 90 * time.Second
	}
}
