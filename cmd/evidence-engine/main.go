// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evidence-engine CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suplementia/evidence-engine/internal/secrets"
	"github.com/suplementia/evidence-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the evidence-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "evidence-engine",
	Short: "Search and rank PubMed evidence for dietary supplements",
	Long: `evidence-engine searches PubMed for clinical evidence about a dietary
supplement, scores each study by methodological quality, classifies study
conclusions as positive, negative, or neutral, and produces a balanced
verdict with a confidence score and an evidence grade.

The main operation is the rank subcommand. The normalize, search, and cache
subcommands expose individual pipeline stages for inspection and upkeep.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evidence-engine.yaml or ~/.config/evidence-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evidence-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evidence-engine"))
		}
	}

	viper.SetEnvPrefix("EVIDENCE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the slog logger the pipeline stages share. Debug level
// when --verbose is set, info otherwise, always to stderr so stdout stays
// clean for results.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// engineConfig assembles the pipeline configuration from the config file,
// environment, and loaded secrets. Secrets win only when the config file
// leaves a key empty.
func engineConfig() types.EngineConfig {
	cfg := types.EngineConfig{
		Literature: types.LiteratureConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("literature.timeout"),
				UserAgent: viper.GetString("literature.user_agent"),
			},
			APIKey:            viper.GetString("literature.api_key"),
			RequestsPerSecond: viper.GetFloat64("literature.requests_per_second"),
		},
		Normalize: types.NormalizeConfig{
			TranslationTimeout: viper.GetDuration("normalize.translation_timeout"),
			MaxCandidates:      viper.GetInt("normalize.max_candidates"),
			DisableTranslation: viper.GetBool("normalize.disable_translation"),
		},
		Search: types.SearchConfig{
			MinStudies:  viper.GetInt("search.min_studies"),
			MaxResults:  viper.GetInt("search.max_results"),
			RecentYears: viper.GetInt("search.recent_years"),
			Proximity:   viper.GetBool("search.proximity"),
		},
		Classify: types.ClassifyConfig{
			AIConfig: types.AIConfig{
				Model:  viper.GetString("classify.model"),
				APIKey: viper.GetString("classify.api_key"),
			},
			MaxConcurrent: viper.GetInt("classify.max_concurrent"),
			Timeout:       viper.GetDuration("classify.timeout"),
		},
		Ranker: types.RankerConfig{
			StrongRatio:   viper.GetFloat64("ranker.strong_ratio"),
			ModerateRatio: viper.GetFloat64("ranker.moderate_ratio"),
			TopN:          viper.GetInt("ranker.top_n"),
		},
		Cache: types.CacheConfig{
			Path: viper.GetString("cache.path"),
			TTL:  viper.GetDuration("cache.ttl"),
		},
		RequestTimeout: viper.GetDuration("request_timeout"),
	}

	if cfg.Literature.APIKey == "" {
		cfg.Literature.APIKey = loadedSecrets.Get(secrets.KeyNCBI)
	}
	if cfg.Classify.APIKey == "" {
		cfg.Classify.APIKey = loadedSecrets.Get(secrets.KeyAnthropic)
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = defaultCachePath()
	}

	cfg.Defaults()
	return cfg
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "evidence-cache.db"
	}
	return filepath.Join(home, ".cache", "evidence-engine", "evidence.db")
}

// ensureCacheDir creates the parent directory for the cache database.
func ensureCacheDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
