// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suplementia/evidence-engine/internal/cache"
	"github.com/suplementia/evidence-engine/internal/classify"
	"github.com/suplementia/evidence-engine/internal/engine"
	"github.com/suplementia/evidence-engine/internal/llm"
	"github.com/suplementia/evidence-engine/internal/normalize"
	"github.com/suplementia/evidence-engine/internal/pubmed"
	"github.com/suplementia/evidence-engine/internal/strategy"
	"github.com/suplementia/evidence-engine/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank [supplement]",
	Short: "Produce a balanced evidence verdict for a supplement",
	Long: `Rank runs the full pipeline for a supplement name: normalize the query,
search PubMed across strategies, score each study, classify conclusions,
and aggregate into a consensus with confidence and an evidence grade.
Results are cached; use --force-refresh to bypass the cache.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().Int("max-results", 0, "maximum studies to fetch per term (default 30)")
	rankCmd.Flags().Int("min-studies", 0, "minimum studies required for a verdict (default 3)")
	rankCmd.Flags().Bool("rct-only", false, "restrict to randomized controlled trials and reviews")
	rankCmd.Flags().Int("year-from", 0, "earliest publication year to include")
	rankCmd.Flags().Int("year-to", 0, "latest publication year to include")
	rankCmd.Flags().Bool("force-refresh", false, "bypass the cache and regenerate")
	rankCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg := engineConfig()

	eng, closeFn, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := types.RankOptions{}
	opts.MaxResults, _ = cmd.Flags().GetInt("max-results")
	opts.MinStudies, _ = cmd.Flags().GetInt("min-studies")
	opts.RCTOnly, _ = cmd.Flags().GetBool("rct-only")
	opts.YearFrom, _ = cmd.Flags().GetInt("year-from")
	opts.YearTo, _ = cmd.Flags().GetInt("year-to")
	opts.ForceRefresh, _ = cmd.Flags().GetBool("force-refresh")

	supplement := strings.Join(args, " ")

	result, source, err := eng.GetEvidenceRanking(context.Background(), supplement, opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	formatRanking(os.Stdout, result, source)
	return nil
}

// buildEngine assembles the pipeline from configuration. The inference
// client and the persistent cache tier are optional: without an API key
// classification degrades to neutral, and without a reachable database the
// cache serves curated entries only.
func buildEngine(cfg types.EngineConfig, logger *slog.Logger) (*engine.Engine, func(), error) {
	var model llm.Client
	anthropic, err := llm.NewAnthropic(cfg.Classify.AIConfig)
	if err != nil {
		logger.Warn("inference endpoint unavailable, translation and classification degrade", "error", err)
	} else {
		model = anthropic
	}

	normalizer := normalize.New(model, cfg.Normalize, logger)
	client := pubmed.NewClient(cfg.Literature, logger)
	orchestrator := strategy.New(client, cfg.Search, logger)

	var classifier classify.Classifier = neutralClassifier{}
	if model != nil {
		classifier = classify.NewLLM(model, cfg.Classify)
	}

	var store cache.Store
	closeFn := func() {}
	if err := ensureCacheDir(cfg.Cache.Path); err != nil {
		logger.Warn("cache directory unavailable, persistent tier disabled", "error", err)
	} else {
		sqlite, err := cache.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			logger.Warn("cache database unavailable, persistent tier disabled", "error", err)
		} else {
			store = sqlite
			closeFn = func() { _ = sqlite.Close() }
		}
	}

	evidenceCache, err := cache.New(store, cfg.Cache, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return engine.New(normalizer, orchestrator, classifier, evidenceCache, cfg, logger), closeFn, nil
}

// neutralClassifier stands in when no inference endpoint is configured.
type neutralClassifier struct{}

func (neutralClassifier) Classify(_ context.Context, _ string, study types.Study) (types.SentimentResult, error) {
	return types.NeutralSentiment(study.PMID), nil
}

func formatRanking(w *os.File, r types.RankingResult, source cache.Source) {
	fmt.Fprintf(w, "Supplement:  %s\n", r.Supplement)
	if r.SearchedTerm != "" && r.SearchedTerm != r.Supplement {
		fmt.Fprintf(w, "Searched as: %s\n", r.SearchedTerm)
	}
	fmt.Fprintf(w, "Consensus:   %s (confidence %d/100, grade %s)\n",
		r.Consensus, r.ConfidenceScore, r.EvidenceGrade)
	fmt.Fprintf(w, "Studies:     %d positive, %d negative, %d neutral (%d total)\n",
		r.Totals.Positive, r.Totals.Negative, r.Totals.Neutral, r.Totals.Total())
	fmt.Fprintf(w, "Source:      %s\n", source)

	printStudies(w, "Supporting evidence", r.Positive)
	printStudies(w, "Contradicting evidence", r.Negative)
}

func printStudies(w *os.File, heading string, studies []types.RankedStudy) {
	if len(studies) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s:\n", heading)
	fmt.Fprintf(w, "%-10s  %-5s  %-6s  %-12s  %s\n", "PMID", "Score", "Year", "Type", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, s := range studies {
		title := s.Study.Title
		if len(title) > 55 {
			title = title[:52] + "..."
		}
		fmt.Fprintf(w, "%-10s  %-5d  %-6d  %-12s  %s\n",
			s.Study.PMID, s.Score.Total, s.Study.Year, s.Study.Type, title)
	}
}
