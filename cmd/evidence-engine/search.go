// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suplementia/evidence-engine/internal/llm"
	"github.com/suplementia/evidence-engine/internal/normalize"
	"github.com/suplementia/evidence-engine/internal/pubmed"
	"github.com/suplementia/evidence-engine/internal/strategy"
	"github.com/suplementia/evidence-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [supplement]",
	Short: "Search PubMed for studies without scoring or classifying",
	Long: `Search runs normalization and the multi-strategy PubMed search, then
prints the raw evidence set. Per-strategy hit counts show which query
angles contributed studies.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum studies to fetch per term (default 30)")
	searchCmd.Flags().Int("min-studies", 0, "minimum studies required (default 3)")
	searchCmd.Flags().Bool("rct-only", false, "restrict to randomized controlled trials and reviews")
	searchCmd.Flags().Int("year-from", 0, "earliest publication year to include")
	searchCmd.Flags().Int("year-to", 0, "latest publication year to include")
	searchCmd.Flags().Bool("json", false, "output studies as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg := engineConfig()

	var model llm.Client
	anthropic, err := llm.NewAnthropic(cfg.Classify.AIConfig)
	if err != nil {
		logger.Warn("inference endpoint unavailable, using dictionary only", "error", err)
	} else {
		model = anthropic
	}

	normalizer := normalize.New(model, cfg.Normalize, logger)
	client := pubmed.NewClient(cfg.Literature, logger)
	orchestrator := strategy.New(client, cfg.Search, logger)

	opts := types.RankOptions{}
	opts.MaxResults, _ = cmd.Flags().GetInt("max-results")
	opts.MinStudies, _ = cmd.Flags().GetInt("min-studies")
	opts.RCTOnly, _ = cmd.Flags().GetBool("rct-only")
	opts.YearFrom, _ = cmd.Flags().GetInt("year-from")
	opts.YearTo, _ = cmd.Flags().GetInt("year-to")

	ctx := context.Background()
	candidates := normalizer.Normalize(ctx, strings.Join(args, " "))

	outcome, err := orchestrator.Search(ctx, candidates, opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	fmt.Fprintf(os.Stdout, "Term: %s (%d studies fetched, %d total matches)\n",
		outcome.Term, len(outcome.Studies), outcome.TotalMatches)
	for name, hits := range outcome.StrategyHits {
		fmt.Fprintf(os.Stdout, "  strategy %-14s %d\n", name+":", hits)
	}

	fmt.Fprintf(os.Stdout, "\n%-10s  %-6s  %-12s  %-8s  %s\n", "PMID", "Year", "Type", "N", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, s := range outcome.Studies {
		title := s.Title
		if len(title) > 55 {
			title = title[:52] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-6d  %-12s  %-8d  %s\n", s.PMID, s.Year, s.Type, s.Participants, title)
	}
	return nil
}
