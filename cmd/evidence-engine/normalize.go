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
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [term]",
	Short: "Show the search candidates generated for a query term",
	Long: `Normalize expands a raw supplement query into ordered search candidates:
translations, scientific names, abbreviation expansions, and fuzzy
corrections, each with a provenance tag and a confidence value. Useful for
inspecting what the rank command would actually search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().Bool("no-translate", false, "skip the model, use only the dictionary and fuzzy matching")
	normalizeCmd.Flags().Bool("json", false, "output candidates as JSON")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg := engineConfig()

	if noTranslate, _ := cmd.Flags().GetBool("no-translate"); noTranslate {
		cfg.Normalize.DisableTranslation = true
	}

	var model llm.Client
	if !cfg.Normalize.DisableTranslation {
		anthropic, err := llm.NewAnthropic(cfg.Classify.AIConfig)
		if err != nil {
			logger.Warn("inference endpoint unavailable, using dictionary only", "error", err)
		} else {
			model = anthropic
		}
	}

	normalizer := normalize.New(model, cfg.Normalize, logger)
	candidates := normalizer.Normalize(context.Background(), strings.Join(args, " "))

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-22s  %s\n", "Rank", "Term", "Provenance", "Confidence")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for i, c := range candidates {
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-22s  %.2f\n", i+1, c.Term, c.Provenance, c.Confidence)
	}
	return nil
}
