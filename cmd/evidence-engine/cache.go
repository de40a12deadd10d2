// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suplementia/evidence-engine/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the evidence cache (stats, invalidate, warm)",
	Long: `Cache manages the persistent evidence cache. Use subcommands to inspect
the store, expire entries, or preload it with the curated verdicts.`,
}

// --- stats subcommand ---

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts and hit totals for the cache",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(os.Stdout, "Entries:    %d\n", stats.Entries)
	fmt.Fprintf(os.Stdout, "Expired:    %d\n", stats.Expired)
	fmt.Fprintf(os.Stdout, "Total hits: %d\n", stats.TotalHits)
	return nil
}

// --- invalidate subcommand ---

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate [supplement]",
	Short: "Expire the cached verdict for a supplement",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheInvalidate,
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	store, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	key := strings.ToLower(strings.Join(args, " "))
	if err := store.Invalidate(context.Background(), key); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Invalidated %q\n", key)
	return nil
}

// --- warm subcommand ---

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Preload the cache with the curated verdicts",
	Long: `Warm writes the curated verdicts for common supplements into the
persistent store so a fresh deployment answers popular queries without
touching PubMed.`,
	RunE: runCacheWarm,
}

func runCacheWarm(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	store, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	evidenceCache, err := cache.New(store, engineConfig().Cache, logger)
	if err != nil {
		return err
	}

	n, err := evidenceCache.Warm(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Warmed %d curated entries\n", n)
	return nil
}

// openStore opens the persistent cache tier at the configured path.
func openStore() (*cache.SQLiteStore, func(), error) {
	cfg := engineConfig()
	if err := ensureCacheDir(cfg.Cache.Path); err != nil {
		return nil, nil, err
	}
	store, err := cache.OpenSQLite(cfg.Cache.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func init() {
	cacheStatsCmd.Flags().Bool("json", false, "output stats as JSON")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheWarmCmd)

	rootCmd.AddCommand(cacheCmd)
}
