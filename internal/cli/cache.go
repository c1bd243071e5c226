package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codesan/internal/cache"
	"github.com/dshills/codesan/internal/config"
)

var flagCacheExpired bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the sanitize result cache",
	Long: "Cached results are keyed by file content, enabled categories, threshold and\n" +
		"the pattern catalog fingerprint, so changing any of them misses the cache.",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached sanitize results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}

		if flagCacheExpired {
			n, err := c.Prune()
			if err != nil {
				return fmt.Errorf("pruning cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries from %s.\n", n, c.Dir())
			return nil
		}

		n, err := c.Clear()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d entries removed).\n", n)
		return nil
	},
}

// cacheInfo is what cache show prints.
type cacheInfo struct {
	cache.Stats
	TTLSeconds int `json:"ttlSeconds"`
	// Fingerprint identifies the pattern catalog new entries are keyed on.
	Fingerprint string `json:"catalogFingerprint"`
	Threshold   int    `json:"threshold"`
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics and the catalog fingerprint entries are keyed on",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		if !c.Enabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled. Enable it with: codesan config set cache.enabled true")
			return nil
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cacheInfo{
			Stats:       stats,
			TTLSeconds:  cfg.Cache.TTLSeconds,
			Fingerprint: engine.Catalog().Fingerprint(),
			Threshold:   engine.Guard().Threshold,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().BoolVar(&flagCacheExpired, "expired", false, "Only remove expired or unreadable entries")
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
