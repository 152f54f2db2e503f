package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the lookup cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count and hit/miss counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv("lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		stats := env.store.Stats(cmd.Context())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"entries":  stats.Entries,
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"hit_rate": stats.HitRate(),
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <key-or-name-substring>",
	Short: "Invalidate cached records by key or hotel-name substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv("lookup")
		if err != nil {
			return err
		}
		defer env.Close()

		removed := env.store.Invalidate(cmd.Context(), args[0])
		fmt.Fprintf(os.Stdout, "removed %d cached records\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
