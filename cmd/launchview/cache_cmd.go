package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Resinat/launchview/internal/config"
	"github.com/Resinat/launchview/internal/respcache"
	"github.com/Resinat/launchview/internal/state"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the offline response cache",
	}
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many responses are cached for this build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(func(c *respcache.Cache) error {
				entries := c.Len()
				if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"namespace": respcache.Namespace(),
						"entries":   entries,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", respcache.Namespace(), entries)
				return nil
			})
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response, including older builds' entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(func(c *respcache.Cache) error {
				removed := c.Clear()
				if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int64{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)
				return nil
			})
		},
	}
}

// withCache opens the persistence layer described by the environment and
// hands fn a cache bound to it. The daemon should not be running.
func withCache(fn func(c *respcache.Cache) error) error {
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		return err
	}
	repos, closer, err := state.PersistenceBootstrap(envCfg.StateDir, envCfg.CacheDir)
	if err != nil {
		return fmt.Errorf("persistence bootstrap: %w", err)
	}
	defer closer.Close()

	c := respcache.New(repos.ResponseCache, 1)
	defer c.Close()
	return fn(c)
}
