// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads configuration shared by all subcommands

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rssrs/rssrs/internal/config"
)

var (
	flagDataDir string
	flagAddr    string
	flagDebug   bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rssrs",
	Short: "Personal feed aggregation backend",
	Long: `rssrs polls your feeds on a schedule, deduplicates what it finds
into a local database, and serves the result over a small JSON API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}
		if flagAddr != "" {
			cfg.Addr = flagAddr
		}
		if flagDebug {
			cfg.Debug = true
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: ~/.local/share/rssrs)")
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "listen address (default: "+config.DefaultAddr+")")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug mode: verbose logs and fast polling")
}
