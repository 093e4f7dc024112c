package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a player's recent games",
	Long: `Download up to --max-games of a lichess player's most recent games and
overwrite the games snapshot with them.

Examples:
  sieve fetch --username DeadWater --max-games 50

  # Keep the snapshot in a bucket, zstd-compressed
  sieve fetch -u DeadWater --snapshot gs://my-bucket/games --compression zstd`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	addArchiveFlags(fetchCmd)
	addOutputFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(cmd, cfg)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	defer p.Close()

	if _, err := p.Fetch(cmd.Context()); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	return nil
}
