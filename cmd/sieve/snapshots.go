package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List games snapshots in the store",
	Long: `List the games snapshots kept in the snapshot store, either the
directory of --games or the --snapshot location. Only .pgn files and the
--games snapshot are listed.

Examples:
  sieve snapshots --snapshot s3://my-bucket/games --compression gzip`,
	Args: cobra.NoArgs,
	RunE: runSnapshots,
}

func init() {
	addGamesFlags(snapshotsCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cmd, cfg)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	defer p.Close()

	names, err := p.Snapshots(cmd.Context())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No snapshots found.")
		return nil
	}
	for _, name := range names {
		marker := " "
		if name == p.Snapshot() {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}
