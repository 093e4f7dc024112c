package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/sieve"
	"github.com/discochess/sieve/internal/report"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the games snapshot for matching positions",
	Long: `Replay every game in the snapshot and report the first position whose
material matches the target. Games without a match print their URL.

Examples:
  sieve scan --white KRPP --black krp

  # Save matches with engine scores as JSON lines
  sieve scan --krp --save --output positions.jsonl --score --engine stockfish`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch games if the snapshot is missing, then scan them",
	Long: `Run the whole pipeline: download the player's games unless the snapshot
already exists, then scan every game for the target material.

Examples:
  sieve run --username DeadWater --white KRPP --black krp --save`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var scanReport string

func init() {
	for _, cmd := range []*cobra.Command{scanCmd, runCmd} {
		addMatchFlags(cmd)
		addSaveFlags(cmd)
		addEngineFlags(cmd)
		addOutputFlags(cmd)
		cmd.Flags().StringVar(&scanReport, "report", "", "also write a markdown report to this file")
	}
	addGamesFlags(scanCmd)
	addArchiveFlags(runCmd)
	rootCmd.AddCommand(scanCmd, runCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	return scanWith(cmd, (*sieve.Pipeline).Scan)
}

func runRun(cmd *cobra.Command, args []string) error {
	return scanWith(cmd, (*sieve.Pipeline).Run)
}

func scanWith(cmd *cobra.Command, scan func(*sieve.Pipeline, context.Context) ([]sieve.Result, error)) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(cmd, cfg)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	defer p.Close()

	results, err := scan(p, cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	found := 0
	for _, res := range results {
		if res.Found {
			found++
		}
	}
	log.Info("scan complete",
		zap.String("criteria", p.Criteria()),
		zap.Int("games", len(results)),
		zap.Int("matches", found),
	)

	if scanReport != "" {
		return writeScanReport(scanReport, p.Criteria(), results)
	}
	return nil
}

func writeScanReport(path, criteria string, results []sieve.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	md := report.NewMarkdown(f)
	md.WriteHeader("Sieve scan")
	md.WriteScan(criteria, results)
	return f.Close()
}
