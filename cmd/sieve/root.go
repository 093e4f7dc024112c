package main

import (
	"fmt"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/sieve/internal/stats"
	"github.com/discochess/sieve/internal/stats/logger"
	"github.com/discochess/sieve/internal/stats/prometheus"
)

var (
	// Global flags.
	verbose     bool
	metricsFile string

	// Set up by the root pre-run hook.
	log       *zap.Logger
	collector stats.Collector
)

var rootCmd = &cobra.Command{
	Use:   "sieve",
	Short: "Find positions with a given material balance in your games",
	Long: `Sieve downloads a player's recent games, replays each one and reports
the first position whose material matches a target, such as a rook ending
with two pawns against one.

Matched positions can be saved to a file and evaluated with a UCI engine.

Examples:
  # Fetch games if missing, then scan for KRPP vs krp
  sieve run --username DeadWater --white KRPP --black krp

  # Scan for any kings, rooks and pawns ending and save the FENs
  sieve scan --krp --save --output positions.txt

  # Evaluate moves 8 to 10 of the first game
  sieve analyze games.pgn --engine stockfish --start 8 --end 10`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
}

func setup(cmd *cobra.Command, args []string) error {
	l, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	log = l

	if metricsFile != "" {
		collector = prometheus.New(promclient.NewRegistry())
	} else {
		collector = logger.New(log.Named("stats"))
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	defer log.Sync()

	switch c := collector.(type) {
	case *prometheus.Collector:
		if err := c.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	case *logger.Collector:
		c.Flush()
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
