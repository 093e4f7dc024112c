package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/sieve"
	"github.com/discochess/sieve/internal/report"
)

// Flags shared by the pipeline commands.
var (
	username       string
	maxGames       int
	archiveTimeout time.Duration
	gamesPath      string
	outputPath     string
	whiteLabels    string
	blackLabels    string
	krpOnly        bool
	saveMatches    bool
	scoreSaved     bool

	snapshotLocation string
	compression      string

	enginePath string
	threads    int
	depth      int
	moveTime   time.Duration
	cacheSize  int

	noColor bool
)

func addArchiveFlags(cmd *cobra.Command) {
	def := sieve.DefaultConfig()
	cmd.Flags().StringVarP(&username, "username", "u", "", "lichess username whose games are fetched")
	cmd.Flags().IntVarP(&maxGames, "max-games", "n", def.MaxGames, "maximum number of games to fetch")
	cmd.Flags().DurationVar(&archiveTimeout, "timeout", 0, "bound on the games download (0 for none)")
	addGamesFlags(cmd)
}

func addGamesFlags(cmd *cobra.Command) {
	def := sieve.DefaultConfig()
	cmd.Flags().StringVarP(&gamesPath, "games", "g", def.GamesPath, "games snapshot file")
	cmd.Flags().StringVar(&snapshotLocation, "snapshot", "", "keep the snapshot in a directory, gs://bucket/prefix or s3://bucket/prefix")
	cmd.Flags().StringVar(&compression, "compression", "none", "snapshot compression used with --snapshot (none, gzip, zstd)")
}

func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&whiteLabels, "white", "w", "", "white pieces, e.g. KRPP")
	cmd.Flags().StringVarP(&blackLabels, "black", "b", "", "black pieces, e.g. krp")
	cmd.Flags().BoolVar(&krpOnly, "krp", false, "match any kings, rooks and pawns ending instead of exact pieces")
}

func addSaveFlags(cmd *cobra.Command) {
	def := sieve.DefaultConfig()
	cmd.Flags().BoolVarP(&saveMatches, "save", "s", false, "append matched FENs to the output file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", def.OutputPath, "output file for matched FENs (.jsonl for JSON lines)")
	cmd.Flags().BoolVar(&scoreSaved, "score", false, "evaluate saved matches with the engine (needs --save and --engine)")
}

func addEngineFlags(cmd *cobra.Command) {
	def := sieve.DefaultConfig()
	cmd.Flags().StringVarP(&enginePath, "engine", "e", "", "path to a UCI engine binary")
	cmd.Flags().IntVarP(&threads, "threads", "t", def.Threads, "engine threads")
	cmd.Flags().IntVar(&depth, "depth", 0, "search depth (takes precedence over --movetime)")
	cmd.Flags().DurationVar(&moveTime, "movetime", def.Limit.Time, "search time per position")
	cmd.Flags().IntVar(&cacheSize, "cache-size", sieve.DefaultCacheSize, "engine evaluations cached across the run (0 disables)")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func signatures() (white, black sieve.Signature, err error) {
	if whiteLabels != "" {
		if white, err = sieve.ParseSignature(whiteLabels); err != nil {
			return white, black, fmt.Errorf("parsing --white: %w", err)
		}
	}
	if blackLabels != "" {
		if black, err = sieve.ParseSignature(blackLabels); err != nil {
			return white, black, fmt.Errorf("parsing --black: %w", err)
		}
	}
	return white, black, nil
}

func buildConfig() (sieve.Config, error) {
	white, black, err := signatures()
	if err != nil {
		return sieve.Config{}, err
	}

	return sieve.Config{
		Username:        username,
		MaxGames:        maxGames,
		GamesPath:       gamesPath,
		OutputPath:      outputPath,
		White:           white,
		Black:           black,
		KingsRooksPawns: krpOnly,
		Save:            saveMatches,
		ScoreMatches:    scoreSaved,
		EnginePath:      enginePath,
		Threads:         threads,
		Limit:           sieve.Limit{Time: moveTime, Depth: depth},
	}, nil
}

func newPipeline(cmd *cobra.Command, cfg sieve.Config) (*sieve.Pipeline, error) {
	opts := []sieve.Option{
		sieve.WithLogger(log.Named("sieve")),
		sieve.WithStats(collector),
		sieve.WithReporter(console()),
		sieve.WithCacheSize(cacheSize),
	}
	if archiveTimeout > 0 {
		opts = append(opts, sieve.WithArchiveTimeout(archiveTimeout))
	}
	if snapshotLocation != "" {
		opt, err := sieve.WithSnapshot(cmd.Context(), snapshotLocation, compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return sieve.New(cfg, opts...)
}

func console() *report.Console {
	return report.NewConsole(os.Stdout, report.WithColor(!noColor && stdoutIsTerminal()))
}
