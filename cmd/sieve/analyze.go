package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/sieve"
	"github.com/discochess/sieve/internal/board/notnilboard"
	"github.com/discochess/sieve/internal/engine"
	"github.com/discochess/sieve/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [PGN file]",
	Short: "Evaluate a window of moves in one game",
	Long: `Replay one game from a PGN file and evaluate every position between the
--start and --end move numbers with a UCI engine. Scores are from White's
point of view.

Examples:
  # Moves 8 to 10 of the first game, one second per position
  sieve analyze games.pgn --engine stockfish --start 8 --end 10

  # Third game at depth 18, with a markdown report
  sieve analyze games.pgn -e stockfish --game 3 --depth 18 --report eval.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	gameIndex     int
	startMove     int
	endMove       int
	analyzeReport string
)

func init() {
	addEngineFlags(analyzeCmd)
	addOutputFlags(analyzeCmd)
	analyzeCmd.Flags().IntVar(&gameIndex, "game", 1, "1-based index of the game in the file")
	analyzeCmd.Flags().IntVar(&startMove, "start", 1, "first move number to evaluate")
	analyzeCmd.Flags().IntVar(&endMove, "end", 0, "last move number to evaluate (0 for the end of the game)")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "also write a markdown report to this file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening PGN: %w", err)
	}
	games, err := notnilboard.ReadGames(f)
	f.Close()
	if err != nil {
		return err
	}
	if gameIndex < 1 || gameIndex > len(games) {
		return fmt.Errorf("--game %d out of range: file has %d games", gameIndex, len(games))
	}
	game := games[gameIndex-1]

	end := endMove
	if end <= 0 {
		end = engine.MoveNumber(len(game.Moves()) - 1)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cmd, cfg)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	defer p.Close()

	evals, err := p.Analyze(cmd.Context(), game, startMove, end)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	console().Summary(sieve.Summarize(evals))

	if analyzeReport == "" {
		return nil
	}
	out, err := os.Create(analyzeReport)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer out.Close()

	md := report.NewMarkdown(out)
	md.WriteHeader(fmt.Sprintf("Sieve analysis: %s game %d", args[0], gameIndex))
	md.WriteEvaluations(evals)
	return out.Close()
}
