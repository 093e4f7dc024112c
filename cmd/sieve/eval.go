package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/sieve/internal/fen"
)

var evalCmd = &cobra.Command{
	Use:   "eval [FEN]",
	Short: "Evaluate a single position",
	Long: `Evaluate one position given in FEN notation with a UCI engine.
The score is from White's point of view: "0.35", "-1.20", "M3" or "-M3".

Examples:
  sieve eval "8/5pRk/8/8/7P/8/r4P2/6K1 b - - 0 5" --engine stockfish --depth 20`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	addEngineFlags(evalCmd)
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	position := args[0]
	if err := fen.Validate(position); err != nil {
		return fmt.Errorf("%w: %q", err, position)
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

	score, err := p.Evaluate(cmd.Context(), position)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Printf("FEN:   %s\n", position)
	fmt.Printf("Score: %s\n", score)
	fmt.Printf("Limit: %s\n", cfg.Limit)
	return nil
}
