package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/sieve/internal/fen"
	"github.com/discochess/sieve/internal/matcher"
	"github.com/discochess/sieve/internal/matcher/exactmatcher"
	"github.com/discochess/sieve/internal/matcher/krpmatcher"
)

var matchCmd = &cobra.Command{
	Use:   "match [FEN]",
	Short: "Test one position against the material criteria",
	Long: `Count the pieces in a FEN and report whether they match the target
material. No game or engine is involved.

Examples:
  sieve match "8/5k2/8/3r4/8/2R5/5PPK/8 b - - 0 40" --white KRPP --black kr
  sieve match "8/5k2/8/3r4/8/2R5/5PPK/8 b - - 0 40" --krp`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	addMatchFlags(matchCmd)
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	m, err := criteria()
	if err != nil {
		return err
	}

	count, err := fen.ParseMaterial(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", err, args[0])
	}

	fmt.Printf("Material: %s\n", count)
	fmt.Printf("Criteria: %s\n", m.Name())
	if !m.Match(count) {
		return fmt.Errorf("position does not match %s", m.Name())
	}
	fmt.Println("Match: yes")
	return nil
}

func criteria() (matcher.Matcher, error) {
	if krpOnly {
		return krpmatcher.New(), nil
	}
	white, black, err := signatures()
	if err != nil {
		return nil, err
	}
	if white.IsZero() && black.IsZero() {
		return nil, fmt.Errorf("either --krp or --white/--black is required")
	}
	return exactmatcher.New(white, black), nil
}
