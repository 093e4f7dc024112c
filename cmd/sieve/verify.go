package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/sieve/internal/fen"
	"github.com/discochess/sieve/internal/fenlog"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [output file]",
	Short: "Verify a file of saved positions",
	Long: `Verify that every line of a plain output file is a valid FEN whose
material matches the criteria.

This command checks:
- Each line parses as FEN
- Each position matches --white/--black or --krp`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	addMatchFlags(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	m, err := criteria()
	if err != nil {
		return err
	}

	entries, err := fenlog.ReadPlain(args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No positions found in output file.")
		return nil
	}

	fmt.Printf("Verifying %d positions against %s...\n", len(entries), m.Name())

	var errCount int
	for i, e := range entries {
		if verbose {
			fmt.Printf("  [%d/%d] %s\n", i+1, len(entries), e.FEN)
		}

		if err := fen.Validate(e.FEN); err != nil {
			fmt.Printf("  ERROR: line %d: %v\n", i+1, err)
			errCount++
			continue
		}
		count, err := fen.ParseMaterial(e.FEN)
		if err != nil {
			fmt.Printf("  ERROR: line %d: %v\n", i+1, err)
			errCount++
			continue
		}
		if !m.Match(count) {
			fmt.Printf("  ERROR: line %d: %s does not match\n", i+1, count)
			errCount++
		}
	}

	if errCount > 0 {
		return fmt.Errorf("%d positions failed verification", errCount)
	}

	fmt.Println("All positions verified successfully.")
	return nil
}
