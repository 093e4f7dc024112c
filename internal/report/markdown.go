package report

import (
	"fmt"
	"io"
	"time"

	"github.com/discochess/sieve/internal/engine"
	"github.com/discochess/sieve/internal/scanner"
)

// Markdown writes run reports in Markdown format.
type Markdown struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdown creates a new Markdown report writer.
func NewMarkdown(w io.Writer) *Markdown {
	return &Markdown{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (m *Markdown) WriteHeader(title string) {
	fmt.Fprintf(m.w, "# %s\n\n", title)
	fmt.Fprintf(m.w, "Generated: %s\n\n", m.now().Format(time.RFC3339))
}

// WriteScan writes the matcher name and one table row per game.
func (m *Markdown) WriteScan(matcher string, results []scanner.Result) {
	found := 0
	for _, r := range results {
		if r.Found {
			found++
		}
	}

	fmt.Fprintln(m.w, "## Scan")
	fmt.Fprintln(m.w)
	fmt.Fprintf(m.w, "- **Criteria:** %s\n", matcher)
	fmt.Fprintf(m.w, "- **Games scanned:** %d\n", len(results))
	fmt.Fprintf(m.w, "- **Matches:** %d\n", found)
	fmt.Fprintln(m.w)
	fmt.Fprintln(m.w, "| # | Game | Ply | FEN |")
	fmt.Fprintln(m.w, "|---|------|-----|-----|")
	for i, r := range results {
		if r.Found {
			fmt.Fprintf(m.w, "| %d | %s | %d | `%s` |\n", i+1, r.Origin, r.Ply, r.FEN)
			continue
		}
		fmt.Fprintf(m.w, "| %d | %s | - | - |\n", i+1, r.Origin)
	}
	fmt.Fprintln(m.w)
}

// WriteEvaluations writes one row per evaluated half-move and the window summary.
func (m *Markdown) WriteEvaluations(evals []engine.MoveEval) {
	fmt.Fprintln(m.w, "## Evaluation")
	fmt.Fprintln(m.w)
	fmt.Fprintln(m.w, "| Move | Side | UCI | Score |")
	fmt.Fprintln(m.w, "|------|------|-----|-------|")
	for _, ev := range evals {
		fmt.Fprintf(m.w, "| %d | %s | %s | %s |\n", ev.MoveNumber, ev.Side, ev.Move, ev.Score)
	}
	fmt.Fprintln(m.w)

	s := Summarize(evals)
	if s.Count == 0 {
		return
	}
	fmt.Fprintln(m.w, "| Metric | Pawns |")
	fmt.Fprintln(m.w, "|--------|-------|")
	fmt.Fprintf(m.w, "| Mean | %.2f |\n", s.Mean)
	fmt.Fprintf(m.w, "| Median | %.2f |\n", s.Median)
	fmt.Fprintf(m.w, "| Std Dev | %.2f |\n", s.StdDev)
	fmt.Fprintf(m.w, "| Min | %.2f |\n", s.Min)
	fmt.Fprintf(m.w, "| Max | %.2f |\n", s.Max)
	fmt.Fprintf(m.w, "| Largest swing (ply %d) | %.2f |\n", s.SwingPly, s.Swing)
	fmt.Fprintln(m.w)
}
