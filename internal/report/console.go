// Package report renders scan and evaluation results for people: colored
// console lines, Markdown reports and window summaries.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/discochess/sieve/internal/engine"
	"github.com/discochess/sieve/internal/scanner"
)

// ANSI escape sequences.
const (
	green = "\033[92m"
	red   = "\033[91m"
	reset = "\033[0m"
)

// Separator follows every game that did not match.
var Separator = strings.Repeat("=", 50)

// Reporter receives pipeline events as they happen.
type Reporter interface {
	// GamesExist reports that the snapshot was already present.
	GamesExist(name string)

	// GamesFetched reports a fresh download of n games.
	GamesFetched(name string, n int)

	// Result reports the outcome of scanning one game.
	Result(res scanner.Result)

	// Evaluation reports one evaluated half-move.
	Evaluation(ev engine.MoveEval)
}

// Console writes human-readable lines to a terminal.
type Console struct {
	w     io.Writer
	color bool
}

var _ Reporter = (*Console)(nil)

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithColor enables or disables ANSI colors. Colors are on by default.
func WithColor(on bool) ConsoleOption {
	return func(c *Console) {
		c.color = on
	}
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{w: w, color: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GamesExist prints the notice that the snapshot is reused instead of fetched.
func (c *Console) GamesExist(name string) {
	fmt.Fprintf(c.w, "the games already exist! (%s)\n", name)
}

// GamesFetched prints how many games were written to the snapshot.
func (c *Console) GamesFetched(name string, n int) {
	fmt.Fprintf(c.w, "fetched %d games into %s\n", n, name)
}

// Result prints the match FEN in green, or the game URL in red followed by
// a separator.
func (c *Console) Result(res scanner.Result) {
	if res.Found {
		fmt.Fprintln(c.w, c.paint(green, "Found a position meeting the specified criteria."))
		fmt.Fprintln(c.w, "FEN of the position:", res.FEN)
		return
	}
	fmt.Fprintln(c.w, c.paint(red, "Game does not meet the specified criteria. Game URL:"), res.Origin)
	fmt.Fprintln(c.w, "\n"+Separator+"\n")
}

// Evaluation prints "Move <n> (<side>): <move> - Evaluation: <score>".
func (c *Console) Evaluation(ev engine.MoveEval) {
	fmt.Fprintf(c.w, "Move %d (%s): %s - Evaluation: %s\n", ev.MoveNumber, ev.Side, ev.Move, ev.Score)
}

// Summary prints the statistics of an evaluation window.
func (c *Console) Summary(s Summary) {
	if s.Count == 0 {
		fmt.Fprintln(c.w, "No positions evaluated.")
		return
	}
	fmt.Fprintf(c.w, "Positions: %d  Mean: %.2f  StdDev: %.2f  Min: %.2f  Max: %.2f  Largest swing: %.2f at ply %d\n",
		s.Count, s.Mean, s.StdDev, s.Min, s.Max, s.Swing, s.SwingPly)
}

func (c *Console) paint(color, s string) string {
	if !c.color {
		return s
	}
	return color + s + reset
}

// Discard is a Reporter that prints nothing.
var Discard Reporter = discard{}

type discard struct{}

func (discard) GamesExist(string)          {}
func (discard) GamesFetched(string, int)   {}
func (discard) Result(scanner.Result)      {}
func (discard) Evaluation(engine.MoveEval) {}
