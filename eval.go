package sieve

import (
	"github.com/discochess/sieve/internal/engine"
	"github.com/discochess/sieve/internal/report"
)

// Score is an engine evaluation: centipawns or a forced mate, positive when
// White is better.
type Score = engine.Score

// Evaluation is the engine's verdict on the position after one move.
// Its Score is from White's point of view.
type Evaluation = engine.MoveEval

// Summary holds statistics over an evaluation window.
type Summary = report.Summary

// Summarize computes mean, spread and the largest swing of evals in pawns.
// Mates count as report.MateValue pawns.
func Summarize(evals []Evaluation) Summary {
	return report.Summarize(evals)
}
