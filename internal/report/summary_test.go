package report

import (
	"math"
	"testing"

	"github.com/discochess/sieve/internal/engine"
)

func evalsOf(scores ...engine.Score) []engine.MoveEval {
	evals := make([]engine.MoveEval, len(scores))
	for i, s := range scores {
		evals[i] = engine.MoveEval{Ply: 15 + i, MoveNumber: engine.MoveNumber(14 + i), Score: s}
	}
	return evals
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	s := Summarize(evalsOf(
		engine.Centipawns(20),
		engine.Centipawns(40),
		engine.Centipawns(-160),
		engine.Centipawns(-140),
	))

	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if !near(s.Mean, -0.6) {
		t.Errorf("Mean = %v, want -0.6", s.Mean)
	}
	if !near(s.Min, -1.6) || !near(s.Max, 0.4) {
		t.Errorf("Min, Max = %v, %v, want -1.6, 0.4", s.Min, s.Max)
	}
	if !near(s.Swing, 2.0) || s.SwingPly != 17 {
		t.Errorf("Swing = %v at ply %d, want 2.0 at ply 17", s.Swing, s.SwingPly)
	}
	// Empirical quantile picks the lower middle value.
	if !near(s.Median, -1.4) {
		t.Errorf("Median = %v, want -1.4", s.Median)
	}
	if s.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0", s.StdDev)
	}
}

func TestSummarize_Mates(t *testing.T) {
	s := Summarize(evalsOf(engine.Centipawns(0), engine.MateIn(2).Negate()))
	if !near(s.Min, -MateValue) {
		t.Errorf("Min = %v, want %v", s.Min, -MateValue)
	}
	if !near(s.Swing, MateValue) {
		t.Errorf("Swing = %v, want %v", s.Swing, MateValue)
	}
}

func TestSummarize_Edges(t *testing.T) {
	if s := Summarize(nil); s.Count != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero", s)
	}

	s := Summarize(evalsOf(engine.Centipawns(55)))
	if s.Count != 1 || !near(s.Mean, 0.55) || s.StdDev != 0 || s.Swing != 0 {
		t.Errorf("single eval summary = %+v", s)
	}
}

func TestPawns(t *testing.T) {
	tests := []struct {
		score engine.Score
		want  float64
	}{
		{engine.Centipawns(-250), -2.5},
		{engine.MateIn(4), MateValue},
		{engine.Checkmated(), -MateValue},
	}
	for _, tt := range tests {
		if got := Pawns(tt.score); !near(got, tt.want) {
			t.Errorf("Pawns(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
