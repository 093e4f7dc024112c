package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/discochess/sieve/internal/engine"
)

// MateValue is the pawn value a forced mate counts as in summaries.
const MateValue = 100.0

// Summary describes an evaluation window from White's point of view, in pawns.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64

	// Swing is the largest absolute change between consecutive evaluations
	// and SwingPly the half-move that caused it.
	Swing    float64
	SwingPly int
}

// Pawns converts a score to pawns. Mates count as ±MateValue.
func Pawns(s engine.Score) float64 {
	if s.IsMate() {
		if s.Lost() {
			return -MateValue
		}
		return MateValue
	}
	return float64(s.CP()) / 100
}

// Summarize computes window statistics over evals.
func Summarize(evals []engine.MoveEval) Summary {
	if len(evals) == 0 {
		return Summary{}
	}

	values := make([]float64, len(evals))
	for i, ev := range evals {
		values[i] = Pawns(ev.Score)
	}

	s := Summary{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}

	for i := 1; i < len(values); i++ {
		if d := math.Abs(values[i] - values[i-1]); d > s.Swing {
			s.Swing = d
			s.SwingPly = evals[i].Ply
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	return s
}
