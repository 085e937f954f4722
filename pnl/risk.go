package pnl

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of per-path PnL.
type Summary struct {
	Mean              float64
	StdDev            float64
	Confidence        float64
	ValueAtRisk       float64 // loss not exceeded with the given confidence
	ExpectedShortfall float64 // mean loss beyond the VaR threshold
}

// Risk computes distribution statistics for a per-path PnL sequence.
// Confidence is a fraction in (0, 1), e.g. 0.95.
func Risk(pnls []float64, confidence float64) (Summary, error) {
	if len(pnls) == 0 {
		return Summary{}, fmt.Errorf("pnl: no samples: %w", ErrEmptyInput)
	}
	if confidence <= 0 || confidence >= 1 {
		return Summary{}, fmt.Errorf("pnl: confidence=%g must be in (0, 1): %w", confidence, ErrInvalidParameter)
	}

	losses := make([]float64, len(pnls))
	for i, p := range pnls {
		losses[i] = -p
	}
	sort.Float64s(losses)

	idx := int(float64(len(losses)) * confidence)
	if idx >= len(losses) {
		idx = len(losses) - 1
	}
	tail := losses[idx:]

	return Summary{
		Mean:              stat.Mean(pnls, nil),
		StdDev:            stat.StdDev(pnls, nil),
		Confidence:        confidence,
		ValueAtRisk:       losses[idx],
		ExpectedShortfall: stat.Mean(tail, nil),
	}, nil
}
