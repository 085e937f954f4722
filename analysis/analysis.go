// Package analysis turns simulation output into chart-ready series:
// cumulative PnL curves, the terminal price distribution with a fitted
// lognormal density, and the payoff-versus-distribution overlay. The series
// are exported as a JSON artifact; nothing in the core reads them back.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mfaulds/quantopts/pnl"
)

// ErrEmptyInput is returned when there are no samples to chart.
var ErrEmptyInput = errors.New("empty input")

const (
	histogramBins = 50
	fitPoints     = 300
	payoffPoints  = 400
)

// CumulativePnLChart traces Monte Carlo convergence: the running PnL sum
// per simulation index.
type CumulativePnLChart struct {
	Simulation []int     `json:"simulation"`
	Call       []float64 `json:"cumulative_call_pnl"`
	Put        []float64 `json:"cumulative_put_pnl"`
}

// TerminalDistributionChart is a density histogram of terminal prices with
// a lognormal density fitted to the same sample.
type TerminalDistributionChart struct {
	Strike   float64   `json:"strike"`
	BinEdges []float64 `json:"bin_edges"`
	Density  []float64 `json:"density"`
	FitX     []float64 `json:"fit_x"`
	FitPDF   []float64 `json:"fit_pdf"`
}

// PayoffOverlayChart is the net call/put payoff sampled over the range of
// simulated terminal prices.
type PayoffOverlayChart struct {
	Strike      float64   `json:"strike"`
	CallPremium float64   `json:"call_premium"`
	PutPremium  float64   `json:"put_premium"`
	Price       []float64 `json:"price"`
	CallPayoff  []float64 `json:"call_payoff"`
	PutPayoff   []float64 `json:"put_payoff"`
}

// Report bundles the three chart series of one pipeline run.
type Report struct {
	CumulativePnL        CumulativePnLChart        `json:"cumulative_pnl"`
	TerminalDistribution TerminalDistributionChart `json:"terminal_distribution"`
	PayoffOverlay        PayoffOverlayChart        `json:"payoff_overlay"`
}

// CumulativePnL builds the convergence chart from a PnL result. The
// simulation axis is 1-based to match "number of simulations so far".
func CumulativePnL(res pnl.Result) CumulativePnLChart {
	n := len(res.CumulativeCall)
	sims := make([]int, n)
	for i := range sims {
		sims[i] = i + 1
	}
	return CumulativePnLChart{
		Simulation: sims,
		Call:       append([]float64(nil), res.CumulativeCall...),
		Put:        append([]float64(nil), res.CumulativePut...),
	}
}

// TerminalDistribution bins the terminal prices into a density histogram
// and fits a lognormal to the sample via the moments of the log prices.
func TerminalDistribution(terminal []float64, strike float64) (TerminalDistributionChart, error) {
	if len(terminal) == 0 {
		return TerminalDistributionChart{}, fmt.Errorf("analysis: no terminal prices: %w", ErrEmptyInput)
	}

	sorted := append([]float64(nil), terminal...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi <= lo {
		hi = lo + 1 // degenerate sample, give the histogram unit width
	}

	edges := floats.Span(make([]float64, histogramBins+1), lo, hi)
	// stat.Histogram requires every sample strictly below the last divider.
	edges[histogramBins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, edges, sorted, nil)

	binWidth := (hi - lo) / histogramBins
	total := float64(len(sorted))
	density := make([]float64, len(counts))
	for i, c := range counts {
		density[i] = c / (total * binWidth)
	}

	logs := make([]float64, len(sorted))
	for i, v := range sorted {
		logs[i] = math.Log(v)
	}
	fit := distuv.LogNormal{Mu: stat.Mean(logs, nil), Sigma: stat.StdDev(logs, nil)}
	if fit.Sigma <= 0 || math.IsNaN(fit.Sigma) {
		fit.Sigma = 1e-9
	}

	fitX := floats.Span(make([]float64, fitPoints), lo, hi)
	fitPDF := make([]float64, fitPoints)
	for i, x := range fitX {
		fitPDF[i] = fit.Prob(x)
	}

	return TerminalDistributionChart{
		Strike:   strike,
		BinEdges: edges,
		Density:  density,
		FitX:     fitX,
		FitPDF:   fitPDF,
	}, nil
}

// PayoffOverlay samples the net long call and put payoffs over the range of
// simulated terminal prices.
func PayoffOverlay(terminal []float64, strike, callPremium, putPremium float64) (PayoffOverlayChart, error) {
	if len(terminal) == 0 {
		return PayoffOverlayChart{}, fmt.Errorf("analysis: no terminal prices: %w", ErrEmptyInput)
	}

	lo := floats.Min(terminal)
	hi := floats.Max(terminal)
	if hi <= lo {
		hi = lo + 1
	}

	price := floats.Span(make([]float64, payoffPoints), lo, hi)
	callPayoff := make([]float64, payoffPoints)
	putPayoff := make([]float64, payoffPoints)
	for i, x := range price {
		callPayoff[i] = math.Max(x-strike, 0) - callPremium
		putPayoff[i] = math.Max(strike-x, 0) - putPremium
	}

	return PayoffOverlayChart{
		Strike:      strike,
		CallPremium: callPremium,
		PutPremium:  putPremium,
		Price:       price,
		CallPayoff:  callPayoff,
		PutPayoff:   putPayoff,
	}, nil
}
