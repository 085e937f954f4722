// Package volatility inverts the closed-form pricer against observed call
// quotes and aggregates the per-quote implied volatilities into a single
// vega-weighted estimate.
package volatility

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/mfaulds/quantopts/pricing"
)

var (
	// ErrNonConvergence reports a quote for which neither the primary nor
	// the fallback solver found a volatility. Only surfaced in strict mode.
	ErrNonConvergence = errors.New("solver failed to converge")
	// ErrDegenerateWeights reports a calibration set whose vega weights sum
	// to zero, leaving the weighted average undefined.
	ErrDegenerateWeights = errors.New("all vega weights are zero")
	// ErrEmptyInput reports an empty calibration set.
	ErrEmptyInput = errors.New("no quotes to calibrate")

	errNoBracket = errors.New("no sign change on bracket")
)

// Quote is one observed option price used for calibration.
type Quote struct {
	Strike     float64
	Price      float64
	OptionType string // "call" or "put"; only calls are calibrated
}

// Estimate is the resolved implied volatility of one quote together with
// the vega weight it contributes to the aggregate.
type Estimate struct {
	Sigma float64
	Vega  float64
}

// Result holds the per-quote estimates, aligned with the input quote order,
// and their vega-weighted average.
type Result struct {
	Estimates []Estimate
	Aggregate float64
}

// Config controls the two-tier solver.
type Config struct {
	InitialGuess  float64 // Newton-Raphson seed
	Tolerance     float64 // absolute price tolerance
	MaxIterations int     // Newton iteration cap
	BracketLow    float64 // fallback bracket lower bound
	BracketHigh   float64 // fallback bracket upper bound
	Strict        bool    // surface ErrNonConvergence instead of flooring
	Workers       int     // concurrent quote solves; <=0 means GOMAXPROCS
}

// DefaultConfig returns the standard solver settings.
func DefaultConfig() Config {
	return Config{
		InitialGuess:  0.10,
		Tolerance:     1e-6,
		MaxIterations: 100,
		BracketLow:    1e-9,
		BracketHigh:   5.0,
	}
}

// Solve resolves the implied volatility of every quote and aggregates them
// into a vega-weighted average. Quotes are solved concurrently; the result
// does not depend on scheduling since each estimate is written to its own
// slot. A quote outside the arbitrage-free band degrades to the bracket's
// lower bound unless cfg.Strict is set.
func Solve(quotes []Quote, mkt pricing.MarketParams, cfg Config) (Result, error) {
	if len(quotes) == 0 {
		return Result{}, fmt.Errorf("volatility: %w", ErrEmptyInput)
	}
	if mkt.Spot <= 0 || mkt.TimeToExpiry <= 0 {
		return Result{}, fmt.Errorf("volatility: spot=%g T=%g must be positive: %w", mkt.Spot, mkt.TimeToExpiry, pricing.ErrInvalidParameter)
	}
	for i, q := range quotes {
		if q.OptionType != "call" {
			return Result{}, fmt.Errorf("volatility: quote %d has type %q, only calls are calibrated: %w", i, q.OptionType, pricing.ErrInvalidParameter)
		}
		if q.Strike <= 0 || q.Price < 0 {
			return Result{}, fmt.Errorf("volatility: quote %d strike=%g price=%g: %w", i, q.Strike, q.Price, pricing.ErrInvalidParameter)
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	estimates := make([]Estimate, len(quotes))
	errs := make([]error, len(quotes))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range quotes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			estimates[i], errs[i] = solveQuote(quotes[i], mkt, cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Result{}, err
		}
	}

	var weighted, weightSum float64
	for _, est := range estimates {
		weighted += est.Sigma * est.Vega
		weightSum += est.Vega
	}
	if weightSum == 0 {
		return Result{}, fmt.Errorf("volatility: %w", ErrDegenerateWeights)
	}

	return Result{Estimates: estimates, Aggregate: weighted / weightSum}, nil
}

// solveQuote runs the two-tier strategy for a single quote: Newton-Raphson
// seeded from the configured guess, then interval bisection on the fixed
// bracket, then the bracket's lower bound as a degrade-gracefully floor.
func solveQuote(q Quote, mkt pricing.MarketParams, cfg Config) (Estimate, error) {
	obj := callObjective{
		s:      mkt.Spot,
		k:      q.Strike,
		r:      mkt.Rate,
		q:      mkt.DividendYield,
		t:      mkt.TimeToExpiry,
		target: q.Price,
	}

	sigma, err := newton(obj, cfg.InitialGuess, cfg.Tolerance, cfg.MaxIterations)
	if err != nil {
		sigma, err = bisect(obj, cfg.BracketLow, cfg.BracketHigh, cfg.Tolerance)
	}
	if err != nil {
		if cfg.Strict {
			return Estimate{}, fmt.Errorf("volatility: quote K=%g price=%g: %w", q.Strike, q.Price, ErrNonConvergence)
		}
		// A floored quote carries near-zero vega and drops out of the
		// weighted average.
		sigma = cfg.BracketLow
	}

	vega, err := pricing.Vega(mkt.Spot, q.Strike, mkt.Rate, mkt.DividendYield, mkt.TimeToExpiry, sigma)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Sigma: sigma, Vega: vega}, nil
}
