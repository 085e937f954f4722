// Package pnl converts simulated terminal prices and theoretical fair
// values into profit-and-loss distributions for long call and put positions.
package pnl

import (
	"errors"
	"fmt"
	"math"

	"github.com/mfaulds/quantopts/pricing"
)

var (
	// ErrInvalidParameter is returned when a PnL input violates its domain.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrEmptyInput is returned when there are no terminal prices to aggregate.
	ErrEmptyInput = errors.New("empty input")
)

// Convention selects how payoffs and premiums are brought to a common point
// in time. Conventions are never mixed within a result.
type Convention int

const (
	// PresentValue discounts expiry payoffs to time zero and compares them
	// against premiums as paid.
	PresentValue Convention = iota
	// OpportunityCost keeps payoffs at expiry and grows premiums forward at
	// the risk-free rate.
	OpportunityCost
	// AtExpiry compares undiscounted expiry payoffs against premiums as paid.
	AtExpiry
)

func (c Convention) String() string {
	switch c {
	case PresentValue:
		return "present-value"
	case OpportunityCost:
		return "opportunity-cost"
	case AtExpiry:
		return "at-expiry"
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

// Result holds per-path PnL for long call and put positions, the running
// cumulative sums in path-generation order, and the closed-form expected
// PnL under the same convention.
type Result struct {
	Convention     Convention
	CallPnL        []float64
	PutPnL         []float64
	CumulativeCall []float64
	CumulativePut  []float64
	ExpectedCall   float64
	ExpectedPut    float64
}

// conventionTerms maps a convention to the payoff scale, the effective
// premium cost, and the closed-form expected PnL.
type conventionTerms struct {
	payoffScale  float64
	callCost     float64
	putCost      float64
	expectedCall float64
	expectedPut  float64
}

func termsFor(conv Convention, r, T, callPremium, putPremium float64, fair pricing.PricedOption) (conventionTerms, error) {
	switch conv {
	case PresentValue:
		discount := math.Exp(-r * T)
		return conventionTerms{
			payoffScale:  discount,
			callCost:     callPremium,
			putCost:      putPremium,
			expectedCall: (fair.Call - callPremium) * discount,
			expectedPut:  (fair.Put - putPremium) * discount,
		}, nil
	case OpportunityCost:
		growth := math.Exp(r * T)
		return conventionTerms{
			payoffScale:  1,
			callCost:     callPremium * growth,
			putCost:      putPremium * growth,
			expectedCall: (fair.Call - callPremium) * growth,
			expectedPut:  (fair.Put - putPremium) * growth,
		}, nil
	case AtExpiry:
		growth := math.Exp(r * T)
		return conventionTerms{
			payoffScale:  1,
			callCost:     callPremium,
			putCost:      putPremium,
			expectedCall: fair.Call*growth - callPremium,
			expectedPut:  fair.Put*growth - putPremium,
		}, nil
	}
	return conventionTerms{}, fmt.Errorf("pnl: unknown convention %d: %w", int(conv), ErrInvalidParameter)
}

// Compute evaluates per-path PnL for a long call and a long put struck at K
// against the given terminal prices, which must be in path-generation order.
// The cumulative sequences satisfy cumulative[i] = cumulative[i-1] + pnl[i],
// so cumulative[last]/len(terminal) converges toward the closed-form
// expected PnL as the path count grows.
func Compute(terminal []float64, K, r, T, callPremium, putPremium float64, fair pricing.PricedOption, conv Convention) (Result, error) {
	if K <= 0 || T <= 0 {
		return Result{}, fmt.Errorf("pnl: K=%g T=%g must be positive: %w", K, T, ErrInvalidParameter)
	}
	if len(terminal) == 0 {
		return Result{}, fmt.Errorf("pnl: no terminal prices: %w", ErrEmptyInput)
	}

	terms, err := termsFor(conv, r, T, callPremium, putPremium, fair)
	if err != nil {
		return Result{}, err
	}

	n := len(terminal)
	res := Result{
		Convention:     conv,
		CallPnL:        make([]float64, n),
		PutPnL:         make([]float64, n),
		CumulativeCall: make([]float64, n),
		CumulativePut:  make([]float64, n),
		ExpectedCall:   terms.expectedCall,
		ExpectedPut:    terms.expectedPut,
	}

	var cumCall, cumPut float64
	for i, sT := range terminal {
		call := math.Max(sT-K, 0)*terms.payoffScale - terms.callCost
		put := math.Max(K-sT, 0)*terms.payoffScale - terms.putCost
		res.CallPnL[i] = call
		res.PutPnL[i] = put
		cumCall += call
		cumPut += put
		res.CumulativeCall[i] = cumCall
		res.CumulativePut[i] = cumPut
	}

	return res, nil
}
