package pricing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter is returned when a pricing input violates its domain.
var ErrInvalidParameter = errors.New("invalid parameter")

// MarketParams holds the market state shared by every quote of one
// calibration run: spot, continuously compounded risk-free rate, dividend
// yield and time to expiry in years.
type MarketParams struct {
	Spot          float64
	Rate          float64
	DividendYield float64
	TimeToExpiry  float64
}

// PricedOption carries the fair value of a European call and put struck at
// the same level under the same market parameters.
type PricedOption struct {
	Call float64
	Put  float64
}

var stdNormal = distuv.UnitNormal

// Price computes Black-Scholes fair values for a European call and put.
// S, K, T and sigma must be strictly positive.
func Price(S, K, r, q, T, sigma float64) (PricedOption, error) {
	if err := validateInputs(S, K, T, sigma); err != nil {
		return PricedOption{}, err
	}

	d1 := calcD1(S, K, r, q, T, sigma)
	d2 := d1 - sigma*math.Sqrt(T)

	discS := S * math.Exp(-q*T)
	discK := K * math.Exp(-r*T)

	call := discS*stdNormal.CDF(d1) - discK*stdNormal.CDF(d2)
	put := discK*stdNormal.CDF(-d2) - discS*stdNormal.CDF(-d1)

	return PricedOption{Call: call, Put: put}, nil
}

// Price values a call and put struck at K under the receiver's market state.
func (m MarketParams) Price(K, sigma float64) (PricedOption, error) {
	return Price(m.Spot, K, m.Rate, m.DividendYield, m.TimeToExpiry, sigma)
}

// Vega is the sensitivity of the option price to volatility,
// S*e^(-qT)*phi(d1)*sqrt(T). Calls and puts share the same vega.
func Vega(S, K, r, q, T, sigma float64) (float64, error) {
	if err := validateInputs(S, K, T, sigma); err != nil {
		return 0, err
	}
	d1 := calcD1(S, K, r, q, T, sigma)
	return S * math.Exp(-q*T) * stdNormal.Prob(d1) * math.Sqrt(T), nil
}

// calcD1 computes the d1 term of the Black-Scholes formula:
// d1 = [ln(S/K) + (r - q + 0.5*sigma^2)T] / (sigma * sqrt(T))
func calcD1(S, K, r, q, T, sigma float64) float64 {
	return (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
}

func validateInputs(S, K, T, sigma float64) error {
	if S <= 0 || K <= 0 || T <= 0 || sigma <= 0 {
		return fmt.Errorf("pricing: S=%g K=%g T=%g sigma=%g must be positive: %w", S, K, T, sigma, ErrInvalidParameter)
	}
	return nil
}
