package volatility

import (
	"math"

	"github.com/mfaulds/quantopts/pricing"
)

// callObjective is the pricing residual for one quote. The root of
// eval(sigma) is the quote's implied volatility. It is a plain parameter
// struct rather than a closure so the root-finders operate on explicit data.
type callObjective struct {
	s, k, r, q, t float64
	target        float64
}

func (o callObjective) eval(sigma float64) (float64, error) {
	priced, err := pricing.Price(o.s, o.k, o.r, o.q, o.t, sigma)
	if err != nil {
		return 0, err
	}
	return priced.Call - o.target, nil
}

func (o callObjective) vega(sigma float64) (float64, error) {
	return pricing.Vega(o.s, o.k, o.r, o.q, o.t, sigma)
}

// newton runs a Newton-Raphson iteration on the objective using vega as the
// derivative. A step that leaves the positive domain, a vanishing
// derivative, or an exhausted iteration budget all count as non-convergence.
func newton(obj callObjective, guess, tol float64, maxIter int) (float64, error) {
	sigma := guess
	for i := 0; i < maxIter; i++ {
		diff, err := obj.eval(sigma)
		if err != nil {
			return 0, ErrNonConvergence
		}
		if math.Abs(diff) < tol {
			if sigma <= 0 {
				return 0, ErrNonConvergence
			}
			return sigma, nil
		}

		vega, err := obj.vega(sigma)
		if err != nil || vega <= 0 || math.IsNaN(vega) {
			return 0, ErrNonConvergence
		}

		sigma -= diff / vega
		if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
			return 0, ErrNonConvergence
		}
	}
	return 0, ErrNonConvergence
}

// bisect finds a root of the objective on [lo, hi] by interval halving.
// The interval must bracket a sign change.
func bisect(obj callObjective, lo, hi, tol float64) (float64, error) {
	flo, err := obj.eval(lo)
	if err != nil {
		return 0, err
	}
	fhi, err := obj.eval(hi)
	if err != nil {
		return 0, err
	}
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if flo*fhi > 0 {
		return 0, errNoBracket
	}

	for hi-lo > tol {
		mid := 0.5 * (lo + hi)
		fmid, err := obj.eval(mid)
		if err != nil {
			return 0, err
		}
		if fmid == 0 {
			return mid, nil
		}
		if fmid*flo < 0 {
			hi = mid
		} else {
			lo = mid
			flo = fmid
		}
	}
	return 0.5 * (lo + hi), nil
}
