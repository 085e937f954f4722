package simulate

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Ensemble is a matrix of simulated prices, one row per path and one column
// per time step including the initial spot column. It is owned by the caller
// of the simulation that produced it and is never mutated afterwards.
type Ensemble struct {
	prices  *mat.Dense
	horizon float64
}

func newEnsemble(paths, steps int, horizon float64) *Ensemble {
	return &Ensemble{
		prices:  mat.NewDense(paths, steps+1, nil),
		horizon: horizon,
	}
}

// NumPaths returns the number of simulated paths.
func (e *Ensemble) NumPaths() int {
	r, _ := e.prices.Dims()
	return r
}

// Steps returns the number of time steps (columns minus the spot column).
func (e *Ensemble) Steps() int {
	_, c := e.prices.Dims()
	return c - 1
}

// Path returns path i as a view into the ensemble. The slice must not be
// modified.
func (e *Ensemble) Path(i int) []float64 {
	return e.prices.RawRowView(i)
}

// Terminal returns a copy of the last column, the price of every path at the
// simulation horizon, in path-generation order.
func (e *Ensemble) Terminal() []float64 {
	rows, cols := e.prices.Dims()
	terminal := make([]float64, rows)
	mat.Col(terminal, cols-1, e.prices)
	return terminal
}

// Times returns the time axis matching a path's columns, from 0 to the
// horizon in years.
func (e *Ensemble) Times() []float64 {
	_, cols := e.prices.Dims()
	if cols == 1 {
		return []float64{0}
	}
	return floats.Span(make([]float64, cols), 0, e.horizon)
}

// Matrix exposes the ensemble as a read-only gonum matrix.
func (e *Ensemble) Matrix() mat.Matrix {
	return e.prices
}
