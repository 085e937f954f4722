package analysis

import (
	"errors"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xhhuango/json"

	"github.com/mfaulds/quantopts/pnl"
	"github.com/mfaulds/quantopts/pricing"
)

func TestCumulativePnL_MirrorsResult(t *testing.T) {
	res, err := pnl.Compute([]float64{90, 105, 120}, 100, 0.04, 1, 5, 3,
		pricing.PricedOption{Call: 9, Put: 6}, pnl.PresentValue)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	chart := CumulativePnL(res)
	if len(chart.Simulation) != 3 || chart.Simulation[0] != 1 || chart.Simulation[2] != 3 {
		t.Errorf("simulation axis: got=%v want=[1 2 3]", chart.Simulation)
	}
	for i := range res.CumulativeCall {
		if chart.Call[i] != res.CumulativeCall[i] {
			t.Errorf("cumulative call[%d]: got=%v want=%v", i, chart.Call[i], res.CumulativeCall[i])
		}
		if chart.Put[i] != res.CumulativePut[i] {
			t.Errorf("cumulative put[%d]: got=%v want=%v", i, chart.Put[i], res.CumulativePut[i])
		}
	}

	// The chart owns its own copies.
	chart.Call[0] = math.Inf(1)
	if res.CumulativeCall[0] == chart.Call[0] {
		t.Error("chart aliases the result's cumulative slice")
	}
}

func TestTerminalDistribution_DensityIntegratesToOne(t *testing.T) {
	terminal := make([]float64, 2000)
	for i := range terminal {
		// Deterministic spread of prices between 50 and 150.
		terminal[i] = 50 + 100*float64(i)/float64(len(terminal)-1)
	}

	chart, err := TerminalDistribution(terminal, 100)
	if err != nil {
		t.Fatalf("TerminalDistribution returned error: %v", err)
	}
	if len(chart.BinEdges) != histogramBins+1 || len(chart.Density) != histogramBins {
		t.Fatalf("histogram shape: %d edges, %d densities", len(chart.BinEdges), len(chart.Density))
	}

	binWidth := (150.0 - 50.0) / histogramBins
	integral := 0.0
	for _, d := range chart.Density {
		integral += d * binWidth
	}
	if math.Abs(integral-1) > 1e-9 {
		t.Errorf("density integrates to %v, want 1", integral)
	}

	if len(chart.FitX) != fitPoints || len(chart.FitPDF) != fitPoints {
		t.Errorf("fit shape: %d x, %d pdf", len(chart.FitX), len(chart.FitPDF))
	}
	for i, p := range chart.FitPDF {
		if p < 0 || math.IsNaN(p) {
			t.Fatalf("fit pdf[%d] invalid: %v", i, p)
		}
	}
}

func TestTerminalDistribution_DegenerateSample(t *testing.T) {
	chart, err := TerminalDistribution([]float64{100, 100, 100}, 100)
	if err != nil {
		t.Fatalf("TerminalDistribution returned error: %v", err)
	}
	for i, d := range chart.Density {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			t.Fatalf("density[%d] invalid for degenerate sample: %v", i, d)
		}
	}
}

func TestPayoffOverlay_Endpoints(t *testing.T) {
	terminal := []float64{60, 140}
	chart, err := PayoffOverlay(terminal, 100, 7, 4)
	if err != nil {
		t.Fatalf("PayoffOverlay returned error: %v", err)
	}
	if len(chart.Price) != payoffPoints {
		t.Fatalf("price grid length: got=%d want=%d", len(chart.Price), payoffPoints)
	}
	const tol = 1e-9
	if math.Abs(chart.Price[0]-60) > tol || math.Abs(chart.Price[payoffPoints-1]-140) > tol {
		t.Errorf("price grid endpoints: [%v, %v], want [60, 140]", chart.Price[0], chart.Price[payoffPoints-1])
	}
	// At 60 the call is worthless and the put is 40 in the money.
	if got := chart.CallPayoff[0]; math.Abs(got-(-7)) > tol {
		t.Errorf("call payoff at 60: got=%v want=-7", got)
	}
	if got := chart.PutPayoff[0]; math.Abs(got-36) > tol {
		t.Errorf("put payoff at 60: got=%v want=36", got)
	}
	// At 140 the call is 40 in the money and the put is worthless.
	if got := chart.CallPayoff[payoffPoints-1]; math.Abs(got-33) > tol {
		t.Errorf("call payoff at 140: got=%v want=33", got)
	}
	if got := chart.PutPayoff[payoffPoints-1]; math.Abs(got-(-4)) > tol {
		t.Errorf("put payoff at 140: got=%v want=-4", got)
	}
}

func TestEmptyInputs(t *testing.T) {
	if _, err := TerminalDistribution(nil, 100); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("TerminalDistribution: want ErrEmptyInput, got %v", err)
	}
	if _, err := PayoffOverlay(nil, 100, 1, 1); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("PayoffOverlay: want ErrEmptyInput, got %v", err)
	}
}

func TestWriteReport_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	res, err := pnl.Compute([]float64{95, 108}, 100, 0.04, 1, 5, 3,
		pricing.PricedOption{Call: 9, Put: 6}, pnl.PresentValue)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	dist, err := TerminalDistribution([]float64{95, 100, 104, 108}, 100)
	if err != nil {
		t.Fatalf("TerminalDistribution returned error: %v", err)
	}
	overlay, err := PayoffOverlay([]float64{95, 108}, 100, 5, 3)
	if err != nil {
		t.Fatalf("PayoffOverlay returned error: %v", err)
	}

	report := Report{
		CumulativePnL:        CumulativePnL(res),
		TerminalDistribution: dist,
		PayoffOverlay:        overlay,
	}
	if err := WriteReport(path, report); err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var parsed Report
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if parsed.PayoffOverlay.Strike != 100 {
		t.Errorf("round-tripped strike: got=%v want=100", parsed.PayoffOverlay.Strike)
	}
	if len(parsed.CumulativePnL.Call) != 2 {
		t.Errorf("round-tripped cumulative series length: got=%d want=2", len(parsed.CumulativePnL.Call))
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
