package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/mfaulds/quantopts/analysis"
	"github.com/mfaulds/quantopts/config"
	"github.com/mfaulds/quantopts/marketdata"
	"github.com/mfaulds/quantopts/pnl"
	"github.com/mfaulds/quantopts/pricing"
	"github.com/mfaulds/quantopts/simulate"
	"github.com/mfaulds/quantopts/volatility"
	"github.com/shirou/gopsutil/cpu"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

const (
	fetchTimeout   = 30 * time.Second
	riskConfidence = 0.95
)

func main() {
	ticker := flag.String("ticker", "", "underlying symbol to fetch the option chain for")
	callPrem := flag.Float64("call-prem", 0, "premium paid for the call")
	putPrem := flag.Float64("put-prem", 0, "premium paid for the put")
	expiryYears := flag.Float64("expiry-years", 1.0, "simulation horizon in years")
	strike := flag.Float64("strike", 0, "strike to price and simulate; 0 picks the chain strike nearest spot")
	rate := flag.Float64("rate", 0, "risk-free rate override")
	sims := flag.Int("sims", 0, "number of simulated paths override")
	seed := flag.Uint64("seed", 0, "simulation seed override")
	configPath := flag.String("config", "", "path to a yaml config file")
	out := flag.String("out", "", "output file for the analysis report")
	strict := flag.Bool("strict", false, "fail on calibration non-convergence instead of flooring")
	flag.Parse()

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using process environment")
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %s", err.Error())
	}
	if setFlags["rate"] {
		cfg.RiskFreeRate = *rate
	}
	if setFlags["sims"] {
		cfg.Simulation.Paths = *sims
	}
	if setFlags["seed"] {
		cfg.Simulation.Seed = *seed
	}
	if setFlags["out"] {
		cfg.OutputFile = *out
	}
	if setFlags["strict"] {
		cfg.Solver.Strict = *strict
	}

	prompter := NewPrompter()
	symbol := *ticker
	if symbol == "" {
		symbol, err = prompter.String("Ticker symbol")
		if err != nil {
			log.Fatalf("Error reading ticker: %s", err.Error())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	snapshot, err := marketdata.NewClient().FetchSnapshot(ctx, symbol, cfg.NumOptions)
	if err != nil {
		log.Fatalf("Error fetching option chain for %s: %s", symbol, err.Error())
	}

	fmt.Printf("Spot price for %s: %.2f\n", snapshot.Symbol, snapshot.Spot)
	fmt.Printf("Chain expiry: %.4f years\n", snapshot.TimeToExpiry)
	fmt.Printf("Risk-free rate: %.4f\n", cfg.RiskFreeRate)

	quotes := make([]volatility.Quote, len(snapshot.CallPrices))
	for i := range snapshot.CallPrices {
		quotes[i] = volatility.Quote{
			Strike:     snapshot.Strikes[i],
			Price:      snapshot.CallPrices[i],
			OptionType: "call",
		}
	}

	market := pricing.MarketParams{
		Spot:          snapshot.Spot,
		Rate:          cfg.RiskFreeRate,
		DividendYield: snapshot.DividendYield,
		TimeToExpiry:  snapshot.TimeToExpiry,
	}

	solverCfg := volatility.DefaultConfig()
	solverCfg.InitialGuess = cfg.Solver.InitialGuess
	solverCfg.Tolerance = cfg.Solver.Tolerance
	solverCfg.MaxIterations = cfg.Solver.MaxIterations
	solverCfg.Strict = cfg.Solver.Strict

	calibration, err := volatility.Solve(quotes, market, solverCfg)
	if err != nil {
		log.Fatalf("Error calibrating implied volatility: %s", err.Error())
	}
	sigma := calibration.Aggregate
	fmt.Printf("Calibrated implied volatility: %.4f (%d quotes)\n", sigma, len(calibration.Estimates))

	K := *strike
	if !setFlags["strike"] || K <= 0 {
		K = nearestStrike(snapshot.Strikes, snapshot.Spot)
	}
	T := *expiryYears
	if !setFlags["expiry-years"] {
		T, err = prompter.Float("Time to expiry in years")
		if err != nil {
			log.Fatalf("Error reading expiry: %s", err.Error())
		}
	}

	fair, err := pricing.Price(snapshot.Spot, K, cfg.RiskFreeRate, snapshot.DividendYield, T, sigma)
	if err != nil {
		log.Fatalf("Error pricing K=%.2f T=%.2f: %s", K, T, err.Error())
	}
	fmt.Printf("Fair value at K=%.2f T=%.2f: call %.4f, put %.4f\n", K, T, fair.Call, fair.Put)

	cPrem := *callPrem
	if !setFlags["call-prem"] {
		cPrem, err = prompter.Float("Call premium paid")
		if err != nil {
			log.Fatalf("Error reading call premium: %s", err.Error())
		}
	}
	pPrem := *putPrem
	if !setFlags["put-prem"] {
		pPrem, err = prompter.Float("Put premium paid")
		if err != nil {
			log.Fatalf("Error reading put premium: %s", err.Error())
		}
	}

	numCPU := runtime.NumCPU()
	fmt.Printf("Simulating %d paths using %d CPUs\n", cfg.Simulation.Paths, numCPU)
	start := time.Now()

	progress := mpb.New(mpb.WithWidth(64))
	bar := progress.AddBar(int64(cfg.Simulation.Paths),
		mpb.PrependDecorators(
			decor.Name("Progress"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	ensemble, err := simulate.GBM(snapshot.Spot, cfg.RiskFreeRate, sigma, T, simulate.Config{
		StepsPerYear:  cfg.Simulation.StepsPerYear,
		Paths:         cfg.Simulation.Paths,
		Seed:          cfg.Simulation.Seed,
		DividendYield: snapshot.DividendYield,
		Progress:      bar,
	})
	if err != nil {
		log.Fatalf("Error simulating paths: %s", err.Error())
	}
	progress.Wait()
	fmt.Printf("\nSimulation complete. Total time: %v\n", time.Since(start))

	terminal := ensemble.Terminal()
	result, err := pnl.Compute(terminal, K, cfg.RiskFreeRate, T, cPrem, pPrem, fair, pnl.PresentValue)
	if err != nil {
		log.Fatalf("Error computing PnL: %s", err.Error())
	}

	callRisk, err := pnl.Risk(result.CallPnL, riskConfidence)
	if err != nil {
		log.Fatalf("Error computing call risk: %s", err.Error())
	}
	putRisk, err := pnl.Risk(result.PutPnL, riskConfidence)
	if err != nil {
		log.Fatalf("Error computing put risk: %s", err.Error())
	}

	fmt.Printf("Expected call PnL: %.4f (premium %.4f vs fair %.4f)\n", result.ExpectedCall, cPrem, fair.Call)
	fmt.Printf("Expected put PnL: %.4f (premium %.4f vs fair %.4f)\n", result.ExpectedPut, pPrem, fair.Put)
	fmt.Printf("Call VaR%.0f: %.4f, ES: %.4f\n", riskConfidence*100, callRisk.ValueAtRisk, callRisk.ExpectedShortfall)
	fmt.Printf("Put VaR%.0f: %.4f, ES: %.4f\n", riskConfidence*100, putRisk.ValueAtRisk, putRisk.ExpectedShortfall)

	cumulative := analysis.CumulativePnL(result)
	distribution, err := analysis.TerminalDistribution(terminal, K)
	if err != nil {
		log.Fatalf("Error building terminal distribution: %s", err.Error())
	}
	payoff, err := analysis.PayoffOverlay(terminal, K, cPrem, pPrem)
	if err != nil {
		log.Fatalf("Error building payoff overlay: %s", err.Error())
	}

	report := analysis.Report{
		CumulativePnL:        cumulative,
		TerminalDistribution: distribution,
		PayoffOverlay:        payoff,
	}
	if err := analysis.WriteReport(cfg.OutputFile, report); err != nil {
		log.Fatalf("Error writing report to %s: %s", cfg.OutputFile, err.Error())
	}
	fmt.Printf("Successfully wrote analysis report to %s\n", cfg.OutputFile)

	percentage, err := cpu.Percent(time.Second, false)
	if err == nil && len(percentage) > 0 {
		fmt.Printf("CPU usage: %.2f%%\n", percentage[0])
	}
}

func nearestStrike(strikes []float64, spot float64) float64 {
	best := spot
	bestDist := math.Inf(1)
	for _, k := range strikes {
		if d := math.Abs(k - spot); d < bestDist {
			best = k
			bestDist = d
		}
	}
	return best
}
