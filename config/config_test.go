package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.RiskFreeRate != 0.04 {
		t.Errorf("risk free rate: got=%v want=0.04", cfg.RiskFreeRate)
	}
	if cfg.Simulation.Paths != 100000 {
		t.Errorf("paths: got=%d want=100000", cfg.Simulation.Paths)
	}
	if cfg.Simulation.StepsPerYear != 252 {
		t.Errorf("steps per year: got=%d want=252", cfg.Simulation.StepsPerYear)
	}
	if cfg.Solver.InitialGuess != 0.10 || cfg.Solver.MaxIterations != 100 {
		t.Errorf("solver defaults: %+v", cfg.Solver)
	}
	if cfg.Solver.Strict {
		t.Error("strict mode must default to off")
	}
}

func TestLoadOrDefault_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quantopts.yaml")
	body := []byte(`
risk_free_rate: 0.025
num_options: 7
solver:
  initial_guess: 0.3
  tolerance: 1e-6
  max_iterations: 50
  strict: true
simulation:
  paths: 5000
  steps_per_year: 52
  seed: 7
`)
	if err := ioutil.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault returned error: %v", err)
	}
	if cfg.RiskFreeRate != 0.025 {
		t.Errorf("risk free rate: got=%v want=0.025", cfg.RiskFreeRate)
	}
	if cfg.NumOptions != 7 {
		t.Errorf("num options: got=%d want=7", cfg.NumOptions)
	}
	if !cfg.Solver.Strict || cfg.Solver.MaxIterations != 50 {
		t.Errorf("solver: %+v", cfg.Solver)
	}
	if cfg.Simulation.Paths != 5000 || cfg.Simulation.Seed != 7 {
		t.Errorf("simulation: %+v", cfg.Simulation)
	}
	// Settings absent from the file keep their defaults.
	if cfg.OutputFile != "report.json" {
		t.Errorf("output file: got=%q want report.json", cfg.OutputFile)
	}
}

func TestLoadOrDefault_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quantopts.yaml")
	if err := ioutil.WriteFile(path, []byte("risk_free_rate: 0.025\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	t.Setenv("QUANTOPTS_RISK_FREE_RATE", "0.07")
	t.Setenv("QUANTOPTS_SEED", "99")
	t.Setenv("QUANTOPTS_STRICT", "true")

	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault returned error: %v", err)
	}
	if cfg.RiskFreeRate != 0.07 {
		t.Errorf("risk free rate: got=%v want=0.07 (env)", cfg.RiskFreeRate)
	}
	if cfg.Simulation.Seed != 99 {
		t.Errorf("seed: got=%d want=99 (env)", cfg.Simulation.Seed)
	}
	if !cfg.Solver.Strict {
		t.Error("strict: env override not applied")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	if _, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("want error for missing config file")
	}
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("empty path must fall back to defaults: %v", err)
	}
	if cfg != Default() {
		t.Errorf("empty path: got=%+v want defaults", cfg)
	}
}
