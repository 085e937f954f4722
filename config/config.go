// Package config holds the run configuration: defaults, an optional YAML
// file, and environment overrides, applied in that order.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// SolverConfig configures the implied-volatility solver.
type SolverConfig struct {
	InitialGuess  float64 `yaml:"initial_guess"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	Strict        bool    `yaml:"strict"`
}

// SimulationConfig configures the Monte Carlo run.
type SimulationConfig struct {
	Paths        int    `yaml:"paths"`
	StepsPerYear int    `yaml:"steps_per_year"`
	Seed         uint64 `yaml:"seed"`
}

// Config is the full run configuration.
type Config struct {
	RiskFreeRate float64          `yaml:"risk_free_rate"`
	NumOptions   int              `yaml:"num_options"`
	OutputFile   string           `yaml:"output_file"`
	Solver       SolverConfig     `yaml:"solver"`
	Simulation   SimulationConfig `yaml:"simulation"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		RiskFreeRate: 0.04,
		NumOptions:   5,
		OutputFile:   "report.json",
		Solver: SolverConfig{
			InitialGuess:  0.10,
			Tolerance:     1e-6,
			MaxIterations: 100,
		},
		Simulation: SimulationConfig{
			Paths:        100000,
			StepsPerYear: 252,
			Seed:         42,
		},
	}
}

// LoadOrDefault layers the YAML file at path (if any) over the defaults and
// applies environment overrides last. An empty path skips the file.
func LoadOrDefault(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides individual settings from QUANTOPTS_* variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("QUANTOPTS_RISK_FREE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RiskFreeRate = f
		}
	}
	if v := os.Getenv("QUANTOPTS_NUM_OPTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NumOptions = n
		}
	}
	if v := os.Getenv("QUANTOPTS_OUTPUT_FILE"); v != "" {
		c.OutputFile = v
	}
	if v := os.Getenv("QUANTOPTS_SIMULATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Simulation.Paths = n
		}
	}
	if v := os.Getenv("QUANTOPTS_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Simulation.Seed = n
		}
	}
	if v := os.Getenv("QUANTOPTS_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Solver.Strict = b
		}
	}
}
