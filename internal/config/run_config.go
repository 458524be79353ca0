// Package config loads the YAML run configuration that drives one
// livecalc batch: where to find policies and assumption tables, the
// scenario-generation parameters, and run-level multipliers.
package config

import (
	"fmt"
	"os"

	"github.com/livecalc/engine/internal/domain"
	"github.com/livecalc/engine/internal/scenario"
	"gopkg.in/yaml.v3"
)

// AssumptionRefs names the three assumption tables by resolver
// reference (spec §6: "local://<path>" or "<name>:<version>").
type AssumptionRefs struct {
	Mortality string `yaml:"mortality"`
	Lapse     string `yaml:"lapse"`
	Expenses  string `yaml:"expenses"`
}

// RunConfig is the top-level YAML document a livecalc batch reads.
type RunConfig struct {
	PoliciesPath   string                `yaml:"policies_path"`
	Assumptions    AssumptionRefs        `yaml:"assumptions"`
	AssumptionVer  string                `yaml:"assumption_version"`
	Scenarios      scenario.Params       `yaml:"scenarios"`
	ScenarioCount  int                   `yaml:"scenario_count"`
	Seed           uint64                `yaml:"seed"`
	Multipliers    domain.RunMultipliers `yaml:"multipliers"`
	Workers        int                   `yaml:"workers"`
	Trace          bool                  `yaml:"trace"`
	UDFTimeoutMS   int                   `yaml:"udf_timeout_ms"`
}

// Loader reads and validates a RunConfig from a YAML file, mirroring
// the teacher's two-step LoadFromFile/ValidateConfiguration shape.
type Loader struct{}

// NewLoader builds a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFromFile reads filename as YAML and validates the result.
func (l *Loader) LoadFromFile(filename string) (*RunConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read file %s: %w", filename, err)
	}

	cfg := &RunConfig{Multipliers: domain.DefaultMultipliers()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}

	if err := l.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the structural requirements a run config must meet
// before a batch can start.
func (l *Loader) Validate(cfg *RunConfig) error {
	if cfg.PoliciesPath == "" {
		return fmt.Errorf("policies_path is required")
	}
	if cfg.Assumptions.Mortality == "" || cfg.Assumptions.Lapse == "" || cfg.Assumptions.Expenses == "" {
		return fmt.Errorf("assumptions.mortality, assumptions.lapse, and assumptions.expenses are all required")
	}
	if cfg.ScenarioCount <= 0 {
		return fmt.Errorf("scenario_count must be positive, got %d", cfg.ScenarioCount)
	}
	if err := cfg.Scenarios.Validate(); err != nil {
		return fmt.Errorf("scenarios: %w", err)
	}
	if cfg.Multipliers == (domain.RunMultipliers{}) {
		cfg.Multipliers = domain.DefaultMultipliers()
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", cfg.Workers)
	}
	return nil
}
