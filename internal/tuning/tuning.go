// Package tuning holds the run configuration: starting stockpile, roster,
// population caps, and reporting cadence.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/boomsim/internal/agents"
)

// Tuning is the configuration of one run.
type Tuning struct {
	StartFood  float64 `yaml:"start_food"`
	StartWood  float64 `yaml:"start_wood"`
	StartStone float64 `yaml:"start_stone"`
	StartMetal float64 `yaml:"start_metal"`

	Roster []string `yaml:"roster"`

	MaxPop   int `yaml:"max_pop"`
	HousePop int `yaml:"house_pop"`

	SummaryPeriod int `yaml:"summary_period"`
	MinEndTick    int `yaml:"min_end_tick"`
}

// Default returns the standard opening: 300 of everything, ten units,
// room for twenty.
func Default() Tuning {
	return Tuning{
		StartFood:     300,
		StartWood:     300,
		StartStone:    300,
		StartMetal:    300,
		Roster:        agents.DefaultRoster(),
		MaxPop:        20,
		HousePop:      5,
		SummaryPeriod: 10,
		MinEndTick:    900,
	}
}

// Load reads a YAML tuning file. Fields missing from the file keep their
// default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate checks that the configuration can drive a run.
func (t Tuning) Validate() error {
	if t.SummaryPeriod < 1 {
		return fmt.Errorf("summary_period must be positive, got %d", t.SummaryPeriod)
	}
	if t.MaxPop < 0 || t.HousePop < 0 {
		return fmt.Errorf("population caps must not be negative")
	}
	if t.MinEndTick < 0 {
		return fmt.Errorf("min_end_tick must not be negative, got %d", t.MinEndTick)
	}
	return nil
}
