package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning overrides engine weights from a YAML file. Absent keys keep the
// built-in defaults.
//
//	working_hours: {start: 8, end: 18}
//	max_results: 5
//	weights: {focus: 0.5, availability: 0.5}
type Tuning struct {
	WorkingHours *WorkingHours    `yaml:"working_hours"`
	MaxResults   *int             `yaml:"max_results"`
	Weights      *Weights         `yaml:"weights"`
	Bonuses      *Bonuses         `yaml:"bonuses"`
	Penalties    *Penalties       `yaml:"penalties"`
	FocusTable   map[int]int      `yaml:"focus_table"`
	Preferred    map[string][]int `yaml:"preferred_hours"`
}

// WorkingHours bounds the candidate hours, both inclusive.
type WorkingHours struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Weights are the score blend factors.
type Weights struct {
	Focus        *float64 `yaml:"focus"`
	Availability *float64 `yaml:"availability"`
	DefaultBlend *float64 `yaml:"default_blend"`
	LearnedBlend *float64 `yaml:"learned_blend"`
}

// Bonuses are added to the focus score for preferred hours.
type Bonuses struct {
	TopPreferred *int `yaml:"top_preferred"`
	Preferred    *int `yaml:"preferred"`
}

// Penalties are subtracted from the availability score.
type Penalties struct {
	Adjacent         *int `yaml:"adjacent"`
	BusyDay          *int `yaml:"busy_day"`
	BusyDayThreshold *int `yaml:"busy_day_threshold"`
}

// LoadTuning reads a tuning file. An empty path returns an empty Tuning.
func LoadTuning(path string) (*Tuning, error) {
	if path == "" {
		return &Tuning{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning file: %w", err)
	}

	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return &t, nil
}

// Validate rejects hours outside the day and negative weights.
func (t *Tuning) Validate() error {
	if h := t.WorkingHours; h != nil {
		if h.Start < 0 || h.End > 23 || h.Start > h.End {
			return fmt.Errorf("%w: working hours %d-%d", ErrInvalidConfig, h.Start, h.End)
		}
	}
	if t.MaxResults != nil && *t.MaxResults <= 0 {
		return fmt.Errorf("%w: max_results must be positive", ErrInvalidConfig)
	}
	if w := t.Weights; w != nil {
		for _, v := range []*float64{w.Focus, w.Availability, w.DefaultBlend, w.LearnedBlend} {
			if v != nil && *v < 0 {
				return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
			}
		}
	}
	for hour, score := range t.FocusTable {
		if hour < 0 || hour > 23 || score < 0 || score > 100 {
			return fmt.Errorf("%w: focus_table entry %d: %d", ErrInvalidConfig, hour, score)
		}
	}
	for priority, hours := range t.Preferred {
		for _, hour := range hours {
			if hour < 0 || hour > 23 {
				return fmt.Errorf("%w: preferred_hours %s: %d", ErrInvalidConfig, priority, hour)
			}
		}
	}
	return nil
}
