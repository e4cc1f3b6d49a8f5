package app

import (
	"fmt"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/services"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/pkg/config"
)

// applyTuning layers file overrides onto the engine defaults.
func applyTuning(cfg services.EngineConfig, profile domain.FocusProfile, t *config.Tuning) (services.EngineConfig, domain.FocusProfile, error) {
	if t == nil {
		return cfg, profile, nil
	}

	if t.WorkingHours != nil {
		cfg.WorkStartHour = t.WorkingHours.Start
		cfg.WorkEndHour = t.WorkingHours.End
	}
	setInt(&cfg.MaxResults, t.MaxResults)

	if w := t.Weights; w != nil {
		setFloat(&cfg.FocusWeight, w.Focus)
		setFloat(&cfg.AvailabilityWeight, w.Availability)
		setFloat(&cfg.DefaultFocusBlend, w.DefaultBlend)
		setFloat(&cfg.LearnedFocusBlend, w.LearnedBlend)
	}
	if b := t.Bonuses; b != nil {
		setInt(&cfg.TopPreferredBonus, b.TopPreferred)
		setInt(&cfg.PreferredBonus, b.Preferred)
	}
	if p := t.Penalties; p != nil {
		setInt(&cfg.AdjacentPenalty, p.Adjacent)
		setInt(&cfg.BusyDayPenalty, p.BusyDay)
		setInt(&cfg.BusyDayThreshold, p.BusyDayThreshold)
	}

	if len(t.FocusTable) > 0 {
		table := make(map[int]int, len(profile.DefaultByHour))
		for hour, score := range profile.DefaultByHour {
			table[hour] = score
		}
		for hour, score := range t.FocusTable {
			table[hour] = score
		}
		profile.DefaultByHour = table
	}

	if len(t.Preferred) > 0 {
		preferred := make(map[domain.Priority][]int, len(profile.PreferredHours))
		for priority, hours := range profile.PreferredHours {
			preferred[priority] = hours
		}
		for name, hours := range t.Preferred {
			priority, err := domain.ParsePriority(name)
			if err != nil {
				return cfg, profile, fmt.Errorf("preferred_hours %q: %w", name, err)
			}
			preferred[priority] = append([]int(nil), hours...)
		}
		profile.PreferredHours = preferred
	}

	return cfg, profile, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
