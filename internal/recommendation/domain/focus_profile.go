package domain

// HoursPerDay bounds every hour-of-day value.
const HoursPerDay = 24

// fallbackFocusScore applies to hours missing from the table.
const fallbackFocusScore = 50

// topPreferredCount is how many leading preferred hours earn the larger bonus.
const topPreferredCount = 2

// FocusProfile describes typical alertness across the day and which hours
// suit each priority, most preferred first.
type FocusProfile struct {
	DefaultByHour  map[int]int
	PreferredHours map[Priority][]int
}

// DefaultFocusProfile returns the circadian table: low overnight, a late
// morning peak, a lunch dip and a second mid-afternoon peak.
func DefaultFocusProfile() FocusProfile {
	return FocusProfile{
		DefaultByHour: map[int]int{
			0: 10, 1: 5, 2: 5, 3: 5, 4: 5, 5: 10,
			6: 30, 7: 50, 8: 70, 9: 85,
			10: 95, 11: 100,
			12: 60, 13: 50,
			14: 85, 15: 90, 16: 80,
			17: 70, 18: 60,
			19: 50, 20: 40, 21: 30,
			22: 20, 23: 15,
		},
		PreferredHours: map[Priority][]int{
			PriorityHigh:   {10, 11, 9, 14, 15},
			PriorityMedium: {14, 15, 16, 10, 11},
			PriorityLow:    {17, 18, 19, 8, 7},
		},
	}
}

// DefaultScore returns the static focus score for an hour.
func (p FocusProfile) DefaultScore(hour int) int {
	if score, ok := p.DefaultByHour[hour]; ok {
		return score
	}
	return fallbackFocusScore
}

// IsTopPreferred reports whether hour is among the first preferred hours for priority.
func (p FocusProfile) IsTopPreferred(priority Priority, hour int) bool {
	preferred := p.PreferredHours[priority]
	if len(preferred) > topPreferredCount {
		preferred = preferred[:topPreferredCount]
	}
	return containsHour(preferred, hour)
}

// IsPreferred reports whether hour appears anywhere in the list for priority.
func (p FocusProfile) IsPreferred(priority Priority, hour int) bool {
	return containsHour(p.PreferredHours[priority], hour)
}

func containsHour(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}

// ValidHour reports whether hour is a valid hour of day.
func ValidHour(hour int) bool {
	return hour >= 0 && hour < HoursPerDay
}
