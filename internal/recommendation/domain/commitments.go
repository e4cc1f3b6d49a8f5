package domain

// Commitments maps an hour of the target day (0-23) to the events occupying it.
// A missing key or an empty list means the hour is free.
type Commitments map[int][]string

// Add records an event title at the given hour.
func (c Commitments) Add(hour int, title string) {
	c[hour] = append(c[hour], title)
}

// Busy reports whether anything occupies the hour.
func (c Commitments) Busy(hour int) bool {
	return len(c[hour]) > 0
}

// Total counts every event marker across the day, duplicates included.
func (c Commitments) Total() int {
	total := 0
	for _, events := range c {
		total += len(events)
	}
	return total
}

// BusyHours returns the number of occupied hours.
func (c Commitments) BusyHours() int {
	n := 0
	for hour := range c {
		if c.Busy(hour) {
			n++
		}
	}
	return n
}
