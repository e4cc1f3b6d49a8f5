package ics

import (
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerEvent caps runaway recurrence rules.
const maxOccurrencesPerEvent = 1000

type occurrence struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

// expand turns parsed events into concrete occurrences intersecting
// [rangeStart, rangeEnd). Overrides replace the series instance they name.
func expand(events []parsedEvent, rangeStart, rangeEnd time.Time) []occurrence {
	overrides := make(map[string][]parsedEvent)
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		}
	}

	out := make([]occurrence, 0)
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			if overlaps(ev.Start, ev.End, rangeStart, rangeEnd) {
				out = append(out, toOccurrence(ev, ev.Start, ev.End))
			}
			continue
		}
		if ev.RawRRule == "" {
			if overlaps(ev.Start, ev.End, rangeStart, rangeEnd) {
				out = append(out, toOccurrence(ev, ev.Start, ev.End))
			}
			continue
		}
		out = append(out, expandRecurring(ev, overrides[ev.UID], rangeStart, rangeEnd)...)
	}
	return out
}

func expandRecurring(ev parsedEvent, overrides []parsedEvent, rangeStart, rangeEnd time.Time) []occurrence {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	length := ev.End.Sub(ev.Start)
	// Widen the window by the event length so occurrences that started
	// before rangeStart but are still running are included.
	starts := set.Between(rangeStart.Add(-length).In(ev.Start.Location()), rangeEnd.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	out := make([]occurrence, 0, len(starts))
	for _, start := range starts {
		if isOverridden(start, overrides) {
			continue
		}
		end := start.Add(length)
		if !overlaps(start, end, rangeStart, rangeEnd) {
			continue
		}
		out = append(out, toOccurrence(ev, start, end))
	}
	return out
}

func isOverridden(start time.Time, overrides []parsedEvent) bool {
	for _, ov := range overrides {
		if ov.RecurrenceID != nil && ov.RecurrenceID.Equal(start) {
			return true
		}
	}
	return false
}

func toOccurrence(ev parsedEvent, start, end time.Time) occurrence {
	return occurrence{
		UID:     ev.UID,
		Summary: ev.Summary,
		Start:   start,
		End:     end,
		AllDay:  ev.AllDay,
	}
}

// overlaps treats zero-length events as occupying their start instant.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
