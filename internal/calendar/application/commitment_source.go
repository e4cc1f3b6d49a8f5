package application

import (
	"context"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
)

// CalendarEvent is an event read from an external calendar.
type CalendarEvent struct {
	ID        string
	Summary   string
	StartTime time.Time
	EndTime   time.Time
	IsAllDay  bool
}

// CommitmentSource reads existing events from a calendar provider.
type CommitmentSource interface {
	// ListEvents returns events intersecting [start, end).
	ListEvents(ctx context.Context, start, end time.Time) ([]CalendarEvent, error)
}

// DayBounds returns midnight of date and of the following day in date's location.
func DayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

// BuildCommitments folds events into the hours they occupy on date.
// All-day events are skipped because they do not block particular hours.
// An event with no positive length still marks its start hour.
func BuildCommitments(events []CalendarEvent, date time.Time) domain.Commitments {
	dayStart, dayEnd := DayBounds(date)
	loc := date.Location()
	commitments := make(domain.Commitments)

	for _, ev := range events {
		if ev.IsAllDay {
			continue
		}
		title := ev.Summary
		if title == "" {
			title = ev.ID
		}

		start := ev.StartTime.In(loc)
		end := ev.EndTime.In(loc)
		if !end.After(start) {
			if !start.Before(dayStart) && start.Before(dayEnd) {
				commitments.Add(start.Hour(), title)
			}
			continue
		}

		if !start.Before(dayEnd) || !end.After(dayStart) {
			continue
		}
		if start.Before(dayStart) {
			start = dayStart
		}
		if end.After(dayEnd) {
			end = dayEnd
		}

		first := start.Hour()
		last := end.Add(-time.Nanosecond).Hour()
		for hour := first; hour <= last; hour++ {
			commitments.Add(hour, title)
		}
	}

	return commitments
}

// NoCommitments is a source for users without a connected calendar.
type NoCommitments struct{}

// ListEvents always returns no events.
func (NoCommitments) ListEvents(context.Context, time.Time, time.Time) ([]CalendarEvent, error) {
	return nil, nil
}
