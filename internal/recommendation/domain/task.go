package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDurationMinutes replaces non-positive task durations.
const DefaultDurationMinutes = 60

// Task is the caller's view of something to be placed on the calendar.
// The engine treats it as read-only.
type Task struct {
	ID                       uuid.UUID
	Title                    string
	Priority                 Priority
	EstimatedDurationMinutes int
	TargetDate               time.Time
	PreferredMinute          int
}

// Normalized returns a copy with a usable duration.
func (t Task) Normalized() Task {
	if t.EstimatedDurationMinutes <= 0 {
		t.EstimatedDurationMinutes = DefaultDurationMinutes
	}
	return t
}

// DurationHours is the number of whole hours the task blocks, never less than one.
func (t Task) DurationHours() int {
	hours := t.Normalized().EstimatedDurationMinutes / 60
	if hours < 1 {
		return 1
	}
	return hours
}
