package application

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSlotConflict is returned when a booking overlaps an existing event.
var ErrSlotConflict = errors.New("slot conflicts with an existing event")

// ConflictType describes how an existing event overlaps a booking.
type ConflictType string

const (
	ConflictOverlap  ConflictType = "overlap"  // partial overlap at one edge
	ConflictContains ConflictType = "contains" // event covers the whole booking
	ConflictWithin   ConflictType = "within"   // event lies inside the booking
)

// Conflict is one existing event that overlaps a booking.
type Conflict struct {
	Type  ConflictType
	Event CalendarEvent
}

// DetectOverlap reports whether [aStart, aEnd) and [bStart, bEnd) overlap and
// how b relates to a.
func DetectOverlap(aStart, aEnd, bStart, bEnd time.Time) (bool, ConflictType) {
	if !aStart.Before(bEnd) || !bStart.Before(aEnd) {
		return false, ""
	}
	switch {
	case !bStart.After(aStart) && !bEnd.Before(aEnd):
		return true, ConflictContains
	case !bStart.Before(aStart) && !bEnd.After(aEnd):
		return true, ConflictWithin
	default:
		return true, ConflictOverlap
	}
}

// ConflictDetector re-reads the calendar right before a booking so a slot
// recommended earlier is not written over something added since.
type ConflictDetector struct {
	source CommitmentSource
}

// NewConflictDetector creates a detector reading from source.
func NewConflictDetector(source CommitmentSource) *ConflictDetector {
	if source == nil {
		source = NoCommitments{}
	}
	return &ConflictDetector{source: source}
}

// CheckConflicts returns the timed events overlapping booking.
func (cd *ConflictDetector) CheckConflicts(ctx context.Context, booking Booking) ([]Conflict, error) {
	events, err := cd.source.ListEvents(ctx, booking.Start, booking.End())
	if err != nil {
		return nil, fmt.Errorf("check conflicts: %w", err)
	}

	var conflicts []Conflict
	for _, ev := range events {
		if ev.IsAllDay {
			continue
		}
		if ok, kind := DetectOverlap(booking.Start, booking.End(), ev.StartTime, ev.EndTime); ok {
			conflicts = append(conflicts, Conflict{Type: kind, Event: ev})
		}
	}
	return conflicts, nil
}
