package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidBooking is returned for bookings without a title, start or length.
var ErrInvalidBooking = errors.New("invalid booking")

// DefaultReminderMinutes are the popup reminders added to booked slots.
var DefaultReminderMinutes = []int{30, 10}

// Booking is a chosen slot to be written into the user's calendar.
type Booking struct {
	ID              uuid.UUID // event UID; generated when nil
	Title           string
	Start           time.Time
	Duration        time.Duration
	Reason          string
	ReminderMinutes []int
}

// End returns the end of the booked slot.
func (b Booking) End() time.Time {
	return b.Start.Add(b.Duration)
}

// Validate checks that the booking can be written.
func (b Booking) Validate() error {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return errors.Join(ErrInvalidBooking, errors.New("title is required"))
	case b.Start.IsZero():
		return errors.Join(ErrInvalidBooking, errors.New("start is required"))
	case b.Duration <= 0:
		return errors.Join(ErrInvalidBooking, errors.New("duration must be positive"))
	}
	return nil
}

// SlotBooker writes chosen slots into a calendar.
type SlotBooker interface {
	Book(ctx context.Context, booking Booking) (string, error)
}
