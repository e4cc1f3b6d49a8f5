package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooking_Validate(t *testing.T) {
	start := time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		booking Booking
		wantErr bool
	}{
		{"valid", Booking{Title: "Write report", Start: start, Duration: time.Hour}, false},
		{"blank title", Booking{Title: "  ", Start: start, Duration: time.Hour}, true},
		{"zero start", Booking{Title: "Write report", Duration: time.Hour}, true},
		{"zero duration", Booking{Title: "Write report", Start: start}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.booking.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBooking)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBooking_End(t *testing.T) {
	start := time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)
	b := Booking{Start: start, Duration: 90 * time.Minute}
	assert.Equal(t, time.Date(2026, 10, 15, 16, 0, 0, 0, time.UTC), b.End())
}
