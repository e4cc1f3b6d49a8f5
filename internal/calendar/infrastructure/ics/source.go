// Package ics reads calendar commitments from an iCalendar feed or file.
package ics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	calendarApp "github.com/felixgeelhaar/slotwise/internal/calendar/application"
)

// maxFeedSize bounds how much of a remote feed is read.
const maxFeedSize = 10 << 20

// Source reads events from an ICS URL (http/https/webcal) or a local file.
type Source struct {
	location string
	client   *http.Client
	logger   *slog.Logger
}

// NewSource creates an ICS source for location.
func NewSource(location string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		location: location,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// WithHTTPClient replaces the HTTP client used for remote feeds.
func (s *Source) WithHTTPClient(client *http.Client) *Source {
	s.client = client
	return s
}

// ListEvents returns occurrences intersecting [start, end), with recurring
// events expanded.
func (s *Source) ListEvents(ctx context.Context, start, end time.Time) ([]calendarApp.CalendarEvent, error) {
	body, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := parseCalendar(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ics: %w", err)
	}

	occurrences := expand(parsed, start, end)
	events := make([]calendarApp.CalendarEvent, 0, len(occurrences))
	for _, occ := range occurrences {
		events = append(events, calendarApp.CalendarEvent{
			ID:        occ.UID,
			Summary:   occ.Summary,
			StartTime: occ.Start,
			EndTime:   occ.End,
			IsAllDay:  occ.AllDay,
		})
	}

	s.logger.Debug("ics events loaded",
		"parsed", len(parsed),
		"occurrences", len(events),
	)
	return events, nil
}

func (s *Source) load(ctx context.Context) ([]byte, error) {
	location := s.location
	if strings.HasPrefix(location, "webcal://") {
		location = "https://" + strings.TrimPrefix(location, "webcal://")
	}

	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		body, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read ics file: %w", err)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ics feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch ics feed: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
}
