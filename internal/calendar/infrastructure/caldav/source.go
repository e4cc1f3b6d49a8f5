// Package caldav reads commitments from, and books slots into, a CalDAV
// calendar (Apple Calendar, Fastmail, Nextcloud).
package caldav

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	calendarApp "github.com/felixgeelhaar/slotwise/internal/calendar/application"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// PropXSlotwise marks events booked by slotwise.
const PropXSlotwise = "X-SLOTWISE"

// Source talks to a single CalDAV account.
type Source struct {
	baseURL      string
	username     string
	password     string // app-specific password for Apple
	calendarPath string // specific calendar path, or empty for the first one
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewSource creates a CalDAV source.
func NewSource(baseURL, username, password string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// WithCalendarPath sets the calendar collection to use.
func (s *Source) WithCalendarPath(path string) *Source {
	s.calendarPath = path
	return s
}

// WithHTTPClient replaces the underlying HTTP client. Basic auth is still applied.
func (s *Source) WithHTTPClient(client *http.Client) *Source {
	s.httpClient = client
	return s
}

// ListEvents returns events intersecting [start, end). The server expands
// nothing; recurring masters are returned as their first instance.
func (s *Source) ListEvents(ctx context.Context, start, end time.Time) ([]calendarApp.CalendarEvent, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"SUMMARY", "DTSTART", "DTEND", "DURATION", "UID", "STATUS", PropXSlotwise},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: start,
					End:   end,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	events := make([]calendarApp.CalendarEvent, 0, len(objects))
	for i := range objects {
		event, ok := parseCalendarObject(&objects[i])
		if !ok {
			continue
		}
		events = append(events, event)
	}

	s.logger.Debug("caldav events loaded", "calendar", calPath, "events", len(events))
	return events, nil
}

// Book writes a new event for a chosen slot and returns its object path.
func (s *Source) Book(ctx context.Context, booking calendarApp.Booking) (string, error) {
	if err := booking.Validate(); err != nil {
		return "", err
	}

	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar: %w", err)
	}

	id := booking.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	eventPath := fmt.Sprintf("%s%s.ics", ensureTrailingSlash(calPath), id.String())

	if _, err := client.PutCalendarObject(ctx, eventPath, toICalendar(id, booking, time.Now().UTC())); err != nil {
		return "", fmt.Errorf("failed to book slot: %w", err)
	}

	s.logger.Info("slot booked", "path", eventPath, "start", booking.Start)
	return eventPath, nil
}

func (s *Source) getClient() (*caldav.Client, error) {
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(s.httpClient, s.username, s.password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *Source) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.calendarPath != "" {
		return s.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	return cals[0].Path, nil
}

func ensureTrailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// toICalendar renders a booking as a VEVENT with popup reminders.
func toICalendar(id uuid.UUID, booking calendarApp.Booking, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Slotwise//Slot Booking//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, id.String())
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	event.Props.SetDateTime(ical.PropDateTimeStart, booking.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, booking.End().UTC())
	event.Props.SetText(ical.PropSummary, booking.Title)
	if booking.Reason != "" {
		event.Props.SetText(ical.PropDescription, "Suggested slot: "+booking.Reason)
	}

	marker := ical.NewProp(PropXSlotwise)
	marker.Value = "1"
	event.Props[PropXSlotwise] = []ical.Prop{*marker}

	for _, minutes := range booking.ReminderMinutes {
		alarm := ical.NewComponent(ical.CompAlarm)
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, booking.Title)
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = fmt.Sprintf("-PT%dM", minutes)
		alarm.Props.Set(trigger)
		event.Children = append(event.Children, alarm)
	}

	cal.Children = append(cal.Children, event.Component)
	return cal
}

func parseCalendarObject(obj *caldav.CalendarObject) (calendarApp.CalendarEvent, bool) {
	if obj == nil || obj.Data == nil {
		return calendarApp.CalendarEvent{}, false
	}

	event := calendarApp.CalendarEvent{ID: obj.Path}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		if props := child.Props[ical.PropSummary]; len(props) > 0 {
			event.Summary = props[0].Value
		}
		if props := child.Props[ical.PropUID]; len(props) > 0 {
			event.ID = props[0].Value
		}
		if props := child.Props[ical.PropStatus]; len(props) > 0 && strings.EqualFold(props[0].Value, "CANCELLED") {
			return calendarApp.CalendarEvent{}, false
		}

		if prop := child.Props.Get(ical.PropDateTimeStart); prop != nil && prop.ValueType() == ical.ValueDate {
			event.IsAllDay = true
		}

		icalEvent := &ical.Event{Component: child}
		start, err := icalEvent.DateTimeStart(time.UTC)
		if err != nil || start.IsZero() {
			return calendarApp.CalendarEvent{}, false
		}
		event.StartTime = start
		if end, err := icalEvent.DateTimeEnd(time.UTC); err == nil {
			event.EndTime = end
		} else {
			event.EndTime = start
		}

		return event, true
	}

	return calendarApp.CalendarEvent{}, false
}

// calendarToString serializes a calendar, mostly for logs and tests.
func calendarToString(cal *ical.Calendar) string {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return ""
	}
	return buf.String()
}
