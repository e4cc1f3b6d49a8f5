package caldav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calendarApp "github.com/felixgeelhaar/slotwise/internal/calendar/application"
)

func newEventCalendar(t *testing.T, configure func(*ical.Event)) *ical.Calendar {
	t.Helper()
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Test//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, "event-1")
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	configure(event)
	cal.Children = append(cal.Children, event.Component)
	return cal
}

func TestNewSource(t *testing.T) {
	src := NewSource(FastmailCalDAVURL, "user", "pass", nil)

	assert.Equal(t, FastmailCalDAVURL, src.baseURL)
	assert.Equal(t, "user", src.username)
	assert.Empty(t, src.calendarPath)
	assert.NotNil(t, src.logger)

	assert.Same(t, src, src.WithCalendarPath("/calendars/user/work/"))
	assert.Equal(t, "/calendars/user/work/", src.calendarPath)
}

func TestParseCalendarObject(t *testing.T) {
	start := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	cal := newEventCalendar(t, func(e *ical.Event) {
		e.Props.SetText(ical.PropSummary, "Standup")
		e.Props.SetDateTime(ical.PropDateTimeStart, start)
		e.Props.SetDateTime(ical.PropDateTimeEnd, end)
	})

	event, ok := parseCalendarObject(&caldav.CalendarObject{Path: "/cal/event-1.ics", Data: cal})
	require.True(t, ok)
	assert.Equal(t, "event-1", event.ID)
	assert.Equal(t, "Standup", event.Summary)
	assert.True(t, start.Equal(event.StartTime))
	assert.True(t, end.Equal(event.EndTime))
	assert.False(t, event.IsAllDay)
}

func TestParseCalendarObject_AllDay(t *testing.T) {
	cal := newEventCalendar(t, func(e *ical.Event) {
		e.Props.SetText(ical.PropSummary, "Holiday")
		e.Props.SetDate(ical.PropDateTimeStart, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
		e.Props.SetDate(ical.PropDateTimeEnd, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	})

	event, ok := parseCalendarObject(&caldav.CalendarObject{Data: cal})
	require.True(t, ok)
	assert.True(t, event.IsAllDay)
}

func TestParseCalendarObject_Cancelled(t *testing.T) {
	cal := newEventCalendar(t, func(e *ical.Event) {
		e.Props.SetText(ical.PropStatus, "CANCELLED")
		e.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	})

	_, ok := parseCalendarObject(&caldav.CalendarObject{Data: cal})
	assert.False(t, ok)
}

func TestParseCalendarObject_Invalid(t *testing.T) {
	_, ok := parseCalendarObject(nil)
	assert.False(t, ok)

	_, ok = parseCalendarObject(&caldav.CalendarObject{Path: "/cal/x.ics"})
	assert.False(t, ok)

	noStart := newEventCalendar(t, func(e *ical.Event) {})
	_, ok = parseCalendarObject(&caldav.CalendarObject{Data: noStart})
	assert.False(t, ok)
}

func TestToICalendar(t *testing.T) {
	id := uuid.New()
	booking := calendarApp.Booking{
		Title:           "Write report",
		Start:           time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC),
		Duration:        90 * time.Minute,
		Reason:          "Peak focus time",
		ReminderMinutes: calendarApp.DefaultReminderMinutes,
	}

	out := calendarToString(toICalendar(id, booking, time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)))
	require.NotEmpty(t, out)

	assert.Contains(t, out, "UID:"+id.String())
	assert.Contains(t, out, "SUMMARY:Write report")
	assert.Contains(t, out, "DTSTART:20261015T143000Z")
	assert.Contains(t, out, "DTEND:20261015T160000Z")
	assert.Contains(t, out, "X-SLOTWISE:1")
	assert.Contains(t, out, "TRIGGER:-PT30M")
	assert.Contains(t, out, "TRIGGER:-PT10M")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VALARM"))
}

const reportResponse = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/calendars/user/work/standup.ics</d:href>
    <d:propstat>
      <d:prop>
        <c:calendar-data>BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:standup
DTSTAMP:20261001T000000Z
SUMMARY:Standup
DTSTART:20261015T100000Z
DTEND:20261015T103000Z
END:VEVENT
END:VCALENDAR
</c:calendar-data>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

type recordedRequest struct {
	method string
	path   string
	body   string
	user   string
}

func newCalDAVServer(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, _, _ := r.BasicAuth()

		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body), user: user})
		mu.Unlock()

		switch r.Method {
		case "REPORT":
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			w.WriteHeader(http.StatusMultiStatus)
			_, _ = io.WriteString(w, reportResponse)
		case http.MethodPut:
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestSource_ListEvents(t *testing.T) {
	server, requests := newCalDAVServer(t)
	src := NewSource(server.URL, "alice", "secret", nil).
		WithCalendarPath("/calendars/user/work/").
		WithHTTPClient(server.Client())

	start := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	events, err := src.ListEvents(context.Background(), start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Standup", events[0].Summary)
	assert.Equal(t, 10, events[0].StartTime.Hour())

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "REPORT", reqs[0].method)
	assert.Equal(t, "/calendars/user/work/", reqs[0].path)
	assert.Equal(t, "alice", reqs[0].user)
}

func TestSource_Book(t *testing.T) {
	server, requests := newCalDAVServer(t)
	src := NewSource(server.URL, "alice", "secret", nil).
		WithCalendarPath("/calendars/user/work").
		WithHTTPClient(server.Client())

	id := uuid.New()
	path, err := src.Book(context.Background(), calendarApp.Booking{
		ID:              id,
		Title:           "Write report",
		Start:           time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC),
		Duration:        time.Hour,
		ReminderMinutes: []int{10},
	})
	require.NoError(t, err)
	assert.Equal(t, "/calendars/user/work/"+id.String()+".ics", path)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Contains(t, reqs[0].body, "SUMMARY:Write report")
	assert.Contains(t, reqs[0].body, "TRIGGER:-PT10M")
}

func TestSource_Book_Invalid(t *testing.T) {
	server, requests := newCalDAVServer(t)
	src := NewSource(server.URL, "alice", "secret", nil).WithHTTPClient(server.Client())

	_, err := src.Book(context.Background(), calendarApp.Booking{Title: "No start"})
	assert.ErrorIs(t, err, calendarApp.ErrInvalidBooking)
	assert.Empty(t, requests())
}
