package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics provides an interface for recording application metrics.
type Metrics interface {
	// Counter increments a counter metric.
	Counter(name string, value int64, tags ...Tag)

	// Gauge sets a gauge metric to the given value.
	Gauge(name string, value float64, tags ...Tag)

	// Histogram records a value in a histogram.
	Histogram(name string, value float64, tags ...Tag)

	// Timing records a duration.
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag represents a key-value pair for metric labeling.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics is a no-op implementation of Metrics.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// Series is everything recorded under one metric name and tag set.
type Series struct {
	Name      string
	Tags      []Tag // sorted by key
	Count     int64
	Gauge     float64
	Samples   []float64
	Durations []time.Duration
}

// InMemoryMetrics keeps every series in memory. Tag order does not matter:
// T("a","1"), T("b","2") and T("b","2"), T("a","1") name the same series.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	series map[string]*Series
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: make(map[string]*Series)}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.record(name, tags, func(s *Series) { s.Count += value })
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.record(name, tags, func(s *Series) { s.Gauge = value })
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.record(name, tags, func(s *Series) { s.Samples = append(s.Samples, value) })
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.record(name, tags, func(s *Series) { s.Durations = append(s.Durations, duration) })
}

func (m *InMemoryMetrics) record(name string, tags []Tag, apply func(*Series)) {
	sorted := sortTags(tags)
	key := formatKey(name, sorted)

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		s = &Series{Name: name, Tags: sorted}
		m.series[key] = s
	}
	apply(s)
}

func (m *InMemoryMetrics) lookup(name string, tags []Tag) (Series, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[formatKey(name, sortTags(tags))]
	if !ok {
		return Series{}, false
	}
	return s.clone(), true
}

// GetCounter returns the counter for name and tags.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	s, _ := m.lookup(name, tags)
	return s.Count
}

// GetGauge returns the last gauge value for name and tags.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	s, _ := m.lookup(name, tags)
	return s.Gauge
}

// GetHistogram returns the recorded histogram values.
func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	s, _ := m.lookup(name, tags)
	return s.Samples
}

// GetTimings returns the recorded durations.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	s, _ := m.lookup(name, tags)
	return s.Durations
}

// CounterTotal sums a counter across all of its tag sets.
func (m *InMemoryMetrics) CounterTotal(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, s := range m.series {
		if s.Name == name {
			total += s.Count
		}
	}
	return total
}

// AllSeries returns every series recorded under name, ordered by tags.
func (m *InMemoryMetrics) AllSeries(name string) []Series {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Series
	for _, s := range m.series {
		if s.Name == name {
			out = append(out, s.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return formatKey("", out[i].Tags) < formatKey("", out[j].Tags)
	})
	return out
}

// Reset drops every series.
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = make(map[string]*Series)
}

func (s *Series) clone() Series {
	c := *s
	c.Tags = append([]Tag(nil), s.Tags...)
	c.Samples = append([]float64(nil), s.Samples...)
	c.Durations = append([]time.Duration(nil), s.Durations...)
	return c
}

func sortTags(tags []Tag) []Tag {
	if len(tags) == 0 {
		return nil
	}
	sorted := append([]Tag(nil), tags...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return sorted
}

// formatKey renders name:k=v:k=v in the order tags were given.
func formatKey(name string, tags []Tag) string {
	var b strings.Builder
	b.WriteString(name)
	for _, t := range tags {
		b.WriteString(":")
		b.WriteString(t.Key)
		b.WriteString("=")
		b.WriteString(t.Value)
	}
	return b.String()
}

// Metric names recorded by slotwise.
const (
	MetricOperationTotal    = "slotwise.operation.total"
	MetricOperationDuration = "slotwise.operation.duration"
	MetricOperationErrors   = "slotwise.operation.errors"

	MetricRecommendationRequests  = "slotwise.recommendations.requests"
	MetricRecommendationsReturned = "slotwise.recommendations.returned"
	MetricRecommendationsEmpty    = "slotwise.recommendations.empty"

	MetricCompletionsRecorded = "slotwise.completions.recorded"
	MetricFocusScore          = "slotwise.focus.score"

	MetricCalendarErrors = "slotwise.calendar.errors"
	MetricSlotsBooked    = "slotwise.slots.booked"

	MetricEventsPublished = "slotwise.events.published"
	MetricEventsConsumed  = "slotwise.events.consumed"
	MetricEventsDropped   = "slotwise.events.dropped"
)
