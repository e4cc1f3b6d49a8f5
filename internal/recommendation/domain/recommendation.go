package domain

import (
	"fmt"
	"time"
)

// ReasonCategory is the human-facing justification for a recommended slot.
type ReasonCategory string

const (
	ReasonPeakFocus     ReasonCategory = "peak-focus"
	ReasonUserPattern   ReasonCategory = "user-pattern"
	ReasonPriorityMatch ReasonCategory = "priority-match"
	ReasonFreeSlot      ReasonCategory = "free-slot"
	ReasonBalancedDay   ReasonCategory = "balanced-day"
)

var reasonDescriptions = map[ReasonCategory]string{
	ReasonPeakFocus:     "Your concentration typically peaks at this time",
	ReasonUserPattern:   "You often complete tasks at this time",
	ReasonPriorityMatch: "A good fit for this task's priority",
	ReasonFreeSlot:      "Plenty of room before and after",
	ReasonBalancedDay:   "Keeps your day balanced",
}

var reasonIcons = map[ReasonCategory]string{
	ReasonPeakFocus:     "brain.head.profile",
	ReasonUserPattern:   "chart.line.uptrend.xyaxis",
	ReasonPriorityMatch: "target",
	ReasonFreeSlot:      "calendar.badge.clock",
	ReasonBalancedDay:   "scale.3d",
}

// String returns the category label.
func (r ReasonCategory) String() string {
	return string(r)
}

// Description returns an English sentence explaining the category.
func (r ReasonCategory) Description() string {
	if d, ok := reasonDescriptions[r]; ok {
		return d
	}
	return ""
}

// Icon returns the symbol name clients render next to the reason.
func (r ReasonCategory) Icon() string {
	return reasonIcons[r]
}

// Recommendation is one scored candidate start time. It is never persisted.
type Recommendation struct {
	Date              time.Time
	Hour              int
	Minute            int
	FocusScore        int
	AvailabilityScore int
	OverallScore      int
	Reason            ReasonCategory
}

// StartTime combines the date with the recommended hour and minute.
func (r Recommendation) StartTime() time.Time {
	loc := r.Date.Location()
	if loc == nil {
		loc = time.Local
	}
	return time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), r.Hour, r.Minute, 0, 0, loc)
}

// TimeString renders the start time on a 12-hour clock for the given
// language tag. Unknown languages fall back to English.
func (r Recommendation) TimeString(lang string) string {
	return FormatSlotTime(r.Hour, r.Minute, lang)
}

// FormatSlotTime renders hour:minute on a 12-hour clock. Minute 0 is omitted;
// English puts AM/PM last, the other languages put the marker first.
func FormatSlotTime(hour, minute int, lang string) string {
	am := hour < 12
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour > 12:
		display = hour - 12
	}

	switch lang {
	case "ko":
		s := fmt.Sprintf("%s %d시", pick(am, "오전", "오후"), display)
		if minute > 0 {
			s += fmt.Sprintf(" %d분", minute)
		}
		return s
	case "ja":
		s := fmt.Sprintf("%s %d時", pick(am, "午前", "午後"), display)
		if minute > 0 {
			s += fmt.Sprintf("%d分", minute)
		}
		return s
	case "zh-Hans":
		s := fmt.Sprintf("%s %d点", pick(am, "上午", "下午"), display)
		if minute > 0 {
			s += fmt.Sprintf("%d分", minute)
		}
		return s
	default:
		s := fmt.Sprintf("%d", display)
		if minute > 0 {
			s += fmt.Sprintf(":%02d", minute)
		}
		return s + " " + pick(am, "AM", "PM")
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
