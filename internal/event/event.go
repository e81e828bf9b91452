package event

import (
	"math"
	"time"
)

// EventTime mirrors the provider's start/end field: exactly one of
// Date (all-day, YYYY-MM-DD) or DateTime (RFC3339) is set.
type EventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

// Value returns the preferred raw value, date-time over date-only.
func (t EventTime) Value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// IsZero reports whether neither form is present.
func (t EventTime) IsZero() bool {
	return t.Date == "" && t.DateTime == ""
}

// RawEvent is a provider-supplied event, reduced to the fields the
// dashboard consumes.
type RawEvent struct {
	ID          string
	Summary     string
	Description string
	Start       EventTime
	End         EventTime
	ColorID     string
}

// NormalizedEvent is the aggregation-ready view of one RawEvent.
// Minutes is always positive; events that cannot yield a positive
// duration are dropped during normalization, never stored as zero.
type NormalizedEvent struct {
	ID           string `json:"id"`
	Tag          string `json:"tag"`
	Title        string `json:"summary"`
	Minutes      int    `json:"minutes"`
	Start        string `json:"start"`
	End          string `json:"end"`
	CalendarID   string `json:"calendarId,omitempty"`
	CalendarName string `json:"calendarName,omitempty"`
	AllDay       bool   `json:"allDay"`
}

const untitled = "(no title)"

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseInstant(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimestamp parses an event timestamp in any of the accepted
// layouts, all-day dates included.
func ParseTimestamp(value string) (time.Time, bool) {
	return parseInstant(value)
}

// DurationMinutes computes the wall-clock duration of a raw event,
// rounded to whole minutes. It returns 0 when either bound is missing
// or unparseable, or when the end does not come after the start.
func DurationMinutes(raw RawEvent) int {
	start, ok := parseInstant(raw.Start.Value())
	if !ok {
		return 0
	}
	end, ok := parseInstant(raw.End.Value())
	if !ok {
		return 0
	}
	diff := end.Sub(start)
	if diff <= 0 {
		return 0
	}
	return int(math.Round(diff.Minutes()))
}

// DayKey returns the YYYY-MM-DD calendar day of the event's start:
// the provider's date field verbatim for all-day events, the date
// prefix of the start value otherwise. Empty when the start is absent.
func DayKey(raw RawEvent) string {
	if raw.Start.Date != "" {
		return raw.Start.Date
	}
	if len(raw.Start.DateTime) >= 10 {
		return raw.Start.DateTime[:10]
	}
	return ""
}

// IsAllDay reports whether the event carries a date-only start and no
// date-time start.
func IsAllDay(raw RawEvent) bool {
	return raw.Start.Date != "" && raw.Start.DateTime == ""
}

// Normalize converts one raw event into its normalized form. The
// second return value is false when the event carries no positive
// duration or no resolvable day; such events are filtered, not
// errors.
func Normalize(raw RawEvent, calendarID, calendarName string) (NormalizedEvent, bool) {
	minutes := DurationMinutes(raw)
	if minutes <= 0 {
		return NormalizedEvent{}, false
	}
	day := DayKey(raw)
	if day == "" {
		return NormalizedEvent{}, false
	}

	title := raw.Summary
	if title == "" {
		title = untitled
	}

	return NormalizedEvent{
		ID:           raw.ID,
		Tag:          ExtractTag(raw.Summary),
		Title:        title,
		Minutes:      minutes,
		Start:        raw.Start.Value(),
		End:          raw.End.Value(),
		CalendarID:   calendarID,
		CalendarName: calendarName,
		AllDay:       IsAllDay(raw),
	}, true
}
