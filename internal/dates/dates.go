// Package dates implements calendar-day arithmetic on YYYY-MM-DD day
// keys. All computation is calendar-date based, never elapsed-time
// based, so month/year boundaries and DST transitions can never skip
// or duplicate a day.
package dates

import (
	"regexp"
	"time"
)

const dayLayout = "2006-01-02"

var dayKeyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Window is an inclusive calendar-day range.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// parseDay parses a strict YYYY-MM-DD day key at midnight UTC. UTC is
// an arbitrary fixed zone here; only the calendar date matters.
func parseDay(day string) (time.Time, bool) {
	if !dayKeyRe.MatchString(day) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dayLayout, day, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsDayKey reports whether s is a well-formed YYYY-MM-DD day key.
func IsDayKey(s string) bool {
	_, ok := parseDay(s)
	return ok
}

// FormatDay renders the calendar date of t as a day key.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// EnumerateDays returns the inclusive day-key sequence from start to
// end. Malformed bounds or start after end yield an empty sequence;
// callers treat that as a valid "no data" state.
func EnumerateDays(start, end string) []string {
	cursor, ok := parseDay(start)
	if !ok {
		return nil
	}
	last, ok := parseDay(end)
	if !ok || cursor.After(last) {
		return nil
	}

	var days []string
	for !cursor.After(last) {
		days = append(days, FormatDay(cursor))
		cursor = cursor.AddDate(0, 0, 1)
	}
	return days
}

// StartOfWeek returns the Monday on or before day (ISO week start).
// Malformed input is returned unchanged.
func StartOfWeek(day string) string {
	t, ok := parseDay(day)
	if !ok {
		return day
	}
	diff := int(time.Monday - t.Weekday())
	if t.Weekday() == time.Sunday {
		diff = -6
	}
	return FormatDay(t.AddDate(0, 0, diff))
}

// ShiftDay moves a day key by a signed number of calendar days.
// Malformed input is returned unchanged.
func ShiftDay(day string, deltaDays int) string {
	t, ok := parseDay(day)
	if !ok {
		return day
	}
	return FormatDay(t.AddDate(0, 0, deltaDays))
}

// ResolveStudyWindow computes the aggregation window for the study
// report pager. Page 0 is the most recent window; each increment moves
// one full span back. A 7-day span is Monday-aligned on the anchor's
// week; any other span ends at the anchor itself.
func ResolveStudyWindow(anchorDay string, spanDays, page int) Window {
	if spanDays == 7 {
		start := ShiftDay(StartOfWeek(anchorDay), -page*7)
		return Window{Start: start, End: ShiftDay(start, 6)}
	}
	end := ShiftDay(anchorDay, -page*spanDays)
	return Window{Start: ShiftDay(end, -(spanDays - 1)), End: end}
}

// Bounds converts the window to inclusive instants in loc, from the
// first midnight to the last second of the final day. The zero time
// pair signals a malformed window.
func (w Window) Bounds(loc *time.Location) (time.Time, time.Time) {
	start, ok := parseDay(w.Start)
	if !ok {
		return time.Time{}, time.Time{}
	}
	end, ok := parseDay(w.End)
	if !ok || start.After(end) {
		return time.Time{}, time.Time{}
	}

	min := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	max := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, loc)
	return min, max
}
