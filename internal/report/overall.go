package report

import (
	"sort"

	"studydash/internal/event"
)

// CalendarEvents pairs one calendar's metadata with its fetched
// events.
type CalendarEvents struct {
	ID     string
	Name   string
	Color  string
	Events []event.RawEvent
}

// CalendarTotal is one calendar's share of the overall summary.
type CalendarTotal struct {
	CalendarID   string  `json:"calendarId"`
	CalendarName string  `json:"calendarName"`
	EventCount   int     `json:"eventCount"`
	TotalMinutes int     `json:"totalMinutes"`
	TotalHours   float64 `json:"totalHours"`
	Color        string  `json:"color"`
}

// OverallTotals sums event durations per calendar and returns the
// totals ordered by minutes descending, plus the grand total. The
// event count includes events that contribute no duration; the minute
// totals do not.
func OverallTotals(results []CalendarEvents) ([]CalendarTotal, int) {
	totals := make([]CalendarTotal, 0, len(results))
	grand := 0

	for _, cal := range results {
		minutes := 0
		for _, raw := range cal.Events {
			minutes += event.DurationMinutes(raw)
		}
		totals = append(totals, CalendarTotal{
			CalendarID:   cal.ID,
			CalendarName: cal.Name,
			EventCount:   len(cal.Events),
			TotalMinutes: minutes,
			TotalHours:   roundHours(minutes),
			Color:        cal.Color,
		})
		grand += minutes
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalMinutes > totals[j].TotalMinutes
	})
	return totals, grand
}
