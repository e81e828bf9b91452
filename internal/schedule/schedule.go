// Package schedule merges events from one or many calendars into the
// single display list the week view renders and edits.
package schedule

import (
	"sort"

	"studydash/internal/event"
)

// Source is one calendar's contribution to the merged schedule.
type Source struct {
	CalendarID   string
	CalendarName string
	Color        string
	Events       []event.RawEvent
}

// EventProps carries the attribution the editor needs to round-trip a
// merged event back to its owning calendar.
type EventProps struct {
	CalendarID   string `json:"calendarId"`
	EventID      string `json:"eventId"`
	Description  string `json:"description"`
	CalendarName string `json:"calendarName"`
}

// DisplayEvent is one week-view entry, shaped for the calendar
// widget.
type DisplayEvent struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Start           string     `json:"start"`
	End             string     `json:"end"`
	AllDay          bool       `json:"allDay"`
	BackgroundColor string     `json:"backgroundColor"`
	BorderColor     string     `json:"borderColor"`
	TextColor       string     `json:"textColor"`
	Props           EventProps `json:"extendedProps"`
}

// Merge flattens per-calendar events into one display list. Events
// missing a start or end are dropped; ids are namespaced by calendar
// so the same provider id from two calendars cannot collide. The
// result is sorted by start then id, so any per-calendar fetch order
// produces the same list.
func Merge(sources []Source) []DisplayEvent {
	var merged []DisplayEvent

	for _, src := range sources {
		bg := src.Color
		if _, ok := NormalizeHexColor(bg); !ok {
			bg = DefaultEventColor
		}
		text := PickEventTextColor(bg)

		for _, raw := range src.Events {
			start := raw.Start.Value()
			end := raw.End.Value()
			if start == "" || end == "" {
				continue
			}
			title := raw.Summary
			if title == "" {
				title = "(no title)"
			}
			merged = append(merged, DisplayEvent{
				ID:              src.CalendarID + ":" + raw.ID,
				Title:           title,
				Start:           start,
				End:             end,
				AllDay:          event.IsAllDay(raw),
				BackgroundColor: bg,
				BorderColor:     bg,
				TextColor:       text,
				Props: EventProps{
					CalendarID:   src.CalendarID,
					EventID:      raw.ID,
					Description:  raw.Description,
					CalendarName: src.CalendarName,
				},
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Start != merged[j].Start {
			return merged[i].Start < merged[j].Start
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}
