package schedule

import (
	"testing"

	"studydash/internal/event"
)

func rawTimed(id, summary, start, end string) event.RawEvent {
	return event.RawEvent{
		ID:      id,
		Summary: summary,
		Start:   event.EventTime{DateTime: start},
		End:     event.EventTime{DateTime: end},
	}
}

func TestMergeCompositeIDs(t *testing.T) {
	// The same provider id in two calendars must stay distinct.
	sources := []Source{
		{
			CalendarID: "calA", CalendarName: "A", Color: "#4285f4",
			Events: []event.RawEvent{rawTimed("ev1", "会議", "2024-06-10T09:00:00+09:00", "2024-06-10T10:00:00+09:00")},
		},
		{
			CalendarID: "calB", CalendarName: "B", Color: "#33b679",
			Events: []event.RawEvent{rawTimed("ev1", "授業", "2024-06-10T11:00:00+09:00", "2024-06-10T12:00:00+09:00")},
		},
	}

	merged := Merge(sources)
	if len(merged) != 2 {
		t.Fatalf("got %d events, want 2", len(merged))
	}
	if merged[0].ID != "calA:ev1" || merged[1].ID != "calB:ev1" {
		t.Errorf("composite ids = %q, %q", merged[0].ID, merged[1].ID)
	}
	if merged[0].Props.EventID != "ev1" || merged[0].Props.CalendarID != "calA" {
		t.Errorf("lost provider attribution: %+v", merged[0].Props)
	}
}

func TestMergeSortedByStart(t *testing.T) {
	sources := []Source{
		{
			CalendarID: "calB", CalendarName: "B",
			Events: []event.RawEvent{rawTimed("b1", "後", "2024-06-10T15:00:00+09:00", "2024-06-10T16:00:00+09:00")},
		},
		{
			CalendarID: "calA", CalendarName: "A",
			Events: []event.RawEvent{rawTimed("a1", "先", "2024-06-10T09:00:00+09:00", "2024-06-10T10:00:00+09:00")},
		},
	}

	merged := Merge(sources)
	mergedSwapped := Merge([]Source{sources[1], sources[0]})

	if len(merged) != 2 || merged[0].ID != "calA:a1" {
		t.Fatalf("unexpected order: %+v", merged)
	}
	for i := range merged {
		if merged[i].ID != mergedSwapped[i].ID {
			t.Errorf("merge result depends on source order at %d: %q vs %q", i, merged[i].ID, mergedSwapped[i].ID)
		}
	}
}

func TestMergeSkipsEventsWithoutBounds(t *testing.T) {
	sources := []Source{{
		CalendarID: "cal", CalendarName: "C",
		Events: []event.RawEvent{
			{ID: "no-end", Summary: "x", Start: event.EventTime{DateTime: "2024-06-10T09:00:00+09:00"}},
			{ID: "no-start", Summary: "y", End: event.EventTime{DateTime: "2024-06-10T10:00:00+09:00"}},
			rawTimed("ok", "z", "2024-06-10T09:00:00+09:00", "2024-06-10T10:00:00+09:00"),
		},
	}}

	merged := Merge(sources)
	if len(merged) != 1 || merged[0].ID != "cal:ok" {
		t.Errorf("expected only the bounded event, got %+v", merged)
	}
}

func TestMergeColorsAndAllDay(t *testing.T) {
	sources := []Source{
		{
			CalendarID: "cal1", CalendarName: "C1", Color: "#ffffff",
			Events: []event.RawEvent{{
				ID:    "d1",
				Start: event.EventTime{Date: "2024-06-10"},
				End:   event.EventTime{Date: "2024-06-11"},
			}},
		},
		{
			CalendarID: "cal2", CalendarName: "C2", Color: "not-a-color",
			Events: []event.RawEvent{rawTimed("t1", "会議", "2024-06-10T09:00:00+09:00", "2024-06-10T10:00:00+09:00")},
		},
	}

	merged := Merge(sources)
	if len(merged) != 2 {
		t.Fatalf("got %d events, want 2", len(merged))
	}

	allDay := merged[0]
	if !allDay.AllDay {
		t.Error("date-only event not flagged all-day")
	}
	if allDay.TextColor != darkForeground {
		t.Errorf("white calendar text color = %q, want dark", allDay.TextColor)
	}
	if allDay.Title != "(no title)" {
		t.Errorf("missing summary rendered as %q", allDay.Title)
	}

	timed := merged[1]
	if timed.BackgroundColor != DefaultEventColor || timed.BorderColor != DefaultEventColor {
		t.Errorf("malformed color not defaulted: %+v", timed)
	}
	if timed.TextColor != lightForeground {
		t.Errorf("default background text color = %q, want light", timed.TextColor)
	}
	if timed.AllDay {
		t.Error("timed event flagged all-day")
	}
}
