package gcal

import (
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestFromAPIEvent(t *testing.T) {
	item := &calendar.Event{
		Id:          "ev1",
		Summary:     "[英語] 単語復習",
		Description: "memo",
		ColorId:     "5",
		Start:       &calendar.EventDateTime{DateTime: "2024-06-10T09:00:00+09:00"},
		End:         &calendar.EventDateTime{DateTime: "2024-06-10T10:00:00+09:00"},
	}

	raw := fromAPIEvent(item)
	if raw.ID != "ev1" || raw.Summary != "[英語] 単語復習" || raw.Description != "memo" {
		t.Errorf("unexpected conversion: %+v", raw)
	}
	if raw.Start.DateTime != "2024-06-10T09:00:00+09:00" || raw.End.DateTime != "2024-06-10T10:00:00+09:00" {
		t.Errorf("unexpected bounds: %+v", raw)
	}
	if raw.ColorID != "5" {
		t.Errorf("ColorID = %q, want %q", raw.ColorID, "5")
	}
}

func TestFromAPIEventAllDay(t *testing.T) {
	item := &calendar.Event{
		Id:    "ev2",
		Start: &calendar.EventDateTime{Date: "2024-06-10"},
		End:   &calendar.EventDateTime{Date: "2024-06-11"},
	}

	raw := fromAPIEvent(item)
	if raw.Start.Date != "2024-06-10" || raw.Start.DateTime != "" {
		t.Errorf("unexpected start: %+v", raw.Start)
	}
}

func TestFromAPIEventMissingBounds(t *testing.T) {
	raw := fromAPIEvent(&calendar.Event{Id: "ev3"})
	if !raw.Start.IsZero() || !raw.End.IsZero() {
		t.Errorf("expected zero bounds, got %+v", raw)
	}
}

func TestToAPIEvent(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	input := EventInput{
		Summary:     "[英語] 単語復習",
		Description: "memo",
		Start:       time.Date(2024, 6, 10, 9, 0, 0, 0, loc),
		End:         time.Date(2024, 6, 10, 10, 0, 0, 0, loc),
		TimeZone:    "Asia/Tokyo",
	}

	ev := toAPIEvent(input)
	if ev.Start.DateTime != "2024-06-10T09:00:00+09:00" || ev.Start.TimeZone != "Asia/Tokyo" {
		t.Errorf("unexpected start: %+v", ev.Start)
	}
	if ev.End.DateTime != "2024-06-10T10:00:00+09:00" {
		t.Errorf("unexpected end: %+v", ev.End)
	}
}
