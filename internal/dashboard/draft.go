package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studydash/internal/event"
	"studydash/internal/gcal"
)

// ErrInvalidDraft reports a draft that failed validation before any
// provider call was made.
var ErrInvalidDraft = errors.New("invalid event draft")

// EventDraft is the immutable editor payload for creating or updating
// one event. Start and End accept datetime-local or RFC3339 values.
type EventDraft struct {
	CalendarID  string `json:"calendarId"`
	EventID     string `json:"eventId"`
	Tag         string `json:"tag"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"startDateTime"`
	End         string `json:"endDateTime"`
	TimeZone    string `json:"timezone"`
}

var draftTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func (s *Service) parseDraftTime(value string) (time.Time, error) {
	for _, layout := range draftTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", value)
}

// validateDraft is a pure check run before any mutation call. It
// never modifies the draft; it either yields a provider payload or an
// ErrInvalidDraft describing the first problem found.
func (s *Service) validateDraft(draft EventDraft) (gcal.EventInput, error) {
	if strings.TrimSpace(draft.CalendarID) == "" {
		return gcal.EventInput{}, fmt.Errorf("%w: calendarId is required", ErrInvalidDraft)
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return gcal.EventInput{}, fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}
	if draft.Start == "" || draft.End == "" {
		return gcal.EventInput{}, fmt.Errorf("%w: startDateTime and endDateTime are required", ErrInvalidDraft)
	}

	start, err := s.parseDraftTime(draft.Start)
	if err != nil {
		return gcal.EventInput{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	end, err := s.parseDraftTime(draft.End)
	if err != nil {
		return gcal.EventInput{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if !end.After(start) {
		return gcal.EventInput{}, fmt.Errorf("%w: end must be after start", ErrInvalidDraft)
	}

	tz := draft.TimeZone
	if tz == "" {
		tz = s.loc.String()
	}

	return gcal.EventInput{
		Summary:     event.BuildTaggedTitle(draft.Tag, title),
		Description: draft.Description,
		Start:       start,
		End:         end,
		TimeZone:    tz,
	}, nil
}

// CreateEvent validates the draft and inserts it into its calendar.
func (s *Service) CreateEvent(ctx context.Context, gw Gateway, draft EventDraft) (event.RawEvent, error) {
	input, err := s.validateDraft(draft)
	if err != nil {
		return event.RawEvent{}, err
	}
	return gw.CreateEvent(ctx, draft.CalendarID, input)
}

// UpdateEvent validates the draft and patches the identified event.
func (s *Service) UpdateEvent(ctx context.Context, gw Gateway, draft EventDraft) (event.RawEvent, error) {
	if strings.TrimSpace(draft.EventID) == "" {
		return event.RawEvent{}, fmt.Errorf("%w: eventId is required", ErrInvalidDraft)
	}
	input, err := s.validateDraft(draft)
	if err != nil {
		return event.RawEvent{}, err
	}
	return gw.UpdateEvent(ctx, draft.CalendarID, draft.EventID, input)
}

// DeleteEvent removes one event from one calendar.
func (s *Service) DeleteEvent(ctx context.Context, gw Gateway, calendarID, eventID string) error {
	if strings.TrimSpace(calendarID) == "" || strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("%w: calendarId and eventId are required", ErrInvalidDraft)
	}
	return gw.DeleteEvent(ctx, calendarID, eventID)
}
