// Package gcal is the Google Calendar provider gateway. It owns the
// only dependency on the Google SDK; everything past this boundary
// works with event.RawEvent values.
package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"studydash/internal/event"
	"studydash/internal/metrics"
)

// DefaultCalendarColor stands in when the provider reports no
// background color for a calendar.
const DefaultCalendarColor = "#4285f4"

const (
	calendarListPageSize = 250
	eventsPageSize       = 2500
)

// CalendarInfo is one entry of the user's calendar list.
type CalendarInfo struct {
	ID              string `json:"id"`
	Summary         string `json:"summary"`
	Primary         bool   `json:"primary"`
	AccessRole      string `json:"accessRole"`
	BackgroundColor string `json:"backgroundColor"`
}

// EventInput is the payload for event creation and update.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Client calls the Calendar API on behalf of one user.
type Client struct {
	svc *calendar.Service
}

// NewClient builds a per-user client from an OAuth token source. The
// source is also how refreshed tokens escape: wrap it before passing
// it in if they need to be persisted.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("initializing calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListCalendars returns the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	defer metrics.ObserveGatewayLatency(ctx, "calendars.list", time.Now())

	resp, err := c.svc.CalendarList.List().MaxResults(calendarListPageSize).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(resp.Items))
	for _, item := range resp.Items {
		color := item.BackgroundColor
		if color == "" {
			color = DefaultCalendarColor
		}
		calendars = append(calendars, CalendarInfo{
			ID:              item.Id,
			Summary:         item.Summary,
			Primary:         item.Primary,
			AccessRole:      item.AccessRole,
			BackgroundColor: color,
		})
	}
	return calendars, nil
}

// ListAllEvents fetches every event of one calendar in the window,
// following continuation tokens until the provider returns none.
// Recurring events arrive pre-expanded, ordered by start time.
func (c *Client) ListAllEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]event.RawEvent, error) {
	defer metrics.ObserveGatewayLatency(ctx, "events.list", time.Now())

	var all []event.RawEvent
	pageToken := ""
	for {
		call := c.svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(eventsPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("listing events for %s: %w", calendarID, err)
		}
		for _, item := range resp.Items {
			all = append(all, fromAPIEvent(item))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return all, nil
		}
	}
}

// CreateEvent inserts a timed event into a calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (event.RawEvent, error) {
	defer metrics.ObserveGatewayLatency(ctx, "events.insert", time.Now())

	created, err := c.svc.Events.Insert(calendarID, toAPIEvent(input)).Context(ctx).Do()
	if err != nil {
		return event.RawEvent{}, fmt.Errorf("creating event in %s: %w", calendarID, err)
	}
	return fromAPIEvent(created), nil
}

// UpdateEvent patches an existing event with the full payload shape.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (event.RawEvent, error) {
	defer metrics.ObserveGatewayLatency(ctx, "events.patch", time.Now())

	updated, err := c.svc.Events.Patch(calendarID, eventID, toAPIEvent(input)).Context(ctx).Do()
	if err != nil {
		return event.RawEvent{}, fmt.Errorf("updating event %s in %s: %w", eventID, calendarID, err)
	}
	return fromAPIEvent(updated), nil
}

// DeleteEvent removes an event from a calendar.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	defer metrics.ObserveGatewayLatency(ctx, "events.delete", time.Now())

	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %s from %s: %w", eventID, calendarID, err)
	}
	return nil
}

func fromAPIEvent(item *calendar.Event) event.RawEvent {
	raw := event.RawEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		ColorID:     item.ColorId,
	}
	if item.Start != nil {
		raw.Start = event.EventTime{Date: item.Start.Date, DateTime: item.Start.DateTime}
	}
	if item.End != nil {
		raw.End = event.EventTime{Date: item.End.Date, DateTime: item.End.DateTime}
	}
	return raw
}

func toAPIEvent(input EventInput) *calendar.Event {
	return &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}
}
