// Package dashboard composes the calendar gateway with the pure
// aggregation core. It owns calendar selection, window resolution and
// fan-out across calendars; everything it returns is built by the
// report and schedule packages.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"studydash/internal/dates"
	"studydash/internal/event"
	"studydash/internal/gcal"
	"studydash/internal/report"
	"studydash/internal/schedule"
)

// ErrCalendarNotFound reports that a caller-specified calendar id or
// name resolved to nothing.
var ErrCalendarNotFound = errors.New("calendar not found")

// Gateway is the calendar-provider surface the service consumes. The
// concrete implementation is gcal.Client; tests substitute a fake.
type Gateway interface {
	ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error)
	ListAllEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]event.RawEvent, error)
	CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (event.RawEvent, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, input gcal.EventInput) (event.RawEvent, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Service builds the dashboard views. It holds no per-request state;
// the gateway is passed per call because it is bound to one user's
// tokens.
type Service struct {
	loc           *time.Location
	studyCalendar string
	now           func() time.Time
}

// New constructs a service. studyCalendar is the display name the
// study view prefers when no calendar id is given; now is injected so
// tests can pin the today/month statistics.
func New(loc *time.Location, studyCalendar string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{loc: loc, studyCalendar: studyCalendar, now: now}
}

// CalendarRef identifies the calendar a report was built from.
type CalendarRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OverallSummary is the per-calendar totals payload.
type OverallSummary struct {
	Range             dates.Window           `json:"range"`
	Totals            []report.CalendarTotal `json:"totals"`
	GrandTotalMinutes int                    `json:"grandTotalMinutes"`
}

// StudyReport wraps the core report with the calendar and window it
// was built for.
type StudyReport struct {
	Calendar CalendarRef  `json:"calendar"`
	Range    dates.Window `json:"range"`
	report.Report
}

// Overall fetches every calendar's events for the window and sums
// them per calendar. Per-calendar fetches run concurrently; the
// reduction is commutative, so completion order cannot change the
// result.
func (s *Service) Overall(ctx context.Context, gw Gateway, window dates.Window) (OverallSummary, error) {
	calendars, err := gw.ListCalendars(ctx)
	if err != nil {
		return OverallSummary{}, err
	}

	results, err := s.fetchAll(ctx, gw, calendars, window)
	if err != nil {
		return OverallSummary{}, err
	}

	totals, grand := report.OverallTotals(results)
	return OverallSummary{Range: window, Totals: totals, GrandTotalMinutes: grand}, nil
}

// StudyReport builds the tag-partitioned study report. calendarID
// must resolve when given; with no id the study calendar is picked by
// name (exact, then partial), then the primary calendar, then the
// first.
func (s *Service) StudyReport(ctx context.Context, gw Gateway, calendarID string, window dates.Window) (StudyReport, error) {
	calendars, err := gw.ListCalendars(ctx)
	if err != nil {
		return StudyReport{}, err
	}

	target, err := s.resolveStudyCalendar(calendars, calendarID)
	if err != nil {
		return StudyReport{}, err
	}

	timeMin, timeMax := window.Bounds(s.loc)
	var raws []event.RawEvent
	if !timeMin.IsZero() {
		raws, err = gw.ListAllEvents(ctx, target.ID, timeMin, timeMax)
		if err != nil {
			return StudyReport{}, err
		}
	}

	return StudyReport{
		Calendar: CalendarRef{ID: target.ID, Name: target.Summary},
		Range:    window,
		Report:   report.Build(raws, window, s.now().In(s.loc)),
	}, nil
}

// StudyEvents returns the normalized study events for a window,
// uncapped, using the same calendar resolution as StudyReport. The
// export endpoint needs the full list rather than the report's recent
// slice.
func (s *Service) StudyEvents(ctx context.Context, gw Gateway, calendarID string, window dates.Window) (CalendarRef, []event.NormalizedEvent, error) {
	calendars, err := gw.ListCalendars(ctx)
	if err != nil {
		return CalendarRef{}, nil, err
	}

	target, err := s.resolveStudyCalendar(calendars, calendarID)
	if err != nil {
		return CalendarRef{}, nil, err
	}

	ref := CalendarRef{ID: target.ID, Name: target.Summary}
	timeMin, timeMax := window.Bounds(s.loc)
	if timeMin.IsZero() {
		return ref, nil, nil
	}

	raws, err := gw.ListAllEvents(ctx, target.ID, timeMin, timeMax)
	if err != nil {
		return CalendarRef{}, nil, err
	}

	var events []event.NormalizedEvent
	for _, raw := range raws {
		if ev, ok := event.Normalize(raw, target.ID, target.Summary); ok {
			events = append(events, ev)
		}
	}
	return ref, events, nil
}

// ScheduleWeek merges one or all calendars' events for the week
// starting at weekStart into the display list. calendarID "all" (or
// empty) targets every calendar; anything else must resolve.
func (s *Service) ScheduleWeek(ctx context.Context, gw Gateway, calendarID, weekStart string) ([]schedule.DisplayEvent, error) {
	calendars, err := gw.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}

	targets := calendars
	if calendarID != "" && calendarID != "all" {
		targets = nil
		for _, cal := range calendars {
			if cal.ID == calendarID {
				targets = []gcal.CalendarInfo{cal}
				break
			}
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrCalendarNotFound, calendarID)
		}
	}

	window := dates.Window{Start: weekStart, End: dates.ShiftDay(weekStart, 6)}
	results, err := s.fetchAll(ctx, gw, targets, window)
	if err != nil {
		return nil, err
	}

	sources := make([]schedule.Source, 0, len(results))
	for _, res := range results {
		sources = append(sources, schedule.Source{
			CalendarID:   res.ID,
			CalendarName: res.Name,
			Color:        res.Color,
			Events:       res.Events,
		})
	}
	return schedule.Merge(sources), nil
}

// fetchAll lists every target calendar's events concurrently. Result
// order follows the input calendar order regardless of completion
// order.
func (s *Service) fetchAll(ctx context.Context, gw Gateway, calendars []gcal.CalendarInfo, window dates.Window) ([]report.CalendarEvents, error) {
	timeMin, timeMax := window.Bounds(s.loc)

	results := make([]report.CalendarEvents, len(calendars))
	g, gctx := errgroup.WithContext(ctx)
	for i, cal := range calendars {
		results[i] = report.CalendarEvents{ID: cal.ID, Name: cal.Summary, Color: cal.BackgroundColor}
		if timeMin.IsZero() {
			continue
		}
		i, cal := i, cal
		g.Go(func() error {
			events, err := gw.ListAllEvents(gctx, cal.ID, timeMin, timeMax)
			if err != nil {
				return err
			}
			results[i].Events = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) resolveStudyCalendar(calendars []gcal.CalendarInfo, calendarID string) (gcal.CalendarInfo, error) {
	if calendarID != "" {
		for _, cal := range calendars {
			if cal.ID == calendarID {
				return cal, nil
			}
		}
		return gcal.CalendarInfo{}, fmt.Errorf("%w: %s", ErrCalendarNotFound, calendarID)
	}

	if len(calendars) == 0 {
		return gcal.CalendarInfo{}, fmt.Errorf("%w: %s", ErrCalendarNotFound, s.studyCalendar)
	}
	for _, cal := range calendars {
		if cal.Summary == s.studyCalendar {
			return cal, nil
		}
	}
	for _, cal := range calendars {
		if strings.Contains(cal.Summary, s.studyCalendar) {
			return cal, nil
		}
	}
	for _, cal := range calendars {
		if cal.Primary {
			return cal, nil
		}
	}
	return calendars[0], nil
}
