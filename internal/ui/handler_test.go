package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studydash/internal/auth"
	"studydash/internal/config"
	"studydash/internal/dashboard"
	"studydash/internal/event"
	"studydash/internal/gcal"
	"studydash/internal/store"
)

type fakeGateway struct {
	calendars []gcal.CalendarInfo
	events    map[string][]event.RawEvent
	deleted   []string
}

func (f *fakeGateway) ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error) {
	return f.calendars, nil
}

func (f *fakeGateway) ListAllEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]event.RawEvent, error) {
	return f.events[calendarID], nil
}

func (f *fakeGateway) CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (event.RawEvent, error) {
	return event.RawEvent{ID: "created", Summary: input.Summary}, nil
}

func (f *fakeGateway) UpdateEvent(ctx context.Context, calendarID, eventID string, input gcal.EventInput) (event.RawEvent, error) {
	return event.RawEvent{ID: eventID, Summary: input.Summary}, nil
}

func (f *fakeGateway) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	f.deleted = append(f.deleted, calendarID+":"+eventID)
	return nil
}

type stubFactory struct {
	gw dashboard.Gateway
}

func (s stubFactory) ForSession(ctx context.Context, session *store.Session) (dashboard.Gateway, error) {
	return s.gw, nil
}

var testLoc = time.FixedZone("JST", 9*3600)

func testHandler(gw dashboard.Gateway) *Handler {
	now := func() time.Time { return time.Date(2024, 6, 12, 15, 0, 0, 0, testLoc) }
	return &Handler{
		dashboard: dashboard.New(testLoc, "勉強", now),
		gateways:  stubFactory{gw: gw},
		templates: templates,
		loc:       testLoc,
		now:       now,
	}
}

func authedRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	session := &store.Session{ID: "sid", Subject: "sub", Email: "user@example.com", DisplayName: "User"}
	return r.WithContext(auth.WithSession(r.Context(), session))
}

func studyGateway() *fakeGateway {
	return &fakeGateway{
		calendars: []gcal.CalendarInfo{
			{ID: "study", Summary: "勉強", BackgroundColor: "#33b679"},
		},
		events: map[string][]event.RawEvent{
			"study": {
				{
					ID:      "ev1",
					Summary: "[英語] 単語",
					Start:   event.EventTime{DateTime: "2024-06-12T09:00:00+09:00"},
					End:     event.EventTime{DateTime: "2024-06-12T10:30:00+09:00"},
				},
			},
		},
	}
}

func TestNewHandlerClockInjection(t *testing.T) {
	cfg := &config.Config{Location: testLoc}
	svc := dashboard.New(testLoc, "勉強", nil)

	fixed := time.Date(2024, 6, 12, 15, 0, 0, 0, testLoc)
	h := NewHandler(cfg, nil, svc, func() time.Time { return fixed })
	assert.Equal(t, fixed, h.now())

	h = NewHandler(cfg, nil, svc, nil)
	require.NotNil(t, h.now)
	assert.WithinDuration(t, time.Now(), h.now(), time.Minute)
}

func TestMe(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.Me(rec, authedRequest(http.MethodGet, "/api/me", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "user@example.com", payload.User.Email)
}

func TestMeUnauthenticated(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authenticated")
}

func TestStudyReport(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.StudyReport(rec, authedRequest(http.MethodGet, "/api/study-report?days=7", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Calendar struct {
			ID string `json:"id"`
		} `json:"calendar"`
		Stats struct {
			TotalMinutes int `json:"totalMinutes"`
		} `json:"stats"`
		Tags []struct {
			Tag     string `json:"tag"`
			Minutes int    `json:"minutes"`
		} `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "study", payload.Calendar.ID)
	assert.Equal(t, 90, payload.Stats.TotalMinutes)
	require.Len(t, payload.Tags, 1)
	assert.Equal(t, "英語", payload.Tags[0].Tag)
}

func TestStudyReportBadDays(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.StudyReport(rec, authedRequest(http.MethodGet, "/api/study-report?days=zero", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "days must be an integer between 1 and 366")
}

func TestStudyReportDaysCapped(t *testing.T) {
	h := testHandler(studyGateway())

	for _, days := range []string{"367", "500000"} {
		rec := httptest.NewRecorder()
		h.StudyReport(rec, authedRequest(http.MethodGet, "/api/study-report?days="+days, ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", days)
		assert.Contains(t, rec.Body.String(), "days must be an integer between 1 and 366")
	}

	// A full year still resolves.
	rec := httptest.NewRecorder()
	h.StudyReport(rec, authedRequest(http.MethodGet, "/api/study-report?days=366", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStudyReportUnknownCalendar(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.StudyReport(rec, authedRequest(http.MethodGet, "/api/study-report?calendarId=nope", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")
}

func TestSummary(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.Summary(rec, authedRequest(http.MethodGet, "/api/summary?days=7", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Totals []struct {
			CalendarID   string `json:"calendarId"`
			TotalMinutes int    `json:"totalMinutes"`
		} `json:"totals"`
		GrandTotalMinutes int `json:"grandTotalMinutes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Totals, 1)
	assert.Equal(t, "study", payload.Totals[0].CalendarID)
	assert.Equal(t, 90, payload.GrandTotalMinutes)
}

func TestEventsRangeBadWeekStart(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.EventsRange(rec, authedRequest(http.MethodGet, "/api/events-range?weekStart=June", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsRange(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.EventsRange(rec, authedRequest(http.MethodGet, "/api/events-range?weekStart=2024-06-10&calendarId=all", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Range struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"range"`
		Events []struct {
			ID string `json:"id"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "2024-06-10", payload.Range.Start)
	assert.Equal(t, "2024-06-16", payload.Range.End)
	require.Len(t, payload.Events, 1)
	assert.Equal(t, "study:ev1", payload.Events[0].ID)
}

func TestCreateEvent(t *testing.T) {
	h := testHandler(studyGateway())

	body := `{"calendarId":"study","tag":"数学","title":"微積","startDateTime":"2024-06-12T20:00","endDateTime":"2024-06-12T21:00"}`
	rec := httptest.NewRecorder()
	h.CreateEvent(rec, authedRequest(http.MethodPost, "/api/events", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	var payload struct {
		Event struct {
			Summary string `json:"summary"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "[数学] 微積", payload.Event.Summary)
}

func TestCreateEventMissingFields(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.CreateEvent(rec, authedRequest(http.MethodPost, "/api/events", `{"calendarId":"study"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEventMissingIDs(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.DeleteEvent(rec, authedRequest(http.MethodDelete, "/api/events", `{"calendarId":"study"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "calendarId and eventId are required")
}

func TestDeleteEvent(t *testing.T) {
	gw := studyGateway()
	h := testHandler(gw)

	rec := httptest.NewRecorder()
	h.DeleteEvent(rec, authedRequest(http.MethodDelete, "/api/events", `{"calendarId":"study","eventId":"ev1"}`))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"study:ev1"}, gw.deleted)
}

func TestExportStudyReportICS(t *testing.T) {
	h := testHandler(studyGateway())

	rec := httptest.NewRecorder()
	h.ExportStudyReport(rec, authedRequest(http.MethodGet, "/api/study-report/export.ics?days=7", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "ev1@study")
}
