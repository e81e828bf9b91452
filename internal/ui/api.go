package ui

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"studydash/internal/auth"
	"studydash/internal/dashboard"
	"studydash/internal/dates"
	"studydash/internal/http/errors"
)

const (
	defaultSpanDays = 7
	// maxSpanDays caps the requested window; the report materializes
	// one stacked row per day, so an uncapped span is an easy way to
	// make the server build an enormous response.
	maxSpanDays = 366
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// gateway resolves the request's session to a per-user calendar
// gateway.
func (h *Handler) gateway(w http.ResponseWriter, r *http.Request) (dashboard.Gateway, bool) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		errors.JSONError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	gw, err := h.gateways.ForSession(r.Context(), session)
	if err != nil {
		errors.InternalError(w, r, err, "failed to build calendar client")
		return nil, false
	}
	return gw, true
}

// windowQuery resolves the days/page query parameters to a study
// window anchored on today. days defaults to one week; page 0 is the
// most recent window.
func (h *Handler) windowQuery(r *http.Request) (dates.Window, string) {
	q := r.URL.Query()

	days := defaultSpanDays
	if v := q.Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxSpanDays {
			return dates.Window{}, "days must be an integer between 1 and 366"
		}
		days = parsed
	}

	page := 0
	if v := q.Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return dates.Window{}, "page must be a non-negative integer"
		}
		page = parsed
	}

	anchor := dates.FormatDay(h.now().In(h.loc))
	return dates.ResolveStudyWindow(anchor, days, page), ""
}

func (h *Handler) apiError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case stderrors.Is(err, dashboard.ErrCalendarNotFound):
		errors.JSONError(w, http.StatusNotFound, err.Error())
	case stderrors.Is(err, dashboard.ErrInvalidDraft):
		errors.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		errors.InternalError(w, r, err, message)
	}
}

// Me returns the signed-in user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		errors.JSONError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":      session.Subject,
			"email":   session.Email,
			"name":    session.DisplayName,
			"picture": session.Picture,
		},
	})
}

// Calendars lists the user's calendars.
func (h *Handler) Calendars(w http.ResponseWriter, r *http.Request) {
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	calendars, err := gw.ListCalendars(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to load calendars")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calendars": calendars})
}

// Summary returns per-calendar totals for the requested window.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	window, badParam := h.windowQuery(r)
	if badParam != "" {
		errors.JSONError(w, http.StatusBadRequest, badParam)
		return
	}
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	summary, err := h.dashboard.Overall(r.Context(), gw, window)
	if err != nil {
		h.apiError(w, r, err, "Failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// StudyReport returns the tag-partitioned study report.
func (h *Handler) StudyReport(w http.ResponseWriter, r *http.Request) {
	window, badParam := h.windowQuery(r)
	if badParam != "" {
		errors.JSONError(w, http.StatusBadRequest, badParam)
		return
	}
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	rep, err := h.dashboard.StudyReport(r.Context(), gw, r.URL.Query().Get("calendarId"), window)
	if err != nil {
		h.apiError(w, r, err, "Failed to build study report")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// EventsRange returns the merged week schedule. calendarId "all" (or
// absent) merges every calendar.
func (h *Handler) EventsRange(w http.ResponseWriter, r *http.Request) {
	weekStart := r.URL.Query().Get("weekStart")
	if weekStart == "" {
		weekStart = dates.StartOfWeek(dates.FormatDay(h.now().In(h.loc)))
	} else if !dates.IsDayKey(weekStart) {
		errors.JSONError(w, http.StatusBadRequest, "weekStart must be a YYYY-MM-DD date")
		return
	}

	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	events, err := h.dashboard.ScheduleWeek(r.Context(), gw, r.URL.Query().Get("calendarId"), weekStart)
	if err != nil {
		h.apiError(w, r, err, "Failed to load events in range")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"range":  dates.Window{Start: weekStart, End: dates.ShiftDay(weekStart, 6)},
		"events": events,
	})
}

// CreateEvent creates a calendar event from the editor draft.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var draft dashboard.EventDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		errors.BadRequestError(w, r, err, "invalid request body")
		return
	}
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	created, err := h.dashboard.CreateEvent(r.Context(), gw, draft)
	if err != nil {
		h.apiError(w, r, err, "Failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": created})
}

// UpdateEvent patches an existing event.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var draft dashboard.EventDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		errors.BadRequestError(w, r, err, "invalid request body")
		return
	}
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	updated, err := h.dashboard.UpdateEvent(r.Context(), gw, draft)
	if err != nil {
		h.apiError(w, r, err, "Failed to update event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": updated})
}

// DeleteEvent removes an event. Identifiers come from the body like
// the other event mutations.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CalendarID string `json:"calendarId"`
		EventID    string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errors.BadRequestError(w, r, err, "invalid request body")
		return
	}
	if payload.CalendarID == "" || payload.EventID == "" {
		errors.JSONError(w, http.StatusBadRequest, "calendarId and eventId are required")
		return
	}
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	if err := h.dashboard.DeleteEvent(r.Context(), gw, payload.CalendarID, payload.EventID); err != nil {
		h.apiError(w, r, err, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
