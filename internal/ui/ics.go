package ui

import (
	"fmt"
	"net/http"

	ical "github.com/arran4/golang-ical"

	"studydash/internal/event"
	"studydash/internal/http/errors"
)

// ExportStudyReport serves the study window's normalized events as an
// iCalendar file, so study blocks can be re-imported into other
// calendar apps. Takes the same days/page/calendarId parameters as the
// report.
func (h *Handler) ExportStudyReport(w http.ResponseWriter, r *http.Request) {
	window, badParam := h.windowQuery(r)
	if badParam != "" {
		errors.JSONError(w, http.StatusBadRequest, badParam)
		return
	}
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}

	ref, events, err := h.dashboard.StudyEvents(r.Context(), gw, r.URL.Query().Get("calendarId"), window)
	if err != nil {
		h.apiError(w, r, err, "Failed to export study report")
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//studydash//study report//EN")
	cal.SetName(ref.Name)

	stamp := h.now().In(h.loc)
	for _, ev := range events {
		start, ok := event.ParseTimestamp(ev.Start)
		if !ok {
			continue
		}
		end, ok := event.ParseTimestamp(ev.End)
		if !ok {
			continue
		}

		ve := cal.AddEvent(fmt.Sprintf("%s@%s", ev.ID, ref.ID))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(ev.Title)
		ve.SetDescription(fmt.Sprintf("tag: %s / calendar: %s", ev.Tag, ev.CalendarName))
		if ev.AllDay {
			ve.SetAllDayStartAt(start)
			ve.SetAllDayEndAt(end)
		} else {
			ve.SetStartAt(start)
			ve.SetEndAt(end)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "study-report-"+window.Start+"-"+window.End+".ics"))
	_, _ = w.Write([]byte(cal.Serialize()))
}
