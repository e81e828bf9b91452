// Package report turns raw calendar events into the study report and
// the per-calendar totals the dashboard renders. Every function here
// is total over well-formed inputs: unusable events are filtered, bad
// windows produce empty series, and nothing reaches for the wall
// clock on its own.
package report

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"studydash/internal/dates"
	"studydash/internal/event"
)

// Stats summarizes study minutes for the dashboard header. Today and
// month are computed against the full normalized set, not the
// displayed window, so they can report time outside the visible
// chart. That follows the product's behavior and is intentional.
type Stats struct {
	TodayMinutes int `json:"todayMinutes"`
	MonthMinutes int `json:"monthMinutes"`
	TotalMinutes int `json:"totalMinutes"`
}

// TagTotal is one row of the tag ranking.
type TagTotal struct {
	Tag     string  `json:"tag"`
	Minutes int     `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// StackedRow is one day of the stacked series: hours per tag, with
// every ranked tag present even when zero.
type StackedRow struct {
	Day   string
	Tags  []string
	Hours map[string]float64
}

// MarshalJSON flattens the row into the chart-ready shape
// {"day": d, "<tag>": hours, ...}.
func (r StackedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"day":`)
	day, err := json.Marshal(r.Day)
	if err != nil {
		return nil, err
	}
	buf.Write(day)
	for _, tag := range r.Tags {
		key, err := json.Marshal(tag)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Hours[tag])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Report is the study view payload.
type Report struct {
	Stats        Stats                   `json:"stats"`
	Tags         []TagTotal              `json:"tags"`
	DailyStacked []StackedRow            `json:"dailyStacked"`
	Recent       []event.NormalizedEvent `json:"recent"`
}

const recentLimit = 20

// Build normalizes events, aggregates them, and assembles the report
// for the given window. now anchors the today/month stats and must be
// expressed in the calendar's local zone; it is injected so callers
// and tests control it.
func Build(raws []event.RawEvent, window dates.Window, now time.Time) Report {
	normalized := make([]event.NormalizedEvent, 0, len(raws))
	for _, raw := range raws {
		if ev, ok := event.Normalize(raw, "", ""); ok {
			normalized = append(normalized, ev)
		}
	}

	agg := Aggregate(normalized)
	tags := agg.OrderedTags()
	days := dates.EnumerateDays(window.Start, window.End)

	stacked := make([]StackedRow, 0, len(days))
	for _, day := range days {
		row := StackedRow{Day: day, Tags: tags, Hours: make(map[string]float64, len(tags))}
		for _, tag := range tags {
			row.Hours[tag] = roundHours(agg.ByDayTag[day][tag])
		}
		stacked = append(stacked, row)
	}

	todayKey := dates.FormatDay(now)
	monthPrefix := todayKey[:7]
	var todayMinutes, monthMinutes int
	for _, ev := range normalized {
		if strings.HasPrefix(ev.Start, todayKey) {
			todayMinutes += ev.Minutes
		}
		if len(ev.Start) >= 7 && ev.Start[:7] == monthPrefix {
			monthMinutes += ev.Minutes
		}
	}

	// Start values are zero-padded ISO-like strings, so lexicographic
	// order is chronological order.
	recent := make([]event.NormalizedEvent, len(normalized))
	copy(recent, normalized)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Start > recent[j].Start
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	tagTotals := make([]TagTotal, 0, len(tags))
	for _, tag := range tags {
		tagTotals = append(tagTotals, TagTotal{
			Tag:     tag,
			Minutes: agg.TagTotals[tag],
			Hours:   roundHours(agg.TagTotals[tag]),
		})
	}

	return Report{
		Stats: Stats{
			TodayMinutes: todayMinutes,
			MonthMinutes: monthMinutes,
			TotalMinutes: agg.TotalMinutes,
		},
		Tags:         tagTotals,
		DailyStacked: stacked,
		Recent:       recent,
	}
}

func roundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}
