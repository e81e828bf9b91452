package report

import (
	"sort"

	"studydash/internal/event"
)

// Aggregation is the fold of a set of normalized events into per-day,
// per-tag minute buckets. Accumulation is a commutative sum, so the
// result does not depend on input order; TagOrder records first
// encounter only to break ties when ranking tags.
type Aggregation struct {
	ByDayTag     map[string]map[string]int
	TagTotals    map[string]int
	TagOrder     []string
	TotalMinutes int
}

// Aggregate folds events into day/tag minute totals. Events without a
// positive duration or a resolvable day are excluded from every total.
func Aggregate(events []event.NormalizedEvent) Aggregation {
	agg := Aggregation{
		ByDayTag:  make(map[string]map[string]int),
		TagTotals: make(map[string]int),
	}

	for _, ev := range events {
		if ev.Minutes <= 0 {
			continue
		}
		day := ev.Start
		if len(day) < 10 {
			continue
		}
		day = day[:10]

		dayMap, ok := agg.ByDayTag[day]
		if !ok {
			dayMap = make(map[string]int)
			agg.ByDayTag[day] = dayMap
		}
		if _, seen := agg.TagTotals[ev.Tag]; !seen {
			agg.TagOrder = append(agg.TagOrder, ev.Tag)
		}
		dayMap[ev.Tag] += ev.Minutes
		agg.TagTotals[ev.Tag] += ev.Minutes
		agg.TotalMinutes += ev.Minutes
	}

	return agg
}

// OrderedTags ranks tags by total minutes descending, ties broken by
// first-encounter order.
func (a Aggregation) OrderedTags() []string {
	tags := make([]string, len(a.TagOrder))
	copy(tags, a.TagOrder)
	sort.SliceStable(tags, func(i, j int) bool {
		return a.TagTotals[tags[i]] > a.TagTotals[tags[j]]
	})
	return tags
}
