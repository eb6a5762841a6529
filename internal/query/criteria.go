// Package query holds the pure filtering and aggregation logic behind the
// read endpoints. Nothing here mutates its inputs or touches storage.
package query

import (
	"net/url"
	"strings"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

// SourceDashboardPipeline selects the pipeline widget's pre-filter.
const SourceDashboardPipeline = "dashboard_pipeline"

// Criteria is the set of optional interview filters. Zero values disable a filter.
type Criteria struct {
	From         string
	To           string
	Competitors  []string
	Outcomes     []domain.Outcome
	ProgramIDs   []string
	UpcomingOnly bool
	Source       string
}

// ParseCriteria reads filters from query parameters. Multi-value parameters
// are comma-separated and empty items are dropped.
func ParseCriteria(q url.Values) Criteria {
	c := Criteria{
		From:         strings.TrimSpace(q.Get("from")),
		To:           strings.TrimSpace(q.Get("to")),
		Competitors:  SplitList(q.Get("competitors")),
		ProgramIDs:   SplitList(q.Get("programIds")),
		UpcomingOnly: q.Get("upcomingOnly") == "true",
		Source:       q.Get("source"),
	}
	for _, o := range SplitList(q.Get("outcomes")) {
		c.Outcomes = append(c.Outcomes, domain.Outcome(o))
	}
	return c
}

// Values is the inverse of ParseCriteria.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	set := func(key string, items []string) {
		if len(items) > 0 {
			v.Set(key, strings.Join(items, ","))
		}
	}
	if c.From != "" {
		v.Set("from", c.From)
	}
	if c.To != "" {
		v.Set("to", c.To)
	}
	set("competitors", c.Competitors)
	set("programIds", c.ProgramIDs)
	outcomes := make([]string, len(c.Outcomes))
	for i, o := range c.Outcomes {
		outcomes[i] = string(o)
	}
	set("outcomes", outcomes)
	if c.UpcomingOnly {
		v.Set("upcomingOnly", "true")
	}
	if c.Source != "" {
		v.Set("source", c.Source)
	}
	return v
}

// SplitList splits a comma-separated value, trimming items and dropping empty ones.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Range is an inclusive time window.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, both ends included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ParseRange parses an inclusive window. ok is false when either bound is
// empty, in which case no date filter applies. Reversed bounds are swapped.
func ParseRange(from, to string) (r Range, ok bool, err error) {
	if from == "" || to == "" {
		return Range{}, false, nil
	}
	start, err := domain.ParseDate(from)
	if err != nil {
		return Range{}, false, err
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return Range{}, false, err
	}
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}, true, nil
}

// TrailingWindow is the six months up to the end of the day containing now,
// in now's location.
func TrailingWindow(now time.Time) Range {
	y, m, d := now.Date()
	end := time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Millisecond), now.Location())
	return Range{Start: subMonths(end, 6), End: end}
}

// subMonths moves t back n calendar months, clamping to the last day of the
// target month instead of overflowing into the next one.
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, -n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return first.AddDate(0, 0, d-1)
}
