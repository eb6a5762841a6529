package query

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

// Apply returns the interviews matching every active filter in c, in input
// order. Filters run upcoming, date, competitor, outcome, then program. A
// malformed date bound is logged and the date filter skipped.
func Apply(items []domain.Interview, c Criteria, logger *slog.Logger) []domain.Interview {
	if logger == nil {
		logger = slog.Default()
	}
	out := slices.Clone(items)

	if c.UpcomingOnly {
		out = keep(out, func(i domain.Interview) bool { return i.Status.Upcoming() })
	}

	window, ok, err := ParseRange(c.From, c.To)
	switch {
	case err != nil:
		logger.Warn("ignoring invalid date filter", "from", c.From, "to", c.To, "error", err)
	case ok:
		out = keep(out, func(i domain.Interview) bool { return inRange(i.Date, window) })
	}

	if len(c.Competitors) > 0 {
		names := make([]string, len(c.Competitors))
		for i, n := range c.Competitors {
			names[i] = strings.ToLower(n)
		}
		out = keep(out, func(i domain.Interview) bool { return i.MentionsCompetitor(names) })
	}

	if len(c.Outcomes) > 0 {
		out = keep(out, func(i domain.Interview) bool {
			return i.Outcome != "" && slices.Contains(c.Outcomes, i.Outcome)
		})
	}

	if len(c.ProgramIDs) > 0 {
		out = keep(out, func(i domain.Interview) bool {
			return i.ProgramID != "" && slices.Contains(c.ProgramIDs, i.ProgramID)
		})
	}
	return out
}

// PipelineWindow keeps interviews that are upcoming or dated within the
// trailing six months.
func PipelineWindow(items []domain.Interview, now time.Time) []domain.Interview {
	window := TrailingWindow(now)
	return keep(slices.Clone(items), func(i domain.Interview) bool {
		return i.Status.Upcoming() || inRange(i.Date, window)
	})
}

// inRange excludes records whose date does not parse.
func inRange(date string, r Range) bool {
	t, err := domain.ParseDate(date)
	return err == nil && r.Contains(t)
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}
