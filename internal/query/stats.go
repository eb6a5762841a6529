package query

import (
	"math"
	"sort"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

// chartMonths is the number of month buckets on the dashboard chart.
const chartMonths = 6

var buyerDecisionDrivers = []domain.BuyerDecisionDriver{
	{Driver: "Feature Set", Impact: 85},
	{Driver: "Pricing", Impact: 72},
	{Driver: "Customer Support", Impact: 68},
	{Driver: "User Experience (UX)", Impact: 65},
	{Driver: "Integration Capabilities", Impact: 55},
}

// WinRate is round(wins / (wins + losses) * 100), or 0 with no decided deals.
func WinRate(wins, losses int) int {
	if wins+losses == 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(wins+losses) * 100))
}

// DashboardStats summarizes the trailing six-month window ending today. It
// ignores request filters.
func DashboardStats(items []domain.Interview, now time.Time) domain.DashboardStats {
	window := TrailingWindow(now)

	type bucket struct {
		year  int
		month time.Month
		point domain.ChartPoint
	}
	buckets := make([]bucket, chartMonths)
	for i := range buckets {
		// Anchored on the 1st so AddDate never overflows into the next month.
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, i-(chartMonths-1), 0)
		buckets[i] = bucket{year: m.Year(), month: m.Month(), point: domain.ChartPoint{Name: m.Format("Jan")}}
	}

	var stats domain.DashboardStats
	var wins, losses int
	counts := map[string]int{}
	var order []string

	for _, iv := range items {
		t, err := domain.ParseDate(iv.Date)
		if err != nil || !window.Contains(t) {
			continue
		}
		stats.TotalInterviews++
		if iv.Status == domain.StatusCompleted {
			stats.CompletedInterviews++
		}
		switch {
		case iv.Outcome.IsWin():
			wins++
		case iv.Outcome.IsLoss():
			losses++
		}

		local := t.In(now.Location())
		for b := range buckets {
			if buckets[b].year == local.Year() && buckets[b].month == local.Month() {
				switch {
				case iv.Outcome.IsWin():
					buckets[b].point.Wins++
				case iv.Outcome.IsLoss():
					buckets[b].point.Losses++
				}
				break
			}
		}

		if iv.Report != nil {
			for _, c := range iv.Report.CompetitorsMentioned {
				if _, seen := counts[c.Name]; !seen {
					order = append(order, c.Name)
				}
				counts[c.Name]++
			}
		}
	}

	stats.WinRate = WinRate(wins, losses)
	stats.KeyCompetitor = domain.KeyCompetitor{Name: "N/A"}
	for _, name := range order {
		// Strictly greater keeps the first-encountered name on ties.
		if counts[name] > stats.KeyCompetitor.MentionCount {
			stats.KeyCompetitor = domain.KeyCompetitor{Name: name, MentionCount: counts[name]}
		}
	}

	stats.ChartData = make([]domain.ChartPoint, len(buckets))
	for i, b := range buckets {
		stats.ChartData[i] = b.point
	}
	stats.BuyerDecisionDrivers = append([]domain.BuyerDecisionDriver(nil), buyerDecisionDrivers...)
	return stats
}

// DashboardQuotes returns the first quote of the three most recent completed
// interviews that have quotes.
func DashboardQuotes(items []domain.Interview) []domain.DashboardQuote {
	type dated struct {
		iv domain.Interview
		at time.Time
	}
	var candidates []dated
	for _, iv := range items {
		if iv.Status != domain.StatusCompleted || iv.Report == nil || len(iv.Report.Quotes) == 0 {
			continue
		}
		at, _ := domain.ParseDate(iv.Date)
		candidates = append(candidates, dated{iv: iv, at: at})
	}
	sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].at.After(candidates[b].at) })

	out := make([]domain.DashboardQuote, 0, 3)
	for _, c := range candidates {
		if len(out) == 3 {
			break
		}
		q := c.iv.Report.Quotes[0]
		out = append(out, domain.DashboardQuote{
			ID:              q.ID,
			Text:            q.Text,
			InterviewID:     c.iv.ID,
			InterviewTitle:  c.iv.Title,
			ParticipantInfo: c.iv.ParticipantName + ", " + c.iv.ParticipantRole + " at " + c.iv.Company,
		})
	}
	return out
}

// Competitors returns the sorted distinct names of every mentioned competitor.
func Competitors(items []domain.Interview) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, iv := range items {
		if iv.Report == nil {
			continue
		}
		for _, c := range iv.Report.CompetitorsMentioned {
			if _, ok := seen[c.Name]; !ok {
				seen[c.Name] = struct{}{}
				out = append(out, c.Name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// FilterAggregateReports keeps reports generated within [from, to]. Missing
// or malformed bounds leave the list unfiltered.
func FilterAggregateReports(reports []domain.AggregateReport, from, to string) ([]domain.AggregateReport, error) {
	window, ok, err := ParseRange(from, to)
	if err != nil || !ok {
		return reports, err
	}
	return keep(append([]domain.AggregateReport(nil), reports...), func(r domain.AggregateReport) bool {
		return inRange(r.DateGenerated, window)
	}), nil
}
