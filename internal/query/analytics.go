package query

import "github.com/V4T54L/winloss/internal/domain"

// Analytics returns the canned analytics dataset. It does not depend on the
// interview data.
func Analytics() domain.AnalyticsData {
	return domain.AnalyticsData{
		Themes: []domain.ThemeCategory{
			{
				CategoryName: "Product",
				WinReasons: []domain.ThemeReason{
					{Reason: "Superior UI/UX", Count: 25},
					{Reason: "Key Feature Availability", Count: 18},
					{Reason: "Platform Reliability", Count: 15},
				},
				LossReasons: []domain.ThemeReason{
					{Reason: "Missing Integration", Count: 22},
					{Reason: "Performance Issues", Count: 15},
					{Reason: "Critical Feature Gap", Count: 11},
				},
			},
			{
				CategoryName: "Company",
				WinReasons: []domain.ThemeReason{
					{Reason: "Positive Brand Reputation", Count: 19},
					{Reason: "Strong Customer Support", Count: 16},
					{Reason: "Vision & Roadmap Alignment", Count: 12},
				},
				LossReasons: []domain.ThemeReason{
					{Reason: "Poor Sales Experience", Count: 14},
					{Reason: "Lack of Local Presence", Count: 8},
					{Reason: "Negative Past Experience", Count: 5},
				},
			},
			{
				CategoryName: "Price",
				WinReasons: []domain.ThemeReason{
					{Reason: "Transparent Pricing Model", Count: 21},
					{Reason: "Better Overall Value (TCO)", Count: 17},
					{Reason: "Flexible Contract Terms", Count: 10},
				},
				LossReasons: []domain.ThemeReason{
					{Reason: "Higher Upfront Cost", Count: 28},
					{Reason: "Cheaper Alternative Available", Count: 20},
					{Reason: "Unfavorable Contract Terms", Count: 9},
				},
			},
		},
		CompetitorMentions: []domain.CompetitorMention{
			{Name: "Competitor X", Count: 25},
			{Name: "Competitor Y", Count: 18},
			{Name: "Competitor Z", Count: 12},
		},
		ProductFeedbackSentiment: []domain.ProductFeedbackSentiment{
			{Feature: "Dashboard", Positive: 85, Negative: 10, Neutral: 5},
			{Feature: "Reporting", Positive: 70, Negative: 20, Neutral: 10},
			{Feature: "Integrations", Positive: 40, Negative: 50, Neutral: 10},
			{Feature: "Mobile App", Positive: 25, Negative: 65, Neutral: 10},
		},
	}
}
