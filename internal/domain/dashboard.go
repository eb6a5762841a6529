package domain

type ChartPoint struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type KeyCompetitor struct {
	Name         string `json:"name"`
	MentionCount int    `json:"mentionCount"`
}

type BuyerDecisionDriver struct {
	Driver string `json:"driver"`
	Impact int    `json:"impact"`
}

// DashboardStats summarizes the trailing dashboard window.
type DashboardStats struct {
	TotalInterviews      int                   `json:"totalInterviews"`
	CompletedInterviews  int                   `json:"completedInterviews"`
	WinRate              int                   `json:"winRate"`
	ChartData            []ChartPoint          `json:"chartData"`
	KeyCompetitor        KeyCompetitor         `json:"keyCompetitor"`
	BuyerDecisionDrivers []BuyerDecisionDriver `json:"buyerDecisionDrivers,omitempty"`
}

type DashboardQuote struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	InterviewID     string `json:"interviewId"`
	InterviewTitle  string `json:"interviewTitle"`
	ParticipantInfo string `json:"participantInfo"`
}

type ThemeReason struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type ThemeCategory struct {
	CategoryName string        `json:"categoryName"`
	WinReasons   []ThemeReason `json:"winReasons"`
	LossReasons  []ThemeReason `json:"lossReasons"`
}

type CompetitorMention struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ProductFeedbackSentiment struct {
	Feature  string `json:"feature"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
}

type AnalyticsData struct {
	Themes                   []ThemeCategory            `json:"themes"`
	CompetitorMentions       []CompetitorMention        `json:"competitorMentions"`
	ProductFeedbackSentiment []ProductFeedbackSentiment `json:"productFeedbackSentiment"`
}
