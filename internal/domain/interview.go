package domain

import "strings"

// InterviewStatus is the lifecycle state of an interview.
type InterviewStatus string

const (
	StatusCompleted  InterviewStatus = "Completed"
	StatusScheduled  InterviewStatus = "Scheduled"
	StatusInProgress InterviewStatus = "In Progress"
	StatusCanceled   InterviewStatus = "Canceled"
)

// Valid reports whether s is one of the known statuses.
func (s InterviewStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusScheduled, StatusInProgress, StatusCanceled:
		return true
	}
	return false
}

// Upcoming reports whether the interview has not happened yet or is underway.
func (s InterviewStatus) Upcoming() bool {
	return s == StatusScheduled || s == StatusInProgress
}

// Outcome is the deal result an interview is about.
type Outcome string

const (
	OutcomeWon        Outcome = "Won"
	OutcomeLost       Outcome = "Lost"
	OutcomeChurn      Outcome = "Churn"
	OutcomeRenew      Outcome = "Renew"
	OutcomeNoDecision Outcome = "No Decision"
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWon, OutcomeLost, OutcomeChurn, OutcomeRenew, OutcomeNoDecision:
		return true
	}
	return false
}

// IsWin reports whether the outcome counts towards wins in win-rate math.
func (o Outcome) IsWin() bool { return o == OutcomeWon || o == OutcomeRenew }

// IsLoss reports whether the outcome counts towards losses in win-rate math.
func (o Outcome) IsLoss() bool { return o == OutcomeLost || o == OutcomeChurn }

// ReportType tags who or what authored an interview report.
type ReportType string

const (
	ReportTypeHuman     ReportType = "Human"
	ReportTypeAI        ReportType = "AI"
	ReportTypeBlindSpot ReportType = "Blind Spot"
	ReportTypeSurvey    ReportType = "Survey"
)

// Valid reports whether t is one of the known report types.
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeHuman, ReportTypeAI, ReportTypeBlindSpot, ReportTypeSurvey:
		return true
	}
	return false
}

type TakeawayCategory string

const (
	CategoryStrength    TakeawayCategory = "Strength"
	CategoryWeakness    TakeawayCategory = "Weakness"
	CategoryOpportunity TakeawayCategory = "Opportunity"
	CategoryThreat      TakeawayCategory = "Threat"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

type TagColor string

const (
	ColorBlue   TagColor = "blue"
	ColorGreen  TagColor = "green"
	ColorYellow TagColor = "yellow"
	ColorRed    TagColor = "red"
	ColorPurple TagColor = "purple"
	ColorGray   TagColor = "gray"
)

type Tag struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Color TagColor `json:"color"`
}

// Competitor is a competitor mentioned in a report. Competitors are not
// stored on their own; the catalog of names is derived from reports.
type Competitor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
}

type KeyTakeaway struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Category TakeawayCategory `json:"category"`
}

type Quote struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

type ProductFeedback struct {
	ID        string    `json:"id"`
	Feature   string    `json:"feature"`
	Sentiment Sentiment `json:"sentiment"`
	Comment   string    `json:"comment"`
}

// InterviewReport is owned by exactly one Interview and is persisted with it.
type InterviewReport struct {
	ID                   string            `json:"id"`
	InterviewID          string            `json:"interviewId"`
	Summary              string            `json:"summary"`
	KeyTakeaways         []KeyTakeaway     `json:"keyTakeaways"`
	Quotes               []Quote           `json:"quotes"`
	CompetitorsMentioned []Competitor      `json:"competitorsMentioned"`
	ProductFeedback      []ProductFeedback `json:"productFeedback"`
	Tags                 []Tag             `json:"tags"`
}

// Interview is a single win/loss conversation and, once completed, its report.
type Interview struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	ParticipantName       string           `json:"participantName"`
	ParticipantRole       string           `json:"participantRole"`
	Company               string           `json:"company"`
	Date                  string           `json:"date"` // ISO 8601
	Status                InterviewStatus  `json:"status"`
	Outcome               Outcome          `json:"outcome,omitempty"`
	ProgramID             string           `json:"programId,omitempty"`
	Report                *InterviewReport `json:"report,omitempty"`
	IsBlindSpot           bool             `json:"isBlindSpot,omitempty"`
	AnonymizedTitle       string           `json:"anonymizedTitle,omitempty"`
	AnonymizedParticipant string           `json:"anonymizedParticipant,omitempty"`
	ReportType            ReportType       `json:"reportType,omitempty"`
}

// MentionsCompetitor reports whether the interview's report names any of
// the given competitors. names must already be lower-cased. Blind-spot
// interviews have no report, so their anonymized title is searched instead.
func (i Interview) MentionsCompetitor(names []string) bool {
	if i.IsBlindSpot {
		title := strings.ToLower(i.AnonymizedTitle)
		for _, n := range names {
			if strings.Contains(title, n) {
				return true
			}
		}
		return false
	}
	if i.Report == nil {
		return false
	}
	for _, c := range i.Report.CompetitorsMentioned {
		mentioned := strings.ToLower(c.Name)
		for _, n := range names {
			if mentioned == n {
				return true
			}
		}
	}
	return false
}

// Validate checks the structural invariants of an interview.
func (i Interview) Validate() error {
	switch {
	case strings.TrimSpace(i.ID) == "":
		return BadRequest("interview id is required")
	case !i.Status.Valid():
		return BadRequestf("invalid interview status %q", i.Status)
	case i.Outcome != "" && !i.Outcome.Valid():
		return BadRequestf("invalid interview outcome %q", i.Outcome)
	case i.ReportType != "" && !i.ReportType.Valid():
		return BadRequestf("invalid report type %q", i.ReportType)
	case i.Date == "":
		return BadRequest("interview date is required")
	}
	if _, err := ParseDate(i.Date); err != nil {
		return BadRequestf("invalid interview date %q", i.Date)
	}
	if i.IsBlindSpot {
		if i.Report != nil {
			return BadRequest("blind spot interviews cannot carry a report")
		}
		if strings.TrimSpace(i.AnonymizedTitle) == "" || strings.TrimSpace(i.AnonymizedParticipant) == "" {
			return BadRequest("blind spot interviews require anonymized title and participant")
		}
	}
	if i.Report != nil && i.Status != StatusCompleted {
		return BadRequest("only completed interviews can carry a report")
	}
	return nil
}
