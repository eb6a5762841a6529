package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

// firstGeneratedIndex continues the numbering of the hand-written interviews.
const firstGeneratedIndex = 7

// generatedSpan is how far back generated interview dates reach from the anchor.
const generatedSpan = 18 // months

var (
	generatedOutcomes = []domain.Outcome{
		domain.OutcomeWon, domain.OutcomeLost, domain.OutcomeChurn, domain.OutcomeRenew, domain.OutcomeNoDecision,
	}
	generatedUpcoming = []domain.InterviewStatus{domain.StatusScheduled, domain.StatusInProgress}
	generatedPrograms = []string{"prog-1", "prog-2", "prog-3"}
)

// GeneratorOptions controls the synthetic interviews.
type GeneratorOptions struct {
	Count  int
	Seed   uint64
	Anchor time.Time // latest possible interview date
}

func (c *Catalog) generate(opts GeneratorOptions) []domain.Interview {
	if opts.Count <= 0 {
		return nil
	}
	anchor := opts.Anchor
	if anchor.IsZero() {
		anchor = time.Now()
	}
	anchor = anchor.UTC()
	start := anchor.AddDate(0, -generatedSpan, 0)
	span := anchor.Sub(start)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	pick := func(xs []string) string { return xs[rng.IntN(len(xs))] }
	voc := c.f.Vocabulary

	out := make([]domain.Interview, 0, opts.Count)
	for n := 0; n < opts.Count; n++ {
		i := firstGeneratedIndex + n
		id := fmt.Sprintf("interview-%d", i)
		company := pick(voc.Companies)
		outcome := generatedOutcomes[rng.IntN(len(generatedOutcomes))]

		status := domain.StatusCompleted
		if outcome == domain.OutcomeNoDecision {
			status = generatedUpcoming[rng.IntN(len(generatedUpcoming))]
		} else if rng.Float64() < 0.05 {
			status = domain.StatusCanceled
		}

		competitor := pick(voc.Competitors)
		date := start.Add(time.Duration(rng.Int64N(int64(span))))
		participant := pick(voc.Names)

		iv := domain.Interview{
			ID:              id,
			Title:           fmt.Sprintf("%s analysis with %s", outcome, company),
			ParticipantName: participant,
			ParticipantRole: pick(voc.Roles),
			Company:         company,
			Date:            domain.FormatDate(date),
			Status:          status,
			Outcome:         outcome,
			ProgramID:       pick(generatedPrograms),
			ReportType:      domain.ReportTypeHuman,
		}
		if status == domain.StatusCompleted {
			iv.Report = generatedReport(i, id, outcome, company, competitor, participant)
		}
		out = append(out, iv)
	}
	return out
}

func generatedReport(i int, interviewID string, outcome domain.Outcome, company, competitor, participant string) *domain.InterviewReport {
	featureCategory := domain.CategoryWeakness
	tagColor := domain.ColorRed
	if outcome.IsWin() {
		featureCategory = domain.CategoryStrength
		tagColor = domain.ColorBlue
	}
	lower := strings.ToLower(string(outcome))

	return &domain.InterviewReport{
		ID:          fmt.Sprintf("report-%d", i),
		InterviewID: interviewID,
		Summary: fmt.Sprintf("This is a summary for the %s interview with %s. The key competitor mentioned was %s. The discussion revolved around feature parity and pricing.",
			lower, company, competitor),
		KeyTakeaways: []domain.KeyTakeaway{
			{ID: fmt.Sprintf("kt-%d-1", i), Text: "Feature set was a key factor.", Category: featureCategory},
			{ID: fmt.Sprintf("kt-%d-2", i), Text: fmt.Sprintf("Pricing compared to %s was discussed.", competitor), Category: domain.CategoryThreat},
		},
		Quotes: []domain.Quote{
			{ID: fmt.Sprintf("q-%d-1", i), Text: fmt.Sprintf("The integration with %s was a major point of discussion.", competitor), Attribution: participant},
		},
		CompetitorsMentioned: []domain.Competitor{
			{ID: "comp-" + strings.Replace(strings.ToLower(competitor), " ", "-", 1), Name: competitor},
		},
		ProductFeedback: []domain.ProductFeedback{
			{ID: fmt.Sprintf("pf-%d-1", i), Feature: "Video Quality", Sentiment: domain.SentimentPositive, Comment: "Video quality was consistently high."},
		},
		Tags: []domain.Tag{
			{ID: "tag-" + lower, Name: string(outcome), Color: tagColor},
			{ID: "tag-smb", Name: "SMB", Color: domain.ColorBlue},
		},
	}
}
