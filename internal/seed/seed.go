// Package seed holds the catalog written to an empty store: fixed fixtures
// embedded as YAML plus a deterministic generator for bulk interviews.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/V4T54L/winloss/internal/domain"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type vocabulary struct {
	Competitors []string `json:"competitors"`
	Companies   []string `json:"companies"`
	Roles       []string `json:"roles"`
	Names       []string `json:"names"`
}

type fixtures struct {
	Programs   []domain.Program   `json:"programs"`
	Prompts    []domain.Prompt    `json:"prompts"`
	Users      []domain.User      `json:"users"`
	Interviews []domain.Interview `json:"interviews"`
	BlindSpots []domain.Interview `json:"blindSpots"`
	Vocabulary vocabulary         `json:"vocabulary"`
}

// Catalog is the parsed seed data.
type Catalog struct {
	f fixtures
}

// Load parses the embedded fixtures.
func Load() (*Catalog, error) {
	return parse(fixturesYAML)
}

// parse decodes YAML into the domain types by way of JSON, so the JSON tags
// on the domain structs stay the only field mapping.
func parse(data []byte) (*Catalog, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse seed fixtures: %w", err)
	}
	raw, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to convert seed fixtures: %w", err)
	}
	var f fixtures
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode seed fixtures: %w", err)
	}

	for i := range f.BlindSpots {
		bs := &f.BlindSpots[i]
		bs.Status = domain.StatusCompleted
		bs.IsBlindSpot = true
		bs.ReportType = domain.ReportTypeBlindSpot
		bs.Report = nil
	}
	for _, iv := range append(append([]domain.Interview{}, f.Interviews...), f.BlindSpots...) {
		if err := iv.Validate(); err != nil {
			return nil, fmt.Errorf("seed interview %s: %w", iv.ID, err)
		}
	}
	return &Catalog{f: f}, nil
}

// Programs returns the seed programs.
func (c *Catalog) Programs() []domain.Program {
	return append([]domain.Program(nil), c.f.Programs...)
}

// Prompts returns the seed prompt library.
func (c *Catalog) Prompts() []domain.Prompt {
	return append([]domain.Prompt(nil), c.f.Prompts...)
}

// Users returns the seed users.
func (c *Catalog) Users() []domain.User {
	return append([]domain.User(nil), c.f.Users...)
}

// Interviews returns the hand-written interviews, then the generated ones,
// then the blind-spot interviews.
func (c *Catalog) Interviews(opts GeneratorOptions) []domain.Interview {
	generated := c.generate(opts)
	out := make([]domain.Interview, 0, len(c.f.Interviews)+len(generated)+len(c.f.BlindSpots))
	out = append(out, cloneInterviews(c.f.Interviews)...)
	out = append(out, generated...)
	out = append(out, cloneInterviews(c.f.BlindSpots)...)
	return out
}

// cloneInterviews deep-copies reports so callers cannot mutate the catalog.
func cloneInterviews(in []domain.Interview) []domain.Interview {
	out := make([]domain.Interview, len(in))
	for i, iv := range in {
		if iv.Report != nil {
			r := *iv.Report
			r.KeyTakeaways = append([]domain.KeyTakeaway(nil), r.KeyTakeaways...)
			r.Quotes = append([]domain.Quote(nil), r.Quotes...)
			r.CompetitorsMentioned = append([]domain.Competitor(nil), r.CompetitorsMentioned...)
			r.ProductFeedback = append([]domain.ProductFeedback(nil), r.ProductFeedback...)
			r.Tags = append([]domain.Tag(nil), r.Tags...)
			iv.Report = &r
		}
		out[i] = iv
	}
	return out
}
