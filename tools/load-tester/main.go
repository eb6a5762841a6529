package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/V4T54L/winloss/internal/client"
	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/query"
	"github.com/V4T54L/winloss/internal/usecase"
)

// scenario is one kind of request a worker can send.
type scenario struct {
	name   string
	weight int
	run    func(ctx context.Context, c *client.Client) error
}

var outcomes = []domain.Outcome{domain.OutcomeWon, domain.OutcomeLost, domain.OutcomeChurn, domain.OutcomeRenew}

func scenarios() []scenario {
	return []scenario{
		{name: "list_interviews", weight: 40, run: func(ctx context.Context, c *client.Client) error {
			criteria := query.Criteria{}
			if rand.IntN(2) == 0 {
				criteria.Outcomes = []domain.Outcome{outcomes[rand.IntN(len(outcomes))]}
			}
			_, err := c.ListInterviews(ctx, criteria)
			return err
		}},
		{name: "dashboard_stats", weight: 25, run: func(ctx context.Context, c *client.Client) error {
			_, err := c.DashboardStats(ctx)
			return err
		}},
		{name: "analytics", weight: 15, run: func(ctx context.Context, c *client.Client) error {
			_, err := c.Analytics(ctx, query.Criteria{})
			return err
		}},
		{name: "competitors", weight: 10, run: func(ctx context.Context, c *client.Client) error {
			_, err := c.Competitors(ctx)
			return err
		}},
		{name: "prompt_roundtrip", weight: 10, run: func(ctx context.Context, c *client.Client) error {
			p, err := c.CreatePrompt(ctx, usecase.PromptInput{
				Name:       "load-test-" + uuid.NewString(),
				PromptText: "Summarize the main loss reasons.",
			})
			if err != nil {
				return err
			}
			return c.DeletePrompt(ctx, p.ID)
		}},
	}
}

func pick(all []scenario, total int) scenario {
	n := rand.IntN(total)
	for _, s := range all {
		if n < s.weight {
			return s
		}
		n -= s.weight
	}
	return all[len(all)-1]
}

func main() {
	targetURL := flag.String("url", "http://localhost:8080", "Base URL of the API server")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 200, "Requests per second limit")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, rateLimitedCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100
	api := client.New(*targetURL, client.WithTimeout(5*time.Second))

	all := scenarios()
	total := 0
	for _, s := range all {
		total += s.weight
	}
	perScenario := make(map[string]*atomic.Int64, len(all))
	for _, s := range all {
		perScenario[s.name] = &atomic.Int64{}
	}

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				s := pick(all, total)
				err := s.run(ctx, api)
				if ctx.Err() != nil {
					return
				}
				perScenario[s.name].Add(1)

				var apiErr *client.APIError
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.As(err, &apiErr) && apiErr.StatusCode == 429:
					rateLimitedCount.Add(1)
				default:
					errorCount.Add(1)
				}
			}
		}()
	}

	wg.Wait()

	totalRequests := successCount.Load() + rateLimitedCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful: %d", successCount.Load())
	log.Printf("Rate limited (429): %d", rateLimitedCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
	for _, s := range all {
		log.Printf("  %-18s %d", s.name, perScenario[s.name].Load())
	}
}
