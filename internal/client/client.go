// Package client is a Go client for the win/loss dashboard API. Every
// failure, whatever its shape on the wire, surfaces as a single *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/query"
	"github.com/V4T54L/winloss/internal/usecase"
)

// maxErrorText bounds how much of a non-JSON error body ends up in a message.
const maxErrorText = 200

// APIError is returned for every failed call.
type APIError struct {
	// StatusCode is 0 when the request never produced a response.
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsNotFound reports whether err is an APIError for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client talks to one API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("failed to build request: %v", err), Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: "An unexpected network error occurred. Please check your connection.", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "API returned a non-JSON response", Err: err}
	}
	if !env.Success || len(env.Data) == 0 {
		msg := env.Error
		if msg == "" {
			msg = "API returned success=false but no error message"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode response data: %v", err), Err: err}
	}
	return nil
}

// errorMessage extracts the envelope error from a failed response, falling
// back to the raw body truncated to maxErrorText characters.
func errorMessage(status int, raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return env.Error
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fmt.Sprintf("Request failed with status %d", status)
	}
	if runes := []rune(text); len(runes) > maxErrorText {
		return string(runes[:maxErrorText]) + "..."
	}
	return text
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, "", out)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("failed to encode request: %v", err), Err: err}
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(data), "application/json", out)
}

func escape(id string) string { return url.PathEscape(id) }

// ListInterviews returns the interviews matching c.
func (c *Client) ListInterviews(ctx context.Context, criteria query.Criteria) ([]domain.Interview, error) {
	var out []domain.Interview
	err := c.get(ctx, "/api/interviews", criteria.Values(), &out)
	return out, err
}

func (c *Client) GetInterview(ctx context.Context, id string) (domain.Interview, error) {
	var out domain.Interview
	err := c.get(ctx, "/api/interviews/"+escape(id), nil, &out)
	return out, err
}

// ShareInterview resolves a public share link.
func (c *Client) ShareInterview(ctx context.Context, id string) (domain.Interview, error) {
	var out domain.Interview
	err := c.get(ctx, "/api/share/"+escape(id), nil, &out)
	return out, err
}

// ImportInterviews uploads a JSON or NDJSON batch, as named by contentType.
func (c *Client) ImportInterviews(ctx context.Context, body io.Reader, contentType string) (usecase.ImportResult, error) {
	var out usecase.ImportResult
	err := c.do(ctx, http.MethodPost, "/api/interviews/import", nil, body, contentType, &out)
	return out, err
}

func (c *Client) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	var out []domain.Prompt
	err := c.get(ctx, "/api/prompts", nil, &out)
	return out, err
}

func (c *Client) CreatePrompt(ctx context.Context, in usecase.PromptInput) (domain.Prompt, error) {
	var out domain.Prompt
	err := c.send(ctx, http.MethodPost, "/api/prompts", in, &out)
	return out, err
}

// UpdatePrompt sends only the given fields.
func (c *Client) UpdatePrompt(ctx context.Context, id string, fields map[string]any) (domain.Prompt, error) {
	var out domain.Prompt
	err := c.send(ctx, http.MethodPut, "/api/prompts/"+escape(id), fields, &out)
	return out, err
}

func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/prompts/"+escape(id), nil, nil, "", nil)
}

func (c *Client) GenerateReport(ctx context.Context, in usecase.GenerateReportInput) (domain.AggregateReport, error) {
	var out domain.AggregateReport
	err := c.send(ctx, http.MethodPost, "/api/reports/generate", in, &out)
	return out, err
}

// ListAggregateReports returns reports generated within [from, to]. Empty
// bounds disable the window.
func (c *Client) ListAggregateReports(ctx context.Context, from, to string) ([]domain.AggregateReport, error) {
	params := url.Values{}
	if from != "" {
		params.Set("from", from)
	}
	if to != "" {
		params.Set("to", to)
	}
	var out []domain.AggregateReport
	err := c.get(ctx, "/api/reports/aggregate", params, &out)
	return out, err
}

func (c *Client) GetAggregateReport(ctx context.Context, id string) (domain.AggregateReport, error) {
	var out domain.AggregateReport
	err := c.get(ctx, "/api/reports/aggregate/"+escape(id), nil, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := c.get(ctx, "/api/users", nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, in usecase.UserInput) (domain.User, error) {
	var out domain.User
	err := c.send(ctx, http.MethodPost, "/api/users", in, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id string) (domain.User, error) {
	var out domain.User
	err := c.get(ctx, "/api/users/"+escape(id), nil, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, fields map[string]any) (domain.User, error) {
	var out domain.User
	err := c.send(ctx, http.MethodPut, "/api/users/"+escape(id), fields, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+escape(id), nil, nil, "", nil)
}

func (c *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var out domain.DashboardStats
	err := c.get(ctx, "/api/dashboard/stats", nil, &out)
	return out, err
}

func (c *Client) DashboardQuotes(ctx context.Context) ([]domain.DashboardQuote, error) {
	var out []domain.DashboardQuote
	err := c.get(ctx, "/api/dashboard/quotes", nil, &out)
	return out, err
}

func (c *Client) Analytics(ctx context.Context, criteria query.Criteria) (domain.AnalyticsData, error) {
	var out domain.AnalyticsData
	err := c.get(ctx, "/api/analytics", criteria.Values(), &out)
	return out, err
}

func (c *Client) Competitors(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, "/api/competitors", nil, &out)
	return out, err
}

func (c *Client) Programs(ctx context.Context) ([]domain.Program, error) {
	var out []domain.Program
	err := c.get(ctx, "/api/programs", nil, &out)
	return out, err
}

// Chat asks the assistant a question and returns its canned reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	err := c.send(ctx, http.MethodPost, "/api/chat", map[string]string{"message": message}, &out)
	return out.Reply, err
}
