package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/query"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

func newTestServer(t *testing.T, status int, body string) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.RequestURI(), Body: string(b)})
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL), &requests
}

func TestClient_UnwrapsEnvelope(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"success":true,"data":[{"id":"interview-1","status":"Completed"}]}`)

	items, err := c.ListInterviews(context.Background(), query.Criteria{
		Competitors: []string{"Webex", "Zoom"},
		Outcomes:    []domain.Outcome{domain.OutcomeWon},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "interview-1", items[0].ID)

	require.Len(t, *reqs, 1)
	assert.Equal(t, "/api/interviews?competitors=Webex%2CZoom&outcomes=Won", (*reqs)[0].Path)
}

func TestClient_ErrorNormalization(t *testing.T) {
	long := strings.Repeat("x", 250)

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "error envelope",
			status:     http.StatusNotFound,
			body:       `{"success":false,"error":"Prompt not found"}`,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Prompt not found",
		},
		{
			name:       "short non-JSON body",
			status:     http.StatusBadGateway,
			body:       "<html>bad gateway</html>",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "<html>bad gateway</html>",
		},
		{
			name:       "long non-JSON body is truncated",
			status:     http.StatusInternalServerError,
			body:       long,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    strings.Repeat("x", 200) + "...",
		},
		{
			name:       "empty body",
			status:     http.StatusServiceUnavailable,
			body:       "",
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "Request failed with status 503",
		},
		{
			name:       "success false on 200",
			status:     http.StatusOK,
			body:       `{"success":false,"error":"nope"}`,
			wantStatus: http.StatusOK,
			wantMsg:    "nope",
		},
		{
			name:       "success without data",
			status:     http.StatusOK,
			body:       `{"success":true}`,
			wantStatus: http.StatusOK,
			wantMsg:    "API returned success=false but no error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.body)
			_, err := c.ListPrompts(context.Background())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "expected *APIError, got %T", err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL).Programs(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.StatusCode)
	assert.NotNil(t, apiErr.Err)
}

func TestClient_DeletePromptNotFound(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusNotFound, `{"success":false,"error":"Prompt not found"}`)

	err := c.DeletePrompt(context.Background(), "missing id")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.MethodDelete, (*reqs)[0].Method)
	assert.Equal(t, "/api/prompts/missing%20id", (*reqs)[0].Path)
}

func TestClient_Chat(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"success":true,"data":{"reply":"hello"}}`)

	reply, err := c.Chat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.JSONEq(t, `{"message":"hi"}`, (*reqs)[0].Body)
}
