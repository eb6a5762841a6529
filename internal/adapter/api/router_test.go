package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/winloss/internal/adapter/api/handler"
	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/adapter/repository/memory"
	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/pkg/config"
	"github.com/V4T54L/winloss/internal/seed"
	"github.com/V4T54L/winloss/internal/usecase"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := seed.Load()
	require.NoError(t, err)

	repos := usecase.NewRepositories(memory.NewKVStore(), catalog, seed.GeneratorOptions{}, logger)
	require.NoError(t, repos.EnsureSeed(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	broker := handler.NewSSEBroker(ctx, logger)
	changes := usecase.NewChangeLog(nil, broker, nil, nil, logger)

	svc := Services{
		Interviews: usecase.NewInterviewUseCase(repos.Interviews, changes, logger),
		Prompts:    usecase.NewPromptUseCase(repos.Prompts, changes),
		Reports:    usecase.NewReportUseCase(repos.Reports, repos.Prompts, changes, logger),
		Users:      usecase.NewUserUseCase(repos.Users, changes),
		Dashboard:  usecase.NewDashboardUseCase(repos.Interviews, repos.Programs, logger),
		Chat:       usecase.NewChatUseCase(0),
	}
	m := metrics.NewAPIMetrics(prometheus.NewRegistry())
	srv := httptest.NewServer(NewRouter(cfg, logger, svc, m, broker))
	t.Cleanup(srv.Close)
	return srv
}

func defaultConfig() *config.Config {
	return &config.Config{MaxImportSize: 1 << 20}
}

func call(t *testing.T, srv *httptest.Server, method, path, contentType, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return resp.StatusCode, env
}

func TestRouter_Interviews(t *testing.T) {
	srv := newTestServer(t, defaultConfig())

	t.Run("list applies filters", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/interviews?outcomes=Won,Renew&competitors=competitor%20x", "", "")
		require.Equal(t, http.StatusOK, code)
		require.True(t, env.Success)

		var items []domain.Interview
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.NotEmpty(t, items)
		for _, iv := range items {
			assert.Contains(t, []domain.Outcome{domain.OutcomeWon, domain.OutcomeRenew}, iv.Outcome)
		}
		assert.Equal(t, "interview-1", items[0].ID)
	})

	t.Run("upcoming only", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/interviews?upcomingOnly=true", "", "")
		require.Equal(t, http.StatusOK, code)
		var items []domain.Interview
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.NotEmpty(t, items)
		for _, iv := range items {
			assert.True(t, iv.Status.Upcoming(), iv.ID)
		}
	})

	t.Run("get and share", func(t *testing.T) {
		for _, path := range []string{"/api/interviews/interview-2", "/api/share/interview-2"} {
			code, env := call(t, srv, http.MethodGet, path, "", "")
			require.Equal(t, http.StatusOK, code, path)
			var iv domain.Interview
			require.NoError(t, json.Unmarshal(env.Data, &iv))
			assert.Equal(t, "interview-2", iv.ID)
		}
	})

	t.Run("missing interview is a 404 envelope", func(t *testing.T) {
		code, env := call(t, srv, http.MethodGet, "/api/interviews/nope", "", "")
		assert.Equal(t, http.StatusNotFound, code)
		assert.False(t, env.Success)
		assert.Equal(t, "Interview not found", env.Error)
	})
}

func TestRouter_Import(t *testing.T) {
	srv := newTestServer(t, defaultConfig())

	valid := `{"id":"imp-1","title":"Imported","participantName":"P","participantRole":"R","company":"C","date":"2024-01-02","status":"Scheduled"}`
	invalid := `{"id":"imp-2","title":"Bad","date":"2024-01-02","status":"Unknown"}`
	body := valid + "\n" + "not json\n" + invalid + "\n"

	code, env := call(t, srv, http.MethodPost, "/api/interviews/import", "application/x-ndjson", body)
	require.Equal(t, http.StatusOK, code)

	var result usecase.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Rejected, 2)
	assert.Equal(t, 2, result.Rejected[0].Line)
	assert.Equal(t, 3, result.Rejected[1].Line)
	assert.Equal(t, "imp-2", result.Rejected[1].ID)

	code, _ = call(t, srv, http.MethodGet, "/api/interviews/imp-1", "", "")
	assert.Equal(t, http.StatusOK, code)

	t.Run("json array", func(t *testing.T) {
		code, env := call(t, srv, http.MethodPost, "/api/interviews/import", "application/json", "["+invalid+","+valid+"]")
		require.Equal(t, http.StatusOK, code)
		var result usecase.ImportResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Equal(t, 1, result.Imported)
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, 1, result.Rejected[0].Line)
	})

	t.Run("unsupported content type", func(t *testing.T) {
		code, env := call(t, srv, http.MethodPost, "/api/interviews/import", "text/plain", "hello")
		assert.Equal(t, http.StatusUnsupportedMediaType, code)
		assert.False(t, env.Success)
	})

	t.Run("payload too large", func(t *testing.T) {
		small := newTestServer(t, &config.Config{MaxImportSize: 16})
		code, env := call(t, small, http.MethodPost, "/api/interviews/import", "application/json", valid)
		assert.Equal(t, http.StatusRequestEntityTooLarge, code)
		assert.False(t, env.Success)
	})
}

func TestRouter_Prompts(t *testing.T) {
	srv := newTestServer(t, defaultConfig())

	code, env := call(t, srv, http.MethodPost, "/api/prompts", "application/json", `{"name":"N","description":"D","promptText":"T"}`)
	require.Equal(t, http.StatusCreated, code)
	var created domain.Prompt
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	_, env = call(t, srv, http.MethodGet, "/api/prompts", "", "")
	var prompts []domain.Prompt
	require.NoError(t, json.Unmarshal(env.Data, &prompts))
	assert.Equal(t, created.ID, prompts[len(prompts)-1].ID)

	code, env = call(t, srv, http.MethodPut, "/api/prompts/"+created.ID, "application/json", `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, code)
	var updated domain.Prompt
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "T", updated.PromptText)

	code, _ = call(t, srv, http.MethodDelete, "/api/prompts/"+created.ID, "", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = call(t, srv, http.MethodDelete, "/api/prompts/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Prompt not found", env.Error)

	code, env = call(t, srv, http.MethodPost, "/api/prompts", "application/json", `{"name":"N"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields", env.Error)

	code, env = call(t, srv, http.MethodPost, "/api/prompts", "application/json", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid JSON body", env.Error)
}

func TestRouter_Reports(t *testing.T) {
	srv := newTestServer(t, defaultConfig())

	code, env := call(t, srv, http.MethodPost, "/api/reports/generate", "application/json", `{"interviewIds":[],"promptId":"prompt-1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, env = call(t, srv, http.MethodPost, "/api/reports/generate", "application/json", `{"interviewIds":["interview-1"],"promptId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = call(t, srv, http.MethodPost, "/api/reports/generate", "application/json", `{"interviewIds":["interview-1","interview-2"],"promptId":"prompt-1"}`)
	require.Equal(t, http.StatusCreated, code)
	var report domain.AggregateReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, domain.ReportTypeAI, report.ReportType)

	code, env = call(t, srv, http.MethodGet, "/api/reports/aggregate", "", "")
	require.Equal(t, http.StatusOK, code)
	var reports []domain.AggregateReport
	require.NoError(t, json.Unmarshal(env.Data, &reports))
	require.Len(t, reports, 1)

	code, _ = call(t, srv, http.MethodGet, "/api/reports/aggregate/"+report.ID, "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_Users(t *testing.T) {
	srv := newTestServer(t, defaultConfig())

	code, env := call(t, srv, http.MethodPost, "/api/users", "application/json", `{"name":"Eve","email":"eve@example.com","role":"Viewer"}`)
	require.Equal(t, http.StatusCreated, code)
	var u domain.User
	require.NoError(t, json.Unmarshal(env.Data, &u))

	code, env = call(t, srv, http.MethodPut, "/api/users/"+u.ID, "application/json", `{"role":"Editor"}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, domain.RoleEditor, u.Role)

	code, _ = call(t, srv, http.MethodPut, "/api/users/"+u.ID, "application/json", `{"role":"Owner"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, srv, http.MethodDelete, "/api/users/"+u.ID, "", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, srv, http.MethodGet, "/api/users/"+u.ID, "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_DashboardAndLookups(t *testing.T) {
	srv := newTestServer(t, defaultConfig())

	for _, path := range []string{"/api/dashboard/stats", "/api/dashboard/quotes", "/api/analytics?outcomes=Won", "/api/competitors", "/api/programs"} {
		code, env := call(t, srv, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, code, path)
		assert.True(t, env.Success, path)
	}

	code, env := call(t, srv, http.MethodPost, "/api/chat", "application/json", `{"message":"why do we lose?"}`)
	require.Equal(t, http.StatusOK, code)
	var reply map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Contains(t, reply["reply"], `"why do we lose?"`)

	code, _ = call(t, srv, http.MethodPost, "/api/chat", "application/json", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, defaultConfig())
	code, env := call(t, srv, http.MethodGet, "/api/nothing-here", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestRouter_RateLimit(t *testing.T) {
	srv := newTestServer(t, &config.Config{MaxImportSize: 1024, RateLimitRPS: 0.001, RateLimitBurst: 1})

	code, _ := call(t, srv, http.MethodGet, "/api/programs", "", "")
	assert.Equal(t, http.StatusOK, code)
	code, env := call(t, srv, http.MethodGet, "/api/programs", "", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Too many requests", env.Error)
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, defaultConfig())
	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", buf.String())
}
