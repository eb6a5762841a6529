package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/domain/mocks"
	"github.com/V4T54L/winloss/internal/usecase"
)

func newAdminServer(t *testing.T, repo *mocks.MockStreamAdminRepository) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var uc *usecase.AdminStreamUseCase
	if repo != nil {
		uc = usecase.NewAdminStreamUseCase(repo, "winloss:changes", "winloss:changes:dlq")
	}
	srv := httptest.NewServer(NewAdminRouter(uc, logger))
	t.Cleanup(srv.Close)
	return srv
}

func adminCall(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestAdminRouter_WithoutChangeFeed(t *testing.T) {
	srv := newAdminServer(t, nil)

	code, _ := adminCall(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = adminCall(t, srv, http.MethodGet, "/admin/streams/winloss:changes/groups", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminRouter_Groups(t *testing.T) {
	repo := &mocks.MockStreamAdminRepository{Groups: []domain.ConsumerGroupInfo{{Name: "change-auditors", Consumers: 2, Lag: 5}}}
	srv := newAdminServer(t, repo)

	code, raw := adminCall(t, srv, http.MethodGet, "/admin/streams/winloss:changes/groups", "")
	require.Equal(t, http.StatusOK, code)
	var groups []domain.ConsumerGroupInfo
	require.NoError(t, json.Unmarshal(raw, &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, int64(5), groups[0].Lag)

	code, raw = adminCall(t, srv, http.MethodGet, "/admin/streams/other/groups", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, string(raw), "Stream not found")
}

func TestAdminRouter_PendingMessages(t *testing.T) {
	repo := &mocks.MockStreamAdminRepository{}
	srv := newAdminServer(t, repo)

	code, _ := adminCall(t, srv, http.MethodGet, "/admin/streams/winloss:changes/groups/g/pending/messages?start=5-0&count=7", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "5-0", repo.LastStartID)
	assert.Equal(t, int64(7), repo.LastCount)

	code, _ = adminCall(t, srv, http.MethodGet, "/admin/streams/winloss:changes/groups/g/pending/messages?count=lots", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAdminRouter_ClaimAckTrim(t *testing.T) {
	repo := &mocks.MockStreamAdminRepository{}
	srv := newAdminServer(t, repo)

	code, _ := adminCall(t, srv, http.MethodPost, "/admin/streams/winloss:changes/groups/g/claim",
		`{"consumer":"ops","min_idle_time":"30s","message_ids":["1-0"]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 30*time.Second, repo.LastMinIdle)

	code, _ = adminCall(t, srv, http.MethodPost, "/admin/streams/winloss:changes/groups/g/claim",
		`{"consumer":"ops","min_idle_time":"soon","message_ids":["1-0"]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, raw := adminCall(t, srv, http.MethodPost, "/admin/streams/winloss:changes/groups/g/ack", `{"message_ids":["1-0","2-0"]}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"acknowledged":2}`, string(raw))

	code, _ = adminCall(t, srv, http.MethodPost, "/admin/streams/winloss:changes/groups/g/ack", `{"message_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = adminCall(t, srv, http.MethodPost, "/admin/streams/winloss:changes:dlq/trim", `{"maxlen":1000}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1000), repo.TrimmedTo)

	code, _ = adminCall(t, srv, http.MethodPost, "/admin/streams/winloss:changes/trim", `{"maxlen":-1}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
