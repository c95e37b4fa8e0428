package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/iostore"
	"github.com/huangsam/signalboard/internal/telemetry"
	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sampleDataset = "../../examples/sample_dataset.yaml"

func testConfig() *contract.Config {
	return &contract.Config{
		DataPath:        sampleDataset,
		Date:            "2026-03-01",
		Now:             time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Window:          schema.Window7d,
		Windows:         schema.AllWindows,
		Workers:         2,
		SnapshotBackend: schema.SQLiteBackend,
		Engine:          schema.DefaultEngineConfig(),
	}
}

func newTestServer(t *testing.T, mgr contract.StoreManager) (*httptest.Server, *telemetry.Metrics) {
	t.Helper()
	metrics := telemetry.NewMetrics("signalboard_test", "test")
	srv := New(testConfig(), mgr, metrics, telemetry.Discard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, metrics
}

func post(t *testing.T, ts *httptest.Server, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(ts.URL+path, "application/json", &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, body := get(t, ts, "/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","store":"none"}`, string(body))
}

func TestSignalEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	t.Run("server dataset", func(t *testing.T) {
		resp, body := post(t, ts, "/api/v1/signal", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var results []map[string]any
		require.NoError(t, json.Unmarshal(body, &results))
		assert.Len(t, results, 3)
	})

	t.Run("filtered with limit", func(t *testing.T) {
		resp, body := post(t, ts, "/api/v1/signal", map[string]any{"account_id": "alice", "window": "24h", "limit": 1})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var results []map[string]any
		require.NoError(t, json.Unmarshal(body, &results))
		require.Len(t, results, 1)
		assert.Equal(t, "alpha", results[0]["project_id"])
	})

	t.Run("invalid window", func(t *testing.T) {
		resp, body := post(t, ts, "/api/v1/signal", map[string]any{"window": "1y"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "invalid window")
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, _ := post(t, ts, "/api/v1/signal", map[string]any{"acount_id": "alice"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestInlineDataset(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	inline := map[string]any{
		"accounts": []map[string]any{{"id": "zed", "is_tracked": true}},
		"posts": []map[string]any{{
			"id": "z1", "author_id": "zed", "project_id": "omega",
			"created_at": "2026-03-01T12:00:00Z", "likes": 3, "content_type": "Thread",
		}},
	}

	resp, body := post(t, ts, "/api/v1/mindshare", map[string]any{"dataset": inline, "windows": []string{"24h"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var windows []mindshareResponse
	require.NoError(t, json.Unmarshal(body, &windows))
	require.Len(t, windows, 1)
	assert.Equal(t, schema.TotalBasisPoints, windows[0].TotalBps)
	require.Len(t, windows[0].Snapshots, 1)
	assert.Equal(t, "omega", windows[0].Snapshots[0].ProjectID)

	t.Run("invalid inline dataset", func(t *testing.T) {
		bad := map[string]any{"posts": []map[string]any{{"id": "x"}}}
		resp, body := post(t, ts, "/api/v1/signal", map[string]any{"dataset": bad})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "invalid dataset")
	})
}

func TestMindshareEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, body := post(t, ts, "/api/v1/mindshare", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var windows []mindshareResponse
	require.NoError(t, json.Unmarshal(body, &windows))
	require.Len(t, windows, 3)
	for _, w := range windows {
		assert.Equal(t, schema.TotalBasisPoints, w.TotalBps, "window %s", w.Window)
	}
}

func TestAuthorityEndpoint(t *testing.T) {
	store := &iostore.MockSnapshotStore{}
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSnapshotStore").Return(store)

	ts, _ := newTestServer(t, mgr)
	resp, body := post(t, ts, "/api/v1/authority", map[string]any{"account_id": "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var scores []schema.AuthorityScore
	require.NoError(t, json.Unmarshal(body, &scores))
	require.Len(t, scores, 1)
	assert.Equal(t, "alice", scores[0].AccountID)
	store.AssertNotCalled(t, "UpsertAuthority", mock.Anything, mock.Anything)
}

func TestLeaderboardEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := post(t, ts, "/api/v1/leaderboard", map[string]any{"arena_id": "spring"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var board leaderboardResponse
	require.NoError(t, json.Unmarshal(body, &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 1.5, board.Entries[0].Multiplier)

	resp, _ = post(t, ts, "/api/v1/leaderboard", map[string]any{"arena_id": "winter"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = post(t, ts, "/api/v1/leaderboard", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFollowersEndpoint(t *testing.T) {
	store := &iostore.MockSnapshotStore{}
	store.On("AuthorityHistory", mock.Anything, "alice", mock.Anything, "2026-03-01").Return([]schema.AuthorityScore{
		{AccountID: "alice", Date: "2026-02-22", SmartFollowers: schema.Exact{N: 1, Percent: 25}},
		{AccountID: "alice", Date: "2026-03-01", SmartFollowers: schema.Exact{N: 2, Percent: 50}},
	}, nil)
	store.On("AuthorityHistory", mock.Anything, "ghost", mock.Anything, mock.Anything).Return([]schema.AuthorityScore(nil), nil)
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSnapshotStore").Return(store)

	ts, _ := newTestServer(t, mgr)

	resp, body := get(t, ts, "/api/v1/followers/alice")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var report map[string]any
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, float64(1), report["delta_7d"])

	resp, _ = get(t, ts, "/api/v1/followers/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts, "/api/v1/followers/alice?date=not-a-date")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	_, _ = get(t, ts, "/api/v1/health")

	resp, body := get(t, ts, "/api/v1/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "signalboard_test_http_requests_total")
	assert.Contains(t, string(body), `endpoint="/api/v1/health"`)
}

func TestWriteErrorStatus(t *testing.T) {
	s := New(testConfig(), nil, nil, telemetry.Discard())
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"configuration", &schema.ConfigurationError{Field: "decay", Reason: "bad"}, http.StatusBadRequest},
		{"invariant", &schema.InvariantViolationError{Window: schema.Window7d, Sum: 9999, Want: 10000}, http.StatusInternalServerError},
		{"wrapped request", badRequest(errors.New("nope")), http.StatusBadRequest},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
		})
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	s := New(testConfig(), nil, nil, telemetry.Discard())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/v1/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
