package ops_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcfactory/arc/internal/cache"
	"github.com/arcfactory/arc/internal/metrics"
	"github.com/arcfactory/arc/internal/ops"
	"github.com/arcfactory/arc/internal/selector"
	"github.com/arcfactory/arc/pkg/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *cache.Manager, *selector.Selector) {
	t.Helper()
	caches := cache.NewManager(cache.DefaultDataConfig(), cache.DefaultOutputConfig(), nil)
	t.Cleanup(func() { caches.Close() })

	sel := selector.New()
	sel.Load([]domain.CandidateTask{
		{ID: "thesis", Lane: domain.LaneA, Stage: "analysis", ValueScore: 9, CostScore: 6},
		{ID: "peer_comp", Lane: domain.LaneB, Stage: "analysis", ValueScore: 7, CostScore: 4},
	})

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	collector.RunFinished(domain.StatusCompleted)

	srv := ops.NewServer(caches, sel)
	ts := httptest.NewServer(srv.Handler(registry))
	t.Cleanup(ts.Close)
	return ts, caches, sel
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_Health(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestServer_CacheStats(t *testing.T) {
	ts, caches, _ := newTestServer(t)
	caches.Data().Set("k", 1, cache.SetOptions{})
	caches.Data().Get("k")

	resp, body := get(t, ts.URL+"/stats/cache")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]cache.Stats
	require.NoError(t, json.Unmarshal(body, &stats))
	require.Contains(t, stats, cache.TierData)
	require.Contains(t, stats, cache.TierOutput)
	assert.Equal(t, 1, stats[cache.TierData].Entries)
	assert.Equal(t, int64(1), stats[cache.TierData].Hits)
	assert.Zero(t, stats[cache.TierOutput].Entries)
}

func TestServer_SelectorStats(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/stats/selector")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats selector.Stats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByLane[domain.LaneA].Count)
}

func TestServer_Metrics(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "arc_runs_total")
}

func TestServer_NilComponentsReturn404(t *testing.T) {
	srv := ops.NewServer(nil, nil)
	ts := httptest.NewServer(srv.Handler(nil))
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/stats/cache")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/stats/selector")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
