package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "")

	m.ObserveRequest("rooms", "ok", 120*time.Millisecond)
	m.ObserveRequest("rooms", "ok", 80*time.Millisecond)
	m.ObserveRequest("buildings", "error", time.Second)
	m.IncRetry()
	m.IncCache(true)
	m.IncCache(false)
	m.IncCache(false)
	m.IncLookup("rooms", "not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SourceRequestsTotal.WithLabelValues("rooms", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceRequestsTotal.WithLabelValues("buildings", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceRetriesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues("rooms", "not_found")))

	count, err := testutil.GatherAndCount(reg, "studyspaces_source_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("rooms", "ok", time.Second)
		m.IncRetry()
		m.IncCache(true)
		m.IncLookup("search", "ok")
	})
}

func TestPush(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	New(reg, "test").IncRetry()

	require.NoError(t, Push(context.Background(), srv.URL, "studyspaces_cli", reg))
	assert.True(t, strings.HasPrefix(gotPath, "/metrics/job/studyspaces_cli"), gotPath)
}

func TestPush_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	New(reg, "test").IncRetry()

	err := Push(context.Background(), srv.URL, "job", reg)
	assert.ErrorContains(t, err, "push metrics")
}
