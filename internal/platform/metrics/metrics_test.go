package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserversIncrementLabelledCounters(t *testing.T) {
	m := New()
	m.ObserveVote("accepted")
	m.ObserveVote("accepted")
	m.ObserveVote("rate_limited")
	m.ObserveSubmission("duplicate")
	m.ObserveSettlementContest(ports.SettlementOutcomeFailed)
	m.ObserveSettlementRun("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Votes.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Votes.WithLabelValues("rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementContests.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementRuns.WithLabelValues("ok")))
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	m := New()
	m.ObserveSettlementContest(ports.SettlementOutcomeCompleted)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `studio_contest_engine_settlement_contests_total{outcome="completed"} 1`))
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	m := New()
	handler := m.Middleware("POST /api/submissions/{submission_id}/votes", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/submissions/s1/votes", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.RequestCounter.WithLabelValues("POST /api/submissions/{submission_id}/votes", "429"),
	))
}

func TestServerOnlyServesScrapeEndpoint(t *testing.T) {
	m := New()
	m.ObserveSettlementRun("ok")
	srv := m.Server(":9091")
	assert.Equal(t, ":9091", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `studio_contest_engine_settlement_runs_total{outcome="ok"} 1`))

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contests", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
