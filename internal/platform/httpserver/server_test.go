package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contestengine "studio/contexts/creative-challenges/contest-engine"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	contesthttp "studio/contexts/creative-challenges/contest-engine/transport/http"
	"studio/internal/platform/metrics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCronSecret = "cron-secret"

func newTestServer(t *testing.T) (*Server, contestengine.Module) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	module := contestengine.NewInMemoryModule(logger)
	server := New(module, Options{
		Metrics:    metrics.New(),
		CronSecret: testCronSecret,
	}, logger, ":0")
	return server, module
}

func seedContest(module contestengine.Module, id string, status entities.ContestStatus, start, end, votingEnd time.Time) {
	module.Store.SetContest(entities.Contest{
		ContestID: id,
		Title:     "Poster " + id,
		Category:  entities.DefaultCategory,
		Prizes: entities.PrizeTable{
			{Rank: 1, PrizeType: entities.PrizeTypeCredits, PrizeValue: decimal.NewFromInt(100)},
		},
		StartAt:      start,
		EndAt:        end,
		VotingEndsAt: votingEnd,
		Status:       status,
		CreatedBy:    "admin-1",
	})
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) contesthttp.ErrorResponse {
	t.Helper()
	var body contesthttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestSubmitEntryRequiresUserHeader(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusActive, now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))

	body := []byte(`{"title":"Entry","media_url":"https://cdn.example.com/a.png"}`)
	rr := serve(server, httptest.NewRequest(http.MethodPost, "/api/contests/c1/submissions", bytes.NewReader(body)))

	require.Equal(t, http.StatusUnauthorized, rr.Code, rr.Body.String())
	assert.Equal(t, "unauthenticated", decodeError(t, rr).Code)
}

func TestSubmitEntryThenDuplicateIsConflict(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusActive, now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))

	body := []byte(`{"title":"Entry","media_url":"https://cdn.example.com/a.png","media_type":"image"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/contests/c1/submissions", bytes.NewReader(body))
	req.Header.Set("X-User-Id", "creator-1")
	rr := serve(server, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created contesthttp.SubmissionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "c1", created.ContestID)
	assert.Zero(t, created.VoteCount)
	assert.Nil(t, created.Rank)

	req = httptest.NewRequest(http.MethodPost, "/api/contests/c1/submissions", bytes.NewReader(body))
	req.Header.Set("X-User-Id", "creator-1")
	rr = serve(server, req)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "duplicate_submission", decodeError(t, rr).Code)
}

func TestSubmitEntryRejectsRelativeMediaURL(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusActive, now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))

	body := []byte(`{"title":"Entry","media_url":"/uploads/a.png"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/contests/c1/submissions", bytes.NewReader(body))
	req.Header.Set("X-User-Id", "creator-1")
	rr := serve(server, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Code)
}

func TestCastVoteMapsRateLimitTo429(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusVoting, now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	for i := 0; i < 11; i++ {
		module.Store.SetSubmission(entities.Submission{
			SubmissionID: fmt.Sprintf("s%d", i),
			ContestID:    "c1",
			UserID:       fmt.Sprintf("author-%d", i),
			Title:        "Entry",
			MediaURL:     "https://cdn.example.com/a.png",
			MediaType:    entities.MediaTypeImage,
			CreatedAt:    now.Add(-90 * time.Minute),
		})
	}

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/submissions/s%d/votes", i), nil)
		req.Header.Set("X-User-Id", "voter-1")
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rr := serve(server, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/submissions/s10/votes", nil)
	req.Header.Set("X-User-Id", "voter-1")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rr := serve(server, req)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "rate_limited", decodeError(t, rr).Code)
}

func TestCastVoteOutsideWindowIsConflict(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusActive, now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	module.Store.SetSubmission(entities.Submission{
		SubmissionID: "s1", ContestID: "c1", UserID: "author-1",
		MediaURL: "https://cdn.example.com/a.png", MediaType: entities.MediaTypeImage, CreatedAt: now,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/submissions/s1/votes", nil)
	req.Header.Set("X-User-Id", "voter-1")
	rr := serve(server, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "voting_closed", decodeError(t, rr).Code)
}

func TestCreateContestRequiresAdminRole(t *testing.T) {
	server, _ := newTestServer(t)
	start := time.Now().UTC().Add(time.Hour)
	body := fmt.Sprintf(`{"title":"Poster","description":"Design","prize_table":[{"rank":1,"prize_type":"credits","prize_value":100}],"start_at":%q,"end_at":%q,"voting_ends_at":%q}`,
		start.Format(time.RFC3339), start.Add(24*time.Hour).Format(time.RFC3339), start.Add(48*time.Hour).Format(time.RFC3339))

	req := httptest.NewRequest(http.MethodPost, "/api/contests", bytes.NewReader([]byte(body)))
	req.Header.Set("X-User-Id", "creator-1")
	rr := serve(server, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/contests", bytes.NewReader([]byte(body)))
	req.Header.Set("X-User-Id", "admin-1")
	req.Header.Set("X-User-Role", "admin")
	rr = serve(server, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created contesthttp.ContestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, string(entities.ContestStatusUpcoming), created.Status)
	require.Len(t, created.PrizeTable, 1)
	assert.Equal(t, "100", created.PrizeTable[0].PrizeValue)
}

func TestCreateContestRejectsBadTimestamp(t *testing.T) {
	server, _ := newTestServer(t)
	body := []byte(`{"title":"Poster","description":"Design","prize_table":[],"start_at":"tomorrow","end_at":"","voting_ends_at":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/contests", bytes.NewReader(body))
	req.Header.Set("X-User-Id", "admin-1")
	req.Header.Set("X-User-Role", "super_admin")
	rr := serve(server, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Code)
}

func TestLeaderboardRejectsNonIntegerLimit(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusVoting, now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))

	rr := serve(server, httptest.NewRequest(http.MethodGet, "/api/contests/c1/leaderboard?limit=ten", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(server, httptest.NewRequest(http.MethodGet, "/api/contests/missing/leaderboard", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSettleContestsRequiresBearerSecret(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusVoting, now.Add(-3*time.Hour), now.Add(-2*time.Hour), now.Add(-time.Hour))

	rr := serve(server, httptest.NewRequest(http.MethodPost, "/api/cron/settle-contests", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/cron/settle-contests", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = serve(server, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/cron/settle-contests", nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)
	rr = serve(server, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp contesthttp.SettlementResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Processed)
	assert.Zero(t, resp.Failed)

	contest, err := module.Store.GetContest(req.Context(), "c1")
	require.NoError(t, err)
	assert.Equal(t, entities.ContestStatusCompleted, contest.Status)
}

func TestMetricsAndSwaggerAreServed(t *testing.T) {
	server, _ := newTestServer(t)

	rr := serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(server, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/cron/settle-contests")
}

func TestListContestsFiltersByStatusAndPages(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusVoting, now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	seedContest(module, "c2", entities.ContestStatusVoting, now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	seedContest(module, "c3", entities.ContestStatusActive, now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))

	rr := serve(server, httptest.NewRequest(http.MethodGet, "/api/contests?status=voting&limit=1&offset=1", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var page contesthttp.ContestListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c1", page.Items[0].ContestID)

	rr = serve(server, httptest.NewRequest(http.MethodGet, "/api/contests?offset=first", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_offset", decodeError(t, rr).Code)

	rr = serve(server, httptest.NewRequest(http.MethodGet, "/api/contests?status=archived", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Code)
}

func TestContestSubmissionsSortsByRecent(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusVoting, now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	for i := 0; i < 3; i++ {
		module.Store.SetSubmission(entities.Submission{
			SubmissionID: fmt.Sprintf("s%d", i),
			ContestID:    "c1",
			UserID:       fmt.Sprintf("author-%d", i),
			MediaURL:     "https://cdn.example.com/a.png",
			MediaType:    entities.MediaTypeImage,
			VoteCount:    3 - i,
			CreatedAt:    now.Add(-90*time.Minute + time.Duration(i)*time.Minute),
		})
	}

	rr := serve(server, httptest.NewRequest(http.MethodGet, "/api/contests/c1/submissions?sort_by=recent&limit=2", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var page contesthttp.SubmissionListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, "c1", page.ContestID)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "s2", page.Items[0].SubmissionID)
	assert.Equal(t, "s1", page.Items[1].SubmissionID)

	rr = serve(server, httptest.NewRequest(http.MethodGet, "/api/contests/missing/submissions", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMyVotesRequiresUserAndListsCastVotes(t *testing.T) {
	server, module := newTestServer(t)
	now := time.Now().UTC()
	seedContest(module, "c1", entities.ContestStatusVoting, now.Add(-2*time.Hour), now.Add(-time.Hour), now.Add(time.Hour))
	module.Store.SetSubmission(entities.Submission{
		SubmissionID: "s1", ContestID: "c1", UserID: "author-1",
		MediaURL: "https://cdn.example.com/a.png", MediaType: entities.MediaTypeImage, CreatedAt: now.Add(-90 * time.Minute),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/submissions/s1/votes", nil)
	req.Header.Set("X-User-Id", "voter-1")
	require.Equal(t, http.StatusCreated, serve(server, req).Code)

	rr := serve(server, httptest.NewRequest(http.MethodGet, "/api/votes", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/votes?contest_id=c1", nil)
	req.Header.Set("X-User-Id", "voter-1")
	rr = serve(server, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var votes contesthttp.VotesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &votes))
	require.Len(t, votes.Items, 1)
	assert.Equal(t, "s1", votes.Items[0].SubmissionID)
	assert.Equal(t, "voter-1", votes.Items[0].UserID)
}
