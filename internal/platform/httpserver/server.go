package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	contestengine "studio/contexts/creative-challenges/contest-engine"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/application/queries"
	"studio/contexts/creative-challenges/contest-engine/domain/services"
	"studio/contexts/creative-challenges/contest-engine/ports"
	contesthttp "studio/contexts/creative-challenges/contest-engine/transport/http"
	"studio/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "studio/internal/platform/httpserver/docs"
)

const maxRequestBody = 1 << 20

type Server struct {
	mux        *http.ServeMux
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
	contests   contestengine.Module
	metrics    *metrics.Metrics
	cronSecret string
	clock      ports.Clock
}

type Options struct {
	Metrics    *metrics.Metrics
	CronSecret string
	Clock      ports.Clock
}

func New(
	contests contestengine.Module,
	opts Options,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		contests:   contests,
		metrics:    opts.Metrics,
		cronSecret: strings.TrimSpace(opts.CronSecret),
		clock:      opts.Clock,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.handle("GET /api/contests", s.handleListContests)
	s.handle("POST /api/contests", s.handleCreateContest)
	s.handle("PATCH /api/contests/{contest_id}", s.handleUpdateContest)
	s.handle("GET /api/contests/{contest_id}", s.handleGetContest)
	s.handle("GET /api/contests/{contest_id}/submissions", s.handleContestSubmissions)
	s.handle("POST /api/contests/{contest_id}/submissions", s.handleSubmitEntry)
	s.handle("GET /api/contests/{contest_id}/leaderboard", s.handleLeaderboard)
	s.handle("GET /api/contests/{contest_id}/statistics", s.handleStatistics)
	s.handle("POST /api/submissions/{submission_id}/votes", s.handleCastVote)
	s.handle("GET /api/votes", s.handleMyVotes)
	s.handle("DELETE /api/votes/{vote_id}", s.handleRevokeVote)
	s.handle("GET /api/rewards", s.handleMyRewards)
	s.handle("GET /api/cron/settle-contests", s.handleSettleContests)
	s.handle("POST /api/cron/settle-contests", s.handleSettleContests)
}

func (s *Server) handle(pattern string, handler http.HandlerFunc) {
	if s.metrics != nil {
		handler = s.metrics.Middleware(pattern, handler)
	}
	s.mux.HandleFunc(pattern, handler)
}

// @Summary Create a contest
// @Tags contests
// @Accept json
// @Produce json
// @Param X-User-Id header string true "caller id"
// @Param X-User-Role header string true "admin or super_admin"
// @Param body body contesthttp.CreateContestRequest true "contest"
// @Success 201 {object} contesthttp.ContestResponse
// @Failure 400 {object} contesthttp.ErrorResponse
// @Failure 403 {object} contesthttp.ErrorResponse
// @Router /api/contests [post]
func (s *Server) handleCreateContest(w http.ResponseWriter, r *http.Request) {
	var req contesthttp.CreateContestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.contests.Handler.CreateContestHandler(r.Context(), actorFrom(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// @Summary Update a contest
// @Tags contests
// @Accept json
// @Produce json
// @Param contest_id path string true "contest id"
// @Param body body contesthttp.UpdateContestRequest true "fields to change"
// @Success 200 {object} contesthttp.ContestResponse
// @Failure 403 {object} contesthttp.ErrorResponse
// @Router /api/contests/{contest_id} [patch]
func (s *Server) handleUpdateContest(w http.ResponseWriter, r *http.Request) {
	var req contesthttp.UpdateContestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.contests.Handler.UpdateContestHandler(r.Context(), actorFrom(r), r.PathValue("contest_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary List contests
// @Tags contests
// @Produce json
// @Param status query string false "upcoming, active, voting or completed"
// @Param category query string false "category"
// @Param limit query int false "1..100, default 20"
// @Param offset query int false "rows to skip"
// @Success 200 {object} contesthttp.ContestListResponse
// @Failure 400 {object} contesthttp.ErrorResponse
// @Router /api/contests [get]
func (s *Server) handleListContests(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	resp, err := s.contests.Handler.ListContestsHandler(r.Context(), queries.ContestListQuery{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary List a contest's submissions
// @Tags submissions
// @Produce json
// @Param contest_id path string true "contest id"
// @Param sort_by query string false "votes (default), recent or rank"
// @Param limit query int false "1..100, default 20"
// @Param offset query int false "rows to skip"
// @Success 200 {object} contesthttp.SubmissionListResponse
// @Failure 404 {object} contesthttp.ErrorResponse
// @Router /api/contests/{contest_id}/submissions [get]
func (s *Server) handleContestSubmissions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	resp, err := s.contests.Handler.ContestSubmissionsHandler(r.Context(), queries.SubmissionListQuery{
		ContestID: r.PathValue("contest_id"),
		SortBy:    r.URL.Query().Get("sort_by"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Caller's live votes
// @Tags votes
// @Produce json
// @Param contest_id query string false "only this contest"
// @Success 200 {object} contesthttp.VotesResponse
// @Failure 401 {object} contesthttp.ErrorResponse
// @Router /api/votes [get]
func (s *Server) handleMyVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contests.Handler.MyVotesHandler(r.Context(), actorFrom(r), r.URL.Query().Get("contest_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Get a contest
// @Tags contests
// @Produce json
// @Param contest_id path string true "contest id"
// @Success 200 {object} contesthttp.ContestResponse
// @Failure 404 {object} contesthttp.ErrorResponse
// @Router /api/contests/{contest_id} [get]
func (s *Server) handleGetContest(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contests.Handler.GetContestHandler(r.Context(), r.PathValue("contest_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Submit an entry
// @Tags submissions
// @Accept json
// @Produce json
// @Param contest_id path string true "contest id"
// @Param body body contesthttp.SubmitEntryRequest true "entry"
// @Success 201 {object} contesthttp.SubmissionResponse
// @Failure 409 {object} contesthttp.ErrorResponse
// @Router /api/contests/{contest_id}/submissions [post]
func (s *Server) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	var req contesthttp.SubmitEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.contests.Handler.SubmitEntryHandler(r.Context(), actorFrom(r), r.PathValue("contest_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// @Summary Contest leaderboard
// @Tags leaderboard
// @Produce json
// @Param contest_id path string true "contest id"
// @Param limit query int false "1..100, default 100"
// @Success 200 {object} contesthttp.LeaderboardResponse
// @Router /api/contests/{contest_id}/leaderboard [get]
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	resp, err := s.contests.Handler.LeaderboardHandler(r.Context(), r.PathValue("contest_id"), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Contest statistics
// @Tags contests
// @Produce json
// @Param contest_id path string true "contest id"
// @Success 200 {object} contesthttp.StatisticsResponse
// @Router /api/contests/{contest_id}/statistics [get]
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contests.Handler.StatisticsHandler(r.Context(), r.PathValue("contest_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Vote for a submission
// @Tags votes
// @Produce json
// @Param submission_id path string true "submission id"
// @Success 201 {object} contesthttp.VoteResponse
// @Failure 409 {object} contesthttp.ErrorResponse
// @Failure 429 {object} contesthttp.ErrorResponse
// @Router /api/submissions/{submission_id}/votes [post]
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contests.Handler.CastVoteHandler(
		r.Context(),
		actorFrom(r),
		r.PathValue("submission_id"),
		services.ClientIP(r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP")),
		r.UserAgent(),
	)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// @Summary Revoke a vote
// @Tags votes
// @Produce json
// @Param vote_id path string true "vote id"
// @Success 200 {object} contesthttp.RevokeVoteResponse
// @Failure 403 {object} contesthttp.ErrorResponse
// @Router /api/votes/{vote_id} [delete]
func (s *Server) handleRevokeVote(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contests.Handler.RevokeVoteHandler(r.Context(), actorFrom(r), r.PathValue("vote_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Caller's contest rewards
// @Tags rewards
// @Produce json
// @Param contest_id query string false "only this contest"
// @Success 200 {object} contesthttp.RewardsResponse
// @Router /api/rewards [get]
func (s *Server) handleMyRewards(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contests.Handler.MyRewardsHandler(r.Context(), actorFrom(r), r.URL.Query().Get("contest_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Run contest settlement
// @Tags cron
// @Produce json
// @Param Authorization header string true "Bearer CRON_SECRET"
// @Success 200 {object} contesthttp.SettlementResponse
// @Failure 401 {object} contesthttp.ErrorResponse
// @Router /api/cron/settle-contests [post]
func (s *Server) handleSettleContests(w http.ResponseWriter, r *http.Request) {
	if !s.cronAuthorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid cron credentials")
		return
	}
	resp, err := s.contests.Handler.SettleContestsHandler(r.Context(), s.now())
	if err != nil {
		s.logger.Error("settlement trigger failed",
			"event", "http_settlement_trigger_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "settlement_failed", "settlement run failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// cronAuthorized rejects every call while no secret is configured.
func (s *Server) cronAuthorized(r *http.Request) bool {
	if s.cronSecret == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.cronSecret)) == 1
}

func (s *Server) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now().UTC()
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domainerrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrContestNotOpen):
		writeError(w, http.StatusConflict, "contest_not_open", err.Error())
	case errors.Is(err, domainerrors.ErrVotingClosed):
		writeError(w, http.StatusConflict, "voting_closed", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateSubmission):
		writeError(w, http.StatusConflict, "duplicate_submission", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateVote):
		writeError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, domainerrors.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		s.logger.Error("unhandled contest error",
			"event", "http_contest_internal_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func actorFrom(r *http.Request) ports.Actor {
	return ports.Actor{
		UserID: strings.TrimSpace(r.Header.Get("X-User-Id")),
		Role:   strings.TrimSpace(r.Header.Get("X-User-Role")),
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

// queryInt reads an optional integer query parameter; zero when absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return value, true
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, contesthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
