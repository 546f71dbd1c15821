package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "studio/contexts/creative-challenges/contest-engine/application"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

type CastVoteCommand struct {
	SubmissionID string
	IPAddress    string
	UserAgent    string
}

// VoteUseCase hands every vote mutation to the ledger as a single atomic
// call. It never reads state to decide on a write itself.
type VoteUseCase struct {
	Ledger    ports.VoteLedger
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	RateLimit entities.RateLimitPolicy
	Metrics   ports.Metrics
	Logger    *slog.Logger
}

func (uc VoteUseCase) CastVote(ctx context.Context, actor ports.Actor, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	if !actor.Authenticated() {
		uc.metrics().ObserveVote("unauthenticated")
		return entities.Vote{}, domainerrors.ErrUnauthenticated
	}
	if submissionID == "" {
		uc.metrics().ObserveVote("invalid")
		return entities.Vote{}, domainerrors.ErrSubmissionNotFound
	}

	ip := strings.TrimSpace(cmd.IPAddress)
	if ip == "" {
		ip = entities.UnknownIP
	}
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	vote, err := uc.Ledger.CastVote(ctx, ports.CastVoteRequest{
		VoteID:       voteID,
		SubmissionID: submissionID,
		UserID:       strings.TrimSpace(actor.UserID),
		IPAddress:    ip,
		UserAgent:    strings.TrimSpace(cmd.UserAgent),
		Now:          uc.now(),
		RateLimit:    uc.RateLimit.Normalize(),
	})
	if err != nil {
		outcome := voteOutcome(err)
		uc.metrics().ObserveVote(outcome)
		level := slog.LevelWarn
		if outcome == "error" {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "vote cast rejected",
			"event", "contest_vote_cast_rejected",
			"module", "creative-challenges/contest-engine",
			"layer", "application",
			"submission_id", submissionID,
			"user_id", strings.TrimSpace(actor.UserID),
			"ip_address", ip,
			"outcome", outcome,
			"error", err.Error(),
		)
		return entities.Vote{}, err
	}

	uc.metrics().ObserveVote("accepted")
	logger.Info("vote cast",
		"event", "contest_vote_cast",
		"module", "creative-challenges/contest-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"submission_id", vote.SubmissionID,
		"contest_id", vote.ContestID,
		"user_id", vote.UserID,
	)
	return vote, nil
}

func (uc VoteUseCase) RevokeVote(ctx context.Context, actor ports.Actor, voteID string) (bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !actor.Authenticated() {
		return false, domainerrors.ErrUnauthenticated
	}
	voteID = strings.TrimSpace(voteID)
	if voteID == "" {
		return false, domainerrors.ErrVoteNotFound
	}
	if err := uc.Ledger.RevokeVote(ctx, ports.RevokeVoteRequest{
		VoteID: voteID,
		UserID: strings.TrimSpace(actor.UserID),
		Now:    uc.now(),
	}); err != nil {
		uc.metrics().ObserveVote("revoke_" + voteOutcome(err))
		logger.Warn("vote revoke rejected",
			"event", "contest_vote_revoke_rejected",
			"module", "creative-challenges/contest-engine",
			"layer", "application",
			"vote_id", voteID,
			"user_id", strings.TrimSpace(actor.UserID),
			"error", err.Error(),
		)
		return false, err
	}
	uc.metrics().ObserveVote("revoked")
	logger.Info("vote revoked",
		"event", "contest_vote_revoked",
		"module", "creative-challenges/contest-engine",
		"layer", "application",
		"vote_id", voteID,
		"user_id", strings.TrimSpace(actor.UserID),
	)
	return true, nil
}

func (uc VoteUseCase) metrics() ports.Metrics {
	if uc.Metrics == nil {
		return ports.NopMetrics{}
	}
	return uc.Metrics
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func voteOutcome(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrVotingClosed):
		return "voting_closed"
	case errors.Is(err, domainerrors.ErrDuplicateVote):
		return "duplicate"
	case errors.Is(err, domainerrors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domainerrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, domainerrors.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
