package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "studio/contexts/creative-challenges/contest-engine/application"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/domain/services"
	"studio/contexts/creative-challenges/contest-engine/ports"

	"golang.org/x/sync/errgroup"
)

const (
	settlementLockKey        = "contest-engine:settlement"
	defaultSettlementBatch   = 50
	defaultSettlementWorkers = 4
	defaultSettlementLockTTL = 2 * time.Minute
	defaultCreditExpiry      = 365 * 24 * time.Hour
)

const (
	ContestResultCompleted  = "completed"
	ContestResultEmpty      = "empty"
	ContestResultFailed     = "failed"
	ContestResultSuperseded = "superseded"
)

// ContestSettlementResult describes what one run did to one contest.
type ContestSettlementResult struct {
	ContestID   string `json:"contest_id"`
	Status      string `json:"status"`
	Submissions int    `json:"submissions"`
	Rewards     int    `json:"rewards"`
	Error       string `json:"error,omitempty"`
}

type SettlementReport struct {
	Processed int                       `json:"processed"`
	Failed    int                       `json:"failed"`
	Total     int                       `json:"total"`
	Skipped   bool                      `json:"skipped"`
	Results   []ContestSettlementResult `json:"results"`
}

// SettlementJob finalizes contests whose voting window has ended: it persists
// ranks, grants prizes, records rewards and completes the contest. Contests
// are independent; a failing contest stays in voting and is retried on the
// next run while the others complete.
type SettlementJob struct {
	Settlement   ports.SettlementRepository
	Submissions  ports.SubmissionRepository
	Credits      ports.CreditGranter
	Lock         ports.SettlementLock
	Metrics      ports.Metrics
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	BatchSize    int
	Concurrency  int
	LockTTL      time.Duration
	CreditExpiry time.Duration
	Logger       *slog.Logger
}

// RunOnce settles everything due at the current clock time.
func (j SettlementJob) RunOnce(ctx context.Context) error {
	_, err := j.Run(ctx, j.now())
	return err
}

// Run settles contests with status voting and voting_ends_at before now.
// Per-contest failures are reported in the result and never returned as an
// error; only failing to list due contests or to take the lease is.
func (j SettlementJob) Run(ctx context.Context, now time.Time) (SettlementReport, error) {
	logger := application.ResolveLogger(j.Logger)
	now = now.UTC()

	if j.Lock != nil {
		token, acquired, err := j.Lock.Acquire(ctx, settlementLockKey, j.lockTTL())
		if err != nil {
			j.metrics().ObserveSettlementRun("lock_error")
			logger.Error("settlement lease acquire failed",
				"event", "contest_settlement_lock_failed",
				"module", "creative-challenges/contest-engine",
				"layer", "worker",
				"error", err.Error(),
			)
			return SettlementReport{}, err
		}
		if !acquired {
			j.metrics().ObserveSettlementRun("skipped")
			logger.Info("settlement lease held elsewhere, skipping run",
				"event", "contest_settlement_skipped",
				"module", "creative-challenges/contest-engine",
				"layer", "worker",
			)
			return SettlementReport{Skipped: true, Results: []ContestSettlementResult{}}, nil
		}
		defer func() {
			if err := j.Lock.Release(context.WithoutCancel(ctx), settlementLockKey, token); err != nil {
				logger.Warn("settlement lease release failed",
					"event", "contest_settlement_unlock_failed",
					"module", "creative-challenges/contest-engine",
					"layer", "worker",
					"error", err.Error(),
				)
			}
		}()
	}

	due, err := j.Settlement.ListDueContests(ctx, now, j.batchSize())
	if err != nil {
		j.metrics().ObserveSettlementRun("error")
		logger.Error("settlement due contest query failed",
			"event", "contest_settlement_list_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return SettlementReport{}, err
	}
	if len(due) == 0 {
		j.metrics().ObserveSettlementRun("noop")
		logger.Debug("settlement found no due contests",
			"event", "contest_settlement_noop",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
		)
		return SettlementReport{Results: []ContestSettlementResult{}}, nil
	}

	results := make([]ContestSettlementResult, len(due))
	var group errgroup.Group
	group.SetLimit(j.concurrency())
	for i, contest := range due {
		group.Go(func() error {
			results[i] = j.settleContest(ctx, logger, contest, now)
			return nil
		})
	}
	_ = group.Wait()

	report := SettlementReport{Total: len(due), Results: results}
	for _, result := range results {
		switch result.Status {
		case ContestResultCompleted, ContestResultEmpty:
			report.Processed++
		case ContestResultFailed:
			report.Failed++
		}
	}
	outcome := "ok"
	if report.Failed > 0 {
		outcome = "partial"
	}
	j.metrics().ObserveSettlementRun(outcome)
	logger.Info("settlement run completed",
		"event", "contest_settlement_completed",
		"module", "creative-challenges/contest-engine",
		"layer", "worker",
		"total", report.Total,
		"processed", report.Processed,
		"failed", report.Failed,
	)
	return report, nil
}

func (j SettlementJob) settleContest(
	ctx context.Context,
	logger *slog.Logger,
	contest entities.Contest,
	now time.Time,
) ContestSettlementResult {
	result := ContestSettlementResult{ContestID: contest.ContestID}
	fail := func(step string, err error) ContestSettlementResult {
		result.Status = ContestResultFailed
		result.Error = fmt.Sprintf("%s: %v", step, err)
		j.metrics().ObserveSettlementContest(ports.SettlementOutcomeFailed)
		logger.Error("contest settlement failed",
			"event", "contest_settlement_contest_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"step", step,
			"error", err.Error(),
		)
		return result
	}

	submissions, err := j.Submissions.ListSubmissionsByContest(ctx, contest.ContestID)
	if err != nil {
		return fail("load_submissions", err)
	}
	result.Submissions = len(submissions)

	if len(submissions) == 0 {
		completed, err := newContestCompletedEvent(contest.ContestID, 0, 0, now)
		if err != nil {
			return fail("build_events", err)
		}
		if err := j.Settlement.CompleteContest(ctx, contest.ContestID, now, []ports.EventEnvelope{completed}); err != nil {
			return j.completionFailed(logger, result, fail, err)
		}
		result.Status = ContestResultEmpty
		j.metrics().ObserveSettlementContest(ports.SettlementOutcomeEmpty)
		logger.Info("contest completed without submissions",
			"event", "contest_settlement_contest_empty",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"contest_id", contest.ContestID,
		)
		return result
	}

	ranked := services.Rank(submissions)
	if err := j.Settlement.AssignRanks(ctx, contest.ContestID, ranked); err != nil {
		return fail("assign_ranks", err)
	}

	rewards, err := j.distributePrizes(ctx, contest, ranked, now)
	if err != nil {
		return fail("distribute_prizes", err)
	}
	result.Rewards = len(rewards)

	envelopes := make([]ports.EventEnvelope, 0, len(rewards)+1)
	completed, err := newContestCompletedEvent(contest.ContestID, len(submissions), len(rewards), now)
	if err != nil {
		return fail("build_events", err)
	}
	envelopes = append(envelopes, completed)
	for _, reward := range rewards {
		envelope, err := newRewardGrantedEvent(contest, reward, now)
		if err != nil {
			return fail("build_events", err)
		}
		envelopes = append(envelopes, envelope)
	}
	if err := j.Settlement.CompleteContest(ctx, contest.ContestID, now, envelopes); err != nil {
		return j.completionFailed(logger, result, fail, err)
	}

	result.Status = ContestResultCompleted
	j.metrics().ObserveSettlementContest(ports.SettlementOutcomeCompleted)
	logger.Info("contest settled",
		"event", "contest_settlement_contest_completed",
		"module", "creative-challenges/contest-engine",
		"layer", "worker",
		"contest_id", contest.ContestID,
		"submissions", result.Submissions,
		"rewards", result.Rewards,
	)
	return result
}

// distributePrizes walks the prize table against the persisted ranking and
// returns every reward the contest holds afterwards. Ranks already rewarded
// by an earlier failed run are not granted again.
func (j SettlementJob) distributePrizes(
	ctx context.Context,
	contest entities.Contest,
	ranked []entities.RankedSubmission,
	now time.Time,
) ([]entities.Reward, error) {
	existing, err := j.Settlement.ListRewardsByContest(ctx, contest.ContestID)
	if err != nil {
		return nil, err
	}
	byRank := make(map[int]entities.Reward, len(existing))
	for _, reward := range existing {
		byRank[reward.Rank] = reward
	}

	rewards := make([]entities.Reward, 0, len(contest.Prizes))
	for _, prize := range contest.Prizes {
		if prize.Rank > len(ranked) {
			continue
		}
		if reward, ok := byRank[prize.Rank]; ok {
			rewards = append(rewards, reward)
			continue
		}
		winner := ranked[prize.Rank-1].Submission

		if prize.PrizeType == entities.PrizeTypeCredits {
			amount, ok := prize.CreditAmount()
			if !ok {
				return nil, fmt.Errorf("rank %d: %w", prize.Rank, domainerrors.ErrInvalidPrizeTable)
			}
			if _, err := j.Credits.Grant(ctx, ports.GrantRequest{
				UserID:          winner.UserID,
				Amount:          amount,
				Reason:          entities.RewardReason,
				Description:     fmt.Sprintf("Rank #%d prize in contest %q", prize.Rank, contest.Title),
				Reference:       fmt.Sprintf("contest:%s:rank:%d", contest.ContestID, prize.Rank),
				RelatedEntityID: contest.ContestID,
				ExpiresAt:       now.Add(j.creditExpiry()),
			}); err != nil {
				return nil, fmt.Errorf("grant credits for rank %d: %w", prize.Rank, err)
			}
		}

		rewardID, err := j.IDGen.NewID(ctx)
		if err != nil {
			return nil, err
		}
		reward := entities.Reward{
			RewardID:     rewardID,
			ContestID:    contest.ContestID,
			UserID:       winner.UserID,
			SubmissionID: winner.SubmissionID,
			Rank:         prize.Rank,
			PrizeType:    prize.PrizeType,
			PrizeValue:   prize.PrizeValue,
			GrantedAt:    now,
		}
		if _, err := j.Settlement.RecordReward(ctx, reward); err != nil {
			return nil, fmt.Errorf("record reward for rank %d: %w", prize.Rank, err)
		}
		rewards = append(rewards, reward)
	}
	return rewards, nil
}

func (j SettlementJob) completionFailed(
	logger *slog.Logger,
	result ContestSettlementResult,
	fail func(string, error) ContestSettlementResult,
	err error,
) ContestSettlementResult {
	if errors.Is(err, domainerrors.ErrConflict) {
		result.Status = ContestResultSuperseded
		logger.Warn("contest left voting before completion",
			"event", "contest_settlement_contest_superseded",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"contest_id", result.ContestID,
		)
		return result
	}
	return fail("complete_contest", err)
}

func (j SettlementJob) metrics() ports.Metrics {
	if j.Metrics == nil {
		return ports.NopMetrics{}
	}
	return j.Metrics
}

func (j SettlementJob) now() time.Time {
	if j.Clock == nil {
		return time.Now().UTC()
	}
	return j.Clock.Now().UTC()
}

func (j SettlementJob) batchSize() int {
	if j.BatchSize <= 0 {
		return defaultSettlementBatch
	}
	return j.BatchSize
}

func (j SettlementJob) concurrency() int {
	if j.Concurrency <= 0 {
		return defaultSettlementWorkers
	}
	return j.Concurrency
}

func (j SettlementJob) lockTTL() time.Duration {
	if j.LockTTL <= 0 {
		return defaultSettlementLockTTL
	}
	return j.LockTTL
}

func (j SettlementJob) creditExpiry() time.Duration {
	if j.CreditExpiry <= 0 {
		return defaultCreditExpiry
	}
	return j.CreditExpiry
}
