package workers

import (
	"context"
	"log/slog"
	"time"

	application "studio/contexts/creative-challenges/contest-engine/application"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

// LifecycleAdvancer moves contests forward along their schedule:
// upcoming -> active at start_at and active -> voting at end_at. Completion
// belongs to the settlement job.
type LifecycleAdvancer struct {
	Contests  ports.ContestRepository
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (j LifecycleAdvancer) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 200
	}

	contests, err := j.Contests.ListContestsByStatus(ctx, []entities.ContestStatus{
		entities.ContestStatusUpcoming,
		entities.ContestStatusActive,
	}, limit)
	if err != nil {
		logger.Error("contest lifecycle sweep failed",
			"event", "contest_lifecycle_list_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	advanced := 0
	for _, contest := range contests {
		target := contest.ScheduledStatusAt(now)
		if target == entities.ContestStatusCompleted || !contest.Status.CanTransitionTo(target) {
			continue
		}
		ok, err := j.Contests.TransitionContestStatus(ctx, contest.ContestID, contest.Status, target, now)
		if err != nil {
			logger.Error("contest lifecycle transition failed",
				"event", "contest_lifecycle_transition_failed",
				"module", "creative-challenges/contest-engine",
				"layer", "worker",
				"contest_id", contest.ContestID,
				"from_status", string(contest.Status),
				"to_status", string(target),
				"error", err.Error(),
			)
			return err
		}
		if !ok {
			continue
		}
		advanced++
		logger.Info("contest status advanced",
			"event", "contest_lifecycle_advanced",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"from_status", string(contest.Status),
			"to_status", string(target),
		)
	}
	if advanced > 0 {
		logger.Info("contest lifecycle sweep completed",
			"event", "contest_lifecycle_completed",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"advanced_count", advanced,
		)
	}
	return nil
}
