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

// CreateContestCommand carries the raw prize table JSON so it is parsed and
// validated exactly once, before anything is written.
type CreateContestCommand struct {
	Title         string
	Description   string
	Rules         string
	Category      string
	CoverImageURL string
	PrizeTable    string
	StartAt       time.Time
	EndAt         time.Time
	VotingEndsAt  time.Time
}

// UpdateContestCommand applies only the non-nil fields.
type UpdateContestCommand struct {
	ContestID     string
	Title         *string
	Description   *string
	Rules         *string
	Category      *string
	CoverImageURL *string
	PrizeTable    *string
	StartAt       *time.Time
	EndAt         *time.Time
	VotingEndsAt  *time.Time
}

type contestFields struct {
	Title         string `field:"title" validate:"required,max=200"`
	Description   string `field:"description" validate:"required,max=5000"`
	Rules         string `field:"rules" validate:"max=5000"`
	Category      string `field:"category" validate:"max=50"`
	CoverImageURL string `field:"cover_image_url" validate:"omitempty,absurl"`
}

type ContestUseCase struct {
	Contests ports.ContestRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc ContestUseCase) CreateContest(
	ctx context.Context,
	actor ports.Actor,
	cmd CreateContestCommand,
) (entities.Contest, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := requireAdmin(actor); err != nil {
		logger.Warn("contest create rejected",
			"event", "contest_create_rejected",
			"module", "creative-challenges/contest-engine",
			"layer", "application",
			"user_id", strings.TrimSpace(actor.UserID),
			"error", err.Error(),
		)
		return entities.Contest{}, err
	}

	fields := contestFields{
		Title:         strings.TrimSpace(cmd.Title),
		Description:   strings.TrimSpace(cmd.Description),
		Rules:         strings.TrimSpace(cmd.Rules),
		Category:      normalizeCategory(cmd.Category),
		CoverImageURL: strings.TrimSpace(cmd.CoverImageURL),
	}
	if err := application.ValidateStruct(fields); err != nil {
		return entities.Contest{}, err
	}
	prizes, err := entities.ParsePrizeTable(cmd.PrizeTable)
	if err != nil {
		logger.Warn("contest create prize table rejected",
			"event", "contest_create_prize_table_invalid",
			"module", "creative-challenges/contest-engine",
			"layer", "application",
			"user_id", strings.TrimSpace(actor.UserID),
			"error", err.Error(),
		)
		return entities.Contest{}, err
	}
	if err := entities.ValidateSchedule(cmd.StartAt, cmd.EndAt, cmd.VotingEndsAt); err != nil {
		return entities.Contest{}, err
	}

	contestID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Contest{}, err
	}
	now := uc.now()
	contest := entities.Contest{
		ContestID:     contestID,
		Title:         fields.Title,
		Description:   fields.Description,
		Rules:         fields.Rules,
		Category:      fields.Category,
		CoverImageURL: fields.CoverImageURL,
		Prizes:        prizes,
		StartAt:       cmd.StartAt.UTC(),
		EndAt:         cmd.EndAt.UTC(),
		VotingEndsAt:  cmd.VotingEndsAt.UTC(),
		Status:        entities.ContestStatusUpcoming,
		CreatedBy:     strings.TrimSpace(actor.UserID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Contests.CreateContest(ctx, contest); err != nil {
		logger.Error("contest create persist failed",
			"event", "contest_create_persist_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "application",
			"contest_id", contest.ContestID,
			"error", err.Error(),
		)
		return entities.Contest{}, err
	}
	logger.Info("contest created",
		"event", "contest_created",
		"module", "creative-challenges/contest-engine",
		"layer", "application",
		"contest_id", contest.ContestID,
		"created_by", contest.CreatedBy,
		"prize_count", len(contest.Prizes),
	)
	return contest, nil
}

// UpdateContest edits descriptive fields at any point before completion. The
// schedule and prize table are frozen once the contest leaves upcoming. The
// write is conditioned on the status that was read; a concurrent transition
// re-runs the checks against the fresh row.
func (uc ContestUseCase) UpdateContest(
	ctx context.Context,
	actor ports.Actor,
	cmd UpdateContestCommand,
) (entities.Contest, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := requireAdmin(actor); err != nil {
		return entities.Contest{}, err
	}

	for attempt := 1; ; attempt++ {
		current, err := uc.Contests.GetContest(ctx, strings.TrimSpace(cmd.ContestID))
		if err != nil {
			return entities.Contest{}, err
		}
		contest, err := applyContestUpdate(current, cmd)
		if err != nil {
			if errors.Is(err, domainerrors.ErrContestImmutable) {
				logger.Warn("contest update rejected",
					"event", "contest_update_rejected",
					"module", "creative-challenges/contest-engine",
					"layer", "application",
					"contest_id", current.ContestID,
					"status", string(current.Status),
				)
			}
			return entities.Contest{}, err
		}

		contest.UpdatedAt = uc.now()
		err = uc.Contests.UpdateContest(ctx, contest, current.Status)
		if errors.Is(err, domainerrors.ErrConflict) && attempt < maxUpdateAttempts {
			logger.Debug("contest status moved during update, retrying",
				"event", "contest_update_status_conflict",
				"module", "creative-challenges/contest-engine",
				"layer", "application",
				"contest_id", current.ContestID,
				"read_status", string(current.Status),
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			return entities.Contest{}, err
		}
		logger.Info("contest updated",
			"event", "contest_updated",
			"module", "creative-challenges/contest-engine",
			"layer", "application",
			"contest_id", contest.ContestID,
			"updated_by", strings.TrimSpace(actor.UserID),
		)
		return contest, nil
	}
}

const maxUpdateAttempts = 3

func applyContestUpdate(contest entities.Contest, cmd UpdateContestCommand) (entities.Contest, error) {
	if contest.Status == entities.ContestStatusCompleted {
		return entities.Contest{}, domainerrors.ErrContestImmutable
	}
	touchesSchedule := cmd.StartAt != nil || cmd.EndAt != nil || cmd.VotingEndsAt != nil || cmd.PrizeTable != nil
	if touchesSchedule && contest.Status != entities.ContestStatusUpcoming {
		return entities.Contest{}, domainerrors.ErrContestImmutable
	}

	if cmd.Title != nil {
		contest.Title = strings.TrimSpace(*cmd.Title)
	}
	if cmd.Description != nil {
		contest.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Rules != nil {
		contest.Rules = strings.TrimSpace(*cmd.Rules)
	}
	if cmd.Category != nil {
		contest.Category = normalizeCategory(*cmd.Category)
	}
	if cmd.CoverImageURL != nil {
		contest.CoverImageURL = strings.TrimSpace(*cmd.CoverImageURL)
	}
	if err := application.ValidateStruct(contestFields{
		Title:         contest.Title,
		Description:   contest.Description,
		Rules:         contest.Rules,
		Category:      contest.Category,
		CoverImageURL: contest.CoverImageURL,
	}); err != nil {
		return entities.Contest{}, err
	}
	if cmd.PrizeTable != nil {
		prizes, err := entities.ParsePrizeTable(*cmd.PrizeTable)
		if err != nil {
			return entities.Contest{}, err
		}
		contest.Prizes = prizes
	}
	if cmd.StartAt != nil {
		contest.StartAt = cmd.StartAt.UTC()
	}
	if cmd.EndAt != nil {
		contest.EndAt = cmd.EndAt.UTC()
	}
	if cmd.VotingEndsAt != nil {
		contest.VotingEndsAt = cmd.VotingEndsAt.UTC()
	}
	if err := entities.ValidateSchedule(contest.StartAt, contest.EndAt, contest.VotingEndsAt); err != nil {
		return entities.Contest{}, err
	}
	return contest, nil
}

func (uc ContestUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func requireAdmin(actor ports.Actor) error {
	if !actor.Authenticated() {
		return domainerrors.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return domainerrors.ErrForbidden
	}
	return nil
}

func normalizeCategory(raw string) string {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return entities.DefaultCategory
	}
	return category
}
