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

type SubmitEntryCommand struct {
	ContestID    string
	Title        string
	Description  string
	MediaURL     string
	MediaType    string
	ThumbnailURL string
}

type entryFields struct {
	Title        string `field:"title" validate:"required,max=200"`
	Description  string `field:"description" validate:"max=5000"`
	MediaType    string `field:"media_type" validate:"oneof=image video audio document code"`
	ThumbnailURL string `field:"thumbnail_url" validate:"omitempty,absurl"`
}

// SubmissionUseCase is the gatekeeper for contest entries.
type SubmissionUseCase struct {
	Contests    ports.ContestRepository
	Submissions ports.SubmissionRepository
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// SubmitEntry checks, in order: caller identity, contest open, no prior entry,
// media URL, then text limits. The existence check is advisory; the store
// uniqueness constraint settles races and surfaces the same
// ErrDuplicateSubmission.
func (uc SubmissionUseCase) SubmitEntry(
	ctx context.Context,
	actor ports.Actor,
	cmd SubmitEntryCommand,
) (entities.Submission, error) {
	logger := application.ResolveLogger(uc.Logger)
	contestID := strings.TrimSpace(cmd.ContestID)
	userID := strings.TrimSpace(actor.UserID)

	if !actor.Authenticated() {
		return entities.Submission{}, uc.reject(logger, "unauthenticated", contestID, userID, domainerrors.ErrUnauthenticated)
	}

	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.Submission{}, uc.reject(logger, "contest_not_open", contestID, userID, domainerrors.ErrContestNotOpen)
		}
		return entities.Submission{}, err
	}
	now := uc.now()
	if !contest.AcceptsSubmissionsAt(now) {
		return entities.Submission{}, uc.reject(logger, "contest_not_open", contestID, userID, domainerrors.ErrContestNotOpen)
	}

	if _, found, err := uc.Submissions.FindSubmissionByUser(ctx, contestID, userID); err != nil {
		return entities.Submission{}, err
	} else if found {
		return entities.Submission{}, uc.reject(logger, "duplicate", contestID, userID, domainerrors.ErrDuplicateSubmission)
	}

	if err := application.ValidateMediaURL(cmd.MediaURL); err != nil {
		return entities.Submission{}, uc.reject(logger, "invalid_media", contestID, userID, err)
	}
	fields := entryFields{
		Title:        strings.TrimSpace(cmd.Title),
		Description:  strings.TrimSpace(cmd.Description),
		MediaType:    normalizeMediaType(cmd.MediaType),
		ThumbnailURL: strings.TrimSpace(cmd.ThumbnailURL),
	}
	if err := application.ValidateStruct(fields); err != nil {
		return entities.Submission{}, uc.reject(logger, "invalid", contestID, userID, err)
	}

	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	submission := entities.Submission{
		SubmissionID: submissionID,
		ContestID:    contestID,
		UserID:       userID,
		Title:        fields.Title,
		Description:  fields.Description,
		MediaURL:     strings.TrimSpace(cmd.MediaURL),
		MediaType:    entities.MediaType(fields.MediaType),
		ThumbnailURL: fields.ThumbnailURL,
		VoteCount:    0,
		Rank:         nil,
		CreatedAt:    now,
	}
	if err := uc.Submissions.CreateSubmission(ctx, submission); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateSubmission) {
			return entities.Submission{}, uc.reject(logger, "duplicate", contestID, userID, domainerrors.ErrDuplicateSubmission)
		}
		uc.metrics().ObserveSubmission("error")
		logger.Error("submission persist failed",
			"event", "contest_submission_persist_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "application",
			"contest_id", contestID,
			"user_id", userID,
			"error", err.Error(),
		)
		return entities.Submission{}, err
	}

	uc.metrics().ObserveSubmission("accepted")
	logger.Info("submission accepted",
		"event", "contest_submission_accepted",
		"module", "creative-challenges/contest-engine",
		"layer", "application",
		"contest_id", contestID,
		"submission_id", submission.SubmissionID,
		"user_id", userID,
	)
	return submission, nil
}

func (uc SubmissionUseCase) reject(logger *slog.Logger, outcome string, contestID string, userID string, err error) error {
	uc.metrics().ObserveSubmission(outcome)
	logger.Warn("submission rejected",
		"event", "contest_submission_rejected",
		"module", "creative-challenges/contest-engine",
		"layer", "application",
		"contest_id", contestID,
		"user_id", userID,
		"outcome", outcome,
		"error", err.Error(),
	)
	return err
}

func (uc SubmissionUseCase) metrics() ports.Metrics {
	if uc.Metrics == nil {
		return ports.NopMetrics{}
	}
	return uc.Metrics
}

func (uc SubmissionUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func normalizeMediaType(raw string) string {
	mediaType := strings.ToLower(strings.TrimSpace(raw))
	if mediaType == "" {
		return string(entities.MediaTypeImage)
	}
	return mediaType
}
