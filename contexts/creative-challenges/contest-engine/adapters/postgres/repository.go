package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
	clock  ports.Clock
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
		clock:  SystemClock{},
	}
}

// WithClock sets the clock used for timestamps the repository stamps itself.
func (r *Repository) WithClock(clock ports.Clock) *Repository {
	if clock != nil {
		r.clock = clock
	}
	return r
}

func (r *Repository) now() time.Time {
	return r.clock.Now().UTC()
}

func (r *Repository) CreateContest(ctx context.Context, contest entities.Contest) error {
	row, err := contestModelFromEntity(contest)
	if err != nil {
		return r.logError("contest_repo_create_contest_encode_failed", err, "contest_id", contest.ContestID)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("contest_repo_create_contest_failed", err, "contest_id", contest.ContestID)
	}
	return nil
}

func (r *Repository) UpdateContest(ctx context.Context, contest entities.Contest, expected entities.ContestStatus) error {
	row, err := contestModelFromEntity(contest)
	if err != nil {
		return r.logError("contest_repo_update_contest_encode_failed", err, "contest_id", contest.ContestID)
	}
	result := r.db.WithContext(ctx).
		Model(&contestModel{}).
		Where("id = ? AND status = ?", strings.TrimSpace(contest.ContestID), string(expected)).
		Updates(map[string]any{
			"title":           row.Title,
			"description":     row.Description,
			"rules":           row.Rules,
			"category":        row.Category,
			"cover_image_url": row.CoverImageURL,
			"prize_table":     row.PrizeTable,
			"start_at":        row.StartAt,
			"end_at":          row.EndAt,
			"voting_ends_at":  row.VotingEndsAt,
			"updated_at":      row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("contest_repo_update_contest_failed", result.Error, "contest_id", contest.ContestID)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&contestModel{}).
		Where("id = ?", strings.TrimSpace(contest.ContestID)).
		Count(&count).Error; err != nil {
		return r.logError("contest_repo_update_contest_failed", err, "contest_id", contest.ContestID)
	}
	if count == 0 {
		return domainerrors.ErrContestNotFound
	}
	return domainerrors.ErrConflict
}

func (r *Repository) GetContest(ctx context.Context, contestID string) (entities.Contest, error) {
	var row contestModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(contestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contest{}, domainerrors.ErrContestNotFound
		}
		return entities.Contest{}, r.logError("contest_repo_get_contest_failed", err, "contest_id", strings.TrimSpace(contestID))
	}
	contest, err := row.toEntity()
	if err != nil {
		return entities.Contest{}, r.logError("contest_repo_decode_contest_failed", err, "contest_id", row.ID)
	}
	return contest, nil
}

func (r *Repository) ListContestsByStatus(
	ctx context.Context,
	statuses []entities.ContestStatus,
	limit int,
) ([]entities.Contest, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	tx := r.db.WithContext(ctx).
		Where("status IN ?", values).
		Order("start_at ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []contestModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_contests_by_status_failed", err, "statuses", values)
	}
	return r.toContestEntities(rows)
}

func (r *Repository) ListContests(ctx context.Context, filter ports.ContestFilter) ([]entities.Contest, error) {
	tx := r.db.WithContext(ctx).Model(&contestModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if category := strings.ToLower(strings.TrimSpace(filter.Category)); category != "" {
		tx = tx.Where("category = ?", category)
	}
	tx = tx.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}
	var rows []contestModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_contests_failed", err,
			"status", string(filter.Status),
			"category", filter.Category,
		)
	}
	return r.toContestEntities(rows)
}

func (r *Repository) TransitionContestStatus(
	ctx context.Context,
	contestID string,
	from entities.ContestStatus,
	to entities.ContestStatus,
	at time.Time,
) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, nil
	}
	result := r.db.WithContext(ctx).
		Model(&contestModel{}).
		Where("id = ? AND status = ?", strings.TrimSpace(contestID), string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("contest_repo_transition_status_failed", result.Error,
			"contest_id", strings.TrimSpace(contestID),
			"from_status", string(from),
			"to_status", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) CreateSubmission(ctx context.Context, submission entities.Submission) error {
	row := submissionModelFromEntity(submission)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateSubmission
		}
		return r.logError("contest_repo_create_submission_failed", err,
			"contest_id", submission.ContestID,
			"user_id", submission.UserID,
		)
	}
	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, r.logError("contest_repo_get_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindSubmissionByUser(
	ctx context.Context,
	contestID string,
	userID string,
) (entities.Submission, bool, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ? AND user_id = ?", strings.TrimSpace(contestID), strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, false, nil
		}
		return entities.Submission{}, false, r.logError("contest_repo_find_submission_by_user_failed", err,
			"contest_id", strings.TrimSpace(contestID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListSubmissionsByContest(ctx context.Context, contestID string) ([]entities.Submission, error) {
	var rows []submissionModel
	if err := r.db.WithContext(ctx).
		Where("contest_id = ?", strings.TrimSpace(contestID)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_submissions_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListRewardsByUser(ctx context.Context, userID string, contestID string) ([]entities.Reward, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID))
	if strings.TrimSpace(contestID) != "" {
		tx = tx.Where("contest_id = ?", strings.TrimSpace(contestID))
	}
	var rows []rewardModel
	if err := tx.Order("granted_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_rewards_by_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return toRewardEntities(rows), nil
}

func (r *Repository) toContestEntities(rows []contestModel) ([]entities.Contest, error) {
	items := make([]entities.Contest, 0, len(rows))
	for _, row := range rows {
		contest, err := row.toEntity()
		if err != nil {
			return nil, r.logError("contest_repo_decode_contest_failed", err, "contest_id", row.ID)
		}
		items = append(items, contest)
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "creative-challenges/contest-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("contest repository operation failed", fields...)
	return err
}

func toRewardEntities(rows []rewardModel) []entities.Reward {
	items := make([]entities.Reward, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ContestRepository = (*Repository)(nil)
var _ ports.SubmissionRepository = (*Repository)(nil)
var _ ports.RewardRepository = (*Repository)(nil)
