package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"
	"studio/internal/shared/outbox"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) ListDueContests(ctx context.Context, now time.Time, limit int) ([]entities.Contest, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []contestModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND voting_ends_at < ?", string(entities.ContestStatusVoting), now.UTC()).
		Order("voting_ends_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_due_contests_failed", err, "limit", limit)
	}
	return r.toContestEntities(rows)
}

func (r *Repository) AssignRanks(ctx context.Context, contestID string, ranked []entities.RankedSubmission) error {
	contestID = strings.TrimSpace(contestID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range ranked {
			result := tx.Model(&submissionModel{}).
				Where("id = ? AND contest_id = ?", item.Submission.SubmissionID, contestID).
				UpdateColumn("rank", item.Rank)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domainerrors.ErrSubmissionNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		return r.logError("contest_repo_assign_ranks_failed", err, "contest_id", contestID)
	}
	return nil
}

func (r *Repository) ListRewardsByContest(ctx context.Context, contestID string) ([]entities.Reward, error) {
	var rows []rewardModel
	if err := r.db.WithContext(ctx).
		Where("contest_id = ?", strings.TrimSpace(contestID)).
		Order("rank ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_rewards_by_contest_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	return toRewardEntities(rows), nil
}

func (r *Repository) RecordReward(ctx context.Context, reward entities.Reward) (bool, error) {
	row := rewardModelFromEntity(reward)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contest_id"}, {Name: "rank"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("contest_repo_record_reward_failed", create.Error,
			"contest_id", row.ContestID,
			"rank", row.Rank,
		)
	}
	return create.RowsAffected > 0, nil
}

func (r *Repository) CompleteContest(
	ctx context.Context,
	contestID string,
	at time.Time,
	envelopes []ports.EventEnvelope,
) error {
	contestID = strings.TrimSpace(contestID)
	rows := make([]outboxModel, 0, len(envelopes))
	for _, envelope := range envelopes {
		payload, err := json.Marshal(envelope)
		if err != nil {
			return r.logError("contest_repo_complete_contest_marshal_failed", err,
				"contest_id", contestID,
				"event_id", envelope.EventID,
			)
		}
		row := outboxModel{
			OutboxID:     strings.TrimSpace(envelope.EventID),
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			Status:       outbox.StatusPending,
			CreatedAt:    envelope.OccurredAt.UTC(),
		}
		if row.OutboxID == "" {
			row.OutboxID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = at.UTC()
		}
		rows = append(rows, row)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&contestModel{}).
			Where("id = ? AND status = ?", contestID, string(entities.ContestStatusVoting)).
			Updates(map[string]any{
				"status":     string(entities.ContestStatusCompleted),
				"updated_at": at.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&contestModel{}).Where("id = ?", contestID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrContestNotFound
			}
			return domainerrors.ErrConflict
		}
		for i := range rows {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "outbox_id"}},
				DoNothing: true,
			}).Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) || errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		return r.logError("contest_repo_complete_contest_failed", err, "contest_id", contestID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			Status:       row.Status,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("contest_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// ReserveEvent reports true when the event id was already reserved with the
// same payload hash.
func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	processedAt time.Time,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: processedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("contest_repo_reserve_event_failed", create.Error,
			"event_id", row.EventID,
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("contest_repo_reserve_event_load_existing_failed", err,
			"event_id", row.EventID,
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

var _ ports.SettlementRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
