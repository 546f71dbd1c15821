package postgresadapter

import (
	"context"
	"errors"
	"strings"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CastVote locks the target submission row, then serializes callers sharing an
// IP address with a transaction-scoped advisory lock so the rate-limit count
// and the insert cannot interleave.
func (r *Repository) CastVote(ctx context.Context, req ports.CastVoteRequest) (entities.Vote, error) {
	submissionID := strings.TrimSpace(req.SubmissionID)
	userID := strings.TrimSpace(req.UserID)
	ip := strings.TrimSpace(req.IPAddress)
	if ip == "" {
		ip = entities.UnknownIP
	}
	policy := req.RateLimit.Normalize()
	now := req.Now.UTC()

	var vote entities.Vote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission submissionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", submissionID).
			First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrSubmissionNotFound
			}
			return err
		}

		var contestRow contestModel
		if err := tx.Where("id = ?", submission.ContestID).First(&contestRow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVotingClosed
			}
			return err
		}
		contest, err := contestRow.toEntity()
		if err != nil {
			return err
		}
		if !contest.VotingOpenAt(now) {
			return domainerrors.ErrVotingClosed
		}

		var existing int64
		if err := tx.Model(&voteModel{}).
			Where("submission_id = ? AND user_id = ?", submissionID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domainerrors.ErrDuplicateVote
		}

		// gorm-postgres-enforcer: allow-raw-sql advisory lock has no query builder equivalent
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", ip).Error; err != nil {
			return err
		}
		var recent int64
		if err := tx.Model(&voteModel{}).
			Where("ip_address = ? AND created_at > ?", ip, policy.WindowStart(now)).
			Count(&recent).Error; err != nil {
			return err
		}
		if recent >= int64(policy.Limit) {
			return domainerrors.ErrRateLimited
		}

		row := voteModel{
			ID:           strings.TrimSpace(req.VoteID),
			ContestID:    submission.ContestID,
			SubmissionID: submissionID,
			UserID:       userID,
			IPAddress:    ip,
			UserAgent:    strings.TrimSpace(req.UserAgent),
			CreatedAt:    now,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateVote
			}
			return err
		}
		if err := tx.Model(&submissionModel{}).
			Where("id = ?", submissionID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1)).Error; err != nil {
			return err
		}
		vote = row.toEntity()
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Vote{}, err
		}
		return entities.Vote{}, r.logError("contest_repo_cast_vote_failed", err,
			"submission_id", submissionID,
			"user_id", userID,
		)
	}
	return vote, nil
}

func (r *Repository) RevokeVote(ctx context.Context, req ports.RevokeVoteRequest) error {
	voteID := strings.TrimSpace(req.VoteID)
	userID := strings.TrimSpace(req.UserID)
	now := req.Now.UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vote voteModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", voteID).
			First(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVoteNotFound
			}
			return err
		}
		if vote.UserID != userID {
			return domainerrors.ErrForbidden
		}

		var contestRow contestModel
		if err := tx.Where("id = ?", vote.ContestID).First(&contestRow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVotingClosed
			}
			return err
		}
		contest, err := contestRow.toEntity()
		if err != nil {
			return err
		}
		if !contest.VotingOpenAt(now) {
			return domainerrors.ErrVotingClosed
		}

		if err := tx.Where("id = ?", voteID).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		return tx.Model(&submissionModel{}).
			Where("id = ?", vote.SubmissionID).
			UpdateColumn("vote_count", gorm.Expr("GREATEST(vote_count - ?, 0)", 1)).Error
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return r.logError("contest_repo_revoke_vote_failed", err,
			"vote_id", voteID,
			"user_id", userID,
		)
	}
	return nil
}

type voteTotalsRow struct {
	TotalVotes   int `gorm:"column:total_votes"`
	UniqueVoters int `gorm:"column:unique_voters"`
}

func (r *Repository) ListVotesByUser(ctx context.Context, userID string, contestID string) ([]entities.Vote, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", strings.TrimSpace(userID))
	if contestID = strings.TrimSpace(contestID); contestID != "" {
		tx = tx.Where("contest_id = ?", contestID)
	}
	var rows []voteModel
	if err := tx.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_votes_by_user_failed", err,
			"user_id", strings.TrimSpace(userID),
			"contest_id", contestID,
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ContestVoteTotals(ctx context.Context, contestID string) (int, int, error) {
	var row voteTotalsRow
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Select("COUNT(*) AS total_votes, COUNT(DISTINCT user_id) AS unique_voters").
		Where("contest_id = ?", strings.TrimSpace(contestID)).
		Scan(&row).Error; err != nil {
		return 0, 0, r.logError("contest_repo_vote_totals_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	return row.TotalVotes, row.UniqueVoters, nil
}

func isDomainError(err error) bool {
	return errors.Is(err, domainerrors.ErrNotFound) ||
		errors.Is(err, domainerrors.ErrVotingClosed) ||
		errors.Is(err, domainerrors.ErrDuplicateVote) ||
		errors.Is(err, domainerrors.ErrRateLimited) ||
		errors.Is(err, domainerrors.ErrForbidden) ||
		errors.Is(err, domainerrors.ErrConflict)
}

var _ ports.VoteLedger = (*Repository)(nil)
