package postgresadapter

import (
	"context"
	"fmt"
	"strings"

	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// Grant writes a credit grant keyed by its reference. A second grant with the
// same reference returns the stored grant id as a replay.
func (r *Repository) Grant(ctx context.Context, req ports.GrantRequest) (ports.GrantResult, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return ports.GrantResult{}, fmt.Errorf("%w: grant reference is required", domainerrors.ErrValidation)
	}
	if req.Amount <= 0 {
		return ports.GrantResult{}, fmt.Errorf("%w: grant amount must be positive", domainerrors.ErrValidation)
	}
	row := creditGrantModel{
		ID:              uuid.NewString(),
		Reference:       reference,
		UserID:          strings.TrimSpace(req.UserID),
		Amount:          req.Amount,
		Reason:          strings.TrimSpace(req.Reason),
		Description:     strings.TrimSpace(req.Description),
		RelatedEntityID: strings.TrimSpace(req.RelatedEntityID),
		ExpiresAt:       req.ExpiresAt.UTC(),
		CreatedAt:       r.now(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return ports.GrantResult{}, r.logError("contest_repo_credit_grant_failed", create.Error,
			"reference", reference,
			"user_id", row.UserID,
		)
	}
	if create.RowsAffected > 0 {
		return ports.GrantResult{GrantID: row.ID}, nil
	}

	var existing creditGrantModel
	if err := r.db.WithContext(ctx).
		Select("id", "user_id", "amount").
		Where("reference = ?", reference).
		First(&existing).Error; err != nil {
		return ports.GrantResult{}, r.logError("contest_repo_credit_grant_load_existing_failed", err,
			"reference", reference,
		)
	}
	if existing.UserID != row.UserID || existing.Amount != row.Amount {
		return ports.GrantResult{}, domainerrors.ErrConflict
	}
	return ports.GrantResult{GrantID: existing.ID, Replayed: true}, nil
}

var _ ports.CreditGranter = (*Repository)(nil)
