package queries

import (
	"context"
	"strings"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

type RewardsUseCase struct {
	Rewards ports.RewardRepository
}

// MyRewards lists the caller's rewards newest first, optionally for one contest.
func (uc RewardsUseCase) MyRewards(ctx context.Context, actor ports.Actor, contestID string) ([]entities.Reward, error) {
	if !actor.Authenticated() {
		return nil, domainerrors.ErrUnauthenticated
	}
	return uc.Rewards.ListRewardsByUser(ctx, strings.TrimSpace(actor.UserID), strings.TrimSpace(contestID))
}
