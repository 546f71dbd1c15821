package queries

import (
	"context"
	"strings"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

type VotesUseCase struct {
	Votes ports.VoteLedger
}

// MyVotes lists the caller's live votes newest first, optionally for one
// contest. Each vote id is what a revoke needs.
func (uc VotesUseCase) MyVotes(ctx context.Context, actor ports.Actor, contestID string) ([]entities.Vote, error) {
	if !actor.Authenticated() {
		return nil, domainerrors.ErrUnauthenticated
	}
	return uc.Votes.ListVotesByUser(ctx, strings.TrimSpace(actor.UserID), strings.TrimSpace(contestID))
}
