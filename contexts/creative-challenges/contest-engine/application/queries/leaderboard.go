package queries

import (
	"context"
	"strings"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/contexts/creative-challenges/contest-engine/domain/services"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

const (
	defaultLeaderboardLimit = 100
	maxLeaderboardLimit     = 100
)

type LeaderboardUseCase struct {
	Contests    ports.ContestRepository
	Submissions ports.SubmissionRepository
}

// Leaderboard ranks the live submissions of a contest. limit is clamped to 1..100.
func (uc LeaderboardUseCase) Leaderboard(ctx context.Context, contestID string, limit int) ([]entities.RankedSubmission, error) {
	contestID = strings.TrimSpace(contestID)
	if _, err := uc.Contests.GetContest(ctx, contestID); err != nil {
		return nil, err
	}
	submissions, err := uc.Submissions.ListSubmissionsByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	ranked := services.Rank(submissions)
	limit = clampLimit(limit)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLeaderboardLimit
	case limit > maxLeaderboardLimit:
		return maxLeaderboardLimit
	default:
		return limit
	}
}
