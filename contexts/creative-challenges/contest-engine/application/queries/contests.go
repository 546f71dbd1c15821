package queries

import (
	"context"
	"strings"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

type ContestQueryUseCase struct {
	Contests    ports.ContestRepository
	Submissions ports.SubmissionRepository
	Votes       ports.VoteLedger
}

func (uc ContestQueryUseCase) GetContest(ctx context.Context, contestID string) (entities.Contest, error) {
	return uc.Contests.GetContest(ctx, strings.TrimSpace(contestID))
}

func (uc ContestQueryUseCase) Statistics(ctx context.Context, contestID string) (entities.ContestStatistics, error) {
	contestID = strings.TrimSpace(contestID)
	if _, err := uc.Contests.GetContest(ctx, contestID); err != nil {
		return entities.ContestStatistics{}, err
	}
	submissions, err := uc.Submissions.ListSubmissionsByContest(ctx, contestID)
	if err != nil {
		return entities.ContestStatistics{}, err
	}
	totalVotes, uniqueVoters, err := uc.Votes.ContestVoteTotals(ctx, contestID)
	if err != nil {
		return entities.ContestStatistics{}, err
	}
	stats := entities.ContestStatistics{
		ContestID:        contestID,
		TotalSubmissions: len(submissions),
		TotalVotes:       totalVotes,
		UniqueVoters:     uniqueVoters,
	}
	if len(submissions) > 0 {
		stats.AverageVotesPerSub = float64(totalVotes) / float64(len(submissions))
	}
	return stats, nil
}
