package queries

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type SubmissionSort string

const (
	SortByVotes  SubmissionSort = "votes"
	SortByRecent SubmissionSort = "recent"
	SortByRank   SubmissionSort = "rank"
)

type ContestListQuery struct {
	Status   string
	Category string
	Limit    int
	Offset   int
}

type SubmissionListQuery struct {
	ContestID string
	SortBy    string
	Limit     int
	Offset    int
}

// ListContests pages through contests newest first. limit defaults to 20 and
// is capped at 100.
func (uc ContestQueryUseCase) ListContests(ctx context.Context, query ContestListQuery) ([]entities.Contest, error) {
	status := entities.ContestStatus(strings.ToLower(strings.TrimSpace(query.Status)))
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainerrors.ErrValidation, query.Status)
	}
	if query.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domainerrors.ErrValidation)
	}
	return uc.Contests.ListContests(ctx, ports.ContestFilter{
		Status:   status,
		Category: query.Category,
		Limit:    pageLimit(query.Limit),
		Offset:   query.Offset,
	})
}

// ContestSubmissions pages through a contest's entries. Votes order matches
// the leaderboard; rank order puts unranked entries last.
func (uc ContestQueryUseCase) ContestSubmissions(ctx context.Context, query SubmissionListQuery) ([]entities.Submission, error) {
	contestID := strings.TrimSpace(query.ContestID)
	sortBy := SubmissionSort(strings.ToLower(strings.TrimSpace(query.SortBy)))
	if sortBy == "" {
		sortBy = SortByVotes
	}
	if sortBy != SortByVotes && sortBy != SortByRecent && sortBy != SortByRank {
		return nil, fmt.Errorf("%w: sort_by must be one of: votes recent rank", domainerrors.ErrValidation)
	}
	if query.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domainerrors.ErrValidation)
	}
	if _, err := uc.Contests.GetContest(ctx, contestID); err != nil {
		return nil, err
	}
	submissions, err := uc.Submissions.ListSubmissionsByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(submissions, func(i, j int) bool {
		a, b := submissions[i], submissions[j]
		switch sortBy {
		case SortByRecent:
			return a.CreatedAt.After(b.CreatedAt)
		case SortByRank:
			if a.Rank == nil || b.Rank == nil {
				return a.Rank != nil && b.Rank == nil
			}
			return *a.Rank < *b.Rank
		default:
			if a.VoteCount != b.VoteCount {
				return a.VoteCount > b.VoteCount
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	if query.Offset >= len(submissions) {
		return []entities.Submission{}, nil
	}
	submissions = submissions[query.Offset:]
	if limit := pageLimit(query.Limit); len(submissions) > limit {
		submissions = submissions[:limit]
	}
	return submissions, nil
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
