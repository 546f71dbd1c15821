package services

import (
	"sort"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
)

// Rank orders submissions by vote count descending, earlier submissions first
// on ties, and assigns dense ranks 1..N. The input slice is not modified and
// full ties keep their input order.
func Rank(submissions []entities.Submission) []entities.RankedSubmission {
	ordered := append([]entities.Submission(nil), submissions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].VoteCount != ordered[j].VoteCount {
			return ordered[i].VoteCount > ordered[j].VoteCount
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	ranked := make([]entities.RankedSubmission, 0, len(ordered))
	for i, submission := range ordered {
		position := i + 1
		submission.Rank = &position
		ranked = append(ranked, entities.RankedSubmission{
			Submission: submission,
			Rank:       position,
		})
	}
	return ranked
}
