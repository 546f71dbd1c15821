package entities

import (
	"fmt"
	"time"

	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
)

type ContestStatus string

const (
	ContestStatusUpcoming  ContestStatus = "upcoming"
	ContestStatusActive    ContestStatus = "active"
	ContestStatusVoting    ContestStatus = "voting"
	ContestStatusCompleted ContestStatus = "completed"
)

const DefaultCategory = "general"

var statusOrder = map[ContestStatus]int{
	ContestStatusUpcoming:  0,
	ContestStatusActive:    1,
	ContestStatusVoting:    2,
	ContestStatusCompleted: 3,
}

func (s ContestStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether next is strictly ahead of s.
// Completed is terminal.
func (s ContestStatus) CanTransitionTo(next ContestStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

type Contest struct {
	ContestID     string
	Title         string
	Description   string
	Rules         string
	Category      string
	CoverImageURL string
	Prizes        PrizeTable
	StartAt       time.Time
	EndAt         time.Time
	VotingEndsAt  time.Time
	Status        ContestStatus
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AcceptsSubmissionsAt is true while the contest is active and before end_at.
func (c Contest) AcceptsSubmissionsAt(now time.Time) bool {
	return c.Status == ContestStatusActive && now.Before(c.EndAt)
}

// VotingOpenAt uses the half-open window [end_at, voting_ends_at).
func (c Contest) VotingOpenAt(now time.Time) bool {
	if c.Status == ContestStatusCompleted {
		return false
	}
	return !now.Before(c.EndAt) && now.Before(c.VotingEndsAt)
}

// SettlementDueAt is true once voting has ended for a contest still in voting.
func (c Contest) SettlementDueAt(now time.Time) bool {
	return c.Status == ContestStatusVoting && c.VotingEndsAt.Before(now)
}

// ScheduledStatusAt derives the status implied by the schedule alone. It never
// returns completed; only settlement completes a contest.
func (c Contest) ScheduledStatusAt(now time.Time) ContestStatus {
	switch {
	case now.Before(c.StartAt):
		return ContestStatusUpcoming
	case now.Before(c.EndAt):
		return ContestStatusActive
	default:
		return ContestStatusVoting
	}
}

func ValidateSchedule(startAt, endAt, votingEndsAt time.Time) error {
	if startAt.IsZero() || endAt.IsZero() || votingEndsAt.IsZero() {
		return fmt.Errorf("%w: start_at, end_at and voting_ends_at are required", domainerrors.ErrInvalidSchedule)
	}
	if !endAt.After(startAt) {
		return fmt.Errorf("%w: end_at must be after start_at", domainerrors.ErrInvalidSchedule)
	}
	if !votingEndsAt.After(endAt) {
		return fmt.Errorf("%w: voting_ends_at must be after end_at", domainerrors.ErrInvalidSchedule)
	}
	return nil
}
