package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
)

func TestContestStatusTransitionsAreForwardOnly(t *testing.T) {
	cases := []struct {
		from ContestStatus
		to   ContestStatus
		want bool
	}{
		{ContestStatusUpcoming, ContestStatusActive, true},
		{ContestStatusUpcoming, ContestStatusVoting, true},
		{ContestStatusActive, ContestStatusVoting, true},
		{ContestStatusVoting, ContestStatusCompleted, true},
		{ContestStatusVoting, ContestStatusActive, false},
		{ContestStatusCompleted, ContestStatusVoting, false},
		{ContestStatusActive, ContestStatusActive, false},
		{ContestStatus("archived"), ContestStatusActive, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestContestWindows(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	contest := Contest{
		Status:       ContestStatusActive,
		StartAt:      start,
		EndAt:        start.Add(24 * time.Hour),
		VotingEndsAt: start.Add(48 * time.Hour),
	}

	if !contest.AcceptsSubmissionsAt(start.Add(time.Hour)) {
		t.Fatalf("expected submissions open during active window")
	}
	if contest.AcceptsSubmissionsAt(contest.EndAt) {
		t.Fatalf("expected submissions closed at end_at")
	}
	if contest.VotingOpenAt(contest.EndAt.Add(-time.Nanosecond)) {
		t.Fatalf("expected voting closed before end_at")
	}
	if !contest.VotingOpenAt(contest.EndAt) {
		t.Fatalf("expected voting open at end_at")
	}
	if contest.VotingOpenAt(contest.VotingEndsAt) {
		t.Fatalf("expected voting closed at voting_ends_at")
	}

	contest.Status = ContestStatusCompleted
	if contest.VotingOpenAt(contest.EndAt.Add(time.Hour)) {
		t.Fatalf("expected voting closed for completed contest")
	}

	if got := contest.ScheduledStatusAt(start.Add(-time.Second)); got != ContestStatusUpcoming {
		t.Fatalf("expected upcoming, got %s", got)
	}
	if got := contest.ScheduledStatusAt(start); got != ContestStatusActive {
		t.Fatalf("expected active, got %s", got)
	}
	if got := contest.ScheduledStatusAt(contest.VotingEndsAt.Add(time.Hour)); got != ContestStatusVoting {
		t.Fatalf("expected voting, got %s", got)
	}
}

func TestValidateSchedule(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := ValidateSchedule(start, start.Add(time.Hour), start.Add(2*time.Hour)); err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}
	if err := ValidateSchedule(start, start, start.Add(2*time.Hour)); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error for end_at == start_at, got %v", err)
	}
	if err := ValidateSchedule(start, start.Add(time.Hour), start.Add(time.Hour)); !errors.Is(err, domainerrors.ErrInvalidSchedule) {
		t.Fatalf("expected schedule error for voting_ends_at == end_at, got %v", err)
	}
}
