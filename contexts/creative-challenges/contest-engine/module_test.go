package contestengine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"studio/contexts/creative-challenges/contest-engine/adapters/memory"
	"studio/contexts/creative-challenges/contest-engine/application/commands"
	"studio/contexts/creative-challenges/contest-engine/application/workers"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *manualClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = at
}

type capturePublisher struct {
	mu     sync.Mutex
	events []ports.EventEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []ports.PrizeNotification
}

func (n *captureNotifier) NotifyPrize(_ context.Context, notification ports.PrizeNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func TestContestLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := &manualClock{at: t0}
	store := memory.NewStore()
	ledger := memory.NewCreditLedger()
	publisher := &capturePublisher{}
	notifier := &captureNotifier{}

	module := NewModule(Dependencies{
		Contests:    store,
		Submissions: store,
		Votes:       store,
		Settlement:  store,
		Rewards:     store,
		Outbox:      store,
		Dedup:       store,
		Credits:     ledger,
		Lock:        memory.NewLock(),
		Publisher:   publisher,
		Notifier:    notifier,
		Clock:       clock,
		IDGen:       store,
		RateLimit:   entities.DefaultRateLimitPolicy(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	handler := module.Handler

	admin := ports.Actor{UserID: "admin-1", Role: ports.RoleAdmin}
	contest, err := handler.Contests.CreateContest(ctx, admin, commands.CreateContestCommand{
		Title:        "Summer Poster Jam",
		Description:  "Design a summer poster",
		PrizeTable:   `[{"rank":1,"prize_type":"credits","prize_value":1000},{"rank":2,"prize_type":"credits","prize_value":500},{"rank":3,"prize_type":"credits","prize_value":200}]`,
		StartAt:      t0.Add(time.Hour),
		EndAt:        t0.Add(25 * time.Hour),
		VotingEndsAt: t0.Add(49 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.ContestStatusUpcoming, contest.Status)

	_, err = handler.Submissions.SubmitEntry(ctx, ports.Actor{UserID: "early-bird"}, commands.SubmitEntryCommand{
		ContestID: contest.ContestID,
		Title:     "Too soon",
		MediaURL:  "https://cdn.example.com/early.png",
	})
	assert.ErrorIs(t, err, domainerrors.ErrContestNotOpen)

	clock.Set(t0.Add(2 * time.Hour))
	require.NoError(t, module.Advancer.RunOnce(ctx))

	submissionIDs := make([]string, 5)
	for i := range submissionIDs {
		clock.Set(t0.Add(2*time.Hour + time.Duration(i)*time.Minute))
		submission, err := handler.Submissions.SubmitEntry(ctx, ports.Actor{UserID: fmt.Sprintf("artist-%d", i+1)}, commands.SubmitEntryCommand{
			ContestID: contest.ContestID,
			Title:     fmt.Sprintf("Poster %d", i+1),
			MediaURL:  fmt.Sprintf("https://cdn.example.com/poster-%d.png", i+1),
		})
		require.NoError(t, err)
		submissionIDs[i] = submission.SubmissionID
	}

	clock.Set(t0.Add(26 * time.Hour))
	require.NoError(t, module.Advancer.RunOnce(ctx))
	current, err := store.GetContest(ctx, contest.ContestID)
	require.NoError(t, err)
	require.Equal(t, entities.ContestStatusVoting, current.Status)

	voteCounts := []int{8, 5, 3, 1, 0}
	voterSeq := 0
	for i, count := range voteCounts {
		for v := 0; v < count; v++ {
			voterSeq++
			_, err := handler.Votes.CastVote(ctx, ports.Actor{UserID: fmt.Sprintf("fan-%d", voterSeq)}, commands.CastVoteCommand{
				SubmissionID: submissionIDs[i],
				IPAddress:    fmt.Sprintf("198.51.100.%d", voterSeq),
				UserAgent:    "e2e",
			})
			require.NoError(t, err)
		}
	}

	// Voting is still open, so nothing is due yet.
	report, err := module.Settlement.Run(ctx, clock.Now())
	require.NoError(t, err)
	assert.Zero(t, report.Total)

	clock.Set(t0.Add(50 * time.Hour))
	require.NoError(t, module.Settlement.RunOnce(ctx))

	for i, id := range submissionIDs {
		submission, err := store.GetSubmission(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, submission.Rank)
		assert.Equal(t, i+1, *submission.Rank)
		assert.Equal(t, voteCounts[i], submission.VoteCount)
	}

	grants := ledger.Grants()
	require.Len(t, grants, 3)
	for i, want := range []struct {
		user   string
		amount int64
	}{{"artist-1", 1000}, {"artist-2", 500}, {"artist-3", 200}} {
		assert.Equal(t, want.user, grants[i].UserID)
		assert.Equal(t, want.amount, grants[i].Amount)
		assert.Equal(t, entities.RewardReason, grants[i].Reason)
	}

	rewards, err := store.ListRewardsByContest(ctx, contest.ContestID)
	require.NoError(t, err)
	require.Len(t, rewards, 3)
	for i, reward := range rewards {
		assert.Equal(t, i+1, reward.Rank)
		assert.Equal(t, submissionIDs[i], reward.SubmissionID)
	}

	current, err = store.GetContest(ctx, contest.ContestID)
	require.NoError(t, err)
	assert.Equal(t, entities.ContestStatusCompleted, current.Status)

	report, err = module.Settlement.Run(ctx, clock.Now())
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Len(t, ledger.Grants(), 3)

	require.NoError(t, module.OutboxRelay.RunOnce(ctx))
	require.Len(t, publisher.events, 4)
	for _, event := range publisher.events {
		if event.EventType == workers.ContestRewardGrantedTopic {
			require.NoError(t, module.PrizeNotifications.Handle(ctx, event))
		}
	}
	require.Len(t, notifier.sent, 3)
	assert.Equal(t, "artist-1", notifier.sent[0].UserID)
	assert.Equal(t, 1, notifier.sent[0].Rank)
}
