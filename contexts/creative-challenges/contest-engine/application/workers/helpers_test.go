package workers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"studio/contexts/creative-challenges/contest-engine/adapters/memory"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/shopspring/decimal"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func credits(rank int, amount int64) entities.Prize {
	return entities.Prize{Rank: rank, PrizeType: entities.PrizeTypeCredits, PrizeValue: decimal.NewFromInt(amount)}
}

func badge(rank int) entities.Prize {
	return entities.Prize{Rank: rank, PrizeType: entities.PrizeTypeBadge, PrizeValue: decimal.NewFromInt(1)}
}

// seedVotingContest stores a contest whose voting window closed an hour before now.
func seedVotingContest(store *memory.Store, id string, now time.Time, prizes ...entities.Prize) {
	store.SetContest(entities.Contest{
		ContestID:    id,
		Title:        "Contest " + id,
		Category:     entities.DefaultCategory,
		Prizes:       prizes,
		StartAt:      now.Add(-72 * time.Hour),
		EndAt:        now.Add(-48 * time.Hour),
		VotingEndsAt: now.Add(-time.Hour),
		Status:       entities.ContestStatusVoting,
	})
}

func seedEntry(store *memory.Store, id string, contestID string, userID string, votes int, createdAt time.Time) {
	store.SetSubmission(entities.Submission{
		SubmissionID: id,
		ContestID:    contestID,
		UserID:       userID,
		Title:        "Entry " + id,
		MediaURL:     "https://cdn.example.com/" + id + ".png",
		MediaType:    entities.MediaTypeImage,
		VoteCount:    votes,
		CreatedAt:    createdAt,
	})
}

func newSettlementJob(store *memory.Store, ledger *memory.CreditLedger, now time.Time) SettlementJob {
	return SettlementJob{
		Settlement:  store,
		Submissions: store,
		Credits:     ledger,
		Lock:        memory.NewLock(),
		Clock:       fixedClock{at: now},
		IDGen:       store,
		Logger:      discardLogger(),
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	events  []ports.EventEnvelope
	failOn  string
	failErr error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn != "" && p.failOn == topic {
		return p.failErr
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Published() []ports.EventEnvelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.EventEnvelope(nil), p.events...)
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []ports.PrizeNotification
	err   error
	calls int
}

func (n *recordingNotifier) NotifyPrize(_ context.Context, notification ports.PrizeNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

type recordingMetrics struct {
	ports.NopMetrics
	mu       sync.Mutex
	contests map[ports.SettlementOutcome]int
	runs     map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{contests: map[ports.SettlementOutcome]int{}, runs: map[string]int{}}
}

func (m *recordingMetrics) ObserveSettlementContest(outcome ports.SettlementOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contests[outcome]++
}

func (m *recordingMetrics) ObserveSettlementRun(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[outcome]++
}
