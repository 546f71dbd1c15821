package commands

import (
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

var (
	admin   = ports.Actor{UserID: "admin-1", Role: ports.RoleAdmin}
	creator = ports.Actor{UserID: "creator-1"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedContest(store *memory.Store, id string, status entities.ContestStatus, start time.Time) entities.Contest {
	contest := entities.Contest{
		ContestID:   id,
		Title:       "Poster " + id,
		Description: "Design a poster",
		Category:    entities.DefaultCategory,
		Prizes: entities.PrizeTable{
			{Rank: 1, PrizeType: entities.PrizeTypeCredits, PrizeValue: decimal.NewFromInt(100)},
		},
		StartAt:      start,
		EndAt:        start.Add(24 * time.Hour),
		VotingEndsAt: start.Add(48 * time.Hour),
		Status:       status,
		CreatedBy:    admin.UserID,
	}
	store.SetContest(contest)
	return contest
}

type recordingMetrics struct {
	ports.NopMetrics
	mu          sync.Mutex
	submissions map[string]int
	votes       map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{submissions: map[string]int{}, votes: map[string]int{}}
}

func (m *recordingMetrics) ObserveSubmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[outcome]++
}

func (m *recordingMetrics) ObserveVote(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votes[outcome]++
}

type stepClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *stepClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = at
}

func seedSubmission(store *memory.Store, id string, contestID string, userID string, createdAt time.Time) {
	store.SetSubmission(entities.Submission{
		SubmissionID: id,
		ContestID:    contestID,
		UserID:       userID,
		Title:        "Entry " + id,
		MediaURL:     "https://cdn.example.com/" + id + ".png",
		MediaType:    entities.MediaTypeImage,
		CreatedAt:    createdAt,
	})
}
