package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"
	"studio/internal/shared/outbox"

	"github.com/google/uuid"
)

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

type rewardKey struct {
	contestID string
	rank      int
}

// Store keeps every table behind one mutex, so each method is a single
// atomic unit just like a database transaction.
type Store struct {
	mu sync.RWMutex

	contests    map[string]entities.Contest
	submissions map[string]entities.Submission
	entries     map[string]string
	votes       map[string]entities.Vote
	voteIdent   map[string]string
	rewards     map[rewardKey]entities.Reward
	outbox      map[string]outbox.Message
	outboxOrder []string
	eventDedup  map[string]dedupRecord
	clock       ports.Clock
}

func NewStore() *Store {
	return &Store{
		contests:    make(map[string]entities.Contest),
		submissions: make(map[string]entities.Submission),
		entries:     make(map[string]string),
		votes:       make(map[string]entities.Vote),
		voteIdent:   make(map[string]string),
		rewards:     make(map[rewardKey]entities.Reward),
		outbox:      make(map[string]outbox.Message),
		eventDedup:  make(map[string]dedupRecord),
	}
}

// SetContest seeds or overwrites a contest, status included.
func (s *Store) SetContest(contest entities.Contest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[strings.TrimSpace(contest.ContestID)] = cloneContest(contest)
}

// SetSubmission seeds a submission, vote_count and rank included.
func (s *Store) SetSubmission(submission entities.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[submission.SubmissionID] = cloneSubmission(submission)
	s.entries[entryKey(submission.ContestID, submission.UserID)] = submission.SubmissionID
}

func (s *Store) CreateContest(_ context.Context, contest entities.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.contests[contest.ContestID]; exists {
		return domainerrors.ErrConflict
	}
	s.contests[contest.ContestID] = cloneContest(contest)
	return nil
}

func (s *Store) UpdateContest(_ context.Context, contest entities.Contest, expected entities.ContestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.contests[contest.ContestID]
	if !ok {
		return domainerrors.ErrContestNotFound
	}
	if current.Status != expected {
		return domainerrors.ErrConflict
	}
	status := current.Status
	current = cloneContest(contest)
	current.Status = status
	s.contests[contest.ContestID] = current
	return nil
}

func (s *Store) GetContest(_ context.Context, contestID string) (entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contest, ok := s.contests[strings.TrimSpace(contestID)]
	if !ok {
		return entities.Contest{}, domainerrors.ErrContestNotFound
	}
	return cloneContest(contest), nil
}

func (s *Store) ListContestsByStatus(_ context.Context, statuses []entities.ContestStatus, limit int) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[entities.ContestStatus]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	items := make([]entities.Contest, 0)
	for _, contest := range s.contests {
		if _, ok := wanted[contest.Status]; ok {
			items = append(items, cloneContest(contest))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].StartAt.Equal(items[j].StartAt) {
			return items[i].ContestID < items[j].ContestID
		}
		return items[i].StartAt.Before(items[j].StartAt)
	})
	return truncate(items, limit), nil
}

func (s *Store) ListContests(_ context.Context, filter ports.ContestFilter) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category := strings.ToLower(strings.TrimSpace(filter.Category))
	items := make([]entities.Contest, 0)
	for _, contest := range s.contests {
		if filter.Status != "" && contest.Status != filter.Status {
			continue
		}
		if category != "" && contest.Category != category {
			continue
		}
		items = append(items, cloneContest(contest))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ContestID > items[j].ContestID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []entities.Contest{}, nil
		}
		items = items[filter.Offset:]
	}
	return truncate(items, filter.Limit), nil
}

func (s *Store) TransitionContestStatus(
	_ context.Context,
	contestID string,
	from entities.ContestStatus,
	to entities.ContestStatus,
	at time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[strings.TrimSpace(contestID)]
	if !ok {
		return false, domainerrors.ErrContestNotFound
	}
	if contest.Status != from || !from.CanTransitionTo(to) {
		return false, nil
	}
	contest.Status = to
	contest.UpdatedAt = at.UTC()
	s.contests[contest.ContestID] = contest
	return true, nil
}

func (s *Store) CreateSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entryKey(submission.ContestID, submission.UserID)
	if _, exists := s.entries[key]; exists {
		return domainerrors.ErrDuplicateSubmission
	}
	s.submissions[submission.SubmissionID] = cloneSubmission(submission)
	s.entries[key] = submission.SubmissionID
	return nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return cloneSubmission(submission), nil
}

func (s *Store) FindSubmissionByUser(_ context.Context, contestID string, userID string) (entities.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submissionID, ok := s.entries[entryKey(contestID, userID)]
	if !ok {
		return entities.Submission{}, false, nil
	}
	return cloneSubmission(s.submissions[submissionID]), true, nil
}

func (s *Store) ListSubmissionsByContest(_ context.Context, contestID string) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Submission, 0)
	for _, submission := range s.submissions {
		if submission.ContestID == strings.TrimSpace(contestID) {
			items = append(items, cloneSubmission(submission))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].SubmissionID < items[j].SubmissionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CastVote(_ context.Context, req ports.CastVoteRequest) (entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission, ok := s.submissions[strings.TrimSpace(req.SubmissionID)]
	if !ok {
		return entities.Vote{}, domainerrors.ErrSubmissionNotFound
	}
	contest, ok := s.contests[submission.ContestID]
	if !ok {
		return entities.Vote{}, domainerrors.ErrContestNotFound
	}
	now := req.Now.UTC()
	if !contest.VotingOpenAt(now) {
		return entities.Vote{}, domainerrors.ErrVotingClosed
	}
	identity := voteIdentity(submission.SubmissionID, req.UserID)
	if _, exists := s.voteIdent[identity]; exists {
		return entities.Vote{}, domainerrors.ErrDuplicateVote
	}

	policy := req.RateLimit.Normalize()
	windowStart := policy.WindowStart(now)
	recent := 0
	for _, vote := range s.votes {
		if vote.IPAddress == req.IPAddress && vote.CreatedAt.After(windowStart) {
			recent++
		}
	}
	if recent >= policy.Limit {
		return entities.Vote{}, domainerrors.ErrRateLimited
	}

	vote := entities.Vote{
		VoteID:       req.VoteID,
		ContestID:    contest.ContestID,
		SubmissionID: submission.SubmissionID,
		UserID:       req.UserID,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		CreatedAt:    now,
	}
	if vote.VoteID == "" {
		vote.VoteID = uuid.NewString()
	}
	s.votes[vote.VoteID] = vote
	s.voteIdent[identity] = vote.VoteID
	submission.VoteCount++
	s.submissions[submission.SubmissionID] = submission
	return vote, nil
}

func (s *Store) RevokeVote(_ context.Context, req ports.RevokeVoteRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vote, ok := s.votes[strings.TrimSpace(req.VoteID)]
	if !ok {
		return domainerrors.ErrVoteNotFound
	}
	if vote.UserID != req.UserID {
		return domainerrors.ErrForbidden
	}
	contest, ok := s.contests[vote.ContestID]
	if !ok {
		return domainerrors.ErrContestNotFound
	}
	if !contest.VotingOpenAt(req.Now.UTC()) {
		return domainerrors.ErrVotingClosed
	}

	delete(s.votes, vote.VoteID)
	delete(s.voteIdent, voteIdentity(vote.SubmissionID, vote.UserID))
	if submission, ok := s.submissions[vote.SubmissionID]; ok && submission.VoteCount > 0 {
		submission.VoteCount--
		s.submissions[submission.SubmissionID] = submission
	}
	return nil
}

func (s *Store) ListVotesByUser(_ context.Context, userID string, contestID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID = strings.TrimSpace(userID)
	contestID = strings.TrimSpace(contestID)
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.UserID != userID || (contestID != "" && vote.ContestID != contestID) {
			continue
		}
		items = append(items, vote)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].VoteID > items[j].VoteID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ContestVoteTotals(_ context.Context, contestID string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	voters := make(map[string]struct{})
	for _, vote := range s.votes {
		if vote.ContestID != strings.TrimSpace(contestID) {
			continue
		}
		total++
		voters[vote.UserID] = struct{}{}
	}
	return total, len(voters), nil
}

func (s *Store) ListDueContests(_ context.Context, now time.Time, limit int) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Contest, 0)
	for _, contest := range s.contests {
		if contest.SettlementDueAt(now) {
			items = append(items, cloneContest(contest))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].VotingEndsAt.Equal(items[j].VotingEndsAt) {
			return items[i].ContestID < items[j].ContestID
		}
		return items[i].VotingEndsAt.Before(items[j].VotingEndsAt)
	})
	return truncate(items, limit), nil
}

func (s *Store) AssignRanks(_ context.Context, contestID string, ranked []entities.RankedSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range ranked {
		submission, ok := s.submissions[item.Submission.SubmissionID]
		if !ok || submission.ContestID != contestID {
			return domainerrors.ErrSubmissionNotFound
		}
	}
	for _, item := range ranked {
		submission := s.submissions[item.Submission.SubmissionID]
		rank := item.Rank
		submission.Rank = &rank
		s.submissions[submission.SubmissionID] = submission
	}
	return nil
}

func (s *Store) ListRewardsByContest(_ context.Context, contestID string) ([]entities.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Reward, 0)
	for key, reward := range s.rewards {
		if key.contestID == strings.TrimSpace(contestID) {
			items = append(items, reward)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })
	return items, nil
}

func (s *Store) RecordReward(_ context.Context, reward entities.Reward) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rewardKey{contestID: reward.ContestID, rank: reward.Rank}
	if _, exists := s.rewards[key]; exists {
		return false, nil
	}
	s.rewards[key] = reward
	return true, nil
}

func (s *Store) ListRewardsByUser(_ context.Context, userID string, contestID string) ([]entities.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Reward, 0)
	for _, reward := range s.rewards {
		if reward.UserID != userID {
			continue
		}
		if contestID != "" && reward.ContestID != contestID {
			continue
		}
		items = append(items, reward)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].GrantedAt.Equal(items[j].GrantedAt) {
			return items[i].RewardID < items[j].RewardID
		}
		return items[i].GrantedAt.After(items[j].GrantedAt)
	})
	return items, nil
}

func (s *Store) CompleteContest(_ context.Context, contestID string, at time.Time, events []ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[strings.TrimSpace(contestID)]
	if !ok {
		return domainerrors.ErrContestNotFound
	}
	if contest.Status != entities.ContestStatusVoting {
		return domainerrors.ErrConflict
	}

	messages := make([]outbox.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		messages = append(messages, outbox.Message{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			Status:       outbox.StatusPending,
			CreatedAt:    event.OccurredAt.UTC(),
		})
	}
	for _, message := range messages {
		if existing, exists := s.outbox[message.OutboxID]; exists {
			if !bytes.Equal(existing.Payload, message.Payload) {
				return domainerrors.ErrConflict
			}
			continue
		}
		s.outbox[message.OutboxID] = message
		s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	}

	contest.Status = entities.ContestStatusCompleted
	contest.UpdatedAt = at.UTC()
	s.contests[contest.ContestID] = contest
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		message := s.outbox[id]
		if message.Status != outbox.StatusPending {
			continue
		}
		message.Payload = append([]byte(nil), message.Payload...)
		items = append(items, message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	at := publishedAt.UTC()
	message.Status = outbox.StatusPublished
	message.PublishedAt = &at
	s.outbox[message.OutboxID] = message
	return nil
}

// ReserveEvent treats a reservation as live until its expiry passes
// processedAt.
func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	processedAt time.Time,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.eventDedup[eventID]; ok && existing.expiresAt.After(processedAt.UTC()) {
		if existing.payloadHash != payloadHash {
			return false, domainerrors.ErrConflict
		}
		return true, nil
	}
	s.eventDedup[eventID] = dedupRecord{payloadHash: payloadHash, expiresAt: expiresAt.UTC()}
	return false, nil
}

// SetClock replaces the wall clock the store reports through Now.
func (s *Store) SetClock(clock ports.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	clock := s.clock
	s.mu.RUnlock()
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func entryKey(contestID string, userID string) string {
	return strings.TrimSpace(contestID) + "|" + strings.TrimSpace(userID)
}

func voteIdentity(submissionID string, userID string) string {
	return strings.TrimSpace(submissionID) + "|" + strings.TrimSpace(userID)
}

func cloneContest(contest entities.Contest) entities.Contest {
	contest.Prizes = append(entities.PrizeTable(nil), contest.Prizes...)
	return contest
}

func cloneSubmission(submission entities.Submission) entities.Submission {
	if submission.Rank != nil {
		rank := *submission.Rank
		submission.Rank = &rank
	}
	return submission
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var _ ports.ContestRepository = (*Store)(nil)
var _ ports.SubmissionRepository = (*Store)(nil)
var _ ports.VoteLedger = (*Store)(nil)
var _ ports.SettlementRepository = (*Store)(nil)
var _ ports.RewardRepository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
