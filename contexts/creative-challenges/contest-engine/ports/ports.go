package ports

import (
	"context"
	"strings"
	"time"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/internal/shared/events"
	"studio/internal/shared/outbox"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Actor is the caller identity resolved by the transport layer.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.UserID) != ""
}

func (a Actor) IsAdmin() bool {
	role := strings.ToLower(strings.TrimSpace(a.Role))
	return role == RoleAdmin || role == RoleSuperAdmin
}

// ContestFilter narrows the public contest listing. A zero Status means every
// status.
type ContestFilter struct {
	Status   entities.ContestStatus
	Category string
	Limit    int
	Offset   int
}

type ContestRepository interface {
	CreateContest(ctx context.Context, contest entities.Contest) error
	// UpdateContest persists editable fields only when the stored status still
	// equals expected, returning ErrConflict otherwise. Status is never written here.
	UpdateContest(ctx context.Context, contest entities.Contest, expected entities.ContestStatus) error
	GetContest(ctx context.Context, contestID string) (entities.Contest, error)
	ListContestsByStatus(ctx context.Context, statuses []entities.ContestStatus, limit int) ([]entities.Contest, error)
	// ListContests returns contests newest first.
	ListContests(ctx context.Context, filter ContestFilter) ([]entities.Contest, error)
	// TransitionContestStatus is a compare-and-set on status. It reports false
	// when the contest was no longer in from.
	TransitionContestStatus(
		ctx context.Context,
		contestID string,
		from entities.ContestStatus,
		to entities.ContestStatus,
		at time.Time,
	) (bool, error)
}

type SubmissionRepository interface {
	// CreateSubmission returns ErrDuplicateSubmission when the (contest, user)
	// pair already exists.
	CreateSubmission(ctx context.Context, submission entities.Submission) error
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	FindSubmissionByUser(ctx context.Context, contestID string, userID string) (entities.Submission, bool, error)
	ListSubmissionsByContest(ctx context.Context, contestID string) ([]entities.Submission, error)
}

type CastVoteRequest struct {
	VoteID       string
	SubmissionID string
	UserID       string
	IPAddress    string
	UserAgent    string
	Now          time.Time
	RateLimit    entities.RateLimitPolicy
}

type RevokeVoteRequest struct {
	VoteID string
	UserID string
	Now    time.Time
}

// VoteLedger runs each vote mutation as one atomic unit: every check and the
// vote_count update commit together or not at all.
type VoteLedger interface {
	CastVote(ctx context.Context, req CastVoteRequest) (entities.Vote, error)
	RevokeVote(ctx context.Context, req RevokeVoteRequest) error
	ContestVoteTotals(ctx context.Context, contestID string) (totalVotes int, uniqueVoters int, err error)
	// ListVotesByUser returns the user's live votes newest first. An empty
	// contestID means every contest.
	ListVotesByUser(ctx context.Context, userID string, contestID string) ([]entities.Vote, error)
}

type SettlementRepository interface {
	ListDueContests(ctx context.Context, now time.Time, limit int) ([]entities.Contest, error)
	AssignRanks(ctx context.Context, contestID string, ranked []entities.RankedSubmission) error
	ListRewardsByContest(ctx context.Context, contestID string) ([]entities.Reward, error)
	// RecordReward reports false when a reward for (contest, rank) already exists.
	RecordReward(ctx context.Context, reward entities.Reward) (bool, error)
	// CompleteContest moves voting to completed and appends the events in the
	// same unit of work. It returns ErrConflict if the contest left voting.
	CompleteContest(ctx context.Context, contestID string, at time.Time, events []EventEnvelope) error
}

type RewardRepository interface {
	ListRewardsByUser(ctx context.Context, userID string, contestID string) ([]entities.Reward, error)
}

type GrantRequest struct {
	UserID          string
	Amount          int64
	Reason          string
	Description     string
	Reference       string
	RelatedEntityID string
	ExpiresAt       time.Time
}

type GrantResult struct {
	GrantID  string
	Replayed bool
}

// CreditGranter must treat Reference as an idempotency key.
type CreditGranter interface {
	Grant(ctx context.Context, req GrantRequest) (GrantResult, error)
}

// SettlementLock is a lease shared by every settlement worker replica.
type SettlementLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, key string, token string) error
}

type PrizeNotification struct {
	ContestID    string
	ContestTitle string
	UserID       string
	SubmissionID string
	Rank         int
	PrizeType    string
	PrizeValue   string
}

type PrizeNotifier interface {
	NotifyPrize(ctx context.Context, notification PrizeNotification) error
}

type SettlementOutcome string

const (
	SettlementOutcomeCompleted SettlementOutcome = "completed"
	SettlementOutcomeEmpty     SettlementOutcome = "empty"
	SettlementOutcomeFailed    SettlementOutcome = "failed"
)

// Metrics receives operational counters. Label values are low-cardinality
// outcome names.
type Metrics interface {
	ObserveSubmission(outcome string)
	ObserveVote(outcome string)
	ObserveSettlementContest(outcome SettlementOutcome)
	ObserveSettlementRun(outcome string)
}

type NopMetrics struct{}

func (NopMetrics) ObserveSubmission(string) {}
func (NopMetrics) ObserveVote(string) {}
func (NopMetrics) ObserveSettlementContest(SettlementOutcome) {}
func (NopMetrics) ObserveSettlementRun(string) {}

type EventEnvelope = events.Envelope

type OutboxMessage = outbox.Message

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, processedAt time.Time, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
