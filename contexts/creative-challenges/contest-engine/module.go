package contestengine

import (
	"log/slog"
	"time"

	httpadapter "studio/contexts/creative-challenges/contest-engine/adapters/http"
	"studio/contexts/creative-challenges/contest-engine/adapters/memory"
	"studio/contexts/creative-challenges/contest-engine/adapters/notify"
	"studio/contexts/creative-challenges/contest-engine/application/commands"
	"studio/contexts/creative-challenges/contest-engine/application/queries"
	"studio/contexts/creative-challenges/contest-engine/application/workers"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

type Module struct {
	Handler            httpadapter.Handler
	Advancer           workers.LifecycleAdvancer
	Settlement         workers.SettlementJob
	OutboxRelay        workers.OutboxRelay
	PrizeNotifications workers.PrizeNotificationConsumer

	Store   *memory.Store
	Credits *memory.CreditLedger
}

type Dependencies struct {
	Contests    ports.ContestRepository
	Submissions ports.SubmissionRepository
	Votes       ports.VoteLedger
	Settlement  ports.SettlementRepository
	Rewards     ports.RewardRepository
	Outbox      ports.OutboxRepository
	Dedup       ports.EventDedupStore
	Credits     ports.CreditGranter
	Lock        ports.SettlementLock
	Publisher   ports.EventPublisher
	Subscriber  ports.EventSubscriber
	Notifier    ports.PrizeNotifier
	Metrics     ports.Metrics
	Clock       ports.Clock
	IDGen       ports.IDGenerator

	RateLimit              entities.RateLimitPolicy
	SettlementBatchSize    int
	SettlementConcurrency  int
	SettlementLockTTL      time.Duration
	DisablePrizeNotices    bool
	PrizeNoticeDedupWindow time.Duration
	Logger                 *slog.Logger
}

func NewModule(deps Dependencies) Module {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{Logger: deps.Logger}
	}

	contestUseCase := commands.ContestUseCase{
		Contests: deps.Contests,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	submissionUseCase := commands.SubmissionUseCase{
		Contests:    deps.Contests,
		Submissions: deps.Submissions,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Metrics:     metrics,
		Logger:      deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Ledger:    deps.Votes,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		RateLimit: deps.RateLimit.Normalize(),
		Metrics:   metrics,
		Logger:    deps.Logger,
	}
	settlement := workers.SettlementJob{
		Settlement:  deps.Settlement,
		Submissions: deps.Submissions,
		Credits:     deps.Credits,
		Lock:        deps.Lock,
		Metrics:     metrics,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		BatchSize:   deps.SettlementBatchSize,
		Concurrency: deps.SettlementConcurrency,
		LockTTL:     deps.SettlementLockTTL,
		Logger:      deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Contests:    contestUseCase,
			Submissions: submissionUseCase,
			Votes:       voteUseCase,
			Leaderboards: queries.LeaderboardUseCase{
				Contests:    deps.Contests,
				Submissions: deps.Submissions,
			},
			ContestReads: queries.ContestQueryUseCase{
				Contests:    deps.Contests,
				Submissions: deps.Submissions,
				Votes:       deps.Votes,
			},
			Rewards: queries.RewardsUseCase{
				Rewards: deps.Rewards,
			},
			MyVotes: queries.VotesUseCase{
				Votes: deps.Votes,
			},
			Settlement: settlement,
			Logger:     deps.Logger,
		},
		Advancer: workers.LifecycleAdvancer{
			Contests: deps.Contests,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
		},
		Settlement: settlement,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: 100,
			Logger:    deps.Logger,
		},
		PrizeNotifications: workers.PrizeNotificationConsumer{
			Subscriber: deps.Subscriber,
			Dedup:      deps.Dedup,
			Notifier:   notifier,
			Clock:      deps.Clock,
			DedupTTL:   deps.PrizeNoticeDedupWindow,
			Disabled:   deps.DisablePrizeNotices,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to process-local adapters. Publisher and
// Subscriber stay nil; callers that run the relay or consumer assign a bus.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	credits := memory.NewCreditLedger()
	module := NewModule(Dependencies{
		Contests:    store,
		Submissions: store,
		Votes:       store,
		Settlement:  store,
		Rewards:     store,
		Outbox:      store,
		Dedup:       store,
		Credits:     credits,
		Lock:        memory.NewLock(),
		Clock:       store,
		IDGen:       store,
		RateLimit:   entities.DefaultRateLimitPolicy(),
		Logger:      logger,
	})
	module.Store = store
	module.Credits = credits
	return module
}
