package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "studio/contexts/creative-challenges/contest-engine/application"
	"studio/contexts/creative-challenges/contest-engine/ports"
)

const defaultPrizeNotificationCG = "contest-engine-prize-notification-cg"

// PrizeNotificationConsumer tells winners about their prize once a reward
// event is published. Notifier failures are logged and swallowed; they never
// reach settlement.
type PrizeNotificationConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Notifier      ports.PrizeNotifier
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c PrizeNotificationConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("prize notification consumer disabled by feature flag",
			"event", "contest_prize_consumer_disabled",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultPrizeNotificationCG
	}
	if err := c.Subscriber.Subscribe(ctx, ContestRewardGrantedTopic, group, c.Handle); err != nil {
		logger.Error("prize notification consumer subscribe failed",
			"event", "contest_prize_consumer_subscribe_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"topic", ContestRewardGrantedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("prize notification consumer subscribed",
		"event", "contest_prize_consumer_started",
		"module", "creative-challenges/contest-engine",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

// Handle processes one contest.reward_granted envelope. Replays are skipped by
// event id.
func (c PrizeNotificationConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Dedup != nil {
		ttl := c.DedupTTL
		if ttl <= 0 {
			ttl = 7 * 24 * time.Hour
		}
		now := c.now()
		alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now, now.Add(ttl))
		if err != nil {
			return err
		}
		if alreadyProcessed {
			logger.Debug("prize notification replay skipped",
				"event", "contest_prize_notification_replayed",
				"module", "creative-challenges/contest-engine",
				"layer", "worker",
				"event_id", event.EventID,
			)
			return nil
		}
	}

	var payload rewardGrantedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("prize notification decode failed",
			"event", "contest_prize_notification_decode_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	if err := c.Notifier.NotifyPrize(ctx, ports.PrizeNotification{
		ContestID:    payload.ContestID,
		ContestTitle: payload.ContestTitle,
		UserID:       payload.UserID,
		SubmissionID: payload.SubmissionID,
		Rank:         payload.Rank,
		PrizeType:    payload.PrizeType,
		PrizeValue:   payload.PrizeValue,
	}); err != nil {
		logger.Warn("prize notification delivery failed",
			"event", "contest_prize_notification_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"contest_id", payload.ContestID,
			"user_id", payload.UserID,
			"error", err.Error(),
		)
		return nil
	}
	logger.Info("prize notification delivered",
		"event", "contest_prize_notification_delivered",
		"module", "creative-challenges/contest-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"contest_id", payload.ContestID,
		"user_id", payload.UserID,
		"rank", payload.Rank,
	)
	return nil
}

func (c PrizeNotificationConsumer) now() time.Time {
	if c.Clock == nil {
		return time.Now().UTC()
	}
	return c.Clock.Now().UTC()
}
