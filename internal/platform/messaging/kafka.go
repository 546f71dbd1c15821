package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"studio/internal/shared/events"
)

const subscriberBuffer = 128

// ErrSubscriberFull reports that at least one subscriber could not take the
// event. Callers relaying from an outbox keep the row pending and retry.
var ErrSubscriberFull = errors.New("messaging: subscriber buffer full")

// Kafka is the event bus adapter used by the worker and outbox relay.
// Delivery is in-process; the broker list is accepted so callers are wired the
// same way once an external broker client replaces it.
type Kafka struct {
	mu          sync.RWMutex
	brokers     []string
	subscribers map[string][]chan events.Envelope
	wg          sync.WaitGroup
	logger      *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]chan events.Envelope),
		logger:      logger,
	}, nil
}

// Publish fans the event out to every subscriber of topic. Subscribers with
// room receive it even when another one is full; the error makes the caller
// retry, and consumers dedup the repeat by event id.
func (k *Kafka) Publish(ctx context.Context, topic string, event events.Envelope) error {
	k.mu.RLock()
	subs := append([]chan events.Envelope(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	dropped := 0
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			dropped++
			k.logger.Warn("subscriber buffer full",
				"event", "kafka_publish_backlog",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
			)
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w: topic %s, %d of %d subscribers", ErrSubscriberFull, topic, dropped, len(subs))
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"subscribers", len(subs),
	)
	return nil
}

// Subscribe runs handler on its own goroutine until ctx ends. Handler errors
// are logged and the next event is processed.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	ch := make(chan events.Envelope, subscriberBuffer)

	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], ch)
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for {
			select {
			case <-ctx.Done():
				k.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Wait blocks until every subscriber goroutine has returned.
func (k *Kafka) Wait() {
	k.wg.Wait()
}

func (k *Kafka) removeSubscriber(topic string, target chan events.Envelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan events.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	k.subscribers[topic] = filtered
}
