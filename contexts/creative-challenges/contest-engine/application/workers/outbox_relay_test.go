package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"studio/contexts/creative-challenges/contest-engine/adapters/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledStore(t *testing.T, now time.Time) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	seedVotingContest(store, "c1", now, credits(1, 100), credits(2, 50))
	seedEntry(store, "s1", "c1", "user-a", 5, now.Add(-70*time.Hour))
	seedEntry(store, "s2", "c1", "user-b", 2, now.Add(-70*time.Hour))
	_, err := newSettlementJob(store, memory.NewCreditLedger(), now).Run(context.Background(), now)
	require.NoError(t, err)
	return store
}

func TestOutboxRelayPublishesInOrderAndMarksRows(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	store := settledStore(t, now)
	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: fixedClock{at: now}, Logger: discardLogger()}

	require.NoError(t, relay.RunOnce(context.Background()))
	published := publisher.Published()
	require.Len(t, published, 3)
	assert.Equal(t, "contest_completed:c1", published[0].EventID)
	assert.Equal(t, "contest_reward_granted:c1:1", published[1].EventID)
	assert.Equal(t, "user-a", published[1].PartitionKey)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, relay.RunOnce(context.Background()))
	assert.Len(t, publisher.Published(), 3)
}

func TestOutboxRelayStopsAtFirstPublishFailure(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	store := settledStore(t, now)
	publisher := &recordingPublisher{failOn: ContestRewardGrantedTopic, failErr: errors.New("broker down")}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Logger: discardLogger()}

	err := relay.RunOnce(context.Background())
	require.Error(t, err)
	assert.Len(t, publisher.Published(), 1)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "contest_reward_granted:c1:1", pending[0].OutboxID)

	publisher.failOn = ""
	require.NoError(t, relay.RunOnce(context.Background()))
	assert.Len(t, publisher.Published(), 3)
}
