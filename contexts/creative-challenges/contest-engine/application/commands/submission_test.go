package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"studio/contexts/creative-challenges/contest-engine/adapters/memory"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionUseCase(store *memory.Store, now time.Time) SubmissionUseCase {
	return SubmissionUseCase{
		Contests:    store,
		Submissions: store,
		Clock:       fixedClock{at: now},
		IDGen:       store,
		Logger:      discardLogger(),
	}
}

func validEntry(contestID string) SubmitEntryCommand {
	return SubmitEntryCommand{
		ContestID: contestID,
		Title:     "My poster",
		MediaURL:  "https://cdn.example.com/posters/1.png",
	}
}

func TestSubmitEntryAcceptsFreshEntry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedContest(store, "c1", entities.ContestStatusActive, now.Add(-time.Hour))
	metrics := newRecordingMetrics()
	uc := newSubmissionUseCase(store, now)
	uc.Metrics = metrics

	submission, err := uc.SubmitEntry(context.Background(), creator, validEntry("c1"))
	require.NoError(t, err)

	assert.NotEmpty(t, submission.SubmissionID)
	assert.Equal(t, creator.UserID, submission.UserID)
	assert.Equal(t, entities.MediaTypeImage, submission.MediaType)
	assert.Zero(t, submission.VoteCount)
	assert.Nil(t, submission.Rank)
	assert.Equal(t, now, submission.CreatedAt)
	assert.Equal(t, 1, metrics.submissions["accepted"])
}

func TestSubmitEntryRejectsClosedContests(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedContest(store, "upcoming", entities.ContestStatusUpcoming, now.Add(time.Hour))
	seedContest(store, "voting", entities.ContestStatusVoting, now.Add(-30*time.Hour))
	// Still marked active but past end_at because the advancer has not run yet.
	seedContest(store, "stale-active", entities.ContestStatusActive, now.Add(-25*time.Hour))
	uc := newSubmissionUseCase(store, now)

	for _, contestID := range []string{"upcoming", "voting", "stale-active", "missing"} {
		_, err := uc.SubmitEntry(context.Background(), creator, validEntry(contestID))
		assert.ErrorIs(t, err, domainerrors.ErrContestNotOpen, contestID)
	}
}

func TestSubmitEntryCheckOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedContest(store, "c1", entities.ContestStatusActive, now.Add(-time.Hour))
	uc := newSubmissionUseCase(store, now)

	_, err := uc.SubmitEntry(context.Background(), ports.Actor{}, validEntry("nope"))
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = uc.SubmitEntry(context.Background(), creator, validEntry("c1"))
	require.NoError(t, err)

	again := validEntry("c1")
	again.MediaURL = "not a url"
	_, err = uc.SubmitEntry(context.Background(), creator, again)
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateSubmission)
}

func TestSubmitEntryValidatesMediaAndText(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedContest(store, "c1", entities.ContestStatusActive, now.Add(-time.Hour))
	uc := newSubmissionUseCase(store, now)

	entry := validEntry("c1")
	entry.MediaURL = "/uploads/a.png"
	_, err := uc.SubmitEntry(context.Background(), creator, entry)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidMedia)

	entry = validEntry("c1")
	entry.MediaType = "hologram"
	_, err = uc.SubmitEntry(context.Background(), creator, entry)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	entry = validEntry("c1")
	entry.Title = ""
	_, err = uc.SubmitEntry(context.Background(), creator, entry)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, found, err := store.FindSubmissionByUser(context.Background(), "c1", creator.UserID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSubmitEntryTextLengthBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedContest(store, "c1", entities.ContestStatusActive, now.Add(-time.Hour))
	uc := newSubmissionUseCase(store, now)

	cases := []struct {
		title       string
		description string
		wantErr     bool
	}{
		{title: strings.Repeat("a", 200), description: strings.Repeat("d", 5000)},
		{title: strings.Repeat("é", 200)},
		{title: strings.Repeat("a", 201), wantErr: true},
		{title: "ok", description: strings.Repeat("d", 5001), wantErr: true},
	}
	for i, tc := range cases {
		entry := validEntry("c1")
		entry.Title = tc.title
		entry.Description = tc.description
		author := ports.Actor{UserID: fmt.Sprintf("author-%d", i)}
		_, err := uc.SubmitEntry(context.Background(), author, entry)
		if tc.wantErr {
			assert.ErrorIs(t, err, domainerrors.ErrValidation, "case %d", i)
			continue
		}
		assert.NoError(t, err, "case %d", i)
	}
}

// gatedSubmissions holds every caller after the existence check until all of
// them have passed it, forcing the insert race.
type gatedSubmissions struct {
	ports.SubmissionRepository
	gate *sync.WaitGroup
}

func (g gatedSubmissions) FindSubmissionByUser(ctx context.Context, contestID string, userID string) (entities.Submission, bool, error) {
	submission, found, err := g.SubmissionRepository.FindSubmissionByUser(ctx, contestID, userID)
	g.gate.Done()
	g.gate.Wait()
	return submission, found, err
}

func TestSubmitEntryConcurrentDuplicateHasOneWinner(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedContest(store, "c1", entities.ContestStatusActive, now.Add(-time.Hour))

	const racers = 4
	gate := &sync.WaitGroup{}
	gate.Add(racers)
	uc := newSubmissionUseCase(store, now)
	uc.Submissions = gatedSubmissions{SubmissionRepository: store, gate: gate}

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.SubmitEntry(context.Background(), creator, validEntry("c1"))
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, domainerrors.ErrDuplicateSubmission)
	}
	assert.Equal(t, 1, accepted)

	submissions, err := store.ListSubmissionsByContest(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, submissions, 1)
}
