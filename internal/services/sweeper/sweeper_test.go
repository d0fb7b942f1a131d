package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahiry-dev-29/NestFlow/internal/lib/keyset"
	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// fakeRepo records every status write the sweep performs.
type fakeRepo struct {
	subs    []*models.Subscription
	listErr error
	writes  map[string]models.Status
}

func newFakeRepo(subs ...*models.Subscription) *fakeRepo {
	return &fakeRepo{subs: subs, writes: make(map[string]models.Status)}
}

func (r *fakeRepo) ListAllSubscriptions(context.Context) ([]*models.Subscription, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.subs, nil
}

func (r *fakeRepo) UpdateSubscriptionStatus(_ context.Context, id string, status models.Status) error {
	r.writes[id] = status
	for _, sub := range r.subs {
		if sub.ID == id {
			sub.Status = status
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweep_ExpiresPastEndDates(t *testing.T) {
	now := time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		&models.Subscription{
			ID:      "past",
			EndDate: now.AddDate(0, 0, -1),
			Status:  models.StatusActive,
		},
		&models.Subscription{
			ID:      "future",
			EndDate: now.AddDate(0, 0, 10),
			Status:  models.StatusActive,
		},
	)
	s := New(repo, &fakeClock{now: now}, keyset.New(), discardLogger())

	require.NoError(t, s.Sweep(context.Background()))

	assert.Equal(t, models.StatusExpired, repo.writes["past"])
	_, touched := repo.writes["future"]
	assert.False(t, touched, "a running subscription is left alone")
}

func TestSweep_ReactivatesWronglyExpired(t *testing.T) {
	// A record flagged EXPIRED whose end date lies in the future is swept
	// back to ACTIVE.
	now := time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&models.Subscription{
		ID:      "flagged",
		EndDate: now.AddDate(0, 0, 5),
		Status:  models.StatusExpired,
	})
	s := New(repo, &fakeClock{now: now}, keyset.New(), discardLogger())

	require.NoError(t, s.Sweep(context.Background()))
	assert.Equal(t, models.StatusActive, repo.writes["flagged"])
}

func TestSweep_Idempotent(t *testing.T) {
	now := time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&models.Subscription{
		ID:      "past",
		EndDate: now.AddDate(0, 0, -1),
		Status:  models.StatusActive,
	})
	s := New(repo, &fakeClock{now: now}, keyset.New(), discardLogger())

	require.NoError(t, s.Sweep(context.Background()))
	require.Len(t, repo.writes, 1)

	repo.writes = make(map[string]models.Status)
	require.NoError(t, s.Sweep(context.Background()))
	assert.Empty(t, repo.writes, "a second sweep has nothing left to write")
}

func TestSweep_SkipsTombstonedIDs(t *testing.T) {
	now := time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&models.Subscription{
		ID:      "removed",
		EndDate: now.AddDate(0, 0, -1),
		Status:  models.StatusActive,
	})
	deleted := keyset.New()
	deleted.Add("removed")
	s := New(repo, &fakeClock{now: now}, deleted, discardLogger())

	require.NoError(t, s.Sweep(context.Background()))
	assert.Empty(t, repo.writes)
}

func TestSweep_SkipsRecordsWithoutEndDate(t *testing.T) {
	now := time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&models.Subscription{
		ID:     "broken",
		Status: models.StatusActive,
	})
	s := New(repo, &fakeClock{now: now}, keyset.New(), discardLogger())

	require.NoError(t, s.Sweep(context.Background()))
	assert.Empty(t, repo.writes, "integrity faults are logged, never repaired")
}

func TestSweep_ListFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.listErr = errors.New("connection refused")
	s := New(repo, &fakeClock{now: time.Now()}, keyset.New(), discardLogger())

	err := s.Sweep(context.Background())
	assert.Error(t, err)
}

func TestStart_RejectsInvalidSchedule(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, &fakeClock{now: time.Now()}, keyset.New(), discardLogger())

	err := s.Start(context.Background(), "not a cron spec")
	assert.Error(t, err)
	s.Stop()
}

func TestStartStop(t *testing.T) {
	now := time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(&models.Subscription{
		ID:      "past",
		EndDate: now.AddDate(0, 0, -1),
		Status:  models.StatusActive,
	})
	s := New(repo, &fakeClock{now: now}, keyset.New(), discardLogger())

	require.NoError(t, s.Start(context.Background(), "0 0 0 * * *"))
	assert.Equal(t, models.StatusExpired, repo.writes["past"], "Start runs one sweep immediately")
	s.Stop()
}
