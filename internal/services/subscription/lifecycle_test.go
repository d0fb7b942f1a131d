package subscription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahiry-dev-29/NestFlow/internal/lib/keyset"
	"github.com/tahiry-dev-29/NestFlow/internal/models"
	sweeperservice "github.com/tahiry-dev-29/NestFlow/internal/services/sweeper"
)

// memRepo is an in-memory store used to drive the lifecycle service and the
// sweeper against the same data.
type memRepo struct {
	mu           sync.Mutex
	subs         map[string]models.Subscription
	statusWrites int
}

func newMemRepo() *memRepo {
	return &memRepo{subs: make(map[string]models.Subscription)}
}

func (r *memRepo) CreateSubscription(_ context.Context, sub models.Subscription) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.ID] = sub
	return sub.ID, nil
}

func (r *memRepo) GetSubscription(_ context.Context, id string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, models.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *memRepo) UpdateSubscription(_ context.Context, sub models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.ID]; !ok {
		return models.ErrSubscriptionNotFound
	}
	r.subs[sub.ID] = sub
	return nil
}

func (r *memRepo) DeleteSubscription(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[id]; !ok {
		return models.ErrSubscriptionNotFound
	}
	delete(r.subs, id)
	return nil
}

func (r *memRepo) ListAllSubscriptions(_ context.Context) ([]*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		s := sub
		out = append(out, &s)
	}
	return out, nil
}

func (r *memRepo) UpdateSubscriptionStatus(_ context.Context, id string, status models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return models.ErrSubscriptionNotFound
	}
	sub.Status = status
	r.subs[id] = sub
	r.statusWrites++
	return nil
}

type noopCache struct{}

func (noopCache) Get(string, any) (bool, error)        { return false, nil }
func (noopCache) Set(string, any, time.Duration) error { return nil }
func (noopCache) Invalidate(string) error              { return nil }

func TestLifecycle_ExpireThenRenew(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	repo := newMemRepo()
	clk := &fakeClock{now: t0}
	deleted := keyset.New()
	log := discardLogger()

	svc := New(repo, noopCache{}, stubHasher{}, clk, deleted, log)
	sweeper := sweeperservice.New(repo, clk, deleted, log)

	sub, err := svc.Create(ctx, models.DummySubscription{
		Fullname:         "Mamy Andrian",
		Email:            "mamy@example.com",
		Code:             "code",
		SubscriptionType: "CLASSIC",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, sub.Status)
	require.InDelta(t, 50000, sub.Price, 0.001)

	// A sweep before the end date changes nothing.
	require.NoError(t, sweeper.Sweep(ctx))
	assert.Equal(t, 0, repo.statusWrites)

	clk.Advance(32 * 24 * time.Hour)

	require.NoError(t, sweeper.Sweep(ctx))
	stored, err := repo.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, stored.Status)

	// Sweeping again performs no further writes.
	writes := repo.statusWrites
	require.NoError(t, sweeper.Sweep(ctx))
	assert.Equal(t, writes, repo.statusWrites)

	renewed, err := svc.Renew(ctx, sub.ID, models.DummyRenewal{
		RenewalPeriod: 1,
		Unit:          "MONTHS",
	})
	require.NoError(t, err)

	now := clk.Now()
	assert.Equal(t, models.StatusActive, renewed.Status)
	assert.Equal(t, now, renewed.StartDate)
	assert.Equal(t, now.AddDate(0, 1, 0), renewed.EndDate)
	assert.InDelta(t, 50000, renewed.Price, 0.001, "the lapsed period is not billed")

	info, err := svc.ComputeStatus(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, info.IsExpired)
	assert.InDelta(t, 100, info.ProgressPercentage, 0.001)
}

func TestLifecycle_RepeatedSameTermsRenewals(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	repo := newMemRepo()
	clk := &fakeClock{now: t0}
	svc := New(repo, noopCache{}, stubHasher{}, clk, keyset.New(), discardLogger())

	sub, err := svc.Create(ctx, models.DummySubscription{
		Fullname:         "Noro Raso",
		Email:            "noro@example.com",
		Code:             "code",
		SubscriptionType: "BASIC",
	})
	require.NoError(t, err)

	first, err := svc.Renew(ctx, sub.ID, models.DummyRenewal{RenewalPeriod: 1, Unit: "MONTHS"})
	require.NoError(t, err)
	assert.InDelta(t, 60000, first.Price, 0.001)
	assert.Equal(t, t0.AddDate(0, 1, 0), first.StartDate)
	assert.Equal(t, t0.AddDate(0, 2, 0), first.EndDate)

	second, err := svc.Renew(ctx, sub.ID, models.DummyRenewal{RenewalPeriod: 1, Unit: "MONTHS"})
	require.NoError(t, err)
	assert.InDelta(t, 90000, second.Price, 0.001, "every renewal adds the period price")
	assert.Equal(t, t0.AddDate(0, 2, 0), second.StartDate)
	assert.Equal(t, t0.AddDate(0, 3, 0), second.EndDate)
}

func TestLifecycle_DeletedSubscriptionIsSkippedBySweep(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	repo := newMemRepo()
	clk := &fakeClock{now: t0}
	deleted := keyset.New()
	log := discardLogger()

	svc := New(repo, noopCache{}, stubHasher{}, clk, deleted, log)
	sweeper := sweeperservice.New(repo, clk, deleted, log)

	sub, err := svc.Create(ctx, models.DummySubscription{
		Fullname:         "Lala R.",
		Email:            "lala@example.com",
		Code:             "code",
		SubscriptionType: "BASIC",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sub.ID))
	clk.Advance(60 * 24 * time.Hour)

	require.NoError(t, sweeper.Sweep(ctx))
	assert.Equal(t, 0, repo.statusWrites)

	_, err = svc.GetByID(ctx, sub.ID)
	assert.ErrorIs(t, err, models.ErrSubscriptionNotFound)
}
