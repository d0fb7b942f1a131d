// Package subscription contains the business logic of the subscription
// lifecycle: creation, contact updates, deletion, renewal with price
// recalculation and status computation.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tahiry-dev-29/NestFlow/internal/billing"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/clock"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/keyset"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/sl"
	"github.com/tahiry-dev-29/NestFlow/internal/metrics"
	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

// Repository defines the store operations the lifecycle service needs.
// Writes are atomic per record.
type Repository interface {
	// CreateSubscription inserts a new record and returns its id.
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	// GetSubscription returns the record or models.ErrSubscriptionNotFound.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	// UpdateSubscription overwrites the full record.
	UpdateSubscription(ctx context.Context, sub models.Subscription) error
	// DeleteSubscription removes the record.
	DeleteSubscription(ctx context.Context, id string) error
	// ListAllSubscriptions returns every record.
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
}

// Cache describes the read cache for subscription records.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Hasher hashes a credential field one way before storage.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Service implements the subscription lifecycle over an injected store,
// cache, hasher and clock.
type Service struct {
	repo    Repository
	cache   Cache
	hasher  Hasher
	clk     clock.Clock
	deleted *keyset.Set
	log     *slog.Logger
}

// New creates a new lifecycle Service. The deleted set is shared with the
// sweeper so a sweep racing a delete cannot resurrect a removed record.
func New(repo Repository, cache Cache, hasher Hasher, clk clock.Clock, deleted *keyset.Set, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		hasher:  hasher,
		clk:     clk,
		deleted: deleted,
		log:     log,
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("subscription:%s", id)
}

// Create registers a new subscription starting now. Without an explicit
// period it runs for one month. The channel count defaults to the tier's
// base allowance, the access code is hashed before storage and the price is
// the full price of the initial period.
func (s *Service) Create(ctx context.Context, req models.DummySubscription) (*models.Subscription, error) {
	const op = "subscription.Create"

	subType, err := models.ParseSubscriptionType(req.SubscriptionType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	duration := req.Duration
	unit := models.UnitMonths
	if duration == 0 {
		duration = 1
	}
	if req.TimeUnit != "" {
		unit, err = models.ParseTimeUnit(req.TimeUnit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	now := s.clk.Now()
	endDate, err := models.AddPeriod(now, duration, unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	channelCount := billing.TariffFor(subType).BaseChannels
	if req.ChannelCount != nil {
		channelCount = *req.ChannelCount
	}

	price, err := billing.TotalPrice(subType, duration, unit, &channelCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code := ""
	if req.Code != "" {
		code, err = s.hasher.Hash(req.Code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	sub := models.Subscription{
		ID:               uuid.New().String(),
		Fullname:         req.Fullname,
		Email:            req.Email,
		Tel:              req.Tel,
		Adresse:          req.Adresse,
		Code:             code,
		ChannelCount:     channelCount,
		SubscriptionType: subType,
		StartDate:        now,
		EndDate:          endDate,
		Duration:         duration,
		TimeUnit:         unit,
		Status:           models.StatusActive,
		Price:            price,
	}

	if _, err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SubscriptionsCreated.Inc()
	s.log.Info("created new subscription", slog.String("id", sub.ID))

	if err := s.cache.Set(cacheKey(sub.ID), sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey(sub.ID)), sl.Err(err))
	}

	return &sub, nil
}

// GetByID returns the subscription, using the cache or the store.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	var result *models.Subscription
	key := cacheKey(id)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(key, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return result, nil
}

// Update applies the non-nil contact fields and, when a new code is
// supplied, rehashes it. Billing fields are never touched here.
func (s *Service) Update(ctx context.Context, id string, req models.DummyUpdate) (*models.Subscription, error) {
	const op = "subscription.Update"

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Fullname != nil {
		sub.Fullname = *req.Fullname
	}
	if req.Email != nil {
		sub.Email = *req.Email
	}
	if req.Tel != nil {
		sub.Tel = *req.Tel
	}
	if req.Adresse != nil {
		sub.Adresse = *req.Adresse
	}
	if req.Code != nil && *req.Code != "" {
		hashed, err := s.hasher.Hash(*req.Code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub.Code = hashed
	}

	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, err
	}
	s.log.Info("updated subscription", slog.String("id", id))

	if err := s.cache.Set(cacheKey(id), sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	return sub, nil
}

// Delete removes the record and tombstones its id so the sweep skips it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	if err := s.repo.DeleteSubscription(ctx, id); err != nil {
		return err
	}
	s.deleted.Add(id)
	s.log.Info("deleted subscription", slog.String("id", id))
	return nil
}

// Renew extends or restarts the paid period and recalculates the cumulative
// price.
//
// Pricing policy:
//   - EXPIRED: the price becomes the full price of the requested terms;
//     dead periods are not billed again.
//   - ACTIVE with identical terms: the new period's price is added on top
//     and the end date extends from the current end.
//   - ACTIVE with changed terms (type, period, unit or capacity): the new
//     terms are billed in full minus a credit for the unused share of the
//     current period, floored at zero.
func (s *Service) Renew(ctx context.Context, id string, req models.DummyRenewal) (*models.Subscription, error) {
	const op = "subscription.Renew"

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.Status != models.StatusActive && sub.Status != models.StatusExpired {
		err := fmt.Errorf("%s: %w: status %q", op, models.ErrInvalidState, sub.Status)
		s.log.Error("subscription has inconsistent status", slog.String("id", id), sl.Err(err))
		return nil, err
	}

	unit, err := models.ParseTimeUnit(req.Unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	newType := sub.SubscriptionType
	if req.NewType != "" {
		newType, err = models.ParseSubscriptionType(req.NewType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// An absent channel count falls back to the (possibly new) tier's base
	// allowance rather than the current provisioned capacity.
	newChannels := billing.TariffFor(newType).BaseChannels
	if req.ChannelCount != nil {
		newChannels = *req.ChannelCount
	}

	periodPrice, err := billing.TotalPrice(newType, req.RenewalPeriod, unit, &newChannels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clk.Now()
	sameTerms := newType == sub.SubscriptionType &&
		req.RenewalPeriod == sub.Duration &&
		unit == sub.TimeUnit &&
		newChannels == sub.ChannelCount

	var newPrice float64
	switch {
	case sub.Status == models.StatusExpired:
		newPrice = periodPrice
	case sameTerms:
		newPrice = sub.Price + periodPrice
	default:
		newPrice = sub.Price + changedTermsCharge(sub, periodPrice, now)
	}

	renewal := models.RenewalRequest{
		RenewalPeriod: req.RenewalPeriod,
		Unit:          unit,
		NewType:       &newType,
		ChannelCount:  &newChannels,
	}
	if err := sub.ApplyRenewal(renewal, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.Price = newPrice

	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, err
	}
	metrics.SubscriptionsRenewed.Inc()
	s.log.Info("renewed subscription",
		slog.String("id", id),
		slog.String("type", string(sub.SubscriptionType)),
		slog.Float64("price", sub.Price))

	if err := s.cache.Set(cacheKey(id), sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	return sub, nil
}

// changedTermsCharge prices an active renewal whose terms differ from the
// running period: the new terms in full, minus a credit proportional to the
// unused remainder of the current period, never below zero.
func changedTermsCharge(sub *models.Subscription, newTermsPrice float64, now time.Time) float64 {
	currentPrice, err := billing.TotalPrice(sub.SubscriptionType, sub.Duration, sub.TimeUnit, &sub.ChannelCount)
	if err != nil {
		// The running terms were validated when they were applied.
		return newTermsPrice
	}

	totalDays := models.DaysBetween(sub.StartDate, sub.EndDate)
	if totalDays <= 0 {
		return newTermsPrice
	}
	remainingDays := models.DaysBetween(now, sub.EndDate)
	if remainingDays < 0 {
		remainingDays = 0
	}
	if remainingDays > totalDays {
		remainingDays = totalDays
	}

	credit := billing.Round2(currentPrice * float64(remainingDays) / float64(totalDays))
	charge := newTermsPrice - credit
	if charge < 0 {
		charge = 0
	}
	return charge
}

// ComputeStatus derives the progress view of one subscription.
func (s *Service) ComputeStatus(ctx context.Context, id string) (*models.StatusInfo, error) {
	const op = "subscription.ComputeStatus"

	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	info, err := statusInfo(sub, s.clk.Now())
	if err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		s.log.Error("subscription has inconsistent dates", slog.String("id", id), sl.Err(err))
		return nil, err
	}
	return &info, nil
}

// List returns every subscription together with its derived status view.
func (s *Service) List(ctx context.Context) ([]models.SubscriptionWithStatus, error) {
	const op = "subscription.List"

	subs, err := s.repo.ListAllSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	result := make([]models.SubscriptionWithStatus, 0, len(subs))
	for _, sub := range subs {
		info, err := statusInfo(sub, now)
		if err != nil {
			err = fmt.Errorf("%s: id %s: %w", op, sub.ID, err)
			s.log.Error("subscription has inconsistent dates", sl.Err(err))
			return nil, err
		}
		result = append(result, models.SubscriptionWithStatus{
			Subscription: sub,
			Status:       info,
		})
	}
	return result, nil
}

// statusInfo derives remaining days, the percentage of the period left and
// the expiry flag. The percentage counts what REMAINS: a freshly renewed
// subscription reports close to 100.
func statusInfo(sub *models.Subscription, now time.Time) (models.StatusInfo, error) {
	if sub.StartDate.IsZero() || sub.EndDate.IsZero() {
		return models.StatusInfo{}, fmt.Errorf("%w: missing start or end date", models.ErrInvalidState)
	}
	if sub.EndDate.Before(sub.StartDate) {
		return models.StatusInfo{}, fmt.Errorf("%w: end date before start date", models.ErrInvalidState)
	}

	remainingDays := models.DaysBetween(now, sub.EndDate)
	totalDays := models.DaysBetween(sub.StartDate, sub.EndDate)

	progress := 100.0
	if totalDays > 0 {
		elapsed := models.DaysBetween(sub.StartDate, now)
		progress = 100 - float64(elapsed)/float64(totalDays)*100
	}

	return models.StatusInfo{
		RemainingDays:      remainingDays,
		ProgressPercentage: progress,
		IsExpired:          remainingDays <= 0,
	}, nil
}
