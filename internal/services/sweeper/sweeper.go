// Package sweeper re-evaluates every subscription's ACTIVE/EXPIRED status on
// a fixed daily schedule. The sweep writes nothing but the status flag: it
// sends no notifications and deletes no records.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tahiry-dev-29/NestFlow/internal/lib/clock"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/keyset"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/sl"
	"github.com/tahiry-dev-29/NestFlow/internal/metrics"
	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

// Repository defines the store operations the sweep needs: a full listing
// and a single-record status write.
type Repository interface {
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id string, status models.Status) error
}

// Service runs the expiration sweep. Its schedule is owned by the service
// lifecycle: Start on boot, Stop on shutdown.
type Service struct {
	repo    Repository
	clk     clock.Clock
	deleted *keyset.Set
	log     *slog.Logger
	cron    *cron.Cron
}

// New creates a sweeper. The deleted set is shared with the lifecycle
// service so ids removed between listing and writing are skipped.
func New(repo Repository, clk clock.Clock, deleted *keyset.Set, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		clk:     clk,
		deleted: deleted,
		log:     log,
	}
}

// Start runs one sweep immediately, then schedules the recurring sweep.
// The schedule is a six-field cron spec, "0 0 0 * * *" for daily at
// midnight.
func (s *Service) Start(ctx context.Context, schedule string) error {
	const op = "sweeper.Start"

	if err := s.Sweep(ctx); err != nil {
		s.log.Error("initial sweep failed", sl.Err(err))
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.log.Error("scheduled sweep failed", sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.Start()
	s.cron = c
	s.log.Info("expiration sweeper started", slog.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("expiration sweeper stopped")
}

// Sweep loads every subscription and rewrites the status of those whose
// flag no longer matches the end date: EXPIRED once now is past the end
// date, ACTIVE otherwise. Running it twice in a row changes nothing.
func (s *Service) Sweep(ctx context.Context) error {
	const op = "sweeper.Sweep"

	subs, err := s.repo.ListAllSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.clk.Now()
	var expired, updated int
	for _, sub := range subs {
		if s.deleted.Has(sub.ID) {
			continue
		}
		if sub.EndDate.IsZero() {
			// Data-integrity fault; surfaced, never repaired here.
			s.log.Error("subscription without end date",
				slog.String("id", sub.ID), sl.Err(models.ErrInvalidState))
			continue
		}

		desired := models.StatusActive
		if now.After(sub.EndDate) {
			desired = models.StatusExpired
		}
		if desired == sub.Status {
			continue
		}

		if err := s.repo.UpdateSubscriptionStatus(ctx, sub.ID, desired); err != nil {
			s.log.Error("failed to update subscription status",
				slog.String("id", sub.ID), sl.Err(err))
			continue
		}
		updated++
		if desired == models.StatusExpired {
			expired++
			metrics.SubscriptionsExpired.Inc()
		}
	}

	metrics.SweepsTotal.Inc()
	s.log.Info("sweep finished",
		slog.Int("subscriptions", len(subs)),
		slog.Int("updated", updated),
		slog.Int("expired", expired))
	return nil
}
