// Package metrics registers the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubscriptionsCreated counts successful subscription creations.
	SubscriptionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestflow_subscriptions_created_total",
		Help: "Number of subscriptions created.",
	})
	// SubscriptionsRenewed counts successful renewals.
	SubscriptionsRenewed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestflow_subscriptions_renewed_total",
		Help: "Number of subscription renewals applied.",
	})
	// SweepsTotal counts expiration sweep runs.
	SweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestflow_sweeps_total",
		Help: "Number of expiration sweeps executed.",
	})
	// SubscriptionsExpired counts ACTIVE to EXPIRED transitions written by
	// the sweep.
	SubscriptionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestflow_subscriptions_expired_total",
		Help: "Number of subscriptions demoted to EXPIRED by the sweep.",
	})
)
