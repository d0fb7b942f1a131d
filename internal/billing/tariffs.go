// Package billing holds the static tariff table and the price arithmetic for
// subscription periods and channel capacity.
package billing

import (
	"fmt"

	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

// Tariff is the static pricing of one subscription tier: the monthly base
// price, the channel allowance included in it and the per-channel rate
// charged above the allowance.
type Tariff struct {
	BasePrice    float64
	BaseChannels int
	ChannelRate  float64
}

// Tariffs maps every subscription tier to its pricing. Built once, never
// mutated.
var Tariffs = map[models.SubscriptionType]Tariff{
	models.TypeBasic:   {BasePrice: 30000, BaseChannels: 250, ChannelRate: 1.2},
	models.TypeClassic: {BasePrice: 50000, BaseChannels: 500, ChannelRate: 1.5},
}

// TariffFor returns the tariff of a tier. An unknown tier is a programming
// error: request parsing rejects unknown types before they reach here.
func TariffFor(t models.SubscriptionType) Tariff {
	cfg, ok := Tariffs[t]
	if !ok {
		panic(fmt.Sprintf("billing: no tariff for subscription type %q", t))
	}
	return cfg
}
