package billing

import "github.com/tahiry-dev-29/NestFlow/internal/models"

// ExtraChannelCost returns the surcharge for capacity above the tier's base
// allowance. A nil requested count means the base allowance, so no surcharge.
func ExtraChannelCost(t models.SubscriptionType, requestedChannels *int) float64 {
	tariff := TariffFor(t)

	channels := tariff.BaseChannels
	if requestedChannels != nil {
		channels = *requestedChannels
	}
	if channels <= tariff.BaseChannels {
		return 0
	}
	extra := channels - tariff.BaseChannels
	return float64(extra) * tariff.ChannelRate
}
