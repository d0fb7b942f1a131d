package billing

import "github.com/tahiry-dev-29/NestFlow/internal/models"

// TotalPrice is the single source of truth for what one period costs at a
// given capacity: the tier's base price scaled to the period plus the extra
// channel surcharge. Both creation and renewal must price through here.
func TotalPrice(t models.SubscriptionType, duration int, unit models.TimeUnit, channelCount *int) (float64, error) {
	timeBased, err := ScalePrice(TariffFor(t).BasePrice, duration, unit)
	if err != nil {
		return 0, err
	}
	return timeBased + ExtraChannelCost(t, channelCount), nil
}
