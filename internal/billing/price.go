package billing

import (
	"fmt"
	"math"

	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

// Round2 rounds to 2 decimal places, half up.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ScalePrice scales a monthly base price to a duration in the given unit.
// A month is billed as 30 days and 4 weeks. Rounding happens after each
// arithmetic step (divide, then multiply), not once at the end; callers
// depend on the exact resulting figures.
func ScalePrice(basePrice float64, duration int, unit models.TimeUnit) (float64, error) {
	d := float64(duration)
	switch unit {
	case models.UnitDays:
		return Round2(Round2(basePrice/30) * d), nil
	case models.UnitWeeks:
		return Round2(Round2(basePrice/4) * d), nil
	case models.UnitMonths:
		return Round2(basePrice * d), nil
	case models.UnitYears:
		return Round2(basePrice * d * 12), nil
	default:
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidTimeUnit, unit)
	}
}
