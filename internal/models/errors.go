package models

import "errors"

// Error taxonomy of the subscription core. Store failures are wrapped driver
// errors and carry no sentinel of their own.
var (
	// ErrSubscriptionNotFound means the id has no record.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrInvalidTimeUnit means a unit outside DAYS/WEEKS/MONTHS/YEARS.
	ErrInvalidTimeUnit = errors.New("invalid time unit")
	// ErrInvalidState means the persisted record is inconsistent: a status
	// outside ACTIVE/EXPIRED, or missing/inverted start and end dates.
	ErrInvalidState = errors.New("invalid subscription state")
)
