// Package models contains the domain structures describing a subscription,
// its lifecycle enums and the request payloads accepted from external sources
// (for example JSON requests).
package models

import (
	"fmt"
	"strings"
	"time"
)

// SubscriptionType is the pricing tier of a subscription.
type SubscriptionType string

// Supported subscription tiers.
const (
	TypeBasic   SubscriptionType = "BASIC"
	TypeClassic SubscriptionType = "CLASSIC"
)

// TimeUnit is the unit a renewal period is expressed in.
type TimeUnit string

// Supported renewal time units.
const (
	UnitDays   TimeUnit = "DAYS"
	UnitWeeks  TimeUnit = "WEEKS"
	UnitMonths TimeUnit = "MONTHS"
	UnitYears  TimeUnit = "YEARS"
)

// Status is the lifecycle state of a subscription. It is derived from the
// end date relative to "now"; the daily sweep keeps it consistent.
type Status string

// Subscription lifecycle states.
const (
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
)

// ParseSubscriptionType converts an external string into a SubscriptionType.
func ParseSubscriptionType(s string) (SubscriptionType, error) {
	switch SubscriptionType(strings.ToUpper(s)) {
	case TypeBasic:
		return TypeBasic, nil
	case TypeClassic:
		return TypeClassic, nil
	default:
		return "", fmt.Errorf("unknown subscription type: %q", s)
	}
}

// ParseTimeUnit converts an external string into a TimeUnit.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch TimeUnit(strings.ToUpper(s)) {
	case UnitDays:
		return UnitDays, nil
	case UnitWeeks:
		return UnitWeeks, nil
	case UnitMonths:
		return UnitMonths, nil
	case UnitYears:
		return UnitYears, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeUnit, s)
	}
}

// Subscription is the persisted subscription record. Price is cumulative:
// every renewal of an already active subscription adds to it, a renewal of
// an expired one replaces it.
type Subscription struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Tel      string `json:"tel"`
	Adresse  string `json:"adresse"`
	// Code is the decoder access code, stored as a bcrypt hash.
	Code string `json:"-"`

	ChannelCount     int              `json:"channel_count"`
	SubscriptionType SubscriptionType `json:"subscription_type"`

	StartDate time.Time `json:"subscription_start_date"`
	EndDate   time.Time `json:"subscription_end_date"`

	// Duration and TimeUnit hold the most recently applied renewal period,
	// kept so progress can be derived from the nominal period length.
	Duration int      `json:"duration"`
	TimeUnit TimeUnit `json:"time_unit"`

	Status Status  `json:"status"`
	Price  float64 `json:"price"`
}

// RenewalRequest carries the parsed terms of a renewal.
type RenewalRequest struct {
	RenewalPeriod int
	Unit          TimeUnit
	NewType       *SubscriptionType
	ChannelCount  *int
}

// AddPeriod returns start advanced by the given duration in the given unit.
func AddPeriod(start time.Time, duration int, unit TimeUnit) (time.Time, error) {
	switch unit {
	case UnitDays:
		return start.AddDate(0, 0, duration), nil
	case UnitWeeks:
		return start.AddDate(0, 0, 7*duration), nil
	case UnitMonths:
		return start.AddDate(0, duration, 0), nil
	case UnitYears:
		return start.AddDate(duration, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeUnit, unit)
	}
}

// DaysBetween counts the whole 24h periods between a and b.
func DaysBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / (24 * time.Hour))
}

// ApplyRenewal moves the paid period forward according to the request.
// An active subscription extends from its current end date, an expired one
// (or one without an end date yet) restarts from now. Status is forced back
// to ACTIVE. Price is untouched: pricing policy belongs to the caller.
func (s *Subscription) ApplyRenewal(req RenewalRequest, now time.Time) error {
	newStart := now
	if !s.EndDate.IsZero() && s.EndDate.After(now) {
		newStart = s.EndDate
	}
	newEnd, err := AddPeriod(newStart, req.RenewalPeriod, req.Unit)
	if err != nil {
		return err
	}

	s.Duration = req.RenewalPeriod
	s.TimeUnit = req.Unit
	s.StartDate = newStart
	s.EndDate = newEnd
	if req.NewType != nil {
		s.SubscriptionType = *req.NewType
	}
	if req.ChannelCount != nil {
		s.ChannelCount = *req.ChannelCount
	}
	if s.Status == StatusExpired {
		s.Status = StatusActive
	}
	return nil
}

// RemainingDays returns the whole days left until the end date, zero when no
// end date is set.
func (s *Subscription) RemainingDays(now time.Time) int64 {
	if s.EndDate.IsZero() {
		return 0
	}
	return DaysBetween(now, s.EndDate)
}

// StatusInfo is the derived progress view of a subscription.
// ProgressPercentage is the share of the period remaining, not consumed.
type StatusInfo struct {
	RemainingDays      int64   `json:"remaining_days"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsExpired          bool    `json:"is_expired"`
}

// SubscriptionWithStatus pairs a subscription with its derived status view,
// used by the list endpoint.
type SubscriptionWithStatus struct {
	Subscription *Subscription `json:"subscription"`
	Status       StatusInfo    `json:"status"`
}

// DummySubscription receives the JSON payload for subscription creation,
// before conversion into a Subscription. The initial period is optional and
// defaults to one month.
type DummySubscription struct {
	Fullname         string `json:"fullname" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Tel              string `json:"tel"`
	Adresse          string `json:"adresse"`
	Code             string `json:"code" validate:"required"`
	SubscriptionType string `json:"subscription_type" validate:"required"`
	Duration         int    `json:"duration" validate:"omitempty,gt=0"`
	TimeUnit         string `json:"time_unit"`
	ChannelCount     *int   `json:"channel_count" validate:"omitempty,gte=0"`
}

// DummyUpdate receives the JSON payload for a partial contact update.
// Only non-nil fields are applied; billing fields are never touched here.
type DummyUpdate struct {
	Fullname *string `json:"fullname"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Tel      *string `json:"tel"`
	Adresse  *string `json:"adresse"`
	Code     *string `json:"code"`
}

// DummyRenewal receives the JSON payload for a renewal request.
type DummyRenewal struct {
	RenewalPeriod int    `json:"renewal_period" validate:"required,gt=0"`
	Unit          string `json:"unit" validate:"required"`
	NewType       string `json:"new_type"`
	ChannelCount  *int   `json:"channel_count" validate:"omitempty,gte=0"`
}
