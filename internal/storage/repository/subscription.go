package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

const subscriptionColumns = `id, fullname, email, tel, adresse, code,
			      channel_count, subscription_type, start_date, end_date,
			      duration, time_unit, status, price`

// CreateSubscription inserts a new subscription record.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (id, fullname, email, tel, adresse, code,
			      channel_count, subscription_type, start_date, end_date,
			      duration, time_unit, status, price)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		sub.ID, sub.Fullname, sub.Email, sub.Tel, sub.Adresse, sub.Code,
		sub.ChannelCount, sub.SubscriptionType, sub.StartDate, sub.EndDate,
		sub.Duration, sub.TimeUnit, sub.Status, sub.Price).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscription returns the subscription with the given id.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Subscription
	err := row.Scan(&result.ID, &result.Fullname, &result.Email, &result.Tel,
		&result.Adresse, &result.Code, &result.ChannelCount, &result.SubscriptionType,
		&result.StartDate, &result.EndDate, &result.Duration, &result.TimeUnit,
		&result.Status, &result.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateSubscription overwrites the full record with the given id.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET fullname = $1, email = $2, tel = $3, adresse = $4, code = $5,
			      channel_count = $6, subscription_type = $7, start_date = $8,
			      end_date = $9, duration = $10, time_unit = $11, status = $12,
			      price = $13
			  WHERE id = $14`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Fullname, sub.Email, sub.Tel, sub.Adresse, sub.Code,
		sub.ChannelCount, sub.SubscriptionType, sub.StartDate, sub.EndDate,
		sub.Duration, sub.TimeUnit, sub.Status, sub.Price, sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
	}
	return nil
}

// DeleteSubscription removes the record with the given id.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) error {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
	}
	return nil
}

// ListAllSubscriptions returns every subscription record.
func (s *Storage) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  ORDER BY start_date`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.Fullname, &item.Email, &item.Tel,
			&item.Adresse, &item.Code, &item.ChannelCount, &item.SubscriptionType,
			&item.StartDate, &item.EndDate, &item.Duration, &item.TimeUnit,
			&item.Status, &item.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscriptionStatus writes only the status of one record. This is the
// per-record atomic write the sweep relies on.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id string, status models.Status) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
	}
	return nil
}
