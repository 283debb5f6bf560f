package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/models"
)

const subscriberColumns = `s.id, s.name, s.mobile, s.stb_number, s.region, s.balance,
			      s.current_pack, s.billing_cycle, s.next_billing_date,
			      s.last_billing_date, s.auto_charge_enabled, s.created_at`

// CreateSubscriber inserts a new subscriber row.
func (s *Storage) CreateSubscriber(ctx context.Context, sub models.Subscriber) error {
	const op = "storage.CreateSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscribers (id, name, mobile, stb_number, region, balance,
			      current_pack, billing_cycle, next_billing_date, last_billing_date,
			      auto_charge_enabled, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := s.DB.ExecContext(ctx, query,
		sub.ID, sub.Name, sub.Mobile, sub.STBNumber, sub.Region, sub.Balance,
		sub.CurrentPack, sub.BillingCycle, sub.NextBillingDate, sub.LastBillingDate,
		sub.AutoChargeEnabled, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscriber returns a subscriber with its active subscription
// entry loaded, or apperr.ErrNotFound.
func (s *Storage) GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error) {
	const op = "storage.GetSubscriber"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `,
			      e.id, e.pack_name, e.pack_price, e.start_date, e.end_date,
			      e.duration_months, e.status, e.subscribed_at
			  FROM subscribers s
			  LEFT JOIN subscription_entries e ON e.id = s.current_subscription_id
			  WHERE s.id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	sub, err := scanSubscriberWithEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("subscriber", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriberWithEntry(row rowScanner) (*models.Subscriber, error) {
	var sub models.Subscriber
	var entryID, packName, status sql.NullString
	var packPrice sql.NullString
	var startDate, endDate, subscribedAt sql.NullTime
	var durationMonths sql.NullInt64

	if err := row.Scan(&sub.ID, &sub.Name, &sub.Mobile, &sub.STBNumber, &sub.Region,
		&sub.Balance, &sub.CurrentPack, &sub.BillingCycle, &sub.NextBillingDate,
		&sub.LastBillingDate, &sub.AutoChargeEnabled, &sub.CreatedAt,
		&entryID, &packName, &packPrice, &startDate, &endDate,
		&durationMonths, &status, &subscribedAt); err != nil {
		return nil, err
	}

	if entryID.Valid {
		entry := models.SubscriptionEntry{
			ID:             entryID.String,
			SubscriberID:   sub.ID,
			PackName:       packName.String,
			StartDate:      startDate.Time,
			EndDate:        endDate.Time,
			DurationMonths: int(durationMonths.Int64),
			Status:         status.String,
			SubscribedAt:   subscribedAt.Time,
		}
		if packPrice.Valid {
			price, err := parseDecimal(packPrice.String)
			if err != nil {
				return nil, err
			}
			entry.PackPrice = price
		}
		sub.CurrentSubscription = &entry
	}
	return &sub, nil
}

// ListSubscribers returns subscribers matching the filter, ordered by
// creation time, with their active entries loaded.
func (s *Storage) ListSubscribers(ctx context.Context, filter models.SubscriberFilter) ([]*models.Subscriber, error) {
	const op = "storage.ListSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `,
			      e.id, e.pack_name, e.pack_price, e.start_date, e.end_date,
			      e.duration_months, e.status, e.subscribed_at
			  FROM subscribers s
			  LEFT JOIN subscription_entries e ON e.id = s.current_subscription_id
			  WHERE ($1 = '' OR s.region = $1)
			  ORDER BY s.created_at, s.id
			  LIMIT $2 OFFSET $3`
	// Limit <= 0 means no limit; a NULL limit returns every row.
	var limit sql.NullInt64
	if filter.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(filter.Limit), Valid: true}
	}
	rows, err := s.DB.QueryContext(ctx, query, filter.Region, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscriber
	for rows.Next() {
		sub, err := scanSubscriberWithEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscriberContact updates the mutable contact/billing-policy
// fields and returns the resulting subscriber. Balance and subscription
// state are never touched here.
func (s *Storage) UpdateSubscriberContact(ctx context.Context, id string, req models.DummySubscriber) (*models.Subscriber, error) {
	const op = "storage.UpdateSubscriberContact"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers
			  SET name = $1, mobile = $2, stb_number = $3, region = $4,
			      billing_cycle = $5, auto_charge_enabled = $6
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		req.Name, req.Mobile, req.STBNumber, req.Region,
		req.BillingCycle, req.AutoChargeEnabled, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return nil, apperr.NotFound("subscriber", id)
	}
	return s.GetSubscriber(ctx, id)
}

// DeleteSubscriber removes a subscriber. Transactions, subscription
// entries, billing history and complaints go with it via ON DELETE
// CASCADE; assigned STBs return to stock in the same transaction.
func (s *Storage) DeleteSubscriber(ctx context.Context, id string) error {
	const op = "storage.DeleteSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var deleted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE stbs SET status = 'in_stock', subscriber_id = NULL WHERE subscriber_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		return apperr.NotFound("subscriber", id)
	}
	return nil
}

// FindDueForAutoBilling returns subscribers with auto-charge enabled
// whose next billing date is on or before now.
func (s *Storage) FindDueForAutoBilling(ctx context.Context, now time.Time) ([]*models.Subscriber, error) {
	const op = "storage.FindDueForAutoBilling"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `,
			      e.id, e.pack_name, e.pack_price, e.start_date, e.end_date,
			      e.duration_months, e.status, e.subscribed_at
			  FROM subscribers s
			  LEFT JOIN subscription_entries e ON e.id = s.current_subscription_id
			  WHERE s.auto_charge_enabled = true
			    AND s.next_billing_date IS NOT NULL
			    AND s.next_billing_date <= $1
			  ORDER BY s.next_billing_date`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscriber
	for rows.Next() {
		sub, err := scanSubscriberWithEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AdvanceBillingDates moves a subscriber's billing window after a
// successful (or failed) auto-charge attempt.
func (s *Storage) AdvanceBillingDates(ctx context.Context, id string, lastBilling, nextBilling time.Time) (int, error) {
	const op = "storage.AdvanceBillingDates"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers
			  SET last_billing_date = $1, next_billing_date = $2
			  WHERE id = $3`
	res, err := s.DB.ExecContext(ctx, query, lastBilling, nextBilling, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetBillingSchedule initializes the billing window when a
// subscription is added.
func (s *Storage) SetBillingSchedule(ctx context.Context, id string, next *time.Time) error {
	const op = "storage.SetBillingSchedule"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`UPDATE subscribers SET next_billing_date = $1 WHERE id = $2`, next, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
