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

// ActivateSubscription appends a new subscription entry and makes it
// the subscriber's current one, all in one transaction. Any entry
// still marked active for the subscriber is moved to expired first,
// which keeps the one-active-entry invariant even if an older entry's
// status lagged behind its end date.
func (s *Storage) ActivateSubscription(ctx context.Context, entry models.SubscriptionEntry) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		// Lock the subscriber row for the duration of the switch.
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM subscribers WHERE id = $1 FOR UPDATE`, entry.SubscriberID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("subscriber", entry.SubscriberID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE subscription_entries SET status = $1
			 WHERE subscriber_id = $2 AND status = $3`,
			models.SubscriptionStatusExpired, entry.SubscriberID, models.SubscriptionStatusActive); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subscription_entries (id, subscriber_id, pack_name, pack_price,
			     start_date, end_date, duration_months, status, subscribed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			entry.ID, entry.SubscriberID, entry.PackName, entry.PackPrice,
			entry.StartDate, entry.EndDate, entry.DurationMonths, entry.Status, entry.SubscribedAt); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE subscribers SET current_subscription_id = $1, current_pack = $2 WHERE id = $3`,
			entry.ID, entry.PackName, entry.SubscriberID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetActiveEntry returns the subscriber's current subscription entry
// or apperr.ErrNotFound when none is active.
func (s *Storage) GetActiveEntry(ctx context.Context, subscriberID string) (*models.SubscriptionEntry, error) {
	const op = "storage.GetActiveEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT e.id, e.subscriber_id, e.pack_name, e.pack_price, e.start_date,
			      e.end_date, e.duration_months, e.status, e.subscribed_at
			  FROM subscription_entries e
			  JOIN subscribers s ON s.current_subscription_id = e.id
			  WHERE s.id = $1`
	row := s.DB.QueryRowContext(ctx, query, subscriberID)

	var entry models.SubscriptionEntry
	err := row.Scan(&entry.ID, &entry.SubscriberID, &entry.PackName, &entry.PackPrice,
		&entry.StartDate, &entry.EndDate, &entry.DurationMonths, &entry.Status, &entry.SubscribedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("active subscription for subscriber", subscriberID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &entry, nil
}

// ListSubscriptionHistory returns all entries for a subscriber in
// subscription order.
func (s *Storage) ListSubscriptionHistory(ctx context.Context, subscriberID string) ([]*models.SubscriptionEntry, error) {
	const op = "storage.ListSubscriptionHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, pack_name, pack_price, start_date, end_date,
			      duration_months, status, subscribed_at
			  FROM subscription_entries
			  WHERE subscriber_id = $1
			  ORDER BY subscribed_at, id`
	rows, err := s.DB.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionEntry
	for rows.Next() {
		var entry models.SubscriptionEntry
		if err := rows.Scan(&entry.ID, &entry.SubscriberID, &entry.PackName, &entry.PackPrice,
			&entry.StartDate, &entry.EndDate, &entry.DurationMonths, &entry.Status, &entry.SubscribedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CloseActiveSubscription marks the current entry with the given
// terminal status and clears the subscriber's current subscription,
// in one transaction. Returns apperr.ErrNotFound when nothing is
// active.
func (s *Storage) CloseActiveSubscription(ctx context.Context, subscriberID, terminalStatus string) (*models.SubscriptionEntry, error) {
	const op = "storage.CloseActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var entry models.SubscriptionEntry
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT e.id, e.subscriber_id, e.pack_name, e.pack_price, e.start_date,
			     e.end_date, e.duration_months, e.status, e.subscribed_at
			 FROM subscription_entries e
			 JOIN subscribers s ON s.current_subscription_id = e.id
			 WHERE s.id = $1
			 FOR UPDATE OF e, s`, subscriberID)
		err := row.Scan(&entry.ID, &entry.SubscriberID, &entry.PackName, &entry.PackPrice,
			&entry.StartDate, &entry.EndDate, &entry.DurationMonths, &entry.Status, &entry.SubscribedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("active subscription for subscriber", subscriberID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE subscription_entries SET status = $1 WHERE id = $2`,
			terminalStatus, entry.ID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE subscribers
			 SET current_subscription_id = NULL, current_pack = '', next_billing_date = NULL
			 WHERE id = $1`, subscriberID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entry.Status = terminalStatus
	return &entry, nil
}

// ExpireDueSubscriptions transitions every current entry whose end
// date has passed to expired and clears the owning subscriber's
// current subscription. Idempotent: entries already expired are no
// longer referenced as current and are not matched again.
func (s *Storage) ExpireDueSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	const op = "storage.ExpireDueSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var affected []string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT s.id, e.id
			 FROM subscribers s
			 JOIN subscription_entries e ON e.id = s.current_subscription_id
			 WHERE e.end_date <= $1
			 FOR UPDATE OF e, s`, now)
		if err != nil {
			return err
		}
		type due struct{ subscriberID, entryID string }
		var dues []due
		for rows.Next() {
			var d due
			if err := rows.Scan(&d.subscriberID, &d.entryID); err != nil {
				_ = rows.Close()
				return err
			}
			dues = append(dues, d)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if err := rows.Close(); err != nil {
			return err
		}

		for _, d := range dues {
			if _, err := tx.ExecContext(ctx,
				`UPDATE subscription_entries SET status = $1 WHERE id = $2`,
				models.SubscriptionStatusExpired, d.entryID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE subscribers
				 SET current_subscription_id = NULL, current_pack = '', next_billing_date = NULL
				 WHERE id = $1`, d.subscriberID); err != nil {
				return err
			}
			affected = append(affected, d.subscriberID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}
