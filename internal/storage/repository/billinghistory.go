package repository

import (
	"context"
	"fmt"

	"github.com/cabletrack/cabletrack/internal/models"
)

// AppendBillingHistory writes one audit record of the auto-billing
// sweep. Records are append-only; nothing updates them later.
func (s *Storage) AppendBillingHistory(ctx context.Context, entry models.BillingHistoryEntry) (int, error) {
	const op = "storage.AppendBillingHistory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO billing_history (subscriber_id, billing_cycle, amount, due_date,
			      generated_at, transaction_id, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		entry.SubscriberID, entry.BillingCycle, entry.Amount, entry.DueDate,
		entry.GeneratedAt, entry.TransactionID, entry.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListBillingHistory returns a subscriber's billing audit records,
// newest first.
func (s *Storage) ListBillingHistory(ctx context.Context, subscriberID string) ([]*models.BillingHistoryEntry, error) {
	const op = "storage.ListBillingHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, billing_cycle, amount, due_date, generated_at,
			      transaction_id, status
			  FROM billing_history
			  WHERE subscriber_id = $1
			  ORDER BY generated_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.BillingHistoryEntry
	for rows.Next() {
		var entry models.BillingHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.SubscriberID, &entry.BillingCycle, &entry.Amount,
			&entry.DueDate, &entry.GeneratedAt, &entry.TransactionID, &entry.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
