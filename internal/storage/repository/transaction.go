package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/models"
)

// AppendTransaction inserts a ledger entry and applies its signed
// balance effect to the owning subscriber in one transaction. The
// subscriber row is locked first, so two concurrent appends can never
// lose an update.
func (s *Storage) AppendTransaction(ctx context.Context, t models.Transaction, effect decimal.Decimal) error {
	const op = "storage.AppendTransaction"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM subscribers WHERE id = $1 FOR UPDATE`, t.SubscriberID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("subscriber", t.SubscriberID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, subscriber_id, type, amount, description, date)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, t.SubscriberID, t.Type, t.Amount, t.Description, t.Date); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE subscribers SET balance = balance + $1 WHERE id = $2`,
			effect, t.SubscriberID)
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

// GetTransaction returns a single ledger entry by id.
func (s *Storage) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	const op = "storage.GetTransaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, type, amount, description, date
			  FROM transactions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var t models.Transaction
	err := row.Scan(&t.ID, &t.SubscriberID, &t.Type, &t.Amount, &t.Description, &t.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// ReplaceTransaction overwrites the type, amount and description of a
// ledger entry and adjusts the subscriber balance by the net effect:
// the old contribution is reversed, the new one applied, as a single
// update. Everything runs in one database transaction with the
// subscriber row locked. Returns the resulting entry.
func (s *Storage) ReplaceTransaction(ctx context.Context, id string, newType string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	const op = "storage.ReplaceTransaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var result models.Transaction
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var old models.Transaction
		row := tx.QueryRowContext(ctx,
			`SELECT t.id, t.subscriber_id, t.type, t.amount, t.description, t.date
			 FROM transactions t
			 JOIN subscribers s ON s.id = t.subscriber_id
			 WHERE t.id = $1
			 FOR UPDATE OF t, s`, id)
		err := row.Scan(&old.ID, &old.SubscriberID, &old.Type, &old.Amount, &old.Description, &old.Date)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("transaction", id)
		}
		if err != nil {
			return err
		}

		result = old
		result.Type = newType
		result.Amount = amount
		result.Description = description

		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET type = $1, amount = $2, description = $3 WHERE id = $4`,
			result.Type, result.Amount, result.Description, result.ID); err != nil {
			return err
		}

		netAdjustment := result.BalanceEffect().Sub(old.BalanceEffect())
		_, err = tx.ExecContext(ctx,
			`UPDATE subscribers SET balance = balance + $1 WHERE id = $2`,
			netAdjustment, old.SubscriberID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListTransactions returns a subscriber's ledger, oldest first.
func (s *Storage) ListTransactions(ctx context.Context, subscriberID string) ([]*models.Transaction, error) {
	const op = "storage.ListTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, type, amount, description, date
			  FROM transactions
			  WHERE subscriber_id = $1
			  ORDER BY date, id`
	rows, err := s.DB.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.SubscriberID, &t.Type, &t.Amount, &t.Description, &t.Date); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
