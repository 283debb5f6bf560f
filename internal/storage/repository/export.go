package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cabletrack/cabletrack/internal/models"
)

// ListAllTransactions returns the full ledger across subscribers,
// oldest first, for exports.
func (s *Storage) ListAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	const op = "storage.ListAllTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, type, amount, description, date
			  FROM transactions
			  ORDER BY date, id`
	rows, err := s.DB.QueryContext(ctx, query)
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

// ListAllSubscriptionEntries returns every subscription entry ordered
// by subscriber and subscription time, for exports.
func (s *Storage) ListAllSubscriptionEntries(ctx context.Context) ([]*models.SubscriptionEntry, error) {
	const op = "storage.ListAllSubscriptionEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, pack_name, pack_price, start_date, end_date,
			      duration_months, status, subscribed_at
			  FROM subscription_entries
			  ORDER BY subscriber_id, subscribed_at, id`
	rows, err := s.DB.QueryContext(ctx, query)
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

// ListAllBillingHistory returns all billing audit records, for
// exports.
func (s *Storage) ListAllBillingHistory(ctx context.Context) ([]*models.BillingHistoryEntry, error) {
	const op = "storage.ListAllBillingHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, billing_cycle, amount, due_date, generated_at,
			      transaction_id, status
			  FROM billing_history
			  ORDER BY generated_at, id`
	rows, err := s.DB.QueryContext(ctx, query)
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

// RestoreSnapshot replaces all business data with the given snapshot
// contents in one transaction. Tables are truncated in dependency
// order, then repopulated; current_subscription_id is linked after the
// entries exist.
func (s *Storage) RestoreSnapshot(ctx context.Context,
	packs []*models.Pack,
	regions []*models.Region,
	subscribers []*models.Subscriber,
	entries []*models.SubscriptionEntry,
	transactions []*models.Transaction,
	billing []*models.BillingHistoryEntry,
	complaints []*models.Complaint,
	stbs []*models.STB,
	settings *models.CompanySettings,
) error {
	const op = "storage.RestoreSnapshot"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`TRUNCATE billing_history, transactions, complaints, stbs,
			     subscription_entries, subscribers, packs, regions, company_settings`); err != nil {
			return err
		}

		for _, p := range packs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO packs (id, name, price, active) VALUES ($1, $2, $3, $4)`,
				p.ID, p.Name, p.Price, p.Active); err != nil {
				return err
			}
		}
		for _, r := range regions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO regions (id, name) VALUES ($1, $2)`, r.ID, r.Name); err != nil {
				return err
			}
		}
		for _, sub := range subscribers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO subscribers (id, name, mobile, stb_number, region, balance,
				     current_pack, billing_cycle, next_billing_date, last_billing_date,
				     auto_charge_enabled, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				sub.ID, sub.Name, sub.Mobile, sub.STBNumber, sub.Region, sub.Balance,
				sub.CurrentPack, sub.BillingCycle, sub.NextBillingDate, sub.LastBillingDate,
				sub.AutoChargeEnabled, sub.CreatedAt); err != nil {
				return err
			}
		}
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO subscription_entries (id, subscriber_id, pack_name, pack_price,
				     start_date, end_date, duration_months, status, subscribed_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				e.ID, e.SubscriberID, e.PackName, e.PackPrice, e.StartDate, e.EndDate,
				e.DurationMonths, e.Status, e.SubscribedAt); err != nil {
				return err
			}
			if e.Status == models.SubscriptionStatusActive {
				if _, err := tx.ExecContext(ctx,
					`UPDATE subscribers SET current_subscription_id = $1 WHERE id = $2`,
					e.ID, e.SubscriberID); err != nil {
					return err
				}
			}
		}
		for _, t := range transactions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO transactions (id, subscriber_id, type, amount, description, date)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				t.ID, t.SubscriberID, t.Type, t.Amount, t.Description, t.Date); err != nil {
				return err
			}
		}
		for _, b := range billing {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO billing_history (id, subscriber_id, billing_cycle, amount,
				     due_date, generated_at, transaction_id, status)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				b.ID, b.SubscriberID, b.BillingCycle, b.Amount, b.DueDate,
				b.GeneratedAt, b.TransactionID, b.Status); err != nil {
				return err
			}
		}
		for _, c := range complaints {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO complaints (id, subscriber_id, title, description, status,
				     created_at, resolved_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				c.ID, c.SubscriberID, c.Title, c.Description, c.Status,
				c.CreatedAt, c.ResolvedAt); err != nil {
				return err
			}
		}
		for _, b := range stbs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stbs (id, serial_number, model, status, subscriber_id)
				 VALUES ($1, $2, $3, $4, $5)`,
				b.ID, b.SerialNumber, b.Model, b.Status, b.SubscriberID); err != nil {
				return err
			}
		}
		if settings != nil && settings.Name != "" {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO company_settings (name, address, phone, email)
				 VALUES ($1, $2, $3, $4)`,
				settings.Name, settings.Address, settings.Phone, settings.Email); err != nil {
				return err
			}
		}

		// Serial sequences must move past the restored ids.
		for _, seq := range []string{"packs", "regions", "billing_history", "complaints", "stbs"} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%s', 'id'),
				     COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`, seq, seq)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
