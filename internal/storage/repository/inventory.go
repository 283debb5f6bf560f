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

// CreateSTB adds a set-top box to inventory in stock.
func (s *Storage) CreateSTB(ctx context.Context, stb models.STB) (int, error) {
	const op = "storage.CreateSTB"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO stbs (serial_number, model, status, subscriber_id)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (serial_number) DO NOTHING
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, stb.SerialNumber, stb.Model, stb.Status, stb.SubscriberID).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.Conflict(fmt.Sprintf("stb %q already exists", stb.SerialNumber))
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSTB returns a set-top box by id.
func (s *Storage) GetSTB(ctx context.Context, id int) (*models.STB, error) {
	const op = "storage.GetSTB"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT id, serial_number, model, status, subscriber_id FROM stbs WHERE id = $1`, id)

	var stb models.STB
	err := row.Scan(&stb.ID, &stb.SerialNumber, &stb.Model, &stb.Status, &stb.SubscriberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("stb", fmt.Sprint(id))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stb, nil
}

// ListSTBs returns the inventory, optionally filtered by status.
func (s *Storage) ListSTBs(ctx context.Context, status string) ([]*models.STB, error) {
	const op = "storage.ListSTBs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, serial_number, model, status, subscriber_id
			  FROM stbs
			  WHERE ($1 = '' OR status = $1)
			  ORDER BY serial_number`
	rows, err := s.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.STB
	for rows.Next() {
		var stb models.STB
		if err := rows.Scan(&stb.ID, &stb.SerialNumber, &stb.Model, &stb.Status, &stb.SubscriberID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &stb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSTBStatus writes the box status and owner after a state
// transition validated by the service layer.
func (s *Storage) UpdateSTBStatus(ctx context.Context, id int, status string, subscriberID *string) (int, error) {
	const op = "storage.UpdateSTBStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE stbs SET status = $1, subscriber_id = $2 WHERE id = $3`,
		status, subscriberID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CreateComplaint opens a complaint and returns its id.
func (s *Storage) CreateComplaint(ctx context.Context, c models.Complaint) (int, error) {
	const op = "storage.CreateComplaint"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO complaints (subscriber_id, title, description, status, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		c.SubscriberID, c.Title, c.Description, c.Status, c.CreatedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListComplaints returns complaints, optionally narrowed by
// subscriber and status.
func (s *Storage) ListComplaints(ctx context.Context, subscriberID, status string) ([]*models.Complaint, error) {
	const op = "storage.ListComplaints"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_id, title, description, status, created_at, resolved_at
			  FROM complaints
			  WHERE ($1 = '' OR subscriber_id::text = $1)
			    AND ($2 = '' OR status = $2)
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, subscriberID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Complaint
	for rows.Next() {
		var c models.Complaint
		if err := rows.Scan(&c.ID, &c.SubscriberID, &c.Title, &c.Description,
			&c.Status, &c.CreatedAt, &c.ResolvedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateComplaintStatus transitions a complaint; resolvedAt is set
// only for the resolved status.
func (s *Storage) UpdateComplaintStatus(ctx context.Context, id int, status string, resolvedAt *time.Time) (int, error) {
	const op = "storage.UpdateComplaintStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE complaints SET status = $1, resolved_at = $2 WHERE id = $3`,
		status, resolvedAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListRegions returns all service regions ordered by name.
func (s *Storage) ListRegions(ctx context.Context) ([]*models.Region, error) {
	const op = "storage.ListRegions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Region
	for rows.Next() {
		var r models.Region
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCompanySettings returns the single-row company profile, zero
// values when unset.
func (s *Storage) GetCompanySettings(ctx context.Context) (*models.CompanySettings, error) {
	const op = "storage.GetCompanySettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT name, address, phone, email FROM company_settings LIMIT 1`)

	var cs models.CompanySettings
	err := row.Scan(&cs.Name, &cs.Address, &cs.Phone, &cs.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.CompanySettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cs, nil
}
