package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/models"
)

// CreatePack inserts a catalog pack and returns its id. Duplicate
// names surface as apperr.ErrConflict.
func (s *Storage) CreatePack(ctx context.Context, pack models.Pack) (int, error) {
	const op = "storage.CreatePack"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO packs (name, price, active)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (name) DO NOTHING
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, pack.Name, pack.Price, pack.Active).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.Conflict(fmt.Sprintf("pack %q already exists", pack.Name))
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPackByName returns a pack by its unique name.
func (s *Storage) GetPackByName(ctx context.Context, name string) (*models.Pack, error) {
	const op = "storage.GetPackByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, active FROM packs WHERE name = $1`
	row := s.DB.QueryRowContext(ctx, query, name)

	var pack models.Pack
	err := row.Scan(&pack.ID, &pack.Name, &pack.Price, &pack.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("pack", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &pack, nil
}

// ListPacks returns the whole catalog ordered by name.
func (s *Storage) ListPacks(ctx context.Context) ([]*models.Pack, error) {
	const op = "storage.ListPacks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, price, active FROM packs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Pack
	for rows.Next() {
		var pack models.Pack
		if err := rows.Scan(&pack.ID, &pack.Name, &pack.Price, &pack.Active); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &pack)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePack overwrites name and price by id, and the active flag when
// the request carries one. Existing subscription entries keep their
// snapshots untouched. Returns the resulting pack.
func (s *Storage) UpdatePack(ctx context.Context, id int, req models.DummyPack) (*models.Pack, error) {
	const op = "storage.UpdatePack"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE packs
			  SET name = $1, price = $2, active = COALESCE($3, active)
			  WHERE id = $4
			  RETURNING id, name, price, active`
	row := s.DB.QueryRowContext(ctx, query, req.Name, req.Price, req.Active, id)

	var pack models.Pack
	err := row.Scan(&pack.ID, &pack.Name, &pack.Price, &pack.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("pack", fmt.Sprint(id))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &pack, nil
}

// GetPackNameByID resolves a pack id to its current name.
func (s *Storage) GetPackNameByID(ctx context.Context, id int) (string, error) {
	const op = "storage.GetPackNameByID"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var name string
	err := s.DB.QueryRowContext(ctx, `SELECT name FROM packs WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NotFound("pack", fmt.Sprint(id))
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// CountSubscribersOnPack reports how many subscribers currently
// reference the pack, used to block catalog deletes.
func (s *Storage) CountSubscribersOnPack(ctx context.Context, name string) (int, error) {
	const op = "storage.CountSubscribersOnPack"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscribers WHERE current_pack = $1`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeletePack removes a pack by id.
func (s *Storage) DeletePack(ctx context.Context, id int) error {
	const op = "storage.DeletePack"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM packs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("pack", fmt.Sprint(id))
	}
	return nil
}
