package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/models"
)

// RegisterOperator stores a new operator account.
func (s *Storage) RegisterOperator(ctx context.Context, operator models.Operator) error {
	const op = "storage.RegisterOperator"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO operators (uid, username, email, password_hash, role, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (username) DO NOTHING
			  RETURNING uid`
	var uid string
	err := s.DB.QueryRowContext(ctx, query,
		operator.UID, operator.Username, operator.Email, operator.PasswordHash,
		operator.Role, operator.CreatedAt).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Conflict(fmt.Sprintf("operator %q already exists", operator.Username))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetOperatorByUsername resolves an operator account for login.
func (s *Storage) GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	const op = "storage.GetOperatorByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, role, created_at
			  FROM operators WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)

	var operator models.Operator
	err := row.Scan(&operator.UID, &operator.Username, &operator.Email,
		&operator.PasswordHash, &operator.Role, &operator.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("operator", username)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &operator, nil
}
