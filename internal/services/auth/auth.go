// Package auth implements operator registration, login and token
// validation.
package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/lib/jwt"
	"github.com/cabletrack/cabletrack/internal/lib/password"
	"github.com/cabletrack/cabletrack/internal/models"
)

// OperatorRepository defines the operator account storage operations.
type OperatorRepository interface {
	RegisterOperator(ctx context.Context, op models.Operator) error
	GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error)
}

// Service handles operator authentication.
type Service struct {
	operators OperatorRepository
	jwtMaker  jwt.Maker
	clk       clock.Clock
	log       *slog.Logger
}

// New creates an auth Service.
func New(operators OperatorRepository, jwtMaker jwt.Maker, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		operators: operators,
		jwtMaker:  jwtMaker,
		clk:       clk,
		log:       log,
	}
}

// Register creates an operator account with a hashed password and the
// default operator role. Returns the new account uid.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	op := models.Operator{
		UID:          uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         "operator",
		CreatedAt:    s.clk.Now(),
	}
	if err := s.operators.RegisterOperator(ctx, op); err != nil {
		return "", err
	}

	s.log.Info("registered operator", slog.String("username", username))
	return op.UID, nil
}

// Login checks the password and issues a signed token.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	op, err := s.operators.GetOperatorByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(op.PasswordHash, rawPassword); err != nil {
		return "", "", apperr.Validation("invalid credentials")
	}
	token, err = s.jwtMaker.GenerateToken(op.Username, op.Role, op.UID)
	if err != nil {
		return "", "", err
	}
	return token, op.Role, nil
}

// ValidateToken verifies a token and returns the operator identity it
// carries.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
