package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/port"
	"github.com/soglasovach/soglasovach/internal/auth"
	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
)

// UserService handles registration and credential verification. Token
// issuance lives in the transport layer; this service only resolves users.
type UserService interface {
	Register(ctx context.Context, email, password, fullName string) (*entity.User, error)
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type userService struct {
	userRepo port.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo port.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a new active user. Fails with workflow.ErrConflict when
// the email is already registered.
func (s *userService) Register(ctx context.Context, email, password, fullName string) (*entity.User, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:          email,
		FullName:       fullName,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("email", email))
	return user, nil
}

// Authenticate verifies email/password and returns the matching active user.
// Failures are uniformly auth.ErrInvalidCredentials so callers cannot probe
// which part was wrong.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, auth.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.HashedPassword, password) {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns a user by ID
func (s *userService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", workflow.ErrNotFound, id)
	}
	return user, nil
}
