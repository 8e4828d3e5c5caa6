package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/auth"
	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
)

func TestUserService_Register(t *testing.T) {
	t.Run("stores a hashed password, never the plaintext", func(t *testing.T) {
		var created *entity.User
		userRepo := &mockUserRepo{
			createFunc: func(ctx context.Context, user *entity.User) error {
				user.ID = "user-1"
				created = user
				return nil
			},
		}
		svc := NewUserService(userRepo, zap.NewNop())

		user, err := svc.Register(context.Background(), "alice@example.com", "s3cret", "Alice")
		require.NoError(t, err)

		assert.True(t, user.IsActive)
		require.NotNil(t, created)
		assert.NotEqual(t, "s3cret", created.HashedPassword)
		assert.True(t, auth.VerifyPassword(created.HashedPassword, "s3cret"))
	})

	t.Run("duplicate email surfaces as conflict", func(t *testing.T) {
		userRepo := &mockUserRepo{
			createFunc: func(ctx context.Context, user *entity.User) error {
				return fmt.Errorf("%w: email %q", workflow.ErrConflict, user.Email)
			},
		}
		svc := NewUserService(userRepo, zap.NewNop())

		_, err := svc.Register(context.Background(), "alice@example.com", "s3cret", "Alice")
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	hashed, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		user     *entity.User
		wantErr  error
	}{
		{
			name:     "valid credentials",
			password: "s3cret",
			user:     &entity.User{ID: "user-1", Email: "alice@example.com", HashedPassword: hashed, IsActive: true},
		},
		{
			name:     "unknown email",
			password: "s3cret",
			user:     nil,
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			password: "nope",
			user:     &entity.User{ID: "user-1", HashedPassword: hashed, IsActive: true},
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			password: "s3cret",
			user:     &entity.User{ID: "user-1", HashedPassword: hashed, IsActive: false},
			wantErr:  auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepo{
				getByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
					return tt.user, nil
				},
			}
			svc := NewUserService(userRepo, zap.NewNop())

			user, err := svc.Authenticate(context.Background(), "alice@example.com", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", user.ID)
		})
	}
}

func TestUserService_GetByID(t *testing.T) {
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			return nil, nil
		},
	}
	svc := NewUserService(userRepo, zap.NewNop())

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}
