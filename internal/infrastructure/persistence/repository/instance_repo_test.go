package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
	"github.com/soglasovach/soglasovach/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations("../../../../migrations"))

	return db
}

// seedInstance creates the user/template/step rows an instance depends on and
// returns a freshly persisted in-progress instance.
func seedInstance(t *testing.T, db *sql.DB) *entity.WorkflowInstance {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	user := &entity.User{Email: "alice@example.com", HashedPassword: "x", IsActive: true}
	require.NoError(t, NewUserRepository(db, logger).Create(ctx, user))

	template := &entity.WorkflowTemplate{Name: "expense"}
	require.NoError(t, NewTemplateRepository(db, logger).Create(ctx, template))

	step := &entity.WorkflowStep{TemplateID: template.ID, Name: "manager", Order: 1}
	require.NoError(t, NewStepRepository(db, logger).Create(ctx, step))

	instance := &entity.WorkflowInstance{
		TemplateID:    template.ID,
		CurrentStepID: &step.ID,
		Status:        workflow.StatusInProgress.String(),
		CreatedByID:   user.ID,
	}
	require.NoError(t, NewInstanceRepository(db, logger).Create(ctx, instance))
	return instance
}

func TestInstanceRepository_UpdateState(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewInstanceRepository(db, zap.NewNop())

	instance := seedInstance(t, db)
	require.Equal(t, int64(0), instance.Version)

	t.Run("matching version commits and bumps the row version", func(t *testing.T) {
		err := repo.UpdateState(ctx, instance.ID, workflow.StatusApproved.String(), nil, 0)
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, instance.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusApproved.String(), stored.Status)
		assert.Nil(t, stored.CurrentStepID)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("stale version is rejected and leaves the row untouched", func(t *testing.T) {
		err := repo.UpdateState(ctx, instance.ID, workflow.StatusRejected.String(), instance.CurrentStepID, 0)
		assert.ErrorIs(t, err, workflow.ErrConflict)

		stored, err := repo.GetByID(ctx, instance.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusApproved.String(), stored.Status)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("unknown instance is a conflict, not a silent no-op", func(t *testing.T) {
		err := repo.UpdateState(ctx, "no-such-instance", workflow.StatusApproved.String(), nil, 0)
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})
}

func TestTemplateRepository_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewTemplateRepository(db, zap.NewNop())

	require.NoError(t, repo.Create(ctx, &entity.WorkflowTemplate{Name: "expense"}))

	err := repo.Create(ctx, &entity.WorkflowTemplate{Name: "expense"})
	assert.ErrorIs(t, err, workflow.ErrConflict)
}
