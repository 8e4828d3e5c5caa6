package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/port"
	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
	"github.com/soglasovach/soglasovach/internal/infrastructure/persistence/sqlite"
)

// InstanceRepository implements port.InstanceRepository
type InstanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInstanceRepository creates a new instance repository
func NewInstanceRepository(db *sql.DB, logger *zap.Logger) port.InstanceRepository {
	return &InstanceRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new workflow instance
func (r *InstanceRepository) Create(ctx context.Context, instance *entity.WorkflowInstance) error {
	if instance.ID == "" {
		instance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	if instance.UpdatedAt.IsZero() {
		instance.UpdatedAt = now
	}

	query := `
		INSERT INTO workflow_instances (
			id, template_id, current_step_id, status, created_by_id,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		instance.ID,
		instance.TemplateID,
		instance.CurrentStepID,
		instance.Status,
		instance.CreatedByID,
		instance.Version,
		instance.CreatedAt,
		instance.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create instance", zap.Error(err))
		return fmt.Errorf("failed to create instance: %w", err)
	}

	return nil
}

// GetByID retrieves a workflow instance by ID
func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*entity.WorkflowInstance, error) {
	query := `
		SELECT id, template_id, current_step_id, status, created_by_id,
			version, created_at, updated_at
		FROM workflow_instances
		WHERE id = ?
	`

	var instance entity.WorkflowInstance
	var currentStepID sql.NullString

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&instance.ID,
		&instance.TemplateID,
		&currentStepID,
		&instance.Status,
		&instance.CreatedByID,
		&instance.Version,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get instance", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	if currentStepID.Valid {
		instance.CurrentStepID = &currentStepID.String
	}

	return &instance, nil
}

// UpdateState applies a transition with an optimistic version check. The row
// is updated only when the stored version still equals expectedVersion; a
// stale update returns workflow.ErrConflict so the caller can reread and
// retry the whole operation.
func (r *InstanceRepository) UpdateState(ctx context.Context, id string, status string, currentStepID *string, expectedVersion int64) error {
	query := `
		UPDATE workflow_instances
		SET status = ?, current_step_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		status,
		currentStepID,
		time.Now().UTC(),
		id,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update instance state", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update instance state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: instance %s was modified concurrently", workflow.ErrConflict, id)
	}

	return nil
}

// List retrieves workflow instances with pagination, newest first
func (r *InstanceRepository) List(ctx context.Context, limit, offset int) ([]*entity.WorkflowInstance, error) {
	query := `
		SELECT id, template_id, current_step_id, status, created_by_id,
			version, created_at, updated_at
		FROM workflow_instances
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list instances", zap.Error(err))
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer rows.Close()

	var instances []*entity.WorkflowInstance
	for rows.Next() {
		var instance entity.WorkflowInstance
		var currentStepID sql.NullString

		if err := rows.Scan(
			&instance.ID,
			&instance.TemplateID,
			&currentStepID,
			&instance.Status,
			&instance.CreatedByID,
			&instance.Version,
			&instance.CreatedAt,
			&instance.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}

		if currentStepID.Valid {
			instance.CurrentStepID = &currentStepID.String
		}
		instances = append(instances, &instance)
	}

	return instances, rows.Err()
}

// Verify interface compliance
var _ port.InstanceRepository = (*InstanceRepository)(nil)
