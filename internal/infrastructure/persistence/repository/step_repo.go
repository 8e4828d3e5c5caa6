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
	"github.com/soglasovach/soglasovach/internal/infrastructure/persistence/sqlite"
)

// StepRepository implements port.StepRepository
type StepRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *sql.DB, logger *zap.Logger) port.StepRepository {
	return &StepRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new workflow step
func (r *StepRepository) Create(ctx context.Context, step *entity.WorkflowStep) error {
	if step.ID == "" {
		step.ID = uuid.NewString()
	}
	if step.CreatedAt.IsZero() {
		step.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO workflow_steps (id, template_id, name, description, step_order, assignee_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		step.ID,
		step.TemplateID,
		step.Name,
		step.Description,
		step.Order,
		step.AssigneeID,
		step.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create step", zap.Error(err))
		return fmt.Errorf("failed to create step: %w", err)
	}

	return nil
}

// GetByID retrieves a step by ID
func (r *StepRepository) GetByID(ctx context.Context, id string) (*entity.WorkflowStep, error) {
	query := `
		SELECT id, template_id, name, description, step_order, assignee_id, created_at
		FROM workflow_steps
		WHERE id = ?
	`

	step, err := scanStep(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get step", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get step: %w", err)
	}

	return step, nil
}

// ListByTemplateID returns the template's steps sorted by step_order
// ascending. Duplicate order values keep insertion order (rowid), so the
// engine's next-step lookup is deterministic.
func (r *StepRepository) ListByTemplateID(ctx context.Context, templateID string) ([]*entity.WorkflowStep, error) {
	query := `
		SELECT id, template_id, name, description, step_order, assignee_id, created_at
		FROM workflow_steps
		WHERE template_id = ?
		ORDER BY step_order ASC, rowid ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, templateID)
	if err != nil {
		r.logger.Error("Failed to list steps", zap.String("template_id", templateID), zap.Error(err))
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*entity.WorkflowStep
	for rows.Next() {
		var step entity.WorkflowStep
		var assigneeID sql.NullString
		if err := rows.Scan(
			&step.ID,
			&step.TemplateID,
			&step.Name,
			&step.Description,
			&step.Order,
			&assigneeID,
			&step.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		if assigneeID.Valid {
			step.AssigneeID = &assigneeID.String
		}
		steps = append(steps, &step)
	}

	return steps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStep(row rowScanner) (*entity.WorkflowStep, error) {
	var step entity.WorkflowStep
	var assigneeID sql.NullString

	err := row.Scan(
		&step.ID,
		&step.TemplateID,
		&step.Name,
		&step.Description,
		&step.Order,
		&assigneeID,
		&step.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assigneeID.Valid {
		step.AssigneeID = &assigneeID.String
	}
	return &step, nil
}

// Verify interface compliance
var _ port.StepRepository = (*StepRepository)(nil)
