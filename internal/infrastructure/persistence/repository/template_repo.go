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

// TemplateRepository implements port.TemplateRepository
type TemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB, logger *zap.Logger) port.TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new workflow template. Fails with workflow.ErrConflict
// when the name is already taken.
func (r *TemplateRepository) Create(ctx context.Context, template *entity.WorkflowTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO workflow_templates (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		template.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: template name %q already exists", workflow.ErrConflict, template.Name)
		}
		r.logger.Error("Failed to create template", zap.Error(err))
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// GetByID retrieves a template by ID
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*entity.WorkflowTemplate, error) {
	return r.getOne(ctx, "id", id)
}

// GetByName retrieves a template by its unique name
func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*entity.WorkflowTemplate, error) {
	return r.getOne(ctx, "name", name)
}

func (r *TemplateRepository) getOne(ctx context.Context, column, value string) (*entity.WorkflowTemplate, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, created_at
		FROM workflow_templates
		WHERE %s = ?
	`, column)

	var template entity.WorkflowTemplate
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, value).Scan(
		&template.ID,
		&template.Name,
		&template.Description,
		&template.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get template", zap.String(column, value), zap.Error(err))
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &template, nil
}

// List retrieves templates with pagination, newest first
func (r *TemplateRepository) List(ctx context.Context, limit, offset int) ([]*entity.WorkflowTemplate, error) {
	query := `
		SELECT id, name, description, created_at
		FROM workflow_templates
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*entity.WorkflowTemplate
	for rows.Next() {
		var template entity.WorkflowTemplate
		if err := rows.Scan(
			&template.ID,
			&template.Name,
			&template.Description,
			&template.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, &template)
	}

	return templates, rows.Err()
}

// Verify interface compliance
var _ port.TemplateRepository = (*TemplateRepository)(nil)
