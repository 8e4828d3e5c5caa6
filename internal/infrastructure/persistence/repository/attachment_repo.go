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

// AttachmentRepository implements port.AttachmentRepository
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create registers attachment metadata. Fails with workflow.ErrConflict when
// the storage path is already registered.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO attachments (id, filename, content_type, storage_path, uploaded_by_id, instance_id, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		attachment.ID,
		attachment.FileName,
		attachment.ContentType,
		attachment.StoragePath,
		attachment.UploadedByID,
		attachment.InstanceID,
		attachment.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: storage path %q already registered", workflow.ErrConflict, attachment.StoragePath)
		}
		r.logger.Error("Failed to create attachment", zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	return nil
}

// GetByID retrieves an attachment by ID
func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*entity.Attachment, error) {
	query := `
		SELECT id, filename, content_type, storage_path, uploaded_by_id, instance_id, uploaded_at
		FROM attachments
		WHERE id = ?
	`

	var attachment entity.Attachment
	var instanceID sql.NullString

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.FileName,
		&attachment.ContentType,
		&attachment.StoragePath,
		&attachment.UploadedByID,
		&instanceID,
		&attachment.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get attachment", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	if instanceID.Valid {
		attachment.InstanceID = &instanceID.String
	}

	return &attachment, nil
}

// GetByInstanceID retrieves all attachments bound to an instance, oldest first
func (r *AttachmentRepository) GetByInstanceID(ctx context.Context, instanceID string) ([]*entity.Attachment, error) {
	query := `
		SELECT id, filename, content_type, storage_path, uploaded_by_id, instance_id, uploaded_at
		FROM attachments
		WHERE instance_id = ?
		ORDER BY uploaded_at ASC, rowid ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, instanceID)
	if err != nil {
		r.logger.Error("Failed to list attachments", zap.String("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*entity.Attachment
	for rows.Next() {
		var attachment entity.Attachment
		var boundInstanceID sql.NullString

		if err := rows.Scan(
			&attachment.ID,
			&attachment.FileName,
			&attachment.ContentType,
			&attachment.StoragePath,
			&attachment.UploadedByID,
			&boundInstanceID,
			&attachment.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}

		if boundInstanceID.Valid {
			attachment.InstanceID = &boundInstanceID.String
		}
		attachments = append(attachments, &attachment)
	}

	return attachments, rows.Err()
}

// BindToInstance points an existing attachment at an instance
func (r *AttachmentRepository) BindToInstance(ctx context.Context, id, instanceID string) error {
	query := `UPDATE attachments SET instance_id = ? WHERE id = ?`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, instanceID, id)
	if err != nil {
		r.logger.Error("Failed to bind attachment",
			zap.String("id", id),
			zap.String("instance_id", instanceID),
			zap.Error(err))
		return fmt.Errorf("failed to bind attachment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: attachment %s", workflow.ErrNotFound, id)
	}

	return nil
}

// Verify interface compliance
var _ port.AttachmentRepository = (*AttachmentRepository)(nil)
