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

// HistoryRepository implements port.HistoryRepository. The ledger is
// append-only: there are no update or delete operations.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a history entry
func (r *HistoryRepository) Create(ctx context.Context, entry *entity.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO workflow_history (id, instance_id, step_id, user_id, action, comment, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		entry.ID,
		entry.InstanceID,
		entry.StepID,
		entry.UserID,
		entry.Action,
		entry.Comment,
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry", zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

// GetByInstanceID retrieves all history entries for an instance sorted by
// timestamp ascending, ties broken by insertion order.
func (r *HistoryRepository) GetByInstanceID(ctx context.Context, instanceID string) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT id, instance_id, step_id, user_id, action, comment, timestamp
		FROM workflow_history
		WHERE instance_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, instanceID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.String("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var entry entity.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.InstanceID,
			&entry.StepID,
			&entry.UserID,
			&entry.Action,
			&entry.Comment,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
