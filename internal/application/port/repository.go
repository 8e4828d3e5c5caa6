package port

import (
	"context"

	"github.com/soglasovach/soglasovach/internal/domain/entity"
)

// Read methods return (nil, nil) when the row does not exist; callers decide
// whether a missing row is an error.

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error)
}

// TemplateRepository defines persistence operations for WorkflowTemplate
type TemplateRepository interface {
	Create(ctx context.Context, template *entity.WorkflowTemplate) error
	GetByID(ctx context.Context, id string) (*entity.WorkflowTemplate, error)
	GetByName(ctx context.Context, name string) (*entity.WorkflowTemplate, error)
	List(ctx context.Context, limit, offset int) ([]*entity.WorkflowTemplate, error)
}

// StepRepository defines persistence operations for WorkflowStep
type StepRepository interface {
	Create(ctx context.Context, step *entity.WorkflowStep) error
	GetByID(ctx context.Context, id string) (*entity.WorkflowStep, error)

	// ListByTemplateID returns the template's steps sorted by order ascending,
	// ties broken by insertion order so iteration is deterministic.
	ListByTemplateID(ctx context.Context, templateID string) ([]*entity.WorkflowStep, error)
}

// InstanceRepository defines persistence operations for WorkflowInstance
type InstanceRepository interface {
	Create(ctx context.Context, instance *entity.WorkflowInstance) error
	GetByID(ctx context.Context, id string) (*entity.WorkflowInstance, error)
	List(ctx context.Context, limit, offset int) ([]*entity.WorkflowInstance, error)

	// UpdateState applies a transition as an optimistic read-modify-write: the
	// update commits only if the stored version still equals expectedVersion,
	// otherwise workflow.ErrConflict is returned.
	UpdateState(ctx context.Context, id string, status string, currentStepID *string, expectedVersion int64) error
}

// HistoryRepository defines the append-only audit ledger
type HistoryRepository interface {
	Create(ctx context.Context, entry *entity.HistoryEntry) error

	// GetByInstanceID returns entries sorted by timestamp ascending, ties
	// broken by insertion order.
	GetByInstanceID(ctx context.Context, instanceID string) ([]*entity.HistoryEntry, error)
}

// AttachmentRepository defines persistence operations for Attachment metadata
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	GetByID(ctx context.Context, id string) (*entity.Attachment, error)
	GetByInstanceID(ctx context.Context, instanceID string) ([]*entity.Attachment, error)
	BindToInstance(ctx context.Context, id, instanceID string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
