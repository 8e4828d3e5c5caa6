package workflow

import (
	"context"

	"github.com/soglasovach/soglasovach/internal/domain/entity"
	domainwf "github.com/soglasovach/soglasovach/internal/domain/workflow"
)

// Engine is the approval-workflow state machine. It instantiates runnable
// instances from templates, validates actor authorization per step, applies
// approve/reject transitions and terminates the run with a final status.
//
// Every mutating operation returns a fully hydrated snapshot of the instance.
type Engine interface {
	// Instantiate creates a new instance seeded at the template's first step
	// by order. Listed attachments are rebound to the new instance; missing
	// attachment ids are silently skipped. No history entry is written for
	// instantiation itself.
	Instantiate(ctx context.Context, templateID, creatorID string, attachmentIDs []string) (*entity.InstanceView, error)

	// Advance applies an approve/reject action taken by actorID against the
	// instance's current step. The history entry records the step the action
	// was taken on and is written before the state mutation, in the same
	// transaction.
	Advance(ctx context.Context, instanceID, actorID string, action domainwf.Action, comment string) (*entity.InstanceView, error)

	// GetInstance returns the hydrated snapshot of one instance
	GetInstance(ctx context.Context, instanceID string) (*entity.InstanceView, error)

	// ListInstances returns bare instances with pagination
	ListInstances(ctx context.Context, limit, offset int) ([]*entity.WorkflowInstance, error)
}
