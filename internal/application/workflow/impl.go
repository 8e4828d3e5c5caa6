package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/port"
	"github.com/soglasovach/soglasovach/internal/domain/entity"
	domainwf "github.com/soglasovach/soglasovach/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	templateRepo   port.TemplateRepository
	stepRepo       port.StepRepository
	instanceRepo   port.InstanceRepository
	historyRepo    port.HistoryRepository
	attachmentRepo port.AttachmentRepository
	userRepo       port.UserRepository
	txManager      port.TransactionManager
	logger         *zap.Logger
}

// NewEngine creates a new workflow engine
func NewEngine(
	templateRepo port.TemplateRepository,
	stepRepo port.StepRepository,
	instanceRepo port.InstanceRepository,
	historyRepo port.HistoryRepository,
	attachmentRepo port.AttachmentRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) Engine {
	return &engineImpl{
		templateRepo:   templateRepo,
		stepRepo:       stepRepo,
		instanceRepo:   instanceRepo,
		historyRepo:    historyRepo,
		attachmentRepo: attachmentRepo,
		userRepo:       userRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

// Instantiate creates a new workflow instance from a template
func (e *engineImpl) Instantiate(ctx context.Context, templateID, creatorID string, attachmentIDs []string) (*entity.InstanceView, error) {
	template, err := e.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template %s", domainwf.ErrNotFound, templateID)
	}

	steps, err := e.stepRepo.ListByTemplateID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: template %s", domainwf.ErrInvalidTemplate, templateID)
	}
	firstStep := steps[0]

	instance := &entity.WorkflowInstance{
		TemplateID:    templateID,
		CurrentStepID: &firstStep.ID,
		Status:        domainwf.StatusInProgress.String(),
		CreatedByID:   creatorID,
	}

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.instanceRepo.Create(txCtx, instance); err != nil {
			return err
		}

		for _, attachmentID := range attachmentIDs {
			attachment, err := e.attachmentRepo.GetByID(txCtx, attachmentID)
			if err != nil {
				return err
			}
			if attachment == nil {
				// Unknown attachment ids are skipped, not an error.
				continue
			}
			if err := e.attachmentRepo.BindToInstance(txCtx, attachment.ID, instance.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Instance created",
		zap.String("instance_id", instance.ID),
		zap.String("template_id", templateID),
		zap.String("first_step_id", firstStep.ID),
		zap.String("created_by", creatorID))

	return e.hydrate(ctx, instance.ID)
}

// Advance applies one approve/reject action to an in-progress instance
func (e *engineImpl) Advance(ctx context.Context, instanceID, actorID string, action domainwf.Action, comment string) (*entity.InstanceView, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("unsupported workflow action %q", action)
	}

	instance, err := e.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, fmt.Errorf("%w: instance %s", domainwf.ErrNotFound, instanceID)
	}

	if domainwf.Status(instance.Status).IsTerminal() {
		return nil, fmt.Errorf("%w: instance %s is already %s", domainwf.ErrInvalidState, instanceID, instance.Status)
	}
	if instance.CurrentStepID == nil {
		return nil, fmt.Errorf("%w: instance %s has no current step", domainwf.ErrInvalidState, instanceID)
	}

	currentStep, err := e.stepRepo.GetByID(ctx, *instance.CurrentStepID)
	if err != nil {
		return nil, err
	}
	if currentStep == nil {
		return nil, fmt.Errorf("%w: instance %s points at missing step %s",
			domainwf.ErrInvalidState, instanceID, *instance.CurrentStepID)
	}

	// Authorization precedes every side effect: an unauthorized attempt
	// leaves no history entry and no state change.
	if currentStep.AssigneeID != nil && *currentStep.AssigneeID != actorID {
		return nil, fmt.Errorf("%w: user %s is not the assignee of step %s",
			domainwf.ErrForbidden, actorID, currentStep.ID)
	}

	newStatus, newStepID, err := e.nextState(ctx, instance, currentStep, action)
	if err != nil {
		return nil, err
	}

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// History first, recording the step the action was taken on.
		entry := &entity.HistoryEntry{
			InstanceID: instance.ID,
			StepID:     currentStep.ID,
			UserID:     actorID,
			Action:     action.String(),
			Comment:    comment,
		}
		if err := e.historyRepo.Create(txCtx, entry); err != nil {
			return err
		}

		// The version check makes the whole advance an atomic
		// read-modify-write: a concurrent advance that committed first
		// surfaces here as ErrConflict and rolls back the history entry.
		return e.instanceRepo.UpdateState(txCtx, instance.ID, newStatus, newStepID, instance.Version)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Instance advanced",
		zap.String("instance_id", instance.ID),
		zap.String("action", action.String()),
		zap.String("step_id", currentStep.ID),
		zap.String("actor_id", actorID),
		zap.String("new_status", newStatus))

	return e.hydrate(ctx, instance.ID)
}

// nextState computes the transition without applying it
func (e *engineImpl) nextState(ctx context.Context, instance *entity.WorkflowInstance, currentStep *entity.WorkflowStep, action domainwf.Action) (string, *string, error) {
	if action == domainwf.ActionReject {
		// The rejected instance stops advancing but keeps the pointer to the
		// step it was rejected at.
		return domainwf.StatusRejected.String(), instance.CurrentStepID, nil
	}

	steps, err := e.stepRepo.ListByTemplateID(ctx, instance.TemplateID)
	if err != nil {
		return "", nil, err
	}

	index := -1
	for i, step := range steps {
		if step.ID == currentStep.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return "", nil, fmt.Errorf("%w: step %s does not belong to template %s",
			domainwf.ErrInvalidState, currentStep.ID, instance.TemplateID)
	}

	if index+1 < len(steps) {
		return domainwf.StatusInProgress.String(), &steps[index+1].ID, nil
	}
	return domainwf.StatusApproved.String(), nil, nil
}

// GetInstance returns the hydrated snapshot of one instance
func (e *engineImpl) GetInstance(ctx context.Context, instanceID string) (*entity.InstanceView, error) {
	return e.hydrate(ctx, instanceID)
}

// ListInstances returns bare instances with pagination
func (e *engineImpl) ListInstances(ctx context.Context, limit, offset int) ([]*entity.WorkflowInstance, error) {
	return e.instanceRepo.List(ctx, limit, offset)
}

// hydrate assembles the full instance snapshot: template with steps, current
// step, creator, ordered history with resolved users, and attachments.
func (e *engineImpl) hydrate(ctx context.Context, instanceID string) (*entity.InstanceView, error) {
	instance, err := e.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, fmt.Errorf("%w: instance %s", domainwf.ErrNotFound, instanceID)
	}

	view := &entity.InstanceView{
		WorkflowInstance: *instance,
		History:          []*entity.HistoryRecord{},
		Attachments:      []*entity.Attachment{},
	}

	template, err := e.templateRepo.GetByID(ctx, instance.TemplateID)
	if err != nil {
		return nil, err
	}
	if template != nil {
		steps, err := e.stepRepo.ListByTemplateID(ctx, template.ID)
		if err != nil {
			return nil, err
		}
		template.Steps = steps
		view.Template = template

		if instance.CurrentStepID != nil {
			for _, step := range steps {
				if step.ID == *instance.CurrentStepID {
					view.CurrentStep = step
					break
				}
			}
		}
	}

	entries, err := e.historyRepo.GetByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	userIDs := []string{instance.CreatedByID}
	for _, entry := range entries {
		userIDs = append(userIDs, entry.UserID)
	}
	users, err := e.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	view.CreatedBy = users[instance.CreatedByID]

	for _, entry := range entries {
		view.History = append(view.History, &entity.HistoryRecord{
			HistoryEntry: *entry,
			User:         users[entry.UserID],
		})
	}

	attachments, err := e.attachmentRepo.GetByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if attachments != nil {
		view.Attachments = attachments
	}

	return view, nil
}

// Verify interface compliance
var _ Engine = (*engineImpl)(nil)
