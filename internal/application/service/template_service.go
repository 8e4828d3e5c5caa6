package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/port"
	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
)

// StepInput carries caller-supplied step data. Order is a sort key only:
// duplicates and gaps are allowed.
type StepInput struct {
	Name        string
	Description string
	Order       int
	AssigneeID  *string
}

// TemplateService is the template store: pure storage with a uniqueness
// constraint on name. No transition logic lives here.
type TemplateService interface {
	CreateTemplate(ctx context.Context, name, description string, steps []StepInput) (*entity.WorkflowTemplate, error)
	GetTemplate(ctx context.Context, id string) (*entity.WorkflowTemplate, error)
	GetTemplateByName(ctx context.Context, name string) (*entity.WorkflowTemplate, error)
	ListTemplates(ctx context.Context, limit, offset int) ([]*entity.WorkflowTemplate, error)
	AppendStep(ctx context.Context, templateID string, step StepInput) (*entity.WorkflowStep, error)
	GetStep(ctx context.Context, stepID string) (*entity.WorkflowStep, error)
}

type templateService struct {
	templateRepo port.TemplateRepository
	stepRepo     port.StepRepository
	txManager    port.TransactionManager
	logger       *zap.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(
	templateRepo port.TemplateRepository,
	stepRepo port.StepRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		stepRepo:     stepRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateTemplate creates a template together with its initial steps. Fails
// with workflow.ErrConflict when the name is already taken.
func (s *templateService) CreateTemplate(ctx context.Context, name, description string, steps []StepInput) (*entity.WorkflowTemplate, error) {
	for _, step := range steps {
		if step.Order < 0 {
			return nil, fmt.Errorf("step %q: order must be non-negative", step.Name)
		}
	}

	template := &entity.WorkflowTemplate{
		Name:        name,
		Description: description,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.templateRepo.Create(txCtx, template); err != nil {
			return err
		}
		for _, input := range steps {
			step := &entity.WorkflowStep{
				TemplateID:  template.ID,
				Name:        input.Name,
				Description: input.Description,
				Order:       input.Order,
				AssigneeID:  input.AssigneeID,
			}
			if err := s.stepRepo.Create(txCtx, step); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Template created",
		zap.String("template_id", template.ID),
		zap.String("name", template.Name),
		zap.Int("steps", len(steps)))

	return s.GetTemplate(ctx, template.ID)
}

// GetTemplate returns a template with its steps in stable order
func (s *templateService) GetTemplate(ctx context.Context, id string) (*entity.WorkflowTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template %s", workflow.ErrNotFound, id)
	}
	return s.withSteps(ctx, template)
}

// GetTemplateByName returns a template by its unique name, with steps
func (s *templateService) GetTemplateByName(ctx context.Context, name string) (*entity.WorkflowTemplate, error) {
	template, err := s.templateRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template %q", workflow.ErrNotFound, name)
	}
	return s.withSteps(ctx, template)
}

// ListTemplates returns templates with pagination. Steps are not hydrated on
// list reads.
func (s *templateService) ListTemplates(ctx context.Context, limit, offset int) ([]*entity.WorkflowTemplate, error) {
	return s.templateRepo.List(ctx, limit, offset)
}

// AppendStep adds a step to an existing template
func (s *templateService) AppendStep(ctx context.Context, templateID string, input StepInput) (*entity.WorkflowStep, error) {
	if input.Order < 0 {
		return nil, fmt.Errorf("step %q: order must be non-negative", input.Name)
	}

	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template %s", workflow.ErrNotFound, templateID)
	}

	step := &entity.WorkflowStep{
		TemplateID:  templateID,
		Name:        input.Name,
		Description: input.Description,
		Order:       input.Order,
		AssigneeID:  input.AssigneeID,
	}
	if err := s.stepRepo.Create(ctx, step); err != nil {
		return nil, err
	}

	s.logger.Info("Step appended",
		zap.String("template_id", templateID),
		zap.String("step_id", step.ID),
		zap.Int("order", step.Order))

	return step, nil
}

// GetStep returns a single step by ID
func (s *templateService) GetStep(ctx context.Context, stepID string) (*entity.WorkflowStep, error) {
	step, err := s.stepRepo.GetByID(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, fmt.Errorf("%w: step %s", workflow.ErrNotFound, stepID)
	}
	return step, nil
}

func (s *templateService) withSteps(ctx context.Context, template *entity.WorkflowTemplate) (*entity.WorkflowTemplate, error) {
	steps, err := s.stepRepo.ListByTemplateID(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	template.Steps = steps
	return template, nil
}
