package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
)

func TestTemplateService_CreateTemplate(t *testing.T) {
	t.Run("creates template with steps in one transaction", func(t *testing.T) {
		var createdSteps []*entity.WorkflowStep
		stepRepo := &mockStepRepo{
			createFunc: func(ctx context.Context, step *entity.WorkflowStep) error {
				step.ID = fmt.Sprintf("step-%d", len(createdSteps)+1)
				createdSteps = append(createdSteps, step)
				return nil
			},
			listByTemplateIDFunc: func(ctx context.Context, templateID string) ([]*entity.WorkflowStep, error) {
				return createdSteps, nil
			},
		}
		svc := NewTemplateService(&mockTemplateRepo{}, stepRepo, &mockTxManager{}, zap.NewNop())

		template, err := svc.CreateTemplate(context.Background(), "expense", "expense review",
			[]StepInput{
				{Name: "manager", Order: 1},
				{Name: "director", Order: 2},
			})
		require.NoError(t, err)

		require.Len(t, template.Steps, 2)
		assert.Equal(t, "manager", template.Steps[0].Name)
		assert.Equal(t, "tpl-1", template.Steps[0].TemplateID)
	})

	t.Run("duplicate name surfaces as conflict", func(t *testing.T) {
		templateRepo := &mockTemplateRepo{
			createFunc: func(ctx context.Context, template *entity.WorkflowTemplate) error {
				return fmt.Errorf("%w: template name %q", workflow.ErrConflict, template.Name)
			},
		}
		svc := NewTemplateService(templateRepo, &mockStepRepo{}, &mockTxManager{}, zap.NewNop())

		_, err := svc.CreateTemplate(context.Background(), "expense", "", nil)
		assert.ErrorIs(t, err, workflow.ErrConflict)
	})

	t.Run("negative order is rejected before any write", func(t *testing.T) {
		created := false
		templateRepo := &mockTemplateRepo{
			createFunc: func(ctx context.Context, template *entity.WorkflowTemplate) error {
				created = true
				return nil
			},
		}
		svc := NewTemplateService(templateRepo, &mockStepRepo{}, &mockTxManager{}, zap.NewNop())

		_, err := svc.CreateTemplate(context.Background(), "bad", "",
			[]StepInput{{Name: "manager", Order: -1}})
		assert.Error(t, err)
		assert.False(t, created)
	})

	t.Run("step failure aborts the transaction", func(t *testing.T) {
		stepRepo := &mockStepRepo{
			createFunc: func(ctx context.Context, step *entity.WorkflowStep) error {
				return fmt.Errorf("insert failed")
			},
		}
		rolledBack := false
		txManager := &mockTxManager{
			withTransactionFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
				if err := fn(ctx); err != nil {
					rolledBack = true
					return err
				}
				return nil
			},
		}
		svc := NewTemplateService(&mockTemplateRepo{}, stepRepo, txManager, zap.NewNop())

		_, err := svc.CreateTemplate(context.Background(), "expense", "",
			[]StepInput{{Name: "manager", Order: 1}})
		assert.Error(t, err)
		assert.True(t, rolledBack)
	})
}

func TestTemplateService_GetTemplate(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		templateRepo := &mockTemplateRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.WorkflowTemplate, error) {
				return nil, nil
			},
		}
		svc := NewTemplateService(templateRepo, &mockStepRepo{}, &mockTxManager{}, zap.NewNop())

		_, err := svc.GetTemplate(context.Background(), "missing")
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})

	t.Run("hydrates steps", func(t *testing.T) {
		stepRepo := &mockStepRepo{
			listByTemplateIDFunc: func(ctx context.Context, templateID string) ([]*entity.WorkflowStep, error) {
				return []*entity.WorkflowStep{
					{ID: "step-1", TemplateID: templateID, Order: 1},
					{ID: "step-2", TemplateID: templateID, Order: 2},
				}, nil
			},
		}
		svc := NewTemplateService(&mockTemplateRepo{}, stepRepo, &mockTxManager{}, zap.NewNop())

		template, err := svc.GetTemplate(context.Background(), "tpl-1")
		require.NoError(t, err)
		assert.Len(t, template.Steps, 2)
	})
}

func TestTemplateService_GetTemplateByName(t *testing.T) {
	svc := NewTemplateService(&mockTemplateRepo{}, &mockStepRepo{}, &mockTxManager{}, zap.NewNop())

	_, err := svc.GetTemplateByName(context.Background(), "no-such-template")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestTemplateService_AppendStep(t *testing.T) {
	t.Run("appends to existing template", func(t *testing.T) {
		svc := NewTemplateService(&mockTemplateRepo{}, &mockStepRepo{}, &mockTxManager{}, zap.NewNop())

		step, err := svc.AppendStep(context.Background(), "tpl-1", StepInput{Name: "audit", Order: 9})
		require.NoError(t, err)
		assert.Equal(t, "tpl-1", step.TemplateID)
		assert.Equal(t, 9, step.Order)
	})

	t.Run("unknown template", func(t *testing.T) {
		templateRepo := &mockTemplateRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.WorkflowTemplate, error) {
				return nil, nil
			},
		}
		svc := NewTemplateService(templateRepo, &mockStepRepo{}, &mockTxManager{}, zap.NewNop())

		_, err := svc.AppendStep(context.Background(), "missing", StepInput{Name: "audit", Order: 1})
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})
}

func TestTemplateService_GetStep(t *testing.T) {
	stepRepo := &mockStepRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.WorkflowStep, error) {
			return nil, nil
		},
	}
	svc := NewTemplateService(&mockTemplateRepo{}, stepRepo, &mockTxManager{}, zap.NewNop())

	_, err := svc.GetStep(context.Background(), "missing")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}
