package service

import (
	"context"

	"github.com/soglasovach/soglasovach/internal/domain/entity"
)

// Mock repositories shared by the service tests. Every method delegates to an
// optional func field so individual tests override only what they need.

type mockTemplateRepo struct {
	createFunc    func(ctx context.Context, template *entity.WorkflowTemplate) error
	getByIDFunc   func(ctx context.Context, id string) (*entity.WorkflowTemplate, error)
	getByNameFunc func(ctx context.Context, name string) (*entity.WorkflowTemplate, error)
	listFunc      func(ctx context.Context, limit, offset int) ([]*entity.WorkflowTemplate, error)
}

func (m *mockTemplateRepo) Create(ctx context.Context, template *entity.WorkflowTemplate) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, template)
	}
	template.ID = "tpl-1"
	return nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id string) (*entity.WorkflowTemplate, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.WorkflowTemplate{ID: id, Name: "template"}, nil
}

func (m *mockTemplateRepo) GetByName(ctx context.Context, name string) (*entity.WorkflowTemplate, error) {
	if m.getByNameFunc != nil {
		return m.getByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *mockTemplateRepo) List(ctx context.Context, limit, offset int) ([]*entity.WorkflowTemplate, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.WorkflowTemplate{}, nil
}

type mockStepRepo struct {
	createFunc           func(ctx context.Context, step *entity.WorkflowStep) error
	getByIDFunc          func(ctx context.Context, id string) (*entity.WorkflowStep, error)
	listByTemplateIDFunc func(ctx context.Context, templateID string) ([]*entity.WorkflowStep, error)
}

func (m *mockStepRepo) Create(ctx context.Context, step *entity.WorkflowStep) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, step)
	}
	step.ID = "step-1"
	return nil
}

func (m *mockStepRepo) GetByID(ctx context.Context, id string) (*entity.WorkflowStep, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.WorkflowStep{ID: id}, nil
}

func (m *mockStepRepo) ListByTemplateID(ctx context.Context, templateID string) ([]*entity.WorkflowStep, error) {
	if m.listByTemplateIDFunc != nil {
		return m.listByTemplateIDFunc(ctx, templateID)
	}
	return []*entity.WorkflowStep{}, nil
}

type mockInstanceRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.WorkflowInstance, error)
}

func (m *mockInstanceRepo) Create(ctx context.Context, instance *entity.WorkflowInstance) error {
	instance.ID = "inst-1"
	return nil
}

func (m *mockInstanceRepo) GetByID(ctx context.Context, id string) (*entity.WorkflowInstance, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.WorkflowInstance{ID: id}, nil
}

func (m *mockInstanceRepo) List(ctx context.Context, limit, offset int) ([]*entity.WorkflowInstance, error) {
	return []*entity.WorkflowInstance{}, nil
}

func (m *mockInstanceRepo) UpdateState(ctx context.Context, id string, status string, currentStepID *string, expectedVersion int64) error {
	return nil
}

type mockUserRepo struct {
	createFunc     func(ctx context.Context, user *entity.User) error
	getByIDFunc    func(ctx context.Context, id string) (*entity.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "user-1"
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.User{ID: id, IsActive: true}, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error) {
	return map[string]*entity.User{}, nil
}

type mockAttachmentRepo struct {
	createFunc         func(ctx context.Context, attachment *entity.Attachment) error
	getByIDFunc        func(ctx context.Context, id string) (*entity.Attachment, error)
	bindToInstanceFunc func(ctx context.Context, id, instanceID string) error
}

func (m *mockAttachmentRepo) Create(ctx context.Context, attachment *entity.Attachment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, attachment)
	}
	attachment.ID = "att-1"
	return nil
}

func (m *mockAttachmentRepo) GetByID(ctx context.Context, id string) (*entity.Attachment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) GetByInstanceID(ctx context.Context, instanceID string) ([]*entity.Attachment, error) {
	return []*entity.Attachment{}, nil
}

func (m *mockAttachmentRepo) BindToInstance(ctx context.Context, id, instanceID string) error {
	if m.bindToInstanceFunc != nil {
		return m.bindToInstanceFunc(ctx, id, instanceID)
	}
	return nil
}

type mockObjectStore struct {
	putFunc func(ctx context.Context, path string, content []byte, contentType string) error
	getFunc func(ctx context.Context, path string) ([]byte, error)

	stored map[string][]byte
}

func (m *mockObjectStore) Put(ctx context.Context, path string, content []byte, contentType string) error {
	if m.putFunc != nil {
		return m.putFunc(ctx, path, content, contentType)
	}
	if m.stored == nil {
		m.stored = make(map[string][]byte)
	}
	m.stored[path] = content
	return nil
}

func (m *mockObjectStore) Get(ctx context.Context, path string) ([]byte, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, path)
	}
	return m.stored[path], nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}
