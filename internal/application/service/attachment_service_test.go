package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
)

func TestAttachmentService_Upload(t *testing.T) {
	t.Run("stores bytes and registers metadata", func(t *testing.T) {
		store := &mockObjectStore{}
		var created *entity.Attachment
		attachmentRepo := &mockAttachmentRepo{
			createFunc: func(ctx context.Context, attachment *entity.Attachment) error {
				attachment.ID = "att-1"
				created = attachment
				return nil
			},
		}
		svc := NewAttachmentService(attachmentRepo, &mockInstanceRepo{}, store, zap.NewNop())

		attachment, err := svc.Upload(context.Background(), "receipt.pdf", "application/pdf",
			[]byte("pdf-bytes"), "user-1", nil)
		require.NoError(t, err)

		assert.Equal(t, "att-1", attachment.ID)
		assert.Nil(t, attachment.InstanceID)
		require.NotNil(t, created)
		assert.True(t, strings.HasSuffix(created.StoragePath, "/receipt.pdf"))
		assert.Equal(t, []byte("pdf-bytes"), store.stored[created.StoragePath])
	})

	t.Run("store failure leaves no metadata behind", func(t *testing.T) {
		store := &mockObjectStore{
			putFunc: func(ctx context.Context, path string, content []byte, contentType string) error {
				return fmt.Errorf("disk full")
			},
		}
		registered := false
		attachmentRepo := &mockAttachmentRepo{
			createFunc: func(ctx context.Context, attachment *entity.Attachment) error {
				registered = true
				return nil
			},
		}
		svc := NewAttachmentService(attachmentRepo, &mockInstanceRepo{}, store, zap.NewNop())

		_, err := svc.Upload(context.Background(), "receipt.pdf", "application/pdf",
			[]byte("pdf-bytes"), "user-1", nil)
		assert.Error(t, err)
		assert.False(t, registered)
	})

	t.Run("binding to an unknown instance fails", func(t *testing.T) {
		instanceRepo := &mockInstanceRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.WorkflowInstance, error) {
				return nil, nil
			},
		}
		svc := NewAttachmentService(&mockAttachmentRepo{}, instanceRepo, &mockObjectStore{}, zap.NewNop())

		instanceID := "missing"
		_, err := svc.Upload(context.Background(), "receipt.pdf", "application/pdf",
			[]byte("pdf-bytes"), "user-1", &instanceID)
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})
}

func TestAttachmentService_Download(t *testing.T) {
	t.Run("returns metadata and content", func(t *testing.T) {
		attachmentRepo := &mockAttachmentRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Attachment, error) {
				return &entity.Attachment{ID: id, FileName: "receipt.pdf", StoragePath: "abc/receipt.pdf"}, nil
			},
		}
		store := &mockObjectStore{stored: map[string][]byte{"abc/receipt.pdf": []byte("pdf-bytes")}}
		svc := NewAttachmentService(attachmentRepo, &mockInstanceRepo{}, store, zap.NewNop())

		attachment, content, err := svc.Download(context.Background(), "att-1")
		require.NoError(t, err)
		assert.Equal(t, "receipt.pdf", attachment.FileName)
		assert.Equal(t, []byte("pdf-bytes"), content)
	})

	t.Run("unknown attachment", func(t *testing.T) {
		svc := NewAttachmentService(&mockAttachmentRepo{}, &mockInstanceRepo{}, &mockObjectStore{}, zap.NewNop())

		_, _, err := svc.Download(context.Background(), "missing")
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})
}

func TestAttachmentService_BindToInstance(t *testing.T) {
	t.Run("unknown instance", func(t *testing.T) {
		instanceRepo := &mockInstanceRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.WorkflowInstance, error) {
				return nil, nil
			},
		}
		svc := NewAttachmentService(&mockAttachmentRepo{}, instanceRepo, &mockObjectStore{}, zap.NewNop())

		err := svc.BindToInstance(context.Background(), "att-1", "missing")
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})

	t.Run("delegates to the repository", func(t *testing.T) {
		bound := false
		attachmentRepo := &mockAttachmentRepo{
			bindToInstanceFunc: func(ctx context.Context, id, instanceID string) error {
				bound = true
				assert.Equal(t, "att-1", id)
				assert.Equal(t, "inst-1", instanceID)
				return nil
			},
		}
		svc := NewAttachmentService(attachmentRepo, &mockInstanceRepo{}, &mockObjectStore{}, zap.NewNop())

		err := svc.BindToInstance(context.Background(), "att-1", "inst-1")
		require.NoError(t, err)
		assert.True(t, bound)
	})
}
