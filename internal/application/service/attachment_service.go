package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/port"
	"github.com/soglasovach/soglasovach/internal/domain/entity"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
)

// AttachmentService registers attachment metadata and moves bytes through the
// object store. The workflow engine only ever reads the metadata side.
type AttachmentService interface {
	// Upload stores the content in the object store under a fresh opaque path
	// and registers the attachment metadata.
	Upload(ctx context.Context, filename, contentType string, content []byte, uploaderID string, instanceID *string) (*entity.Attachment, error)

	// Register records metadata for content that already lives in the object
	// store under storagePath.
	Register(ctx context.Context, filename, contentType, storagePath, uploaderID string, instanceID *string) (*entity.Attachment, error)

	// Download returns the attachment metadata together with its bytes
	Download(ctx context.Context, id string) (*entity.Attachment, []byte, error)

	Get(ctx context.Context, id string) (*entity.Attachment, error)
	ListForInstance(ctx context.Context, instanceID string) ([]*entity.Attachment, error)
	BindToInstance(ctx context.Context, id, instanceID string) error
}

type attachmentService struct {
	attachmentRepo port.AttachmentRepository
	instanceRepo   port.InstanceRepository
	store          port.ObjectStore
	logger         *zap.Logger
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(
	attachmentRepo port.AttachmentRepository,
	instanceRepo port.InstanceRepository,
	store port.ObjectStore,
	logger *zap.Logger,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		instanceRepo:   instanceRepo,
		store:          store,
		logger:         logger,
	}
}

// Upload stores content and registers the attachment
func (s *attachmentService) Upload(ctx context.Context, filename, contentType string, content []byte, uploaderID string, instanceID *string) (*entity.Attachment, error) {
	storagePath := fmt.Sprintf("%s/%s", uuid.NewString(), filename)

	if err := s.store.Put(ctx, storagePath, content, contentType); err != nil {
		s.logger.Error("Failed to store attachment content",
			zap.String("storage_path", storagePath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store attachment content: %w", err)
	}

	attachment, err := s.Register(ctx, filename, contentType, storagePath, uploaderID, instanceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attachment uploaded",
		zap.String("attachment_id", attachment.ID),
		zap.String("filename", filename),
		zap.Int("size", len(content)))

	return attachment, nil
}

// Register records attachment metadata
func (s *attachmentService) Register(ctx context.Context, filename, contentType, storagePath, uploaderID string, instanceID *string) (*entity.Attachment, error) {
	if instanceID != nil {
		instance, err := s.instanceRepo.GetByID(ctx, *instanceID)
		if err != nil {
			return nil, err
		}
		if instance == nil {
			return nil, fmt.Errorf("%w: instance %s", workflow.ErrNotFound, *instanceID)
		}
	}

	attachment := &entity.Attachment{
		FileName:     filename,
		ContentType:  contentType,
		StoragePath:  storagePath,
		UploadedByID: uploaderID,
		InstanceID:   instanceID,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	return attachment, nil
}

// Download returns metadata and bytes for one attachment
func (s *attachmentService) Download(ctx context.Context, id string) (*entity.Attachment, []byte, error) {
	attachment, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.store.Get(ctx, attachment.StoragePath)
	if err != nil {
		s.logger.Error("Failed to read attachment content",
			zap.String("attachment_id", id),
			zap.String("storage_path", attachment.StoragePath),
			zap.Error(err))
		return nil, nil, fmt.Errorf("failed to read attachment content: %w", err)
	}

	return attachment, content, nil
}

// Get returns attachment metadata by ID
func (s *attachmentService) Get(ctx context.Context, id string) (*entity.Attachment, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attachment == nil {
		return nil, fmt.Errorf("%w: attachment %s", workflow.ErrNotFound, id)
	}
	return attachment, nil
}

// ListForInstance returns all attachments bound to an instance
func (s *attachmentService) ListForInstance(ctx context.Context, instanceID string) ([]*entity.Attachment, error) {
	return s.attachmentRepo.GetByInstanceID(ctx, instanceID)
}

// BindToInstance points an existing attachment at an existing instance
func (s *attachmentService) BindToInstance(ctx context.Context, id, instanceID string) error {
	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return err
	}
	if instance == nil {
		return fmt.Errorf("%w: instance %s", workflow.ErrNotFound, instanceID)
	}
	return s.attachmentRepo.BindToInstance(ctx, id, instanceID)
}
