package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository"
	"stabtrack/stability-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrAttachmentValidation = errors.New("attachment validation failed")
)

// AttachmentService handles result files attached to tasks: clients
// upload and download directly against object storage via presigned
// URLs, and only the metadata passes through here.
type AttachmentService interface {
	RequestUpload(ctx context.Context, userID, taskID primitive.ObjectID, fileName, contentType string, size int64) (*domain.Attachment, string, error)
	GetDownloadURL(ctx context.Context, userID, attachmentID primitive.ObjectID) (string, error)
	GetTaskAttachments(ctx context.Context, userID, taskID primitive.ObjectID) ([]domain.Attachment, error)
	DeleteAttachment(ctx context.Context, userID, attachmentID primitive.ObjectID) error
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	taskRepo       repository.TaskRepository
	fileStorage    storage.FileStorage
}

// NewAttachmentService creates a new instance of attachmentService.
func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	taskRepo repository.TaskRepository,
	fileStorage storage.FileStorage,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
		fileStorage:    fileStorage,
	}
}

// RequestUpload reserves an object key for a new result file, records
// the metadata, and returns a presigned PUT URL the client uploads
// against. The original file extension is kept on the key so storage
// browsers stay readable.
func (s *attachmentService) RequestUpload(ctx context.Context, userID, taskID primitive.ObjectID, fileName, contentType string, size int64) (*domain.Attachment, string, error) {
	if fileName == "" || contentType == "" || size <= 0 {
		return nil, "", ErrAttachmentValidation
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrTaskNotFound
		}
		return nil, "", err
	}
	if task.UserID != userID {
		return nil, "", ErrTaskNotFound
	}

	objectKey := fmt.Sprintf("results/%s/%s%s", taskID.Hex(), uuid.NewString(), path.Ext(fileName))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, "", err
	}

	att := &domain.Attachment{
		TaskID:      taskID,
		UserID:      userID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	}
	attID, err := s.attachmentRepo.Create(ctx, att)
	if err != nil {
		return nil, "", err
	}
	att.ID = attID

	return att, uploadURL, nil
}

// GetDownloadURL returns a presigned GET URL for an attachment the
// user owns.
func (s *attachmentService) GetDownloadURL(ctx context.Context, userID, attachmentID primitive.ObjectID) (string, error) {
	att, err := s.getOwned(ctx, userID, attachmentID)
	if err != nil {
		return "", err
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, att.S3ObjectKey, storage.DefaultPresignedURLExpiry)
}

// GetTaskAttachments lists the attachments of one of the user's tasks.
func (s *attachmentService) GetTaskAttachments(ctx context.Context, userID, taskID primitive.ObjectID) ([]domain.Attachment, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return s.attachmentRepo.GetByTaskID(ctx, taskID)
}

// DeleteAttachment removes the stored object and then the metadata.
func (s *attachmentService) DeleteAttachment(ctx context.Context, userID, attachmentID primitive.ObjectID) error {
	att, err := s.getOwned(ctx, userID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.fileStorage.DeleteObject(ctx, att.S3ObjectKey); err != nil {
		// Metadata stays if the object could not be removed, so the
		// file remains reachable and the delete can be retried.
		log.Printf("ERROR: failed to delete object %q: %v", att.S3ObjectKey, err)
		return err
	}

	if err := s.attachmentRepo.Delete(ctx, attachmentID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttachmentNotFound
		}
		return err
	}
	return nil
}

func (s *attachmentService) getOwned(ctx context.Context, userID, attachmentID primitive.ObjectID) (*domain.Attachment, error) {
	att, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	if att.UserID != userID {
		return nil, ErrAttachmentNotFound
	}
	return att, nil
}
