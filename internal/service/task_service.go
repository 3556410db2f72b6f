package service

import (
	"context"
	"errors"
	"time"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskNotDeleted = errors.New("task must be in the recycle bin before permanent deletion")
)

// TaskService owns the task lifecycle: completion toggling, the soft
// delete / restore pair, and permanent removal from the recycle bin.
type TaskService interface {
	GetTasks(ctx context.Context, userID primitive.ObjectID) ([]domain.Task, error)
	GetDeletedTasks(ctx context.Context, userID primitive.ObjectID) ([]domain.Task, error)
	SetCompleted(ctx context.Context, userID, taskID primitive.ObjectID, completed bool) (*domain.Task, error)
	SoftDelete(ctx context.Context, userID, taskID primitive.ObjectID) (*domain.Task, error)
	Restore(ctx context.Context, userID, taskID primitive.ObjectID) (*domain.Task, error)
	DeletePermanently(ctx context.Context, userID, taskID primitive.ObjectID) error
}

type taskService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewTaskService creates a new instance of taskService.
func NewTaskService(taskRepo repository.TaskRepository) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetTasks lists the user's active (non-deleted) tasks.
func (s *taskService) GetTasks(ctx context.Context, userID primitive.ObjectID) ([]domain.Task, error) {
	return s.taskRepo.GetByUserID(ctx, userID, false)
}

// GetDeletedTasks lists the recycle bin.
func (s *taskService) GetDeletedTasks(ctx context.Context, userID primitive.ObjectID) ([]domain.Task, error) {
	return s.taskRepo.GetByUserID(ctx, userID, true)
}

// getOwned fetches a task and enforces ownership, mapping everything
// the caller must not see to a plain not-found.
func (s *taskService) getOwned(ctx context.Context, userID, taskID primitive.ObjectID) (*domain.Task, error) {
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
	return task, nil
}

// SetCompleted flips the completion flag either way. CompletedAt is
// stamped on completion and cleared on un-completion.
func (s *taskService) SetCompleted(ctx context.Context, userID, taskID primitive.ObjectID, completed bool) (*domain.Task, error) {
	task, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Completed = completed
	if completed {
		now := s.now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SoftDelete moves a task to the recycle bin. The completed flag is
// deliberately left alone so a restore brings the task back exactly as
// it was.
func (s *taskService) SoftDelete(ctx context.Context, userID, taskID primitive.ObjectID) (*domain.Task, error) {
	task, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task.Deleted = true
	task.DeletedAt = &now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Restore brings a task back from the recycle bin with its prior
// completion state intact.
func (s *taskService) Restore(ctx context.Context, userID, taskID primitive.ObjectID) (*domain.Task, error) {
	task, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Deleted = false
	task.DeletedAt = nil

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeletePermanently removes the record for good. Only tasks already in
// the recycle bin qualify; an active task must be soft-deleted first.
func (s *taskService) DeletePermanently(ctx context.Context, userID, taskID primitive.ObjectID) error {
	task, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !task.Deleted {
		return ErrTaskNotDeleted
	}

	if err := s.taskRepo.DeletePermanently(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}
