package repository

import (
	"context"

	"stabtrack/stability-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors from everything
// else bubbling up.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository persists operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProductRepository persists products. The Count methods back the
// referential-integrity check on template deletion.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Product, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	CountByScheduleTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error)
	CountByFTCycleTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error)
}

// TaskRepository persists tasks. CreateBatch either inserts the whole
// batch or reports an error; the caller compensates with
// DeleteByProductID so no partial batch survives a failure.
type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []domain.Task) ([]domain.Task, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Task, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, deleted bool) ([]domain.Task, error)
	GetByProductID(ctx context.Context, productID primitive.ObjectID) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	DeleteByProductID(ctx context.Context, productID primitive.ObjectID) error
	// DeletePermanently physically removes the record. Irreversible.
	DeletePermanently(ctx context.Context, id, userID primitive.ObjectID) error
}

// ScheduleTemplateRepository persists periodic-test schedule templates.
// Presets have no owner and are visible to every user.
type ScheduleTemplateRepository interface {
	Create(ctx context.Context, tmpl *domain.ScheduleTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleTemplate, error)
	GetVisibleToUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ScheduleTemplate, error)
	GetPresets(ctx context.Context) ([]domain.ScheduleTemplate, error)
	GetPresetByName(ctx context.Context, name string) (*domain.ScheduleTemplate, error)
	Update(ctx context.Context, tmpl *domain.ScheduleTemplate) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// FTCycleTemplateRepository persists freeze/thaw cycle templates.
type FTCycleTemplateRepository interface {
	Create(ctx context.Context, tmpl *domain.FTCycleTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FTCycleTemplate, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.FTCycleTemplate, error)
	Update(ctx context.Context, tmpl *domain.FTCycleTemplate) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// AttachmentRepository persists result-file metadata for tasks.
type AttachmentRepository interface {
	Create(ctx context.Context, att *domain.Attachment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Attachment, error)
	GetByTaskID(ctx context.Context, taskID primitive.ObjectID) ([]domain.Attachment, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}
