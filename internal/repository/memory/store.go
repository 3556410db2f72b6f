// Package memory provides an in-memory implementation of the
// repository interfaces. The store is an explicit object handed to its
// consumers, never process-global state: each test (or dev process)
// builds its own with NewStore and throws it away afterwards.
package memory

import (
	"sync"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind one mutex. Writes are rare and
// request-scoped, so a single lock is plenty.
type Store struct {
	mu sync.RWMutex

	users             map[primitive.ObjectID]domain.User
	products          map[primitive.ObjectID]domain.Product
	tasks             map[primitive.ObjectID]domain.Task
	scheduleTemplates map[primitive.ObjectID]domain.ScheduleTemplate
	ftTemplates       map[primitive.ObjectID]domain.FTCycleTemplate
	attachments       map[primitive.ObjectID]domain.Attachment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:             make(map[primitive.ObjectID]domain.User),
		products:          make(map[primitive.ObjectID]domain.Product),
		tasks:             make(map[primitive.ObjectID]domain.Task),
		scheduleTemplates: make(map[primitive.ObjectID]domain.ScheduleTemplate),
		ftTemplates:       make(map[primitive.ObjectID]domain.FTCycleTemplate),
		attachments:       make(map[primitive.ObjectID]domain.Attachment),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Products returns the product repository view of the store.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() repository.TaskRepository { return &taskRepo{s} }

// ScheduleTemplates returns the schedule template repository view.
func (s *Store) ScheduleTemplates() repository.ScheduleTemplateRepository {
	return &scheduleTemplateRepo{s}
}

// FTCycleTemplates returns the cycle template repository view.
func (s *Store) FTCycleTemplates() repository.FTCycleTemplateRepository {
	return &ftTemplateRepo{s}
}

// Attachments returns the attachment repository view of the store.
func (s *Store) Attachments() repository.AttachmentRepository { return &attachmentRepo{s} }
