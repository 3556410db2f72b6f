package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" {
		return primitive.NilObjectID, errors.New("user email is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := u
	return &copied, nil
}

// --- products ---

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, product *domain.Product) (primitive.ObjectID, error) {
	if product.Name == "" || product.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("product name and user ID are required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()
	r.s.products[product.ID] = *product
	return product.ID, nil
}

func (r *productRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (r *productRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var products []domain.Product
	for _, p := range r.s.products {
		if p.UserID == userID {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *productRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *productRepo) CountByScheduleTemplate(_ context.Context, templateID primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.products {
		if p.ScheduleTemplateID != nil && *p.ScheduleTemplateID == templateID {
			n++
		}
	}
	return n, nil
}

func (r *productRepo) CountByFTCycleTemplate(_ context.Context, templateID primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.products {
		if p.FTCycleTemplateID != nil && *p.FTCycleTemplateID == templateID {
			n++
		}
	}
	return n, nil
}

// --- tasks ---

type taskRepo struct{ s *Store }

func (r *taskRepo) CreateBatch(_ context.Context, tasks []domain.Task) ([]domain.Task, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for i := range tasks {
		tasks[i].ID = primitive.NewObjectID()
		tasks[i].CreatedAt = now
		r.s.tasks[tasks[i].ID] = tasks[i]
	}
	return tasks, nil
}

func (r *taskRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := t
	return &copied, nil
}

func (r *taskRepo) GetByUserID(_ context.Context, userID primitive.ObjectID, deleted bool) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var tasks []domain.Task
	for _, t := range r.s.tasks {
		if t.UserID == userID && t.Deleted == deleted {
			tasks = append(tasks, t)
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r *taskRepo) GetByProductID(_ context.Context, productID primitive.ObjectID) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var tasks []domain.Task
	for _, t := range r.s.tasks {
		if t.ProductID == productID {
			tasks = append(tasks, t)
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r *taskRepo) Update(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tasks[task.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Only lifecycle fields are mutable; the generated fields stay.
	stored.Completed = task.Completed
	stored.CompletedAt = task.CompletedAt
	stored.Deleted = task.Deleted
	stored.DeletedAt = task.DeletedAt
	r.s.tasks[task.ID] = stored
	return nil
}

func (r *taskRepo) DeleteByProductID(_ context.Context, productID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.tasks {
		if t.ProductID == productID {
			delete(r.s.tasks, id)
		}
	}
	return nil
}

func (r *taskRepo) DeletePermanently(_ context.Context, id, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func sortTasks(tasks []domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].DueDate != tasks[j].DueDate {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		return tasks[i].Name < tasks[j].Name
	})
}

// --- schedule templates ---

type scheduleTemplateRepo struct{ s *Store }

func (r *scheduleTemplateRepo) Create(_ context.Context, tmpl *domain.ScheduleTemplate) (primitive.ObjectID, error) {
	if tmpl.Name == "" {
		return primitive.NilObjectID, errors.New("template name is required")
	}
	if !tmpl.IsPreset && tmpl.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("user templates require an owner")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tmpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	r.s.scheduleTemplates[tmpl.ID] = *tmpl
	return tmpl.ID, nil
}

func (r *scheduleTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ScheduleTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.scheduleTemplates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := t
	return &copied, nil
}

func (r *scheduleTemplateRepo) GetVisibleToUser(_ context.Context, userID primitive.ObjectID) ([]domain.ScheduleTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var templates []domain.ScheduleTemplate
	for _, t := range r.s.scheduleTemplates {
		if t.IsPreset || t.UserID == userID {
			templates = append(templates, t)
		}
	}
	sortScheduleTemplates(templates)
	return templates, nil
}

func (r *scheduleTemplateRepo) GetPresets(_ context.Context) ([]domain.ScheduleTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var templates []domain.ScheduleTemplate
	for _, t := range r.s.scheduleTemplates {
		if t.IsPreset {
			templates = append(templates, t)
		}
	}
	sortScheduleTemplates(templates)
	return templates, nil
}

func (r *scheduleTemplateRepo) GetPresetByName(_ context.Context, name string) (*domain.ScheduleTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.scheduleTemplates {
		if t.IsPreset && t.Name == name {
			copied := t
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *scheduleTemplateRepo) Update(_ context.Context, tmpl *domain.ScheduleTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.scheduleTemplates[tmpl.ID]
	if !ok || stored.IsPreset {
		return repository.ErrNotFound
	}
	stored.Name = tmpl.Name
	stored.Description = tmpl.Description
	stored.Intervals = tmpl.Intervals
	stored.UpdatedAt = time.Now().UTC()
	r.s.scheduleTemplates[tmpl.ID] = stored
	return nil
}

func (r *scheduleTemplateRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.scheduleTemplates[id]
	if !ok || t.IsPreset || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.scheduleTemplates, id)
	return nil
}

func sortScheduleTemplates(templates []domain.ScheduleTemplate) {
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].IsPreset != templates[j].IsPreset {
			return templates[i].IsPreset
		}
		return templates[i].Name < templates[j].Name
	})
}

// --- freeze/thaw cycle templates ---

type ftTemplateRepo struct{ s *Store }

func (r *ftTemplateRepo) Create(_ context.Context, tmpl *domain.FTCycleTemplate) (primitive.ObjectID, error) {
	if tmpl.Name == "" || tmpl.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and owner are required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tmpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	r.s.ftTemplates[tmpl.ID] = *tmpl
	return tmpl.ID, nil
}

func (r *ftTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.FTCycleTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.ftTemplates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := t
	return &copied, nil
}

func (r *ftTemplateRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.FTCycleTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var templates []domain.FTCycleTemplate
	for _, t := range r.s.ftTemplates {
		if t.UserID == userID {
			templates = append(templates, t)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

func (r *ftTemplateRepo) Update(_ context.Context, tmpl *domain.FTCycleTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.ftTemplates[tmpl.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = tmpl.Name
	stored.Description = tmpl.Description
	stored.Cycles = tmpl.Cycles
	stored.UpdatedAt = time.Now().UTC()
	r.s.ftTemplates[tmpl.ID] = stored
	return nil
}

func (r *ftTemplateRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.ftTemplates[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.ftTemplates, id)
	return nil
}

// --- attachments ---

type attachmentRepo struct{ s *Store }

func (r *attachmentRepo) Create(_ context.Context, att *domain.Attachment) (primitive.ObjectID, error) {
	if att.TaskID == primitive.NilObjectID || att.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("attachment task ID and object key are required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	att.ID = primitive.NewObjectID()
	att.UploadedAt = time.Now().UTC()
	r.s.attachments[att.ID] = *att
	return att.ID, nil
}

func (r *attachmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.attachments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := a
	return &copied, nil
}

func (r *attachmentRepo) GetByTaskID(_ context.Context, taskID primitive.ObjectID) ([]domain.Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var attachments []domain.Attachment
	for _, a := range r.s.attachments {
		if a.TaskID == taskID {
			attachments = append(attachments, a)
		}
	}
	sort.Slice(attachments, func(i, j int) bool {
		return attachments[i].UploadedAt.After(attachments[j].UploadedAt)
	})
	return attachments, nil
}

func (r *attachmentRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attachments[id]
	if !ok || a.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.attachments, id)
	return nil
}
