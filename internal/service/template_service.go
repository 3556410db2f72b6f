package service

import (
	"context"
	"errors"
	"log"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository"
	"stabtrack/stability-app/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrTemplateValidation = errors.New("template validation failed")
	ErrTemplateInUse      = errors.New("template is referenced by existing products and cannot be deleted")
	ErrPresetImmutable    = errors.New("preset templates cannot be modified or deleted")
)

// TemplateService owns both template kinds: periodic-test schedule
// templates (with system presets) and freeze/thaw cycle templates.
type TemplateService interface {
	// schedule templates
	CreateScheduleTemplate(ctx context.Context, userID primitive.ObjectID, name, description string, intervals []domain.ScheduleInterval) (*domain.ScheduleTemplate, error)
	GetScheduleTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.ScheduleTemplate, error)
	GetSchedulePresets(ctx context.Context) ([]domain.ScheduleTemplate, error)
	UpdateScheduleTemplate(ctx context.Context, userID, templateID primitive.ObjectID, name, description string, intervals []domain.ScheduleInterval) (*domain.ScheduleTemplate, error)
	DeleteScheduleTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error

	// freeze/thaw cycle templates
	CreateFTCycleTemplate(ctx context.Context, userID primitive.ObjectID, name, description string, cycles []domain.FTCycle) (*domain.FTCycleTemplate, error)
	GetFTCycleTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.FTCycleTemplate, error)
	UpdateFTCycleTemplate(ctx context.Context, userID, templateID primitive.ObjectID, name, description string, cycles []domain.FTCycle) (*domain.FTCycleTemplate, error)
	DeleteFTCycleTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error

	// SeedPresets inserts the system templates if they are missing.
	SeedPresets(ctx context.Context) error
}

type templateService struct {
	scheduleTmpls repository.ScheduleTemplateRepository
	ftCycleTmpls  repository.FTCycleTemplateRepository
	productRepo   repository.ProductRepository
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(
	scheduleTmpls repository.ScheduleTemplateRepository,
	ftCycleTmpls repository.FTCycleTemplateRepository,
	productRepo repository.ProductRepository,
) TemplateService {
	return &templateService{
		scheduleTmpls: scheduleTmpls,
		ftCycleTmpls:  ftCycleTmpls,
		productRepo:   productRepo,
	}
}

// CreateScheduleTemplate stores a user-owned schedule template.
func (s *templateService) CreateScheduleTemplate(ctx context.Context, userID primitive.ObjectID, name, description string, intervals []domain.ScheduleInterval) (*domain.ScheduleTemplate, error) {
	if name == "" || len(intervals) == 0 {
		return nil, ErrTemplateValidation
	}
	if err := domain.ValidateIntervals(intervals); err != nil {
		return nil, errors.Join(ErrTemplateValidation, err)
	}

	tmpl := &domain.ScheduleTemplate{
		UserID:      userID,
		Name:        name,
		Description: description,
		Intervals:   intervals,
	}
	id, err := s.scheduleTmpls.Create(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	tmpl.ID = id
	return tmpl, nil
}

// GetScheduleTemplates lists the user's templates plus all presets.
func (s *templateService) GetScheduleTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.ScheduleTemplate, error) {
	return s.scheduleTmpls.GetVisibleToUser(ctx, userID)
}

// GetSchedulePresets lists the system templates.
func (s *templateService) GetSchedulePresets(ctx context.Context) ([]domain.ScheduleTemplate, error) {
	return s.scheduleTmpls.GetPresets(ctx)
}

// UpdateScheduleTemplate rewrites a user-owned template. Presets are
// immutable.
func (s *templateService) UpdateScheduleTemplate(ctx context.Context, userID, templateID primitive.ObjectID, name, description string, intervals []domain.ScheduleInterval) (*domain.ScheduleTemplate, error) {
	if name == "" || len(intervals) == 0 {
		return nil, ErrTemplateValidation
	}
	if err := domain.ValidateIntervals(intervals); err != nil {
		return nil, errors.Join(ErrTemplateValidation, err)
	}

	existing, err := s.scheduleTmpls.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if existing.IsPreset {
		return nil, ErrPresetImmutable
	}
	if existing.UserID != userID {
		return nil, ErrTemplateNotFound
	}

	existing.Name = name
	existing.Description = description
	existing.Intervals = intervals
	if err := s.scheduleTmpls.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteScheduleTemplate removes a user template, but only when no
// product still references it. The check runs at write time; the
// database alone does not enforce this.
func (s *templateService) DeleteScheduleTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error {
	existing, err := s.scheduleTmpls.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	if existing.IsPreset {
		return ErrPresetImmutable
	}
	if existing.UserID != userID {
		return ErrTemplateNotFound
	}

	inUse, err := s.productRepo.CountByScheduleTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return ErrTemplateInUse
	}

	if err := s.scheduleTmpls.Delete(ctx, templateID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// CreateFTCycleTemplate stores a user-owned cycle template. The whole
// cycle set must validate; one bad pair rejects everything.
func (s *templateService) CreateFTCycleTemplate(ctx context.Context, userID primitive.ObjectID, name, description string, cycles []domain.FTCycle) (*domain.FTCycleTemplate, error) {
	if name == "" || len(cycles) == 0 {
		return nil, ErrTemplateValidation
	}
	if err := domain.ValidateCycles(cycles); err != nil {
		return nil, errors.Join(ErrTemplateValidation, err)
	}

	tmpl := &domain.FTCycleTemplate{
		UserID:      userID,
		Name:        name,
		Description: description,
		Cycles:      cycles,
	}
	id, err := s.ftCycleTmpls.Create(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	tmpl.ID = id
	return tmpl, nil
}

// GetFTCycleTemplates lists the user's cycle templates.
func (s *templateService) GetFTCycleTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.FTCycleTemplate, error) {
	return s.ftCycleTmpls.GetByUserID(ctx, userID)
}

// UpdateFTCycleTemplate rewrites a user-owned cycle template.
func (s *templateService) UpdateFTCycleTemplate(ctx context.Context, userID, templateID primitive.ObjectID, name, description string, cycles []domain.FTCycle) (*domain.FTCycleTemplate, error) {
	if name == "" || len(cycles) == 0 {
		return nil, ErrTemplateValidation
	}
	if err := domain.ValidateCycles(cycles); err != nil {
		return nil, errors.Join(ErrTemplateValidation, err)
	}

	existing, err := s.ftCycleTmpls.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrTemplateNotFound
	}

	existing.Name = name
	existing.Description = description
	existing.Cycles = cycles
	if err := s.ftCycleTmpls.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteFTCycleTemplate removes a cycle template unless a product
// still references it.
func (s *templateService) DeleteFTCycleTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error {
	existing, err := s.ftCycleTmpls.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	if existing.UserID != userID {
		return ErrTemplateNotFound
	}

	inUse, err := s.productRepo.CountByFTCycleTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return ErrTemplateInUse
	}

	if err := s.ftCycleTmpls.Delete(ctx, templateID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// Preset names. Seeding keys on these, so renaming one would create a
// second copy on the next startup.
const (
	PresetStandardName = "Standard Stability"
	PresetLongTermName = "Long-Term Stability"
)

// SeedPresets inserts the system schedule templates if missing. Safe to
// run on every startup.
func (s *templateService) SeedPresets(ctx context.Context) error {
	presets := []struct {
		name        string
		description string
		intervals   []domain.ScheduleInterval
	}{
		{PresetStandardName, "Initial test plus weeks 1, 2, 4, 8 and 13", schedule.DefaultIntervals()},
		{PresetLongTermName, "Early checkpoints plus monthly tests out to one year", schedule.LongTermIntervals()},
	}

	for _, p := range presets {
		_, err := s.scheduleTmpls.GetPresetByName(ctx, p.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		tmpl := &domain.ScheduleTemplate{
			Name:        p.name,
			Description: p.description,
			Intervals:   p.intervals,
			IsPreset:    true,
		}
		if _, err := s.scheduleTmpls.Create(ctx, tmpl); err != nil {
			return err
		}
		log.Printf("Seeded preset schedule template %q", p.name)
	}
	return nil
}
