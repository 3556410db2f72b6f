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
	ErrProductNotFound   = errors.New("product not found")
	ErrProductValidation = errors.New("product validation failed")
	ErrAccessDenied      = errors.New("access denied")
)

// ProductCreateInput carries everything needed to create a product and
// generate its task batch.
type ProductCreateInput struct {
	Name               string
	Assignee           string
	StartDate          domain.Date
	ScheduleTemplateID *primitive.ObjectID
	FTCycleType        domain.FTCycleType
	FTCycleTemplateID  *primitive.ObjectID
	CustomCycles       []domain.FTCycle
}

// ProductService owns product creation (including the one-time task
// generation) and product reads/deletes.
type ProductService interface {
	CreateProduct(ctx context.Context, userID primitive.ObjectID, input ProductCreateInput) (*domain.Product, []domain.Task, error)
	GetProductByID(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Product, error)
	GetProductsByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Product, error)
	GetProductTasks(ctx context.Context, userID, productID primitive.ObjectID) ([]domain.Task, error)
	DeleteProduct(ctx context.Context, userID, productID primitive.ObjectID) error
}

type productService struct {
	productRepo   repository.ProductRepository
	taskRepo      repository.TaskRepository
	scheduleTmpls repository.ScheduleTemplateRepository
	ftCycleTmpls  repository.FTCycleTemplateRepository
}

// NewProductService creates a new instance of productService.
func NewProductService(
	productRepo repository.ProductRepository,
	taskRepo repository.TaskRepository,
	scheduleTmpls repository.ScheduleTemplateRepository,
	ftCycleTmpls repository.FTCycleTemplateRepository,
) ProductService {
	return &productService{
		productRepo:   productRepo,
		taskRepo:      taskRepo,
		scheduleTmpls: scheduleTmpls,
		ftCycleTmpls:  ftCycleTmpls,
	}
}

// CreateProduct validates the input, resolves the schedule
// configuration, persists the product and then its generated task batch
// in one logical unit: if the batch insert fails, the product and any
// tasks that made it in are removed again so no partial batch survives.
func (s *productService) CreateProduct(ctx context.Context, userID primitive.ObjectID, input ProductCreateInput) (*domain.Product, []domain.Task, error) {
	if input.Name == "" || input.StartDate.IsZero() {
		return nil, nil, ErrProductValidation
	}
	if input.FTCycleType == "" {
		input.FTCycleType = domain.FTConsecutive
	}
	if !domain.ValidFTCycleType(input.FTCycleType) {
		return nil, nil, ErrProductValidation
	}
	if len(input.CustomCycles) > 0 {
		if err := domain.ValidateCycles(input.CustomCycles); err != nil {
			return nil, nil, errors.Join(ErrProductValidation, err)
		}
	}

	cfg, err := s.resolveConfig(ctx, userID, input)
	if err != nil {
		return nil, nil, err
	}

	product := &domain.Product{
		UserID:             userID,
		Name:               input.Name,
		Assignee:           input.Assignee,
		StartDate:          input.StartDate,
		ScheduleTemplateID: input.ScheduleTemplateID,
		FTCycleType:        input.FTCycleType,
		FTCycleTemplateID:  input.FTCycleTemplateID,
		CustomCycles:       input.CustomCycles,
	}
	productID, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, nil, err
	}
	product.ID = productID

	tasks := schedule.GenerateStabilityTasks(productID, product.Name, product.StartDate, cfg)
	for i := range tasks {
		tasks[i].UserID = userID
	}

	created, err := s.taskRepo.CreateBatch(ctx, tasks)
	if err != nil {
		// Roll the whole creation back; a product with a partial task
		// set would never be repaired because generation runs only once.
		if cleanupErr := s.taskRepo.DeleteByProductID(ctx, productID); cleanupErr != nil {
			log.Printf("ERROR: failed to clean up tasks for product %s after batch failure: %v", productID.Hex(), cleanupErr)
		}
		if cleanupErr := s.productRepo.Delete(ctx, productID, userID); cleanupErr != nil {
			log.Printf("ERROR: failed to clean up product %s after batch failure: %v", productID.Hex(), cleanupErr)
		}
		return nil, nil, err
	}

	return product, created, nil
}

// resolveConfig turns the product's references and keywords into the
// concrete interval/cycle lists the generator consumes. Malformed
// stored template data falls back to the built-in defaults with a
// logged warning instead of failing the request.
func (s *productService) resolveConfig(ctx context.Context, userID primitive.ObjectID, input ProductCreateInput) (schedule.Config, error) {
	var cfg schedule.Config

	if input.ScheduleTemplateID != nil {
		tmpl, err := s.scheduleTmpls.GetByID(ctx, *input.ScheduleTemplateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return cfg, ErrTemplateNotFound
			}
			return cfg, err
		}
		if !tmpl.IsPreset && tmpl.UserID != userID {
			return cfg, ErrAccessDenied
		}
		if err := domain.ValidateIntervals(tmpl.Intervals); err != nil {
			log.Printf("WARN: schedule template %s has malformed intervals, using default schedule: %v", tmpl.ID.Hex(), err)
		} else {
			cfg.Intervals = tmpl.Intervals
		}
	}

	cfg.CycleType = input.FTCycleType

	// A cycle template reference wins over the keyword.
	if input.FTCycleTemplateID != nil {
		tmpl, err := s.ftCycleTmpls.GetByID(ctx, *input.FTCycleTemplateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return cfg, ErrTemplateNotFound
			}
			return cfg, err
		}
		if tmpl.UserID != userID {
			return cfg, ErrAccessDenied
		}
		if err := domain.ValidateCycles(tmpl.Cycles); err != nil {
			log.Printf("WARN: cycle template %s has malformed cycles, using %s pattern: %v", tmpl.ID.Hex(), domain.FTConsecutive, err)
			cfg.CycleType = domain.FTConsecutive
		} else {
			cfg.Cycles = tmpl.Cycles
		}
	} else if input.FTCycleType == domain.FTCustom {
		cfg.Cycles = input.CustomCycles
	}

	return cfg, nil
}

// GetProductByID fetches one product, enforcing ownership.
func (s *productService) GetProductByID(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.UserID != userID {
		return nil, ErrProductNotFound // do not reveal other users' products
	}
	return product, nil
}

// GetProductsByUser lists the user's products.
func (s *productService) GetProductsByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Product, error) {
	return s.productRepo.GetByUserID(ctx, userID)
}

// GetProductTasks lists every task of one of the user's products.
func (s *productService) GetProductTasks(ctx context.Context, userID, productID primitive.ObjectID) ([]domain.Task, error) {
	if _, err := s.GetProductByID(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.taskRepo.GetByProductID(ctx, productID)
}

// DeleteProduct removes a product and all of its tasks.
func (s *productService) DeleteProduct(ctx context.Context, userID, productID primitive.ObjectID) error {
	if err := s.productRepo.Delete(ctx, productID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.taskRepo.DeleteByProductID(ctx, productID); err != nil {
		log.Printf("ERROR: product %s deleted but task cascade failed: %v", productID.Hex(), err)
		return err
	}
	return nil
}
