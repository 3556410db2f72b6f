package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository"
	"stabtrack/stability-app/internal/repository/memory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testDate(y int, m time.Month, d int) domain.Date {
	return domain.Date{Year: y, Month: m, Day: d}
}

func newProductFixture(t *testing.T) (*memory.Store, ProductService, primitive.ObjectID) {
	t.Helper()
	store := memory.NewStore()
	svc := NewProductService(store.Products(), store.Tasks(), store.ScheduleTemplates(), store.FTCycleTemplates())

	userID, err := store.Users().Create(context.Background(), &domain.User{
		Name:  "Lab Operator",
		Email: "operator@example.com",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return store, svc, userID
}

func TestCreateProductDefaultSchedule(t *testing.T) {
	ctx := context.Background()
	_, svc, userID := newProductFixture(t)

	product, tasks, err := svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:      "Serum Batch 42",
		StartDate: testDate(2025, time.January, 1),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.ID.IsZero() {
		t.Error("product ID was not assigned")
	}
	if product.FTCycleType != domain.FTConsecutive {
		t.Errorf("cycle type = %q, want default %q", product.FTCycleType, domain.FTConsecutive)
	}

	// Six periodic checkpoints plus three consecutive-day cycle pairs.
	if len(tasks) != 12 {
		t.Fatalf("got %d tasks, want 12", len(tasks))
	}
	for _, task := range tasks {
		if task.UserID != userID {
			t.Errorf("task %q is not stamped with the owner", task.Name)
		}
		if task.ProductID != product.ID {
			t.Errorf("task %q does not reference the product", task.Name)
		}
		if task.ID.IsZero() {
			t.Errorf("task %q was stored without an ID", task.Name)
		}
	}

	stored, err := svc.GetProductTasks(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("GetProductTasks: %v", err)
	}
	if len(stored) != len(tasks) {
		t.Errorf("stored %d tasks, want %d", len(stored), len(tasks))
	}
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	_, svc, userID := newProductFixture(t)

	cases := []struct {
		name  string
		input ProductCreateInput
	}{
		{"empty name", ProductCreateInput{StartDate: testDate(2025, time.March, 1)}},
		{"zero start date", ProductCreateInput{Name: "X"}},
		{"unknown cycle type", ProductCreateInput{
			Name:        "X",
			StartDate:   testDate(2025, time.March, 1),
			FTCycleType: domain.FTCycleType("quarterly"),
		}},
		{"bad custom cycles", ProductCreateInput{
			Name:         "X",
			StartDate:    testDate(2025, time.March, 1),
			FTCycleType:  domain.FTCustom,
			CustomCycles: []domain.FTCycle{{Number: 1, ThawDay: 5, TestDay: 3}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.CreateProduct(ctx, userID, tc.input)
			if !errors.Is(err, ErrProductValidation) {
				t.Errorf("got %v, want ErrProductValidation", err)
			}
		})
	}
}

// failingTaskRepo makes batch inserts fail so the compensation path can
// be observed.
type failingTaskRepo struct {
	repository.TaskRepository
}

var errBatchInsert = errors.New("induced batch failure")

func (r *failingTaskRepo) CreateBatch(ctx context.Context, tasks []domain.Task) ([]domain.Task, error) {
	return nil, errBatchInsert
}

func TestCreateProductRollsBackOnBatchFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	userID, err := store.Users().Create(ctx, &domain.User{Name: "Op", Email: "op@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	svc := NewProductService(
		store.Products(),
		&failingTaskRepo{store.Tasks()},
		store.ScheduleTemplates(),
		store.FTCycleTemplates(),
	)

	_, _, err = svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:      "Doomed Batch",
		StartDate: testDate(2025, time.January, 1),
	})
	if !errors.Is(err, errBatchInsert) {
		t.Fatalf("got %v, want induced batch failure", err)
	}

	products, err := svc.GetProductsByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetProductsByUser: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("product survived a failed batch insert: %+v", products)
	}
	tasks, err := store.Tasks().GetByUserID(ctx, userID, false)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("%d tasks survived a failed batch insert", len(tasks))
	}
}

func TestCreateProductWithScheduleTemplate(t *testing.T) {
	ctx := context.Background()
	store, svc, userID := newProductFixture(t)

	tmplID, err := store.ScheduleTemplates().Create(ctx, &domain.ScheduleTemplate{
		UserID:    userID,
		Name:      "Two Checks",
		Intervals: []domain.ScheduleInterval{domain.NewInterval(domain.UnitDays, 0), domain.NewInterval(domain.UnitDays, 3)},
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	_, tasks, err := svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:               "Templated",
		StartDate:          testDate(2025, time.June, 1),
		ScheduleTemplateID: &tmplID,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	// Two periodic tasks from the template plus the default cycle pairs.
	var periodic int
	for _, task := range tasks {
		if task.Type == domain.TaskWeekly {
			periodic++
		}
	}
	if periodic != 2 {
		t.Errorf("got %d periodic tasks, want 2 from the template", periodic)
	}
}

func TestCreateProductTemplateOwnership(t *testing.T) {
	ctx := context.Background()
	store, svc, userID := newProductFixture(t)

	otherID, err := store.Users().Create(ctx, &domain.User{Name: "Other", Email: "other@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	foreignTmplID, err := store.ScheduleTemplates().Create(ctx, &domain.ScheduleTemplate{
		UserID:    otherID,
		Name:      "Not Yours",
		Intervals: []domain.ScheduleInterval{domain.NewInterval(domain.UnitDays, 0)},
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	_, _, err = svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:               "Intruder",
		StartDate:          testDate(2025, time.June, 1),
		ScheduleTemplateID: &foreignTmplID,
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("got %v, want ErrAccessDenied", err)
	}

	missing := primitive.NewObjectID()
	_, _, err = svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:               "Dangling",
		StartDate:          testDate(2025, time.June, 1),
		ScheduleTemplateID: &missing,
	})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("got %v, want ErrTemplateNotFound", err)
	}
}

func TestCreateProductPresetTemplateVisibleToEveryone(t *testing.T) {
	ctx := context.Background()
	store, svc, userID := newProductFixture(t)

	presetID, err := store.ScheduleTemplates().Create(ctx, &domain.ScheduleTemplate{
		Name:      "System Preset",
		Intervals: []domain.ScheduleInterval{domain.NewInterval(domain.UnitWeeks, 0), domain.NewInterval(domain.UnitWeeks, 1)},
		IsPreset:  true,
	})
	if err != nil {
		t.Fatalf("create preset: %v", err)
	}

	_, _, err = svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:               "Preset User",
		StartDate:          testDate(2025, time.June, 1),
		ScheduleTemplateID: &presetID,
	})
	if err != nil {
		t.Errorf("preset template should be usable by any user, got %v", err)
	}
}

func TestCreateProductCustomCycles(t *testing.T) {
	ctx := context.Background()
	_, svc, userID := newProductFixture(t)

	_, tasks, err := svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:        "Custom FT",
		StartDate:   testDate(2025, time.January, 1),
		FTCycleType: domain.FTCustom,
		CustomCycles: []domain.FTCycle{
			{Number: 1, ThawDay: 2, TestDay: 4},
		},
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	var thaw, test int
	for _, task := range tasks {
		switch task.Type {
		case domain.TaskFTThaw:
			thaw++
			if got, want := task.DueDate, testDate(2025, time.January, 3); got != want {
				t.Errorf("thaw due %v, want %v", got, want)
			}
		case domain.TaskFTTest:
			test++
			if got, want := task.DueDate, testDate(2025, time.January, 5); got != want {
				t.Errorf("test due %v, want %v", got, want)
			}
		}
	}
	if thaw != 1 || test != 1 {
		t.Errorf("got %d thaw / %d test tasks, want 1 / 1", thaw, test)
	}
}

func TestDeleteProductCascadesToTasks(t *testing.T) {
	ctx := context.Background()
	store, svc, userID := newProductFixture(t)

	product, _, err := svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:      "Short Lived",
		StartDate: testDate(2025, time.January, 1),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if err := svc.DeleteProduct(ctx, userID, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}

	if _, err := svc.GetProductByID(ctx, userID, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("got %v, want ErrProductNotFound after delete", err)
	}
	tasks, err := store.Tasks().GetByProductID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByProductID: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("%d tasks survived product deletion", len(tasks))
	}
}

func TestGetProductHidesOtherUsers(t *testing.T) {
	ctx := context.Background()
	store, svc, userID := newProductFixture(t)

	product, _, err := svc.CreateProduct(ctx, userID, ProductCreateInput{
		Name:      "Private",
		StartDate: testDate(2025, time.January, 1),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	otherID, err := store.Users().Create(ctx, &domain.User{Name: "Other", Email: "other@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.GetProductByID(ctx, otherID, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("got %v, want ErrProductNotFound for foreign product", err)
	}
}
