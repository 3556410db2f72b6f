package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stabtrack/stability-app/internal/repository/memory"
	"stabtrack/stability-app/internal/service"

	"github.com/gin-gonic/gin"
)

const testJWTSecret = "routes-test-secret"

// nullStorage satisfies the storage interface without talking to S3.
type nullStorage struct{}

func (nullStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (nullStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (nullStorage) DeleteObject(ctx context.Context, objectKey string) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	authService := service.NewAuthService(store.Users(), testJWTSecret, time.Hour)
	productService := service.NewProductService(store.Products(), store.Tasks(), store.ScheduleTemplates(), store.FTCycleTemplates())
	taskService := service.NewTaskService(store.Tasks())
	templateService := service.NewTemplateService(store.ScheduleTemplates(), store.FTCycleTemplates(), store.Products())
	attachmentService := service.NewAttachmentService(store.Attachments(), store.Tasks(), nullStorage{})

	if err := templateService.SeedPresets(context.Background()); err != nil {
		t.Fatalf("seed presets: %v", err)
	}

	router := gin.New()
	SetupRoutes(router, testJWTSecret, authService, productService, taskService, templateService, attachmentService)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Test Operator",
		"email":    email,
		"password": "long-enough-password",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "long-enough-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[LoginResponse](t, rec).Token
}

func TestAuthFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "flow@example.com")
	if token == "" {
		t.Fatal("empty token from login")
	}

	// Token works.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("/me with token: status %d", rec.Code)
	}

	// Missing or garbage tokens are rejected.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/tasks", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/tasks", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", rec.Code)
	}

	// Duplicate registration conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Again",
		"email":    "flow@example.com",
		"password": "long-enough-password",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register: status %d, want 409", rec.Code)
	}
}

func TestProductCreationOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "products@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", token, gin.H{
		"name":      "Serum Batch 42",
		"startDate": "2025-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[CreateProductResponse](t, rec)
	if created.Product.StartDate != "2025-01-01" {
		t.Errorf("start date = %q, want 2025-01-01", created.Product.StartDate)
	}
	if len(created.Tasks) != 12 {
		t.Errorf("got %d generated tasks, want 12", len(created.Tasks))
	}

	// Malformed dates never pass the boundary.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/products", token, gin.H{
		"name":      "Bad Date",
		"startDate": "01/02/2025",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: status %d", rec.Code)
	}
	products := decodeBody[[]ProductResponse](t, rec)
	if len(products) != 1 {
		t.Errorf("got %d products, want 1", len(products))
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "tasks@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", token, gin.H{
		"name":      "Lifecycle Sample",
		"startDate": "2025-03-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[CreateProductResponse](t, rec)
	taskID := created.Tasks[0].ID

	// Complete it.
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+taskID+"/completed", token, gin.H{"completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status %d, body %s", rec.Code, rec.Body.String())
	}
	if task := decodeBody[TaskResponse](t, rec); !task.Completed || task.CompletedAt == nil {
		t.Errorf("task not completed: %+v", task)
	}

	// Soft delete, check the recycle bin, restore.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/tasks/"+taskID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("soft delete: status %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/tasks/deleted", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recycle bin: status %d", rec.Code)
	}
	if bin := decodeBody[[]TaskResponse](t, rec); len(bin) != 1 || !bin[0].Completed {
		t.Errorf("recycle bin = %+v, want the one completed task", bin)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/tasks/"+taskID+"/restore", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: status %d", rec.Code)
	}
	if task := decodeBody[TaskResponse](t, rec); task.Deleted || !task.Completed {
		t.Errorf("restored task = %+v, want active and still completed", task)
	}

	// Permanent delete is refused while active, allowed from the bin.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/tasks/"+taskID+"/permanent", token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("permanent delete of active task: status %d, want 409", rec.Code)
	}
	doJSON(t, router, http.MethodDelete, "/api/v1/tasks/"+taskID, token, nil)
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/tasks/"+taskID+"/permanent", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("permanent delete from bin: status %d, want 204", rec.Code)
	}
}

func TestCalendarExportOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "calendar@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", token, gin.H{
		"name":      "Calendar Sample",
		"startDate": "2025-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/tasks/calendar.ics", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar export: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q, want text/calendar", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "BEGIN:VEVENT") {
		t.Errorf("export is not an iCalendar document:\n%s", body)
	}
	if want := 12; strings.Count(body, "BEGIN:VEVENT") != want {
		t.Errorf("got %d events, want %d", strings.Count(body, "BEGIN:VEVENT"), want)
	}
}

func TestTemplateEndpointsOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "templates@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/schedule-templates/presets", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("presets: status %d", rec.Code)
	}
	presets := decodeBody[[]ScheduleTemplateResponse](t, rec)
	if len(presets) != 2 {
		t.Fatalf("got %d presets, want 2", len(presets))
	}

	// Presets cannot be deleted over the API either.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/schedule-templates/"+presets[0].ID, token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete preset: status %d, want 403", rec.Code)
	}

	// Intervals accept the legacy bare day-count shape on the wire.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/schedule-templates", token, map[string]any{
		"name":      "Legacy Shape",
		"intervals": []int{0, 7, 14},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create from legacy shape: status %d, body %s", rec.Code, rec.Body.String())
	}
	tmpl := decodeBody[ScheduleTemplateResponse](t, rec)
	if len(tmpl.Intervals) != 3 || tmpl.Intervals[1].Unit != "weeks" {
		t.Errorf("legacy intervals not normalized: %+v", tmpl.Intervals)
	}

	// Referenced templates refuse deletion.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/products", token, gin.H{
		"name":               "Holder",
		"startDate":          "2025-04-01",
		"scheduleTemplateId": tmpl.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/schedule-templates/"+tmpl.ID, token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete referenced template: status %d, want 409", rec.Code)
	}
}

func TestAttachmentFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "attachments@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", token, gin.H{
		"name":      "Attachment Sample",
		"startDate": "2025-02-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d", rec.Code)
	}
	taskID := decodeBody[CreateProductResponse](t, rec).Tasks[0].ID

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%s/attachments", taskID), token, gin.H{
		"fileName":    "report.pdf",
		"contentType": "application/pdf",
		"size":        4096,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("request upload: status %d, body %s", rec.Code, rec.Body.String())
	}
	upload := decodeBody[RequestUploadResponse](t, rec)
	if upload.UploadURL == "" || upload.Method != http.MethodPut {
		t.Errorf("upload response incomplete: %+v", upload)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/attachments/"+upload.Attachment.ID+"/download", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download URL: status %d", rec.Code)
	}
	if url := decodeBody[DownloadURLResponse](t, rec).DownloadURL; url == "" {
		t.Error("empty download URL")
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/attachments/"+upload.Attachment.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete attachment: status %d, want 204", rec.Code)
	}
}
