package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/repository/memory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStorage records issued keys and deletions in place of S3.
type fakeStorage struct {
	uploaded []string
	deleted  []string
	failPut  bool
}

func (f *fakeStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	if f.failPut {
		return "", errors.New("storage unavailable")
	}
	f.uploaded = append(f.uploaded, objectKey)
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func newAttachmentFixture(t *testing.T) (AttachmentService, *fakeStorage, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	fs := &fakeStorage{}

	userID, err := store.Users().Create(ctx, &domain.User{Name: "Op", Email: "op@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	created, err := store.Tasks().CreateBatch(ctx, []domain.Task{{
		UserID:    userID,
		ProductID: primitive.NewObjectID(),
		Name:      "Stability - Sample Week 1",
		Type:      domain.TaskWeekly,
		DueDate:   domain.Date{Year: 2025, Month: time.March, Day: 8},
	}})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	svc := NewAttachmentService(store.Attachments(), store.Tasks(), fs)
	return svc, fs, userID, created[0].ID
}

func TestRequestUploadIssuesKeyAndURL(t *testing.T) {
	ctx := context.Background()
	svc, fs, userID, taskID := newAttachmentFixture(t)

	att, uploadURL, err := svc.RequestUpload(ctx, userID, taskID, "report.pdf", "application/pdf", 2048)
	if err != nil {
		t.Fatalf("RequestUpload: %v", err)
	}
	if att.ID.IsZero() {
		t.Error("attachment metadata has no ID")
	}
	if uploadURL == "" {
		t.Error("no upload URL returned")
	}
	if len(fs.uploaded) != 1 {
		t.Fatalf("storage saw %d upload keys, want 1", len(fs.uploaded))
	}
	key := fs.uploaded[0]
	if !strings.HasPrefix(key, "results/"+taskID.Hex()+"/") {
		t.Errorf("object key %q not namespaced under the task", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("object key %q lost the file extension", key)
	}

	attachments, err := svc.GetTaskAttachments(ctx, userID, taskID)
	if err != nil {
		t.Fatalf("GetTaskAttachments: %v", err)
	}
	if len(attachments) != 1 || attachments[0].FileName != "report.pdf" {
		t.Errorf("stored metadata wrong: %+v", attachments)
	}
}

func TestRequestUploadValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, userID, taskID := newAttachmentFixture(t)

	if _, _, err := svc.RequestUpload(ctx, userID, taskID, "", "application/pdf", 10); !errors.Is(err, ErrAttachmentValidation) {
		t.Errorf("empty name: got %v, want ErrAttachmentValidation", err)
	}
	if _, _, err := svc.RequestUpload(ctx, userID, taskID, "x.pdf", "application/pdf", 0); !errors.Is(err, ErrAttachmentValidation) {
		t.Errorf("zero size: got %v, want ErrAttachmentValidation", err)
	}
	if _, _, err := svc.RequestUpload(ctx, userID, primitive.NewObjectID(), "x.pdf", "application/pdf", 10); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("unknown task: got %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteAttachmentRemovesObjectFirst(t *testing.T) {
	ctx := context.Background()
	svc, fs, userID, taskID := newAttachmentFixture(t)

	att, _, err := svc.RequestUpload(ctx, userID, taskID, "photo.jpg", "image/jpeg", 512)
	if err != nil {
		t.Fatalf("RequestUpload: %v", err)
	}

	if err := svc.DeleteAttachment(ctx, userID, att.ID); err != nil {
		t.Fatalf("DeleteAttachment: %v", err)
	}
	if len(fs.deleted) != 1 {
		t.Errorf("storage saw %d deletions, want 1", len(fs.deleted))
	}
	if _, err := svc.GetDownloadURL(ctx, userID, att.ID); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("got %v, want ErrAttachmentNotFound after delete", err)
	}
}

func TestAttachmentOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, userID, taskID := newAttachmentFixture(t)

	att, _, err := svc.RequestUpload(ctx, userID, taskID, "data.csv", "text/csv", 64)
	if err != nil {
		t.Fatalf("RequestUpload: %v", err)
	}

	otherID := primitive.NewObjectID()
	if _, err := svc.GetDownloadURL(ctx, otherID, att.ID); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("download: got %v, want ErrAttachmentNotFound", err)
	}
	if err := svc.DeleteAttachment(ctx, otherID, att.ID); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("delete: got %v, want ErrAttachmentNotFound", err)
	}
	if _, err := svc.GetTaskAttachments(ctx, otherID, taskID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("list: got %v, want ErrTaskNotFound", err)
	}
}
