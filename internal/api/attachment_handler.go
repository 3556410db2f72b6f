package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AttachmentHandler holds the attachment service dependency.
type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// --- DTOs ---

// RequestUploadRequest describes the file the client intends to upload.
type RequestUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// AttachmentResponse is the DTO for returning attachment metadata.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// RequestUploadResponse returns the recorded metadata plus the
// presigned PUT URL the client uploads the file against.
type RequestUploadResponse struct {
	Attachment AttachmentResponse `json:"attachment"`
	UploadURL  string             `json:"uploadUrl"`
	Method     string             `json:"method"` // always "PUT"
}

// DownloadURLResponse carries a presigned GET URL.
type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// MapAttachmentToResponse converts a domain.Attachment to its DTO.
func MapAttachmentToResponse(a *domain.Attachment) AttachmentResponse {
	if a == nil {
		return AttachmentResponse{}
	}
	return AttachmentResponse{
		ID:          a.ID.Hex(),
		TaskID:      a.TaskID.Hex(),
		FileName:    a.FileName,
		ContentType: a.ContentType,
		Size:        a.Size,
		UploadedAt:  a.UploadedAt,
	}
}

// --- Handler Methods ---

// RequestUpload records attachment metadata for a task and returns a
// presigned upload URL.
func (h *AttachmentHandler) RequestUpload(c *gin.Context) {
	var req RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	att, uploadURL, err := h.attachmentService.RequestUpload(c.Request.Context(), userID, taskID, req.FileName, req.ContentType, req.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAttachmentValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to prepare upload")
		}
		return
	}

	c.JSON(http.StatusCreated, RequestUploadResponse{
		Attachment: MapAttachmentToResponse(att),
		UploadURL:  uploadURL,
		Method:     http.MethodPut,
	})
}

// GetTaskAttachments lists the attachments of one task.
func (h *AttachmentHandler) GetTaskAttachments(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attachments, err := h.attachmentService.GetTaskAttachments(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to list attachments")
		}
		return
	}

	responses := make([]AttachmentResponse, len(attachments))
	for i := range attachments {
		responses[i] = MapAttachmentToResponse(&attachments[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetDownloadURL returns a presigned GET URL for one attachment.
func (h *AttachmentHandler) GetDownloadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	attachmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.attachmentService.GetDownloadURL(c.Request.Context(), userID, attachmentID)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL")
		}
		return
	}
	c.JSON(http.StatusOK, DownloadURLResponse{DownloadURL: url})
}

// DeleteAttachment removes the stored file and its metadata.
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	attachmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.attachmentService.DeleteAttachment(c.Request.Context(), userID, attachmentID); err != nil {
		if errors.Is(err, service.ErrAttachmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete attachment")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
