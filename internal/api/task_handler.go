package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"stabtrack/stability-app/internal/calendar"
	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/service"

	"github.com/gin-gonic/gin"
)

// TaskHandler holds the task service dependency.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// --- DTOs ---

// SetCompletedRequest carries the desired completion state. A pointer
// keeps "completed": false distinguishable from an absent field.
type SetCompletedRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// TaskResponse is the DTO for returning task details.
type TaskResponse struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"productId"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	DueDate     string     `json:"dueDate"`
	Cycle       string     `json:"cycle,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Deleted     bool       `json:"deleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// MapTaskToResponse converts a domain.Task to its DTO.
func MapTaskToResponse(t *domain.Task) TaskResponse {
	if t == nil {
		return TaskResponse{}
	}
	return TaskResponse{
		ID:          t.ID.Hex(),
		ProductID:   t.ProductID.Hex(),
		Name:        t.Name,
		Type:        string(t.Type),
		DueDate:     t.DueDate.String(),
		Cycle:       t.Cycle,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Deleted:     t.Deleted,
		DeletedAt:   t.DeletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

// MapTasksToResponse converts a slice of tasks.
func MapTasksToResponse(tasks []domain.Task) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = MapTaskToResponse(&tasks[i])
	}
	return responses
}

// --- Handler Methods ---

// GetTasks lists the caller's active tasks.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	tasks, err := h.taskService.GetTasks(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list tasks")
		return
	}
	c.JSON(http.StatusOK, MapTasksToResponse(tasks))
}

// GetDeletedTasks lists the caller's recycle bin.
func (h *TaskHandler) GetDeletedTasks(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	tasks, err := h.taskService.GetDeletedTasks(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list deleted tasks")
		return
	}
	c.JSON(http.StatusOK, MapTasksToResponse(tasks))
}

// SetCompleted updates the completion flag in either direction.
func (h *TaskHandler) SetCompleted(c *gin.Context) {
	var req SetCompletedRequest
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

	task, err := h.taskService.SetCompleted(c.Request.Context(), userID, taskID, *req.Completed)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update task")
		}
		return
	}
	c.JSON(http.StatusOK, MapTaskToResponse(task))
}

// SoftDelete moves a task to the recycle bin.
func (h *TaskHandler) SoftDelete(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.SoftDelete(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete task")
		}
		return
	}
	c.JSON(http.StatusOK, MapTaskToResponse(task))
}

// Restore brings a task back from the recycle bin.
func (h *TaskHandler) Restore(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Restore(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to restore task")
		}
		return
	}
	c.JSON(http.StatusOK, MapTaskToResponse(task))
}

// DeletePermanently purges a recycle-bin task for good.
func (h *TaskHandler) DeletePermanently(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeletePermanently(c.Request.Context(), userID, taskID); err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTaskNotDeleted):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete task")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportCalendar renders the caller's active tasks as an iCalendar
// document suitable for subscription in any calendar client.
func (h *TaskHandler) ExportCalendar(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	tasks, err := h.taskService.GetTasks(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	ics := calendar.BuildTaskCalendar("Stability Tasks", tasks)
	c.Header("Content-Disposition", `attachment; filename="stability-tasks.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
