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

// TemplateHandler holds the template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

// ScheduleTemplateRequest is shared by create and update. Intervals
// accept both the bare day-count form and the structured form; the
// domain type's unmarshaller normalizes either.
type ScheduleTemplateRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Description string                    `json:"description"`
	Intervals   []domain.ScheduleInterval `json:"intervals" binding:"required,min=1"`
}

// ScheduleTemplateResponse is the DTO for returning schedule templates.
type ScheduleTemplateResponse struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Intervals   []domain.ScheduleInterval `json:"intervals"`
	IsPreset    bool                      `json:"isPreset"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// FTCycleTemplateRequest is shared by create and update.
type FTCycleTemplateRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Cycles      []FTCycleRequest `json:"cycles" binding:"required,min=1,dive"`
}

// FTCycleTemplateResponse is the DTO for returning cycle templates.
type FTCycleTemplateResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Cycles      []domain.FTCycle `json:"cycles"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// MapScheduleTemplateToResponse converts a domain.ScheduleTemplate.
func MapScheduleTemplateToResponse(t *domain.ScheduleTemplate) ScheduleTemplateResponse {
	if t == nil {
		return ScheduleTemplateResponse{}
	}
	return ScheduleTemplateResponse{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Description: t.Description,
		Intervals:   t.Intervals,
		IsPreset:    t.IsPreset,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// MapFTCycleTemplateToResponse converts a domain.FTCycleTemplate.
func MapFTCycleTemplateToResponse(t *domain.FTCycleTemplate) FTCycleTemplateResponse {
	if t == nil {
		return FTCycleTemplateResponse{}
	}
	return FTCycleTemplateResponse{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Description: t.Description,
		Cycles:      t.Cycles,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func mapScheduleTemplatesToResponse(templates []domain.ScheduleTemplate) []ScheduleTemplateResponse {
	responses := make([]ScheduleTemplateResponse, len(templates))
	for i := range templates {
		responses[i] = MapScheduleTemplateToResponse(&templates[i])
	}
	return responses
}

// templateErrorStatus maps template service errors to HTTP codes.
func templateErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrTemplateValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrTemplateInUse):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrPresetImmutable):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, "Template operation failed"
	}
}

// --- Schedule Template Handlers ---

// CreateScheduleTemplate stores a user-owned schedule template.
func (h *TemplateHandler) CreateScheduleTemplate(c *gin.Context) {
	var req ScheduleTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	tmpl, err := h.templateService.CreateScheduleTemplate(c.Request.Context(), userID, req.Name, req.Description, req.Intervals)
	if err != nil {
		status, msg := templateErrorStatus(err)
		abortWithError(c, status, msg)
		return
	}
	c.JSON(http.StatusCreated, MapScheduleTemplateToResponse(tmpl))
}

// GetScheduleTemplates lists the caller's templates plus all presets.
func (h *TemplateHandler) GetScheduleTemplates(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	templates, err := h.templateService.GetScheduleTemplates(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list templates")
		return
	}
	c.JSON(http.StatusOK, mapScheduleTemplatesToResponse(templates))
}

// GetSchedulePresets lists the system templates. Requires no auth
// context beyond the middleware; presets are the same for everyone.
func (h *TemplateHandler) GetSchedulePresets(c *gin.Context) {
	templates, err := h.templateService.GetSchedulePresets(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list presets")
		return
	}
	c.JSON(http.StatusOK, mapScheduleTemplatesToResponse(templates))
}

// UpdateScheduleTemplate rewrites a user-owned schedule template.
func (h *TemplateHandler) UpdateScheduleTemplate(c *gin.Context) {
	var req ScheduleTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tmpl, err := h.templateService.UpdateScheduleTemplate(c.Request.Context(), userID, templateID, req.Name, req.Description, req.Intervals)
	if err != nil {
		status, msg := templateErrorStatus(err)
		abortWithError(c, status, msg)
		return
	}
	c.JSON(http.StatusOK, MapScheduleTemplateToResponse(tmpl))
}

// DeleteScheduleTemplate removes an unreferenced user template.
func (h *TemplateHandler) DeleteScheduleTemplate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteScheduleTemplate(c.Request.Context(), userID, templateID); err != nil {
		status, msg := templateErrorStatus(err)
		abortWithError(c, status, msg)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- F/T Cycle Template Handlers ---

// CreateFTCycleTemplate stores a user-owned cycle template.
func (h *TemplateHandler) CreateFTCycleTemplate(c *gin.Context) {
	var req FTCycleTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	tmpl, err := h.templateService.CreateFTCycleTemplate(c.Request.Context(), userID, req.Name, req.Description, mapCyclesFromRequest(req.Cycles))
	if err != nil {
		status, msg := templateErrorStatus(err)
		abortWithError(c, status, msg)
		return
	}
	c.JSON(http.StatusCreated, MapFTCycleTemplateToResponse(tmpl))
}

// GetFTCycleTemplates lists the caller's cycle templates.
func (h *TemplateHandler) GetFTCycleTemplates(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	templates, err := h.templateService.GetFTCycleTemplates(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	responses := make([]FTCycleTemplateResponse, len(templates))
	for i := range templates {
		responses[i] = MapFTCycleTemplateToResponse(&templates[i])
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateFTCycleTemplate rewrites a user-owned cycle template.
func (h *TemplateHandler) UpdateFTCycleTemplate(c *gin.Context) {
	var req FTCycleTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tmpl, err := h.templateService.UpdateFTCycleTemplate(c.Request.Context(), userID, templateID, req.Name, req.Description, mapCyclesFromRequest(req.Cycles))
	if err != nil {
		status, msg := templateErrorStatus(err)
		abortWithError(c, status, msg)
		return
	}
	c.JSON(http.StatusOK, MapFTCycleTemplateToResponse(tmpl))
}

// DeleteFTCycleTemplate removes an unreferenced cycle template.
func (h *TemplateHandler) DeleteFTCycleTemplate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteFTCycleTemplate(c.Request.Context(), userID, templateID); err != nil {
		status, msg := templateErrorStatus(err)
		abortWithError(c, status, msg)
		return
	}
	c.Status(http.StatusNoContent)
}
