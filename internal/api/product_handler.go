package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"stabtrack/stability-app/internal/domain"
	"stabtrack/stability-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductHandler holds the product service dependency.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// --- DTOs ---

// FTCycleRequest is the wire form of one freeze/thaw pair.
type FTCycleRequest struct {
	Cycle   int `json:"cycle" binding:"required,min=1"`
	ThawDay int `json:"thawDay" binding:"min=0"`
	TestDay int `json:"testDay" binding:"required,min=1"`
}

// CreateProductRequest defines the expected JSON for creating a
// product. The start date is a plain "YYYY-MM-DD" calendar date.
type CreateProductRequest struct {
	Name               string           `json:"name" binding:"required"`
	Assignee           string           `json:"assignee"`
	StartDate          domain.Date      `json:"startDate" binding:"required"`
	ScheduleTemplateID *string          `json:"scheduleTemplateId"`
	FTCycleType        string           `json:"ftCycleType" binding:"omitempty,oneof=consecutive weekly biweekly custom"`
	FTCycleTemplateID  *string          `json:"ftCycleTemplateId"`
	CustomCycles       []FTCycleRequest `json:"ftCycleCustom"`
}

// ProductResponse is the DTO for returning product details.
type ProductResponse struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Assignee           string           `json:"assignee,omitempty"`
	StartDate          string           `json:"startDate"`
	ScheduleTemplateID *string          `json:"scheduleTemplateId,omitempty"`
	FTCycleType        string           `json:"ftCycleType"`
	FTCycleTemplateID  *string          `json:"ftCycleTemplateId,omitempty"`
	CustomCycles       []domain.FTCycle `json:"ftCycleCustom,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// CreateProductResponse bundles the product with its generated tasks.
type CreateProductResponse struct {
	Product ProductResponse `json:"product"`
	Tasks   []TaskResponse  `json:"tasks"`
}

// MapProductToResponse converts a domain.Product to its DTO.
func MapProductToResponse(p *domain.Product) ProductResponse {
	if p == nil {
		return ProductResponse{}
	}
	resp := ProductResponse{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Assignee:     p.Assignee,
		StartDate:    p.StartDate.String(),
		FTCycleType:  string(p.FTCycleType),
		CustomCycles: p.CustomCycles,
		CreatedAt:    p.CreatedAt,
	}
	if p.ScheduleTemplateID != nil {
		hex := p.ScheduleTemplateID.Hex()
		resp.ScheduleTemplateID = &hex
	}
	if p.FTCycleTemplateID != nil {
		hex := p.FTCycleTemplateID.Hex()
		resp.FTCycleTemplateID = &hex
	}
	return resp
}

func mapCyclesFromRequest(cycles []FTCycleRequest) []domain.FTCycle {
	if len(cycles) == 0 {
		return nil
	}
	out := make([]domain.FTCycle, len(cycles))
	for i, c := range cycles {
		out[i] = domain.FTCycle{Number: c.Cycle, ThawDay: c.ThawDay, TestDay: c.TestDay}
	}
	return out
}

func parseOptionalID(raw *string) (*primitive.ObjectID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// --- Handler Methods ---

// CreateProduct creates a product and its generated task batch.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	scheduleTemplateID, err := parseOptionalID(req.ScheduleTemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid schedule template ID format")
		return
	}
	ftCycleTemplateID, err := parseOptionalID(req.FTCycleTemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid cycle template ID format")
		return
	}

	product, tasks, err := h.productService.CreateProduct(c.Request.Context(), userID, service.ProductCreateInput{
		Name:               req.Name,
		Assignee:           req.Assignee,
		StartDate:          req.StartDate,
		ScheduleTemplateID: scheduleTemplateID,
		FTCycleType:        domain.FTCycleType(req.FTCycleType),
		FTCycleTemplateID:  ftCycleTemplateID,
		CustomCycles:       mapCyclesFromRequest(req.CustomCycles),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTemplateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create product")
		}
		return
	}

	c.JSON(http.StatusCreated, CreateProductResponse{
		Product: MapProductToResponse(product),
		Tasks:   MapTasksToResponse(tasks),
	})
}

// GetProducts lists the caller's products.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	products, err := h.productService.GetProductsByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list products")
		return
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = MapProductToResponse(&products[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetProduct returns one product.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProductByID(c.Request.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch product")
		}
		return
	}
	c.JSON(http.StatusOK, MapProductToResponse(product))
}

// GetProductTasks returns every task of one product.
func (h *ProductHandler) GetProductTasks(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.productService.GetProductTasks(c.Request.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch tasks")
		}
		return
	}
	c.JSON(http.StatusOK, MapTasksToResponse(tasks))
}

// DeleteProduct removes a product and all its tasks.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), userID, productID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
