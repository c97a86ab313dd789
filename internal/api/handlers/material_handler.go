package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/services"
)

// MaterialService is the material logic the handler depends on
type MaterialService interface {
	AddMaterial(ctx context.Context, cmd services.AddMaterialCommand) (*services.AddMaterialResult, error)
	ListMaterials(ctx context.Context) ([]models.Material, error)
	MaterialHistory(ctx context.Context, id string) ([]models.Transaction, error)
	MaterialStage(ctx context.Context, id string) (*services.MaterialStage, error)
}

// AddMaterialResponse is returned when a material is created
type AddMaterialResponse struct {
	Message     string              `json:"message"`
	Material    *models.Material    `json:"material"`
	Transaction *models.Transaction `json:"transaction"`
}

// MaterialHandler handles material HTTP requests
type MaterialHandler struct {
	service MaterialService
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(service MaterialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// RegisterRoutes registers the material routes
func (h *MaterialHandler) RegisterRoutes(router *gin.RouterGroup) {
	materials := router.Group("/materials")
	materials.POST("/add", h.AddMaterial)
	materials.GET("/", h.ListMaterials)
	materials.GET("/:id/history", h.MaterialHistory)
	materials.GET("/:id/stage", h.MaterialStage)
}

// AddMaterial handles POST /api/materials/add
func (h *MaterialHandler) AddMaterial(c *gin.Context) {
	var req services.AddMaterialCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteBindError(c, err)
		return
	}

	result, err := h.service.AddMaterial(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AddMaterialResponse{
		Message:     "Material added successfully",
		Material:    result.Material,
		Transaction: result.Transaction,
	})
}

// ListMaterials handles GET /api/materials/
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	materials, err := h.service.ListMaterials(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

// MaterialHistory handles GET /api/materials/:id/history
func (h *MaterialHandler) MaterialHistory(c *gin.Context) {
	transactions, err := h.service.MaterialHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// MaterialStage handles GET /api/materials/:id/stage
func (h *MaterialHandler) MaterialStage(c *gin.Context) {
	stage, err := h.service.MaterialStage(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, stage)
}
