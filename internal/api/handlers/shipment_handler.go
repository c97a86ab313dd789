package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/services"
)

// ShipmentService is the shipment logic the handler depends on
type ShipmentService interface {
	CreateShipment(ctx context.Context, cmd services.CreateShipmentCommand) (*models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, cmd services.UpdateShipmentStatusCommand) (*models.Shipment, error)
	ListShipments(ctx context.Context) ([]models.Shipment, error)
}

// ShipmentResponse is returned when a shipment is created or updated
type ShipmentResponse struct {
	Message  string           `json:"message"`
	Shipment *models.Shipment `json:"shipment"`
}

// ShipmentHandler handles shipment HTTP requests
type ShipmentHandler struct {
	service ShipmentService
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(service ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// RegisterRoutes registers the shipment routes
func (h *ShipmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	shipments := router.Group("/shipments")
	shipments.POST("/add", h.CreateShipment)
	shipments.POST("/update", h.UpdateShipmentStatus)
	shipments.GET("/", h.ListShipments)
}

// CreateShipment handles POST /api/shipments/add
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	var req services.CreateShipmentCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteBindError(c, err)
		return
	}

	shipment, err := h.service.CreateShipment(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ShipmentResponse{Message: "Shipment created", Shipment: shipment})
}

// UpdateShipmentStatus handles POST /api/shipments/update
func (h *ShipmentHandler) UpdateShipmentStatus(c *gin.Context) {
	var req services.UpdateShipmentStatusCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteBindError(c, err)
		return
	}

	shipment, err := h.service.UpdateShipmentStatus(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, ShipmentResponse{Message: "Shipment status updated successfully", Shipment: shipment})
}

// ListShipments handles GET /api/shipments/
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	shipments, err := h.service.ListShipments(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipments)
}
