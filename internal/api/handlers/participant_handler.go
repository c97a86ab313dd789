package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/services"
)

// ParticipantService is the participant logic the handler depends on
type ParticipantService interface {
	AddParticipant(ctx context.Context, cmd services.AddParticipantCommand) (*models.Participant, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
}

// ParticipantResponse is returned when a participant is added
type ParticipantResponse struct {
	Message     string              `json:"message"`
	Participant *models.Participant `json:"participant"`
}

// ParticipantHandler handles participant HTTP requests
type ParticipantHandler struct {
	service ParticipantService
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(service ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

// RegisterRoutes registers the participant routes
func (h *ParticipantHandler) RegisterRoutes(router *gin.RouterGroup) {
	participants := router.Group("/participants")
	participants.POST("/add", h.AddParticipant)
	participants.GET("/", h.ListParticipants)
}

// AddParticipant handles POST /api/participants/add
func (h *ParticipantHandler) AddParticipant(c *gin.Context) {
	var req services.AddParticipantCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteBindError(c, err)
		return
	}

	participant, err := h.service.AddParticipant(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ParticipantResponse{Message: "Participant added successfully", Participant: participant})
}

// ListParticipants handles GET /api/participants/
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	participants, err := h.service.ListParticipants(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, participants)
}
