package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/search"
	"example.com/backstage/services/supplychain/internal/services"
)

// TransactionService is the audit log logic the handler depends on
type TransactionService interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	RecordTransaction(ctx context.Context, cmd services.RecordTransactionCommand) (*models.Transaction, error)
	SearchTransactions(ctx context.Context, q search.TransactionQuery) ([]models.Transaction, error)
}

// TransactionResponse is returned when a transaction is recorded
type TransactionResponse struct {
	Message     string              `json:"message"`
	Transaction *models.Transaction `json:"transaction"`
}

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	service TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// RegisterRoutes registers the transaction routes
func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions")
	transactions.GET("/", h.ListTransactions)
	transactions.GET("/search", h.SearchTransactions)
	transactions.POST("/add", h.RecordTransaction)
}

// ListTransactions handles GET /api/transactions/
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.service.ListTransactions(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// RecordTransaction handles POST /api/transactions/add
func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	var req services.RecordTransactionCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteBindError(c, err)
		return
	}

	transaction, err := h.service.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, TransactionResponse{Message: "Transaction recorded successfully", Transaction: transaction})
}

// SearchTransactions handles GET /api/transactions/search?action=&participant=&materialId=&size=
func (h *TransactionHandler) SearchTransactions(c *gin.Context) {
	q := search.TransactionQuery{
		Action:      c.Query("action"),
		Participant: c.Query("participant"),
	}
	if raw := c.Query("materialId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid Material ID"})
			return
		}
		q.MaterialID = &id
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid size"})
			return
		}
		q.Size = size
	}

	transactions, err := h.service.SearchTransactions(c.Request.Context(), q)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}
