package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/search"
	"example.com/backstage/services/supplychain/internal/services"
)

type MockMaterialService struct {
	mock.Mock
}

func (m *MockMaterialService) AddMaterial(ctx context.Context, cmd services.AddMaterialCommand) (*services.AddMaterialResult, error) {
	args := m.Called(ctx, cmd)
	result, _ := args.Get(0).(*services.AddMaterialResult)
	return result, args.Error(1)
}

func (m *MockMaterialService) ListMaterials(ctx context.Context) ([]models.Material, error) {
	args := m.Called(ctx)
	materials, _ := args.Get(0).([]models.Material)
	return materials, args.Error(1)
}

func (m *MockMaterialService) MaterialHistory(ctx context.Context, id string) ([]models.Transaction, error) {
	args := m.Called(ctx, id)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

func (m *MockMaterialService) MaterialStage(ctx context.Context, id string) (*services.MaterialStage, error) {
	args := m.Called(ctx, id)
	stage, _ := args.Get(0).(*services.MaterialStage)
	return stage, args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	args := m.Called(ctx)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

func (m *MockTransactionService) RecordTransaction(ctx context.Context, cmd services.RecordTransactionCommand) (*models.Transaction, error) {
	args := m.Called(ctx, cmd)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionService) SearchTransactions(ctx context.Context, q search.TransactionQuery) ([]models.Transaction, error) {
	args := m.Called(ctx, q)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(register func(*gin.RouterGroup), method, path, body string) *httptest.ResponseRecorder {
	router := gin.New()
	register(router.Group("/api"))
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(services.NewValidationError("bad", nil)))
	assert.Equal(t, http.StatusNotFound, StatusCode(services.NewNotFoundError("missing", nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(services.NewInternalError(errors.New("down"))))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("unclassified")))
}

func TestAddMaterialHandler(t *testing.T) {
	svc := new(MockMaterialService)
	h := NewMaterialHandler(svc)

	cmd := services.AddMaterialCommand{Name: "Aspirin", Description: "Pain reliever", Stage: "Manufactured"}
	svc.On("AddMaterial", mock.Anything, cmd).Return(&services.AddMaterialResult{
		Material:    &models.Material{ID: "m-1", BlockchainID: 1, Stage: "Manufactured"},
		Transaction: &models.Transaction{ID: "t-1", Action: models.ActionMaterialCreated},
	}, nil)

	rec := serve(h.RegisterRoutes, http.MethodPost, "/api/materials/add",
		`{"name":"Aspirin","description":"Pain reliever","stage":"Manufactured"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Material added successfully"`)
	assert.Contains(t, rec.Body.String(), `"blockchainId":1`)
	svc.AssertExpectations(t)
}

func TestAddMaterialHandlerErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockMaterialService)
		rec := serve(NewMaterialHandler(svc).RegisterRoutes, http.MethodPost, "/api/materials/add", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "AddMaterial", mock.Anything, mock.Anything)
	})

	t.Run("chain failure surfaces message", func(t *testing.T) {
		svc := new(MockMaterialService)
		svc.On("AddMaterial", mock.Anything, mock.Anything).Return(nil, services.NewInternalError(errors.New("insufficient funds for gas")))
		rec := serve(NewMaterialHandler(svc).RegisterRoutes, http.MethodPost, "/api/materials/add", `{"name":"a","description":"b"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"insufficient funds for gas"}`, rec.Body.String())
	})
}

func TestMaterialStageHandler(t *testing.T) {
	svc := new(MockMaterialService)
	svc.On("MaterialStage", mock.Anything, "3").Return(&services.MaterialStage{MaterialID: 3, Stage: "Delivered"}, nil)
	svc.On("MaterialStage", mock.Anything, "x").Return(nil, services.NewValidationError("Invalid Material ID", nil))

	rec := serve(NewMaterialHandler(svc).RegisterRoutes, http.MethodGet, "/api/materials/3/stage", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"materialId":3,"stage":"Delivered"}`, rec.Body.String())

	rec = serve(NewMaterialHandler(svc).RegisterRoutes, http.MethodGet, "/api/materials/x/stage", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid Material ID"}`, rec.Body.String())
}

func TestSearchTransactionsHandler(t *testing.T) {
	svc := new(MockTransactionService)
	id := int64(4)
	svc.On("SearchTransactions", mock.Anything, search.TransactionQuery{Action: "SHIPPED", MaterialID: &id, Size: 5}).
		Return([]models.Transaction{{ID: "t-1"}}, nil)

	rec := serve(NewTransactionHandler(svc).RegisterRoutes, http.MethodGet, "/api/transactions/search?action=SHIPPED&materialId=4&size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"t-1"`)

	rec = serve(NewTransactionHandler(svc).RegisterRoutes, http.MethodGet, "/api/transactions/search?materialId=four", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "SearchTransactions", 1)
}

func TestRecordTransactionHandler(t *testing.T) {
	svc := new(MockTransactionService)
	cmd := services.RecordTransactionCommand{MaterialID: 2, Participant: "0xa", Action: "SHIPPED", Timestamp: 99}
	svc.On("RecordTransaction", mock.Anything, cmd).Return(&models.Transaction{ID: "t-9", MaterialID: 2, Timestamp: 99}, nil)

	rec := serve(NewTransactionHandler(svc).RegisterRoutes, http.MethodPost, "/api/transactions/add",
		`{"materialId":2,"participant":"0xa","action":"SHIPPED","timestamp":99}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Transaction recorded successfully"`)
}
