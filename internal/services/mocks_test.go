package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"example.com/backstage/services/supplychain/internal/chain"
	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/search"
)

// Mock repositories for testing
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) List(ctx context.Context) ([]models.Material, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Material), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByMaterial(ctx context.Context, materialID int64) ([]models.Transaction, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) List(ctx context.Context) ([]models.Shipment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) UpdateStatus(ctx context.Context, trackingID, status string) (*models.Shipment, error) {
	args := m.Called(ctx, trackingID, status)
	shipment, _ := args.Get(0).(*models.Shipment)
	return shipment, args.Error(1)
}

type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockParticipantRepository) List(ctx context.Context) ([]models.Participant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Participant), args.Error(1)
}

// MockContract stands in for the smart contract
type MockContract struct {
	mock.Mock
}

func (m *MockContract) AddMaterial(ctx context.Context, name, description, stage string) (*chain.Receipt, error) {
	args := m.Called(ctx, name, description, stage)
	receipt, _ := args.Get(0).(*chain.Receipt)
	return receipt, args.Error(1)
}

func (m *MockContract) MaterialCounter(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContract) MaterialStage(ctx context.Context, materialID int64) (string, error) {
	args := m.Called(ctx, materialID)
	return args.String(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexTransaction(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockIndexer) SearchTransactions(ctx context.Context, q search.TransactionQuery) ([]models.Transaction, error) {
	args := m.Called(ctx, q)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	args := m.Called(ctx, eventType, data)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return nil
}
