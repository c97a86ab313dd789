package repositories

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/backstage/services/supplychain/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive for the whole test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.SetupModels(db))
	return db
}

func TestGormMaterialRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMaterialRepository(setupTestDB(t))

	material := &models.Material{BlockchainID: 1, Name: "Aspirin", Description: "Pain reliever", Stage: "Manufactured"}
	require.NoError(t, repo.Create(ctx, material))
	assert.NotEmpty(t, material.ID)

	materials, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, int64(1), materials[0].BlockchainID)
	assert.Equal(t, "Manufactured", materials[0].Stage)
}

func TestGormTransactionRepositoryOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTransactionRepository(setupTestDB(t))

	entries := []*models.Transaction{
		{MaterialID: 1, Participant: "0xa", Action: "RECEIVED", Timestamp: 100},
		{MaterialID: 2, Participant: "0xb", Action: "RECEIVED", Timestamp: 200},
		{MaterialID: 1, Participant: "0xa", Action: models.ActionMaterialCreated, Timestamp: 50,
			TransactionHash: "0xhash", Details: models.NewMaterialCreatedDetails("m-1")},
		{MaterialID: 1, Participant: "0xc", Action: "SHIPPED", Timestamp: 300},
	}
	for _, entry := range entries {
		require.NoError(t, repo.Create(ctx, entry))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, int64(300), all[0].Timestamp)
	assert.Equal(t, int64(50), all[3].Timestamp)

	history, err := repo.ListByMaterial(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, tx := range history {
		assert.Equal(t, int64(1), tx.MaterialID)
		if i > 0 {
			assert.GreaterOrEqual(t, history[i-1].Timestamp, tx.Timestamp)
		}
	}

	created := history[2]
	require.NotNil(t, created.Details)
	require.NotNil(t, created.Details.MaterialCreated)
	assert.Equal(t, "m-1", created.Details.MaterialCreated.MaterialRef)
	assert.Equal(t, "0xhash", created.TransactionHash)

	empty, err := repo.ListByMaterial(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGormShipmentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormShipmentRepository(setupTestDB(t))

	shipment := &models.Shipment{MaterialID: 1, Sender: "0xa", Receiver: "0xb", TrackingID: "TRK-1", Status: models.DefaultShipmentStatus}
	require.NoError(t, repo.Create(ctx, shipment))

	duplicate := &models.Shipment{MaterialID: 2, Sender: "0xa", Receiver: "0xb", TrackingID: "TRK-1", Status: models.DefaultShipmentStatus}
	err := repo.Create(ctx, duplicate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	updated, err := repo.UpdateStatus(ctx, "TRK-1", "Delivered")
	require.NoError(t, err)
	assert.Equal(t, "Delivered", updated.Status)
	assert.Equal(t, shipment.ID, updated.ID)

	_, err = repo.UpdateStatus(ctx, "TRK-404", "Delivered")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	shipments, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, "Delivered", shipments[0].Status)
}

func TestGormParticipantRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormParticipantRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Participant{Name: "Acme Pharma", Role: "Manufacturer", Address: "0xa"}))
	require.NoError(t, repo.Create(ctx, &models.Participant{Name: "City Pharmacy", Role: "Retailer", Address: "0xb"}))

	participants, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}
