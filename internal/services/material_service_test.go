package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/supplychain/internal/cache"
	"example.com/backstage/services/supplychain/internal/chain"
	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/search"
	"example.com/backstage/services/supplychain/internal/tracing"
)

const owner = "0x00000000000000000000000000000000000000aa"

type materialFixture struct {
	materials    *MockMaterialRepository
	transactions *MockTransactionRepository
	contract     *MockContract
	cache        *MockCache
	service      *MaterialService
}

func newMaterialFixture() *materialFixture {
	f := &materialFixture{
		materials:    new(MockMaterialRepository),
		transactions: new(MockTransactionRepository),
		contract:     new(MockContract),
		cache:        new(MockCache),
	}
	f.service = NewMaterialService(f.materials, f.transactions, f.contract, owner, f.cache,
		search.NoopIndexer{}, messaging.NoopPublisher{}, tracing.NewNoopTracer())
	return f
}

func TestAddMaterial(t *testing.T) {
	f := newMaterialFixture()
	ctx := context.Background()

	f.contract.On("AddMaterial", ctx, "Aspirin", "Pain reliever", "Manufactured").
		Return(&chain.Receipt{TransactionHash: "0xfeed", BlockNumber: 12}, nil)
	f.contract.On("MaterialCounter", ctx).Return(int64(7), nil)
	f.materials.On("Create", ctx, mock.AnythingOfType("*models.Material")).Return(nil)
	f.transactions.On("Create", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil)
	f.cache.On("Delete", ctx, []string{cache.MaterialListKey}).Return(nil)

	result, err := f.service.AddMaterial(ctx, AddMaterialCommand{Name: "Aspirin", Description: "Pain reliever", Stage: "Manufactured"})
	require.NoError(t, err)

	material := result.Material
	require.NotEmpty(t, material.ID)
	require.Equal(t, int64(7), material.BlockchainID)
	require.Equal(t, "Manufactured", material.Stage)

	tx := result.Transaction
	require.Equal(t, models.ActionMaterialCreated, tx.Action)
	require.Equal(t, int64(7), tx.MaterialID)
	require.Equal(t, owner, tx.Participant)
	require.Equal(t, "0xfeed", tx.TransactionHash)
	require.NotNil(t, tx.Details)
	require.Equal(t, material.ID, tx.Details.MaterialCreated.MaterialRef)
	require.Positive(t, tx.Timestamp)

	f.contract.AssertExpectations(t)
	f.materials.AssertExpectations(t)
	f.transactions.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestAddMaterialDefaultsStage(t *testing.T) {
	f := newMaterialFixture()
	ctx := context.Background()

	f.contract.On("AddMaterial", ctx, "Gauze", "Sterile", models.DefaultMaterialStage).Return(&chain.Receipt{TransactionHash: "0x01"}, nil)
	f.contract.On("MaterialCounter", ctx).Return(int64(1), nil)
	f.materials.On("Create", ctx, mock.Anything).Return(nil)
	f.transactions.On("Create", ctx, mock.Anything).Return(nil)
	f.cache.On("Delete", ctx, mock.Anything).Return(cache.ErrDisabled)

	result, err := f.service.AddMaterial(ctx, AddMaterialCommand{Name: "Gauze", Description: "Sterile"})
	require.NoError(t, err)
	assert.Equal(t, "Ordered", result.Material.Stage)
	f.contract.AssertExpectations(t)
}

func TestAddMaterialMissingFields(t *testing.T) {
	cases := []AddMaterialCommand{
		{Description: "Pain reliever"},
		{Name: "Aspirin"},
		{},
	}
	for _, cmd := range cases {
		f := newMaterialFixture()

		_, err := f.service.AddMaterial(context.Background(), cmd)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Equal(t, "Missing required fields", err.Error())

		f.contract.AssertNotCalled(t, "AddMaterial", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.materials.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestAddMaterialChainFailure(t *testing.T) {
	f := newMaterialFixture()
	ctx := context.Background()

	f.contract.On("AddMaterial", ctx, "Aspirin", "Pain reliever", "Ordered").
		Return(nil, errors.New("nonce too low"))

	_, err := f.service.AddMaterial(ctx, AddMaterialCommand{Name: "Aspirin", Description: "Pain reliever"})
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Contains(t, err.Error(), "nonce too low")

	f.contract.AssertNotCalled(t, "MaterialCounter", mock.Anything)
	f.materials.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddMaterialStoreFailureAfterChain(t *testing.T) {
	f := newMaterialFixture()
	ctx := context.Background()

	f.contract.On("AddMaterial", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&chain.Receipt{TransactionHash: "0x01"}, nil)
	f.contract.On("MaterialCounter", ctx).Return(int64(3), nil)
	f.materials.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

	_, err := f.service.AddMaterial(ctx, AddMaterialCommand{Name: "Aspirin", Description: "Pain reliever"})
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
	f.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListMaterialsCache(t *testing.T) {
	ctx := context.Background()
	stored := []models.Material{{ID: "m-1", BlockchainID: 1, Name: "Aspirin", Stage: "Ordered"}}

	t.Run("miss fills cache", func(t *testing.T) {
		f := newMaterialFixture()
		f.cache.On("Get", ctx, cache.MaterialListKey, mock.Anything).Return(cache.ErrMiss)
		f.materials.On("List", ctx).Return(stored, nil)
		f.cache.On("Set", ctx, cache.MaterialListKey, stored, mock.Anything).Return(nil)

		materials, err := f.service.ListMaterials(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, materials)
		f.cache.AssertExpectations(t)
	})

	t.Run("hit skips store", func(t *testing.T) {
		f := newMaterialFixture()
		f.cache.On("Get", ctx, cache.MaterialListKey, mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(2).(*[]models.Material) = stored
			}).
			Return(nil)

		materials, err := f.service.ListMaterials(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, materials)
		f.materials.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newMaterialFixture()
		f.cache.On("Get", ctx, cache.MaterialListKey, mock.Anything).Return(cache.ErrDisabled)
		f.materials.On("List", ctx).Return([]models.Material(nil), errors.New("timeout"))

		_, err := f.service.ListMaterials(ctx)
		require.Error(t, err)
		assert.Equal(t, KindInternal, KindOf(err))
	})
}

func TestMaterialHistory(t *testing.T) {
	f := newMaterialFixture()
	ctx := context.Background()
	history := []models.Transaction{
		{ID: "b", MaterialID: 5, Timestamp: 200},
		{ID: "a", MaterialID: 5, Timestamp: 100},
	}
	f.transactions.On("ListByMaterial", ctx, int64(5)).Return(history, nil)

	txs, err := f.service.MaterialHistory(ctx, "5")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, int64(5), tx.MaterialID)
	}
	assert.GreaterOrEqual(t, txs[0].Timestamp, txs[1].Timestamp)

	_, err = f.service.MaterialHistory(ctx, "abc")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestMaterialStage(t *testing.T) {
	f := newMaterialFixture()
	ctx := context.Background()
	f.contract.On("MaterialStage", ctx, int64(4)).Return("Shipped", nil)
	f.contract.On("MaterialStage", ctx, int64(9)).Return("", errors.New("execution reverted"))

	stage, err := f.service.MaterialStage(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, &MaterialStage{MaterialID: 4, Stage: "Shipped"}, stage)

	_, err = f.service.MaterialStage(ctx, "x4")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Invalid Material ID", err.Error())

	_, err = f.service.MaterialStage(ctx, "9")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}
