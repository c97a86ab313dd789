package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/internal/cache"
	"example.com/backstage/services/supplychain/internal/chain"
	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/metrics"
	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/repositories"
	"example.com/backstage/services/supplychain/internal/search"
	"example.com/backstage/services/supplychain/internal/tracing"
)

// AddMaterialCommand is the input of AddMaterial. Stage defaults to "Ordered".
type AddMaterialCommand struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Stage       string `json:"stage"`
}

// AddMaterialResult is the stored material and its creation audit entry
type AddMaterialResult struct {
	Material    *models.Material
	Transaction *models.Transaction
}

// MaterialStage is the on-chain stage of a material
type MaterialStage struct {
	MaterialID int64  `json:"materialId"`
	Stage      string `json:"stage"`
}

// MaterialService handles material business logic
type MaterialService struct {
	materials    repositories.MaterialRepository
	transactions repositories.TransactionRepository
	contract     chain.Contract
	ownerAddress string
	cache        Cache
	indexer      search.Indexer
	publisher    messaging.Publisher
	tracer       tracing.Tracer
}

// NewMaterialService creates a new material service
func NewMaterialService(
	materials repositories.MaterialRepository,
	transactions repositories.TransactionRepository,
	contract chain.Contract,
	ownerAddress string,
	cache Cache,
	indexer search.Indexer,
	publisher messaging.Publisher,
	tracer tracing.Tracer,
) *MaterialService {
	return &MaterialService{
		materials:    materials,
		transactions: transactions,
		contract:     contract,
		ownerAddress: ownerAddress,
		cache:        cache,
		indexer:      indexer,
		publisher:    publisher,
		tracer:       tracer,
	}
}

// AddMaterial adds the material on chain, then stores it under the contract's
// counter value along with a MEDICINE_CREATED transaction. A store failure after
// a successful chain submission is not reconciled.
func (s *MaterialService) AddMaterial(ctx context.Context, cmd AddMaterialCommand) (*AddMaterialResult, error) {
	if err := validateCommand(cmd, "Missing required fields"); err != nil {
		return nil, err
	}
	if cmd.Stage == "" {
		cmd.Stage = models.DefaultMaterialStage
	}

	txn := s.tracer.StartTransaction("add-material")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "stage", cmd.Stage)

	fail := func(err error) (*AddMaterialResult, error) {
		s.tracer.RecordError(txn, err)
		log.Error().Err(err).Str("name", cmd.Name).Msg("Error adding material")
		return nil, NewInternalError(err)
	}

	chainSpan := s.tracer.StartSpan("chain-add-material", txn)
	receipt, err := s.contract.AddMaterial(ctx, cmd.Name, cmd.Description, cmd.Stage)
	if err != nil {
		chainSpan.End()
		return fail(err)
	}
	counter, err := s.contract.MaterialCounter(ctx)
	chainSpan.End()
	if err != nil {
		return fail(err)
	}

	material := &models.Material{
		ID:           uuid.NewString(),
		BlockchainID: counter,
		Name:         cmd.Name,
		Description:  cmd.Description,
		Stage:        cmd.Stage,
	}

	storeSpan := s.tracer.StartSpan("store-material", txn)
	defer storeSpan.End()

	if err := s.materials.Create(ctx, material); err != nil {
		return fail(errors.Wrap(err, "failed to store material"))
	}

	transaction := &models.Transaction{
		ID:              uuid.NewString(),
		MaterialID:      material.BlockchainID,
		Participant:     s.ownerAddress,
		Action:          models.ActionMaterialCreated,
		TransactionHash: receipt.TransactionHash,
		Details:         models.NewMaterialCreatedDetails(material.ID),
		Timestamp:       nowMillis(),
	}
	if err := s.transactions.Create(ctx, transaction); err != nil {
		return fail(errors.Wrap(err, "failed to store transaction"))
	}

	metrics.MaterialsCreated.Inc()
	cacheWarn(s.cache.Delete(ctx, cache.MaterialListKey), cache.MaterialListKey, "delete")
	if err := s.indexer.IndexTransaction(ctx, transaction); err != nil {
		log.Warn().Err(err).Str("transaction_id", transaction.ID).Msg("failed to index transaction")
	}
	publish(ctx, s.publisher, messaging.EventMaterialCreated, material)

	log.Info().
		Str("material_id", material.ID).
		Int64("blockchain_id", material.BlockchainID).
		Str("tx_hash", receipt.TransactionHash).
		Msg("Material added successfully")

	return &AddMaterialResult{Material: material, Transaction: transaction}, nil
}

// ListMaterials returns every stored material
func (s *MaterialService) ListMaterials(ctx context.Context) ([]models.Material, error) {
	var cached []models.Material
	err := s.cache.Get(ctx, cache.MaterialListKey, &cached)
	if err == nil {
		return cached, nil
	}
	cacheWarn(err, cache.MaterialListKey, "get")

	materials, err := s.materials.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching materials")
		return nil, NewInternalError(err)
	}

	cacheWarn(s.cache.Set(ctx, cache.MaterialListKey, materials, 0), cache.MaterialListKey, "set")
	return materials, nil
}

// MaterialHistory returns the transactions of a material, newest first
func (s *MaterialService) MaterialHistory(ctx context.Context, id string) ([]models.Transaction, error) {
	materialID, err := parseMaterialID(id)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactions.ListByMaterial(ctx, materialID)
	if err != nil {
		log.Error().Err(err).Int64("material_id", materialID).Msg("Error fetching material history")
		return nil, NewInternalError(err)
	}
	return transactions, nil
}

// MaterialStage reads the current stage from the contract. It may differ from
// the stage stored at creation.
func (s *MaterialService) MaterialStage(ctx context.Context, id string) (*MaterialStage, error) {
	materialID, err := parseMaterialID(id)
	if err != nil {
		return nil, err
	}

	txn := s.tracer.StartTransaction("get-material-stage")
	defer s.tracer.EndTransaction(txn)

	stage, err := s.contract.MaterialStage(ctx, materialID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		log.Error().Err(err).Int64("material_id", materialID).Msg("Error fetching material stage")
		return nil, NewInternalError(err)
	}
	return &MaterialStage{MaterialID: materialID, Stage: stage}, nil
}
