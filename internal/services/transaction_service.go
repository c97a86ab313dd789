package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/repositories"
	"example.com/backstage/services/supplychain/internal/search"
	"example.com/backstage/services/supplychain/internal/tracing"
)

// RecordTransactionCommand is the input of RecordTransaction. A zero timestamp is set to now.
type RecordTransactionCommand struct {
	MaterialID  NumericID                  `json:"materialId" validate:"required"`
	Participant string                     `json:"participant" validate:"required"`
	Action      string                     `json:"action" validate:"required"`
	Timestamp   int64                      `json:"timestamp" validate:"gte=0"`
	Details     *models.TransactionDetails `json:"details,omitempty"`
}

// TransactionService handles the transaction audit log
type TransactionService struct {
	transactions repositories.TransactionRepository
	indexer      search.Indexer
	publisher    messaging.Publisher
	tracer       tracing.Tracer
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	transactions repositories.TransactionRepository,
	indexer search.Indexer,
	publisher messaging.Publisher,
	tracer tracing.Tracer,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		indexer:      indexer,
		publisher:    publisher,
		tracer:       tracer,
	}
}

// ListTransactions returns every transaction, newest first
func (s *TransactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.transactions.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching transactions")
		return nil, NewInternalError(err)
	}
	return transactions, nil
}

// RecordTransaction appends a transaction without any chain interaction.
// The referenced material is not checked.
func (s *TransactionService) RecordTransaction(ctx context.Context, cmd RecordTransactionCommand) (*models.Transaction, error) {
	if err := validateCommand(cmd, "All fields are required"); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		ID:          uuid.NewString(),
		MaterialID:  int64(cmd.MaterialID),
		Participant: cmd.Participant,
		Action:      cmd.Action,
		Details:     cmd.Details,
		Timestamp:   cmd.Timestamp,
	}
	if transaction.Timestamp == 0 {
		transaction.Timestamp = nowMillis()
	}
	if err := transaction.ValidateDetails(); err != nil {
		return nil, NewValidationError(err.Error(), err)
	}

	txn := s.tracer.StartTransaction("record-transaction")
	defer s.tracer.EndTransaction(txn)

	if err := s.transactions.Create(ctx, transaction); err != nil {
		s.tracer.RecordError(txn, err)
		log.Error().Err(err).Int64("material_id", transaction.MaterialID).Msg("Error recording transaction")
		return nil, NewInternalError(err)
	}

	if err := s.indexer.IndexTransaction(ctx, transaction); err != nil {
		log.Warn().Err(err).Str("transaction_id", transaction.ID).Msg("failed to index transaction")
	}
	publish(ctx, s.publisher, messaging.EventTransactionRecorded, transaction)
	return transaction, nil
}

// SearchTransactions queries the search index. When search is disabled it
// filters the store listing instead.
func (s *TransactionService) SearchTransactions(ctx context.Context, q search.TransactionQuery) ([]models.Transaction, error) {
	transactions, err := s.indexer.SearchTransactions(ctx, q)
	if err == nil {
		return transactions, nil
	}
	if !errors.Is(err, search.ErrDisabled) {
		log.Error().Err(err).Msg("Error searching transactions")
		return nil, NewInternalError(err)
	}

	all, err := s.transactions.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching transactions")
		return nil, NewInternalError(err)
	}

	matched := make([]models.Transaction, 0, len(all))
	for _, tx := range all {
		if q.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp > matched[j].Timestamp })
	if len(matched) > q.Limit() {
		matched = matched[:q.Limit()]
	}
	return matched, nil
}
