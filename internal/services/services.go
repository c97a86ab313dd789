package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/internal/cache"
	"example.com/backstage/services/supplychain/internal/chain"
	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/repositories"
	"example.com/backstage/services/supplychain/internal/search"
	"example.com/backstage/services/supplychain/internal/tracing"
)

// Cache is the read-through cache used for listings
type Cache interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Services bundles the domain services
type Services struct {
	Materials    *MaterialService
	Shipments    *ShipmentService
	Transactions *TransactionService
	Participants *ParticipantService
}

// New wires the domain services over one storage backend
func New(
	repos repositories.Repositories,
	contract chain.Contract,
	ownerAddress string,
	cache Cache,
	indexer search.Indexer,
	publisher messaging.Publisher,
	tracer tracing.Tracer,
) *Services {
	return &Services{
		Materials:    NewMaterialService(repos.Materials, repos.Transactions, contract, ownerAddress, cache, indexer, publisher, tracer),
		Shipments:    NewShipmentService(repos.Shipments, publisher, tracer),
		Transactions: NewTransactionService(repos.Transactions, indexer, publisher, tracer),
		Participants: NewParticipantService(repos.Participants, publisher, tracer),
	}
}

// publish sends a domain event. Publishing failures are logged, never returned.
func publish(ctx context.Context, publisher messaging.Publisher, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, eventType, data); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func cacheWarn(err error, key, op string) {
	if err == nil || errors.Is(err, cache.ErrDisabled) || errors.Is(err, cache.ErrMiss) {
		return
	}
	log.Warn().Err(err).Str("key", key).Str("op", op).Msg("cache operation failed")
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
