package cmd

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/internal/cache"
	"example.com/backstage/services/supplychain/internal/chain"
	"example.com/backstage/services/supplychain/internal/database"
	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/search"
	"example.com/backstage/services/supplychain/internal/services"
	"example.com/backstage/services/supplychain/internal/tracing"
)

// app holds the dependencies shared by the api and worker commands
type app struct {
	store     *database.Store
	contract  *chain.EthereumContract
	ethClient *ethclient.Client
	cache     *cache.RedisCache
	publisher messaging.Publisher
	tracer    tracing.Tracer
	services  *services.Services
}

func bootstrap(ctx context.Context, cfg config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close(ctx)
		return nil, err
	}

	contract, ethClient, err := chain.Dial(ctx, cfg.Chain)
	if err != nil {
		store.Close(ctx)
		return nil, err
	}

	a := &app{store: store, contract: contract, ethClient: ethClient}

	a.cache, err = cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		a.cache = cache.NewDisabledCache()
	}

	a.tracer, err = tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		a.tracer = tracing.NewNoopTracer()
	}

	indexer, err := search.NewIndexer(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
		indexer = search.NoopIndexer{}
	}

	a.publisher, err = messaging.NewPublisher(cfg.Azure)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Service Bus publisher, continuing without events")
		a.publisher = messaging.NoopPublisher{}
	}

	a.services = services.New(*store.Repositories, contract, cfg.Chain.OwnerAddress, a.cache, indexer, a.publisher, a.tracer)
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.publisher.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Service Bus publisher")
	}
	if err := a.cache.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis cache")
	}
	if nrApp := a.tracer.Application(); nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
	a.ethClient.Close()
	if err := a.store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}
