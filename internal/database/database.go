package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/internal/models"
	"example.com/backstage/services/supplychain/internal/repositories"
)

// Store is an open storage backend exposing the repositories
type Store struct {
	Repositories *repositories.Repositories

	gormDB      *gorm.DB
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
}

// Open connects to the backend selected by cfg.Driver
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := ConnectPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return &Store{Repositories: repositories.NewGormRepositories(db), gormDB: db}, nil
	case "mongodb":
		client, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Name)
		return &Store{Repositories: repositories.NewMongoRepositories(db), mongoClient: client, mongoDB: db}, nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// ConnectPostgres opens a pooled gorm connection
func ConnectPostgres(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URI), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := RegisterMetricsHooks(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get DB instance")
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info().Str("driver", cfg.Driver).Msg("Connected to database")
	return db, nil
}

// ConnectMongo opens a MongoDB client and verifies it with a ping
func ConnectMongo(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(uint64(cfg.MaxOpenConns)).
		SetMaxConnIdleTime(cfg.ConnMaxLifetime).
		SetMonitor(NewMongoMonitor())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to document store")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "failed to ping document store")
	}

	log.Info().Str("driver", cfg.Driver).Str("database", cfg.Name).Msg("Connected to database")
	return client, nil
}

// Migrate creates tables or indexes for the open backend
func (s *Store) Migrate(ctx context.Context) error {
	if s.gormDB != nil {
		return models.SetupModels(s.gormDB)
	}
	if s.mongoDB != nil {
		return repositories.EnsureMongoIndexes(ctx, s.mongoDB)
	}
	return nil
}

// Close releases the underlying connections
func (s *Store) Close(ctx context.Context) error {
	if s.gormDB != nil {
		sqlDB, err := s.gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	if s.mongoClient != nil {
		return s.mongoClient.Disconnect(ctx)
	}
	return nil
}
