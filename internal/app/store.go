package app

import (
	"context"
	"fmt"
	"log/slog"

	"task-signup/backend/internal/config"
	"task-signup/backend/internal/database"
	"task-signup/backend/internal/logger"
	"task-signup/backend/internal/repositories"
)

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (repositories.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := database.NewMongoClient(database.MongoConfig{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			MaxPoolSize:    uint64(cfg.Mongo.MaxPoolSize),
		})
		if err != nil {
			return nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			log.Error("mongo unreachable at startup, serving anyway", "database", cfg.Mongo.Database, "error", err)
		} else {
			log.Info("connected to mongo", "database", cfg.Mongo.Database)
		}
		return repositories.NewMongoStore(client), nil

	case config.DriverFirestore:
		client, err := database.NewFirestoreClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			return nil, err
		}
		log.Info("firestore client ready", "project_id", cfg.Firestore.ProjectID)
		return repositories.NewFirestoreStore(client), nil

	case config.DriverPostgres, config.DriverSQLite:
		poolConfig := &database.PoolConfig{
			Dialect:         database.DialectPostgres,
			DSN:             cfg.GetDatabaseDSN(),
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			Logger:          logger.Gorm(log, cfg.Server.LogLevel),
		}
		if cfg.Store.Driver == config.DriverSQLite {
			poolConfig.Dialect = database.DialectSQLite
			poolConfig.DSN = cfg.Database.SQLitePath
		}

		pool, err := database.NewDatabasePool(poolConfig)
		if err != nil {
			return nil, err
		}

		store := repositories.NewGormStore(pool)
		if err := store.Migrate(); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("failed to migrate %s schema: %w", cfg.Store.Driver, err)
		}
		log.Info("sql store ready", "dialect", poolConfig.Dialect)
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
