package main

import (
	"context"
	"fmt"

	"github.com/bazarblot/marketplace/internal/core/ports"
	"github.com/bazarblot/marketplace/internal/infrastructure/config"
	"github.com/bazarblot/marketplace/internal/infrastructure/db/gormstore"
	mongostore "github.com/bazarblot/marketplace/internal/infrastructure/db/mongo"
	probes "github.com/bazarblot/marketplace/internal/infrastructure/http/handlers"
)

// store bundles the repositories of the configured backend.
type store struct {
	users    ports.UserRepository
	products ports.ProductRepository
	ping     probes.Check
	close    func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &store{
			users:    mongostore.NewUserRepository(db),
			products: mongostore.NewProductRepository(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    client.Disconnect,
		}, nil

	case config.DriverSQLite, config.DriverPostgres:
		db, err := gormstore.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		if err := gormstore.Migrate(ctx, db); err != nil {
			_ = gormstore.Close(db)
			return nil, err
		}
		return &store{
			users:    gormstore.NewUserRepository(db),
			products: gormstore.NewProductRepository(db),
			ping:     func(ctx context.Context) error { return gormstore.Ping(ctx, db) },
			close:    func(context.Context) error { return gormstore.Close(db) },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
