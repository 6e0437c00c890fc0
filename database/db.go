// Package database opens the configured metabo-ui store.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/metabo-ui/metabo-ui/config"
	"github.com/metabo-ui/metabo-ui/database/cosmosdb"
	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/mongodb"
	"github.com/metabo-ui/metabo-ui/database/sqlite"
	"github.com/metabo-ui/metabo-ui/logger"
)

const connectTimeout = 30 * time.Second

// InitDB opens the backend selected by cfg.Type and checks that the
// database and its collections exist. A store that cannot be verified is
// never returned.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (model.Store, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var (
		store model.Store
		err   error
	)
	switch cfg.Type {
	case config.DatabaseTypeCosmos:
		store, err = cosmosdb.Open(ctx, cosmosdb.Options{
			Endpoint:             cfg.Cosmos.Endpoint(),
			Key:                  cfg.Cosmos.Key,
			DatabaseID:           cfg.Cosmos.DatabaseID,
			UsersContainer:       cfg.Collections.Users,
			MetabolitesContainer: cfg.Collections.Metabolites,
			MetadataContainer:    cfg.Collections.Metadata,
			ApplicationID:        config.GetName() + "/" + config.GetVersion(),
		})
	case config.DatabaseTypeMongo:
		store, err = mongodb.Open(ctx, mongodb.Options{
			URI:                   cfg.Mongo.URI,
			Database:              cfg.Mongo.Database,
			UsersCollection:       cfg.Collections.Users,
			MetabolitesCollection: cfg.Collections.Metabolites,
			MetadataCollection:    cfg.Collections.Metadata,
			AppName:               config.GetName(),
		})
	case config.DatabaseTypeSQLite:
		if err := cfg.EnsureDirectoryExists(); err != nil {
			return nil, err
		}
		store, err = sqlite.Open(sqlite.Options{
			Path:             cfg.GetSQLitePath(),
			UsersTable:       cfg.Collections.Users,
			MetabolitesTable: cfg.Collections.Metabolites,
			Debug:            config.IsDebug(),
		})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	logger.Infof("%s database opened", cfg.Type)
	return store, nil
}
