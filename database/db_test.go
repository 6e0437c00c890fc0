package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/metabo-ui/metabo-ui/config"
	"github.com/metabo-ui/metabo-ui/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	return config.DatabaseConfig{
		Type:        config.DatabaseTypeSQLite,
		Collections: config.CollectionsConfig{Users: "users", Metabolites: "metabolites"},
		SQLite:      config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "metabo.db")},
	}
}

func TestInitDB_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := InitDB(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer store.Close(ctx)

	assert.NoError(t, store.Ping(ctx))

	_, err = store.Users().GetByID(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestInitDB_InvalidConfig(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Type = "oracle"
	_, err := InitDB(context.Background(), cfg)
	assert.Error(t, err)

	cfg = sqliteConfig(t)
	cfg.Type = config.DatabaseTypeCosmos
	_, err = InitDB(context.Background(), cfg)
	assert.ErrorContains(t, err, "Cosmos DB host")
}
