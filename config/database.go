package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeCosmos DatabaseType = "cosmos"
	DatabaseTypeMongo  DatabaseType = "mongo"
	DatabaseTypeSQLite DatabaseType = "sqlite"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type        DatabaseType `env:"METABO_DB_TYPE" envDefault:"cosmos"`
	Collections CollectionsConfig
	Cosmos      CosmosConfig
	Mongo       MongoConfig
	SQLite      SQLiteConfig
}

// CollectionsConfig names the collections (Cosmos containers) used by every backend.
type CollectionsConfig struct {
	Metabolites string `env:"COSMOSDB_METABOLITES_CONTAINER_ID" envDefault:"metabolites"`
	Metadata    string `env:"COSMOSDB_METADATA_CONTAINER_ID"`
	Users       string `env:"COSMOSDB_USERS_CONTAINER_ID" envDefault:"users"`
}

// CosmosConfig holds Azure Cosmos DB specific configuration
type CosmosConfig struct {
	Host       string `env:"COSMOSDB_HOST"`
	Key        string `env:"COSMOSDB_KEY"`
	DatabaseID string `env:"COSMOSDB_DATABASE_ID"`
}

// MongoConfig holds MongoDB specific configuration
type MongoConfig struct {
	URI      string `env:"MONGODB_URI"`
	Database string `env:"MONGODB_DATABASE"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `env:"METABO_SQLITE_PATH"`
}

// Endpoint returns the account endpoint. A bare account name is expanded to
// the public Azure endpoint; anything with a scheme is used as is.
func (c CosmosConfig) Endpoint() string {
	if strings.Contains(c.Host, "://") {
		return c.Host
	}
	return fmt.Sprintf("https://%s.documents.azure.com:443/", c.Host)
}

// GetSQLitePath returns the configured SQLite file or the default one.
func (c *DatabaseConfig) GetSQLitePath() string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	if IsDebug() {
		return "db/metabo-ui.db"
	}
	return "/etc/metabo-ui/metabo-ui.db"
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	if c.Collections.Users == "" {
		return fmt.Errorf("users collection id cannot be empty")
	}
	if c.Collections.Metabolites == "" {
		return fmt.Errorf("metabolites collection id cannot be empty")
	}
	switch c.Type {
	case DatabaseTypeCosmos:
		if c.Cosmos.Host == "" {
			return fmt.Errorf("Cosmos DB host cannot be empty")
		}
		if c.Cosmos.Key == "" {
			return fmt.Errorf("Cosmos DB key cannot be empty")
		}
		if c.Cosmos.DatabaseID == "" {
			return fmt.Errorf("Cosmos DB database id cannot be empty")
		}
	case DatabaseTypeMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MongoDB URI cannot be empty")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("MongoDB database name cannot be empty")
		}
	case DatabaseTypeSQLite:
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.GetSQLitePath())
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
