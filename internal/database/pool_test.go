package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func memoryConfig() *PoolConfig {
	return &PoolConfig{
		Dialect:      DialectSQLite,
		DSN:          "file::memory:",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
		LogLevel:     logger.Silent,
	}
}

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig()

	if config.MaxOpenConns != 25 {
		t.Errorf("Expected MaxOpenConns to be 25, got %d", config.MaxOpenConns)
	}

	if config.MaxIdleConns != 10 {
		t.Errorf("Expected MaxIdleConns to be 10, got %d", config.MaxIdleConns)
	}

	if config.ConnMaxLifetime != time.Hour {
		t.Errorf("Expected ConnMaxLifetime to be 1 hour, got %v", config.ConnMaxLifetime)
	}

	if config.ConnMaxIdleTime != time.Minute*30 {
		t.Errorf("Expected ConnMaxIdleTime to be 30 minutes, got %v", config.ConnMaxIdleTime)
	}

	if config.Dialect != DialectPostgres {
		t.Errorf("Expected default dialect postgres, got %s", config.Dialect)
	}
}

func TestNewDatabasePool_WithNilConfig(t *testing.T) {
	_, err := NewDatabasePool(nil)

	if err == nil {
		t.Error("Expected error due to empty DSN, got nil")
	}
}

func TestNewDatabasePool_InvalidConfigs(t *testing.T) {
	tests := []struct {
		name   string
		config *PoolConfig
	}{
		{
			name:   "Empty DSN",
			config: &PoolConfig{Dialect: DialectSQLite},
		},
		{
			name: "Negative limits",
			config: &PoolConfig{
				Dialect:      DialectSQLite,
				DSN:          "file::memory:",
				MaxOpenConns: -1,
			},
		},
		{
			name: "Negative lifetime",
			config: &PoolConfig{
				Dialect:         DialectSQLite,
				DSN:             "file::memory:",
				ConnMaxLifetime: -time.Hour,
			},
		},
		{
			name:   "Unknown dialect",
			config: &PoolConfig{Dialect: "oracle", DSN: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDatabasePool(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestNewDatabasePool_SQLiteMemory(t *testing.T) {
	pool, err := NewDatabasePool(memoryConfig())
	require.NoError(t, err)
	defer pool.Close()

	assert.NoError(t, pool.Health())

	stats := pool.Stats()
	assert.Equal(t, DialectSQLite, stats["dialect"])
	assert.Equal(t, 1, stats["max_open_connections"])
}

func TestDatabasePool_Migrate(t *testing.T) {
	pool, err := NewDatabasePool(memoryConfig())
	require.NoError(t, err)
	defer pool.Close()

	type widget struct {
		ID   uint
		Name string `gorm:"uniqueIndex"`
	}

	require.NoError(t, pool.Migrate(&widget{}))
	assert.True(t, pool.DB.Migrator().HasTable(&widget{}))
}

func TestDatabasePool_Stats_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{
		DB:     nil,
		config: &PoolConfig{MaxOpenConns: 10},
	}

	stats := pool.Stats()

	if _, hasError := stats["error"]; !hasError {
		t.Error("Expected error in stats when DB is nil")
	}
}

func TestDatabasePool_Health_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{DB: nil}

	if err := pool.HealthContext(context.Background()); err == nil {
		t.Error("Expected error when checking health with nil DB")
	}
}

func TestDatabasePool_Close_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{DB: nil}

	if err := pool.Close(); err != nil {
		t.Errorf("Expected no error when closing nil DB, got: %v", err)
	}
}

func TestNewMongoClient_Validation(t *testing.T) {
	_, err := NewMongoClient(MongoConfig{Database: "todo"})
	assert.Error(t, err)

	_, err = NewMongoClient(MongoConfig{URI: "mongodb://localhost:27017"})
	assert.Error(t, err)

	_, err = NewMongoClient(MongoConfig{URI: "not-a-uri", Database: "todo"})
	assert.Error(t, err)
}

func TestMongoClient_NilSafe(t *testing.T) {
	var client *MongoClient

	assert.Error(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close(context.Background()))
}

func TestNewFirestoreClient_RequiresProject(t *testing.T) {
	_, err := NewFirestoreClient(context.Background(), "")
	assert.Error(t, err)
}

func BenchmarkDefaultPoolConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultPoolConfig()
	}
}
