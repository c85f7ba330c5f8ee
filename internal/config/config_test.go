package config

import (
	"os"
	"testing"
	"time"
)

var allEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	"ENVIRONMENT", "LOG_LEVEL", "STRICT_STATUS_CODES",
	"STORE_DRIVER", "STORE_OP_TIMEOUT",
	"MONGO_URI", "MONGO_DATABASE", "MONGO_CONNECT_TIMEOUT", "MONGO_MAX_POOL_SIZE",
	"FIRESTORE_PROJECT_ID",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "SQLITE_PATH",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
	"REDIS_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_MIN_IDLE_CONNS", "REDIS_MAX_RETRIES", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"CACHE_ENABLED", "CACHE_LIST_TTL",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
	"CORS_ALLOW_ORIGINS", "HASH_PASSWORDS", "BCRYPT_COST",
}

func setEnvVars(vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func clearEnvVars(vars []string) {
	for _, k := range vars {
		os.Unsetenv(k)
	}
}

func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	clearEnvVars(allEnvVars)
	setEnvVars(vars)
	t.Cleanup(func() { clearEnvVars(allEnvVars) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withEnv(t, nil)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Port != "3001" {
		t.Errorf("Expected default port '3001', got %s", config.Server.Port)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Server.StrictStatusCodes {
		t.Error("Expected strict status codes to be off by default")
	}

	if config.Store.Driver != DriverMongo {
		t.Errorf("Expected default store driver 'mongo', got %s", config.Store.Driver)
	}

	if config.Store.OpTimeout != 5*time.Second {
		t.Errorf("Expected default store op timeout 5s, got %v", config.Store.OpTimeout)
	}

	if config.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("Expected default mongo URI, got %s", config.Mongo.URI)
	}

	if config.Mongo.Database != "todo" {
		t.Errorf("Expected default mongo database 'todo', got %s", config.Mongo.Database)
	}

	if config.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default max open conns 25, got %d", config.Database.MaxOpenConns)
	}

	if config.Redis.Enabled {
		t.Error("Expected redis to be disabled by default")
	}

	if !config.Cache.Enabled {
		t.Error("Expected cache to be enabled by default")
	}

	if !config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}

	if len(config.CORS.AllowOrigins) != 1 || config.CORS.AllowOrigins[0] != "*" {
		t.Errorf("Expected default CORS origins [*], got %v", config.CORS.AllowOrigins)
	}

	if config.Security.HashPasswords {
		t.Error("Expected password hashing to be disabled by default")
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	withEnv(t, map[string]string{
		"HOST":                "127.0.0.1",
		"PORT":                "9000",
		"ENVIRONMENT":         "production",
		"STRICT_STATUS_CODES": "true",
		"STORE_DRIVER":        "Postgres",
		"DB_HOST":             "db.example.com",
		"DB_PASSWORD":         "secure_password",
		"DB_MAX_OPEN_CONNS":   "50",
		"REDIS_ENABLED":       "true",
		"REDIS_HOST":          "redis.example.com",
		"REDIS_DB":            "1",
		"RATE_LIMIT_ENABLED":  "false",
		"READ_TIMEOUT":        "45s",
		"CORS_ALLOW_ORIGINS":  "https://a.example.com, https://b.example.com",
		"HASH_PASSWORDS":      "true",
		"BCRYPT_COST":         "12",
	})

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with custom config, got: %v", err)
	}

	if config.GetServerAddr() != "127.0.0.1:9000" {
		t.Errorf("Expected server addr '127.0.0.1:9000', got %s", config.GetServerAddr())
	}

	if !config.Server.StrictStatusCodes {
		t.Error("Expected strict status codes to be enabled")
	}

	if config.Store.Driver != DriverPostgres {
		t.Errorf("Expected store driver to be lower-cased 'postgres', got %s", config.Store.Driver)
	}

	if config.Database.Host != "db.example.com" {
		t.Errorf("Expected DB host 'db.example.com', got %s", config.Database.Host)
	}

	if config.Database.MaxOpenConns != 50 {
		t.Errorf("Expected max open conns 50, got %d", config.Database.MaxOpenConns)
	}

	if !config.Redis.Enabled || config.Redis.DB != 1 {
		t.Errorf("Expected redis enabled on DB 1, got enabled=%v db=%d", config.Redis.Enabled, config.Redis.DB)
	}

	if config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}

	if config.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Expected read timeout 45s, got %v", config.Server.ReadTimeout)
	}

	if len(config.CORS.AllowOrigins) != 2 || config.CORS.AllowOrigins[1] != "https://b.example.com" {
		t.Errorf("Expected two trimmed CORS origins, got %v", config.CORS.AllowOrigins)
	}

	if !config.Security.HashPasswords || config.Security.BCryptCost != 12 {
		t.Errorf("Expected hashing with cost 12, got %v/%d", config.Security.HashPasswords, config.Security.BCryptCost)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		errorMsg string
	}{
		{
			name:     "Unknown driver",
			envVars:  map[string]string{"STORE_DRIVER": "cassandra"},
			errorMsg: `unsupported store driver "cassandra"`,
		},
		{
			name:     "Firestore without project",
			envVars:  map[string]string{"STORE_DRIVER": "firestore"},
			errorMsg: "FIRESTORE_PROJECT_ID is required for the firestore driver",
		},
		{
			name:     "Production mongo with default URI",
			envVars:  map[string]string{"ENVIRONMENT": "production"},
			errorMsg: "MONGO_URI must be set in production",
		},
		{
			name:     "Production postgres without password",
			envVars:  map[string]string{"ENVIRONMENT": "production", "STORE_DRIVER": "postgres"},
			errorMsg: "database password is required in production",
		},
		{
			name:     "Bcrypt cost out of range",
			envVars:  map[string]string{"HASH_PASSWORDS": "true", "BCRYPT_COST": "40"},
			errorMsg: "BCRYPT_COST must be between 4 and 31, got 40",
		},
		{
			name:     "Negative mongo pool size",
			envVars:  map[string]string{"MONGO_MAX_POOL_SIZE": "-1"},
			errorMsg: "MONGO_MAX_POOL_SIZE must not be negative, got -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.envVars)

			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("Expected error %q, got none", tt.errorMsg)
			}
			if err.Error() != tt.errorMsg {
				t.Errorf("Expected error %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestLoadConfig_ValidProductionSetups(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "Production mongo with explicit URI",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"MONGO_URI":   "mongodb://mongo.internal:27017",
			},
		},
		{
			name: "Production sqlite",
			envVars: map[string]string{
				"ENVIRONMENT":  "production",
				"STORE_DRIVER": "sqlite",
			},
		},
		{
			name: "Firestore with project",
			envVars: map[string]string{
				"STORE_DRIVER":         "firestore",
				"FIRESTORE_PROJECT_ID": "demo-project",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.envVars)

			config, err := LoadConfig()
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if config == nil {
				t.Fatal("Expected config to be loaded")
			}
		})
	}
}

func TestConfig_GetDatabaseDSN(t *testing.T) {
	config := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
			SSLMode:  "require",
		},
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require"
	actual := config.GetDatabaseDSN()

	if actual != expected {
		t.Errorf("Expected DSN '%s', got '%s'", expected, actual)
	}
}

func TestConfig_GetRedisAddr(t *testing.T) {
	config := &Config{
		Redis: RedisConfig{
			Host: "redis.example.com",
			Port: "6380",
		},
	}

	if actual := config.GetRedisAddr(); actual != "redis.example.com:6380" {
		t.Errorf("Expected Redis addr 'redis.example.com:6380', got '%s'", actual)
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		environment string
		expected    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, test := range tests {
		config := &Config{Server: ServerConfig{Environment: test.environment}}

		if actual := config.IsProduction(); actual != test.expected {
			t.Errorf("For environment '%s', expected IsProduction() = %v, got %v",
				test.environment, test.expected, actual)
		}
	}
}

func TestGetEnvAsInt(t *testing.T) {
	key := "TEST_INT_VAR"
	defaultValue := 42

	os.Unsetenv(key)
	if result := getEnvAsInt(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %d, got %d", defaultValue, result)
	}

	os.Setenv(key, "100")
	defer os.Unsetenv(key)

	if result := getEnvAsInt(key, defaultValue); result != 100 {
		t.Errorf("Expected env value 100, got %d", result)
	}

	os.Setenv(key, "not-a-number")
	if result := getEnvAsInt(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %d for invalid int, got %d", defaultValue, result)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	key := "TEST_BOOL_VAR"
	defaultValue := true
	defer os.Unsetenv(key)

	testCases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{"invalid", defaultValue},
	}

	for _, tc := range testCases {
		os.Setenv(key, tc.value)
		if result := getEnvAsBool(key, defaultValue); result != tc.expected {
			t.Errorf("For value '%s', expected %v, got %v", tc.value, tc.expected, result)
		}
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	defaultValue := 30 * time.Second
	defer os.Unsetenv(key)

	os.Setenv(key, "5m")
	if result := getEnvAsDuration(key, defaultValue); result != 5*time.Minute {
		t.Errorf("Expected env value 5m, got %v", result)
	}

	os.Setenv(key, "not-a-duration")
	if result := getEnvAsDuration(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %v for invalid duration, got %v", defaultValue, result)
	}
}

func TestGetEnvAsSlice(t *testing.T) {
	key := "TEST_SLICE_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, " , ,")
	if result := getEnvAsSlice(key, []string{"fallback"}); len(result) != 1 || result[0] != "fallback" {
		t.Errorf("Expected fallback for blank list, got %v", result)
	}

	os.Setenv(key, "a,b , c")
	result := getEnvAsSlice(key, nil)
	if len(result) != 3 || result[1] != "b" || result[2] != "c" {
		t.Errorf("Expected [a b c], got %v", result)
	}
}

func BenchmarkLoadConfig(b *testing.B) {
	setEnvVars(map[string]string{"PORT": "8080", "STORE_DRIVER": "sqlite"})
	defer clearEnvVars([]string{"PORT", "STORE_DRIVER"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(); err != nil {
			b.Fatalf("Failed to load config: %v", err)
		}
	}
}
