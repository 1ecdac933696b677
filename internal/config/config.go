// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for the HTTP surface, the obligation
// stores, the catalog database, the rate feed and the ledger's own business knobs.
package config

import (
	"errors"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration and is validated during
// application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Store       StoreConfig
	Ledger      LedgerConfig
	WorkerPool  WorkerPoolConfig
	CORS        CORSConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains the rate feed and event topic configuration.
// When Enabled is false no broker connection is attempted.
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	RateTopic         string // Inbound exchange rate feed
	EventTopic        string // Outbound obligation and rate events
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the catalog and directories
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains Redis configuration, used when Store.Driver is "redis"
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// StoreConfig selects the backend of the obligation collections
type StoreConfig struct {
	Driver string
}

// LedgerConfig contains the business parameters of the ledger
type LedgerConfig struct {
	Timezone          string  // IANA zone used for calendar-day comparisons
	LowStockThreshold int     // Stock at or below this (and above zero) is low
	TopProductsLimit  int     // Default size of the top products ranking
	TrendDays         int     // Default window of the daily trend
	InitialRate       float64 // Seed rate when no rate has been recorded yet, 0 disables
}

// Location resolves the configured timezone, falling back to UTC
func (l LedgerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// CORSConfig contains the origins allowed to call the API from a browser
type CORSConfig struct {
	AllowedOrigins []string
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config only when the feed is switched on
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
		}
		if c.Kafka.RateTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_RATE_TOPIC is required")
		}
		if c.Kafka.EventTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_EVENT_TOPIC is required")
		}
		if c.Kafka.ConsumerGroup == "" {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
		}
		if c.Kafka.MinBytes <= 0 {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
		}
		if c.Kafka.MaxBytes <= 0 {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
		}
		if c.Kafka.MaxWait <= 0 {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
		}
	}

	// Validate store selection and its backend
	switch c.Store.Driver {
	case StoreDriverPostgres:
	case StoreDriverRedis:
		if c.Redis.URL == "" {
			validationErrors = append(validationErrors, "REDIS_URL is required when STORE_DRIVER is redis")
		}
	default:
		validationErrors = append(validationErrors, "STORE_DRIVER must be one of postgres, redis")
	}

	// PostgreSQL always holds the rate history
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate ledger knobs
	if _, err := time.LoadLocation(c.Ledger.Timezone); err != nil {
		validationErrors = append(validationErrors, "LEDGER_TIMEZONE must be a valid IANA timezone")
	}
	if c.Ledger.LowStockThreshold <= 0 {
		validationErrors = append(validationErrors, "LEDGER_LOW_STOCK_THRESHOLD must be greater than 0")
	}
	if c.Ledger.TopProductsLimit <= 0 {
		validationErrors = append(validationErrors, "LEDGER_TOP_PRODUCTS_LIMIT must be greater than 0")
	}
	if c.Ledger.TrendDays <= 0 {
		validationErrors = append(validationErrors, "LEDGER_TREND_DAYS must be greater than 0")
	}
	if c.Ledger.InitialRate < 0 {
		validationErrors = append(validationErrors, "LEDGER_INITIAL_RATE cannot be negative")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
