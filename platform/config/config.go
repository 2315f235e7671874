// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig interface {
	IsMetricsEnabled() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetReconcileCron() string
	GetReconcileStrategy() string
}

// BrokerConfig provides settings for forwarding domain events to RabbitMQ.
type BrokerConfig interface {
	GetAMQPURL() string
	GetAMQPExchange() string
	IsBrokerEnabled() bool
}

// ScoringConfig provides settings for the scoring engine.
type ScoringConfig interface {
	GetProbeTimeout() time.Duration
	GetProbeCacheTTL() time.Duration
	GetScoringTablesPath() string
}

// AssignmentConfig provides settings for the worker pool.
type AssignmentConfig interface {
	IsWorkerSeedEnabled() bool
	GetWorkerSeeds() []string
}

// ConversionConfig provides settings for the conversion orchestrator.
type ConversionConfig interface {
	GetSequenceConflictRetries() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	MigrationsEnabled       bool
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	MetricsEnabled          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	ReconcileCron           string
	ReconcileStrategy       string
	AMQPURL                 string
	AMQPExchange            string
	ProbeTimeout            time.Duration
	ProbeCacheTTL           time.Duration
	ScoringTablesPath       string
	WorkerSeedEnabled       bool
	WorkerSeeds             []string
	SequenceConflictRetries int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MetricsConfig implementation
func (c *Config) IsMetricsEnabled() bool { return c.MetricsEnabled }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string    { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int     { return c.AsynqConcurrency }
func (c *Config) GetReconcileCron() string     { return c.ReconcileCron }
func (c *Config) GetReconcileStrategy() string { return c.ReconcileStrategy }

// BrokerConfig implementation
func (c *Config) GetAMQPURL() string      { return c.AMQPURL }
func (c *Config) GetAMQPExchange() string { return c.AMQPExchange }
func (c *Config) IsBrokerEnabled() bool   { return c.AMQPURL != "" }

// ScoringConfig implementation
func (c *Config) GetProbeTimeout() time.Duration  { return c.ProbeTimeout }
func (c *Config) GetProbeCacheTTL() time.Duration { return c.ProbeCacheTTL }
func (c *Config) GetScoringTablesPath() string    { return c.ScoringTablesPath }

// AssignmentConfig implementation
func (c *Config) IsWorkerSeedEnabled() bool { return c.WorkerSeedEnabled }
func (c *Config) GetWorkerSeeds() []string  { return c.WorkerSeeds }

// ConversionConfig implementation
func (c *Config) GetSequenceConflictRetries() int { return c.SequenceConflictRetries }

const defaultWorkerSeeds = "Alex Morgan <alex.morgan@salesdesk.local>;Jamie Rivera <jamie.rivera@salesdesk.local>;Sam Patel <sam.patel@salesdesk.local>"

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return load(true)
}

// LoadOperator reads configuration for offline tools that never serve HTTP,
// so JWT_ACCESS_SECRET is optional.
func LoadOperator() (*Config, error) {
	return load(false)
}

func load(requireJWT bool) (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitList(getEnv("CORS_ORIGINS", "http://localhost:4200"), ",")
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		MigrationsEnabled:       strings.EqualFold(getEnv("DB_MIGRATIONS_ENABLED", "true"), "true"),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		MetricsEnabled:          strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		ReconcileCron:           getEnv("RECONCILE_CRON", ""),
		ReconcileStrategy:       getEnv("RECONCILE_STRATEGY", "title"),
		AMQPURL:                 getEnv("AMQP_URL", ""),
		AMQPExchange:            getEnv("AMQP_EXCHANGE", "ex.salesdesk"),
		ProbeTimeout:            mustDuration(getEnv("SCORING_PROBE_TIMEOUT", "5s")),
		ProbeCacheTTL:           mustDuration(getEnv("SCORING_PROBE_CACHE_TTL", "1h")),
		ScoringTablesPath:       getEnv("SCORING_TABLES_PATH", ""),
		WorkerSeedEnabled:       strings.EqualFold(getEnv("WORKER_SEED_ENABLED", "true"), "true"),
		WorkerSeeds:             splitList(getEnv("WORKER_SEEDS", defaultWorkerSeeds), ";"),
		SequenceConflictRetries: mustInt(getEnv("SEQUENCE_CONFLICT_RETRIES", "5")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if requireJWT && cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.ProbeTimeout <= 0 {
		return nil, fmt.Errorf("SCORING_PROBE_TIMEOUT must be a positive duration")
	}
	if cfg.SequenceConflictRetries < 1 {
		return nil, fmt.Errorf("SEQUENCE_CONFLICT_RETRIES must be at least 1")
	}
	if cfg.ReconcileStrategy != "title" && cfg.ReconcileStrategy != "email" {
		return nil, fmt.Errorf("RECONCILE_STRATEGY must be title or email")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitList(value, sep string) []string {
	parts := strings.Split(value, sep)
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
