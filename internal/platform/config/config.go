package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
}

// StoreConfig selects and configures the record storage backend.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite" or "postgres".
	Backend     string
	SQLitePath  string
	DatabaseURL string
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit publisher. No brokers means audit events
// go straight to the configured audit store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// QueryConfig bounds batch retrieval.
type QueryConfig struct {
	Timeout          time.Duration
	WorkerMultiplier int
	ContinuationTTL  time.Duration
}

// AuditConfig holds the values stamped onto every audit event.
type AuditConfig struct {
	NodeName    string
	PIDRoot     string
	AsyncBuffer int
}

// Config is the full process configuration.
type Config struct {
	Server Server
	Store  StoreConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Query  QueryConfig
	Audit  AuditConfig
	Locale string
	// LocaleCatalog optionally points at a YAML catalog overriding the built-in messages.
	LocaleCatalog string
}

// Defaults applied when the environment leaves a value unset.
const (
	DefaultQueryTimeout     = 20 * time.Second
	DefaultWorkerMultiplier = 4
	DefaultContinuationTTL  = 30 * time.Minute
	DefaultPIDRoot          = "CR_PID"
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	nodeName := os.Getenv("RECORDGATE_NODE_NAME")
	if nodeName == "" {
		nodeName, _ = os.Hostname()
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Server: Server{
			Addr:          envString("RECORDGATE_ADDR", ":8080"),
			LogLevel:      envString("RECORDGATE_LOG_LEVEL", "info"),
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     envString("JWT_ISSUER", "recordgate"),
		},
		Store: StoreConfig{
			Backend:     envString("RECORDGATE_STORE", "memory"),
			SQLitePath:  envString("RECORDGATE_SQLITE_PATH", "recordgate.db"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    brokers,
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", "recordgate.audit"),
		},
		Query: QueryConfig{
			Timeout:          envDuration("RECORDGATE_QUERY_TIMEOUT", DefaultQueryTimeout),
			WorkerMultiplier: envInt("RECORDGATE_WORKER_MULTIPLIER", DefaultWorkerMultiplier),
			ContinuationTTL:  envDuration("RECORDGATE_CONTINUATION_TTL", DefaultContinuationTTL),
		},
		Audit: AuditConfig{
			NodeName:    nodeName,
			PIDRoot:     envString("RECORDGATE_PID_ROOT", DefaultPIDRoot),
			AsyncBuffer: envInt("RECORDGATE_AUDIT_BUFFER", 0),
		},
		Locale:        envString("RECORDGATE_LOCALE", "en"),
		LocaleCatalog: os.Getenv("RECORDGATE_LOCALE_CATALOG"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt ignores unparsable and non-positive values.
func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
