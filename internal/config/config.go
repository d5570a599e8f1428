package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// configuration for the ingest service and the device publisher

const (
	BackendBigtable = "bigtable"
	BackendPostgres = "postgres"

	OnWriteFailureAck  = "ack"
	OnWriteFailureNack = "nack"
)

type Config struct {
	HTTP     HTTPConfig
	Storage  StorageConfig
	Bigtable BigtableConfig
	DB       DBConfig
	PubSub   PubSubConfig
	Ingest   IngestConfig
}

type HTTPConfig struct {
	Port           int
	RequestTimeout time.Duration
}

type StorageConfig struct {
	Backend string
}

type BigtableConfig struct {
	Project    string
	Instance   string
	Zone       string
	AppProfile string

	Table        string
	ColumnFamily string

	MaxRetries int
}

type DBConfig struct {
	DatabaseURL string

	MinConns          int32
	MaxConns          int32
	MaxConnIdleTime   time.Duration
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration

	ConnectTimeout time.Duration
}

type PubSubConfig struct {
	Project      string
	Subscription string

	MaxOutstanding int
}

type IngestConfig struct {
	WriteTimeout time.Duration

	OnWriteFailure string
}

func Load() (Config, error) {
	var cfg Config

	// HTTP
	cfg.HTTP.Port = envInt("PORT", 8080)
	cfg.HTTP.RequestTimeout = envDuration("REQUEST_TIMEOUT", 15*time.Second)

	cfg.Storage.Backend = strings.ToLower(envString("STORAGE_BACKEND", BackendBigtable))

	// Bigtable
	cfg.Bigtable.Project = envString("BIGTABLE_PROJECT", os.Getenv("GOOGLE_CLOUD_PROJECT"))
	cfg.Bigtable.Instance = envString("BIGTABLE_INSTANCE", "my-iot-instance")
	cfg.Bigtable.Zone = envString("BIGTABLE_ZONE", "us-central1-c")
	cfg.Bigtable.AppProfile = os.Getenv("BIGTABLE_APP_PROFILE")
	cfg.Bigtable.Table = envString("BIGTABLE_TABLE", "data")
	cfg.Bigtable.ColumnFamily = envString("BIGTABLE_COLUMN_FAMILY", "data")
	cfg.Bigtable.MaxRetries = envInt("BIGTABLE_MAX_RETRIES", 6)

	// DB
	cfg.DB.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DB.MaxConns = int32(envInt("DB_MAX_CONNS", 10))
	cfg.DB.MinConns = int32(envInt("DB_MIN_CONNS", 1))
	cfg.DB.MaxConnIdleTime = envDuration("DB_MAX_CONN_IDLE_TIME", 2*time.Minute)
	cfg.DB.MaxConnLifetime = envDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.DB.HealthCheckPeriod = envDuration("DB_HEALTHCHECK_PERIOD", 30*time.Second)
	cfg.DB.ConnectTimeout = envDuration("DB_CONNECT_TIMEOUT", 3*time.Second)

	// Pub/Sub pull is optional, push is always served over HTTP.
	cfg.PubSub.Project = envString("PUBSUB_PROJECT", cfg.Bigtable.Project)
	cfg.PubSub.Subscription = os.Getenv("PUBSUB_SUBSCRIPTION")
	cfg.PubSub.MaxOutstanding = envInt("PUBSUB_MAX_OUTSTANDING", 10)

	cfg.Ingest.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.Ingest.OnWriteFailure = strings.ToLower(envString("INGEST_ON_WRITE_FAILURE", OnWriteFailureAck))

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	// HTTP
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535 (got %d)", cfg.HTTP.Port)
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", cfg.HTTP.RequestTimeout)
	}

	switch cfg.Storage.Backend {
	case BackendBigtable:
		if cfg.Bigtable.Project == "" {
			return errors.New("BIGTABLE_PROJECT (or GOOGLE_CLOUD_PROJECT) is required")
		}
	case BackendPostgres:
		if cfg.DB.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
		if err := validateDB(cfg.DB); err != nil {
			return err
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q (got %q)", BackendBigtable, BackendPostgres, cfg.Storage.Backend)
	}

	// Bigtable naming is shared by both backends.
	if cfg.Bigtable.Instance == "" {
		return errors.New("BIGTABLE_INSTANCE must not be empty")
	}
	if cfg.Bigtable.Table == "" {
		return errors.New("BIGTABLE_TABLE must not be empty")
	}
	if cfg.Bigtable.ColumnFamily == "" {
		return errors.New("BIGTABLE_COLUMN_FAMILY must not be empty")
	}
	if cfg.Bigtable.MaxRetries < 0 {
		return fmt.Errorf("BIGTABLE_MAX_RETRIES must be >= 0 (got %d)", cfg.Bigtable.MaxRetries)
	}

	// Pub/Sub
	if cfg.PubSub.Subscription != "" && cfg.PubSub.Project == "" {
		return errors.New("PUBSUB_PROJECT is required when PUBSUB_SUBSCRIPTION is set")
	}
	if cfg.PubSub.MaxOutstanding <= 0 {
		return fmt.Errorf("PUBSUB_MAX_OUTSTANDING must be > 0 (got %d)", cfg.PubSub.MaxOutstanding)
	}

	// Ingest
	if cfg.Ingest.WriteTimeout <= 0 {
		return fmt.Errorf("WRITE_TIMEOUT must be > 0 (got %s)", cfg.Ingest.WriteTimeout)
	}
	switch cfg.Ingest.OnWriteFailure {
	case OnWriteFailureAck, OnWriteFailureNack:
	default:
		return fmt.Errorf("INGEST_ON_WRITE_FAILURE must be %q or %q (got %q)", OnWriteFailureAck, OnWriteFailureNack, cfg.Ingest.OnWriteFailure)
	}
	return nil
}

func validateDB(db DBConfig) error {
	if db.MaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be > 0 (got %d)", db.MaxConns)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0 (got %d)", db.MinConns)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be <= DB_MAX_CONNS (min=%d max=%d)", db.MinConns, db.MaxConns)
	}
	if db.MaxConnIdleTime < 0 {
		return fmt.Errorf("DB_MAX_CONN_IDLE_TIME must be >= 0 (got %s)", db.MaxConnIdleTime)
	}
	if db.MaxConnLifetime < 0 {
		return fmt.Errorf("DB_MAX_CONN_LIFETIME must be >= 0 (got %s)", db.MaxConnLifetime)
	}
	if db.HealthCheckPeriod <= 0 {
		return fmt.Errorf("DB_HEALTHCHECK_PERIOD must be > 0 (got %s)", db.HealthCheckPeriod)
	}
	if db.ConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be > 0 (got %s)", db.ConnectTimeout)
	}
	return nil
}

// PublisherConfig drives the device simulator.
type PublisherConfig struct {
	Project  string
	Topic    string
	DeviceID string
	Interval time.Duration
}

func LoadPublisher() (PublisherConfig, error) {
	cfg := PublisherConfig{
		Project:  envString("PUBSUB_PROJECT", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		Topic:    os.Getenv("PUBSUB_TOPIC"),
		DeviceID: envString("DEVICE_ID", "rasp-bi-00"),
		Interval: envDuration("PUBLISH_INTERVAL", 500*time.Millisecond),
	}

	if cfg.Project == "" {
		return PublisherConfig{}, errors.New("PUBSUB_PROJECT (or GOOGLE_CLOUD_PROJECT) is required")
	}
	if cfg.Topic == "" {
		return PublisherConfig{}, errors.New("PUBSUB_TOPIC is required")
	}
	if strings.TrimSpace(cfg.DeviceID) == "" {
		return PublisherConfig{}, errors.New("DEVICE_ID must not be empty")
	}
	if cfg.Interval <= 0 {
		return PublisherConfig{}, fmt.Errorf("PUBLISH_INTERVAL must be > 0 (got %s)", cfg.Interval)
	}
	return cfg, nil
}

func envString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// it panics if the value is set but invalid
func envInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		panic(fmt.Sprintf("%s must be an integer (got %q)", key, val))
	}
	return n
}

// e.g. "200ms", "2s", "1m"
func envDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		panic(fmt.Sprintf("%s must be a valid duration (e.g. 200ms, 2s, 1m). got %q", key, val))
	}
	return d
}
