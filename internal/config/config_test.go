package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "REQUEST_TIMEOUT", "STORAGE_BACKEND",
	"GOOGLE_CLOUD_PROJECT", "BIGTABLE_PROJECT", "BIGTABLE_INSTANCE", "BIGTABLE_ZONE",
	"BIGTABLE_APP_PROFILE", "BIGTABLE_TABLE", "BIGTABLE_COLUMN_FAMILY", "BIGTABLE_MAX_RETRIES",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_MAX_CONN_IDLE_TIME", "DB_MAX_CONN_LIFETIME",
	"DB_HEALTHCHECK_PERIOD", "DB_CONNECT_TIMEOUT",
	"PUBSUB_PROJECT", "PUBSUB_SUBSCRIPTION", "PUBSUB_MAX_OUTSTANDING", "PUBSUB_TOPIC",
	"WRITE_TIMEOUT", "INGEST_ON_WRITE_FAILURE", "DEVICE_ID", "PUBLISH_INTERVAL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "iot-project")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, BackendBigtable, cfg.Storage.Backend)
	assert.Equal(t, "iot-project", cfg.Bigtable.Project)
	assert.Equal(t, "my-iot-instance", cfg.Bigtable.Instance)
	assert.Equal(t, "us-central1-c", cfg.Bigtable.Zone)
	assert.Equal(t, "data", cfg.Bigtable.Table)
	assert.Equal(t, "data", cfg.Bigtable.ColumnFamily)
	assert.Equal(t, 6, cfg.Bigtable.MaxRetries)
	assert.Equal(t, "iot-project", cfg.PubSub.Project)
	assert.Empty(t, cfg.PubSub.Subscription)
	assert.Equal(t, 10*time.Second, cfg.Ingest.WriteTimeout)
	assert.Equal(t, OnWriteFailureAck, cfg.Ingest.OnWriteFailure)
}

func TestLoad_Postgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/iot")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("INGEST_ON_WRITE_FAILURE", "NACK")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, int32(4), cfg.DB.MaxConns)
	assert.Equal(t, OnWriteFailureNack, cfg.Ingest.OnWriteFailure)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bigtable without project", map[string]string{}},
		{"postgres without url", map[string]string{"STORAGE_BACKEND": "postgres"}},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "cassandra", "BIGTABLE_PROJECT": "p"}},
		{"port out of range", map[string]string{"PORT": "70000", "BIGTABLE_PROJECT": "p"}},
		{"negative retries", map[string]string{"BIGTABLE_MAX_RETRIES": "-1", "BIGTABLE_PROJECT": "p"}},
		{"bad policy", map[string]string{"INGEST_ON_WRITE_FAILURE": "drop", "BIGTABLE_PROJECT": "p"}},
		{"pool min above max", map[string]string{
			"STORAGE_BACKEND": "postgres", "DATABASE_URL": "postgres://x", "DB_MIN_CONNS": "5", "DB_MAX_CONNS": "2",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedNumberPanics(t *testing.T) {
	clearEnv(t)
	t.Setenv("BIGTABLE_PROJECT", "p")
	t.Setenv("BIGTABLE_MAX_RETRIES", "six")

	assert.Panics(t, func() { _, _ = Load() })
}

func TestLoadPublisher(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBSUB_PROJECT", "iot-project")
	t.Setenv("PUBSUB_TOPIC", "readings")

	cfg, err := LoadPublisher()
	require.NoError(t, err)
	assert.Equal(t, "rasp-bi-00", cfg.DeviceID)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)

	t.Setenv("PUBSUB_TOPIC", "")
	_, err = LoadPublisher()
	assert.Error(t, err)
}
