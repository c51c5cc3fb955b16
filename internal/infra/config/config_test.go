package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHAPA_SECRET_KEY", "CHASECK_TEST-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.StorageMode)
	assert.Equal(t, "https://api.chapa.co/v1", cfg.ChapaBaseURL)
	assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("CHAPA_SECRET_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "CHAPA_SECRET_KEY")
}

func TestLoadMongoMode(t *testing.T) {
	t.Setenv("CHAPA_SECRET_KEY", "CHASECK_TEST-secret")
	t.Setenv("STORAGE_MODE", "mongo")

	_, err := Load()
	assert.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.StorageMode)
	assert.Equal(t, "homestay", cfg.MongoDB)
}

func TestLoadRejectsUnknownStorageMode(t *testing.T) {
	t.Setenv("CHAPA_SECRET_KEY", "CHASECK_TEST-secret")
	t.Setenv("STORAGE_MODE", "cassandra")

	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_MODE")
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CHAPA_SECRET_KEY", "CHASECK_TEST-secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("GATEWAY_TIMEOUT", "10s")
	t.Setenv("RETRY_BACKOFF", "2s, 10s")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, []time.Duration{2 * time.Second, 10 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CHAPA_SECRET_KEY", "CHASECK_TEST-secret")
	t.Setenv("GATEWAY_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "GATEWAY_TIMEOUT")
}
