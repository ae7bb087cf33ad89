package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GRPC_PORT", "MONGO_URI", "MONGO_DB_NAME", "MYSQL_DSN", "DATA_DIR",
		"CONNECT_TIMEOUT", "REDIS_ADDR", "CACHE_TTL", "KAFKA_BROKERS", "ORDER_EVENTS_TOPIC", "LOG_LEVEL", "CORS_ORIGIN"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, "Cluster0", cfg.MongoDatabase)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "order-events", cfg.OrderEventsTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Empty(t, cfg.MongoURI)
	assert.Empty(t, cfg.MySQLDSN)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("CONNECT_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "a:9092,b:9092", cfg.KafkaBrokers)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("CONNECT_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestNewLogger_Level(t *testing.T) {
	logger, err := (&Config{LogLevel: "debug"}).NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = (&Config{LogLevel: "bogus"}).NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
