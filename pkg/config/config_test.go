package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()
	require.Equal(t, "shop", cfg.ServiceName)
	require.Equal(t, 8080, cfg.ServerPort)
	require.Equal(t, "postgres://x", cfg.DatabaseURL)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestEnvDurationDefault(t *testing.T) {
	t.Setenv("X_TIMEOUT", "3s")
	assert.Equal(t, 3*time.Second, EnvDurationDefault("X_TIMEOUT", time.Second))
	t.Setenv("X_TIMEOUT", "soon")
	assert.Equal(t, time.Second, EnvDurationDefault("X_TIMEOUT", time.Second))
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("X_FLAG", "false")
	assert.False(t, EnvBoolDefault("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	assert.True(t, EnvBoolDefault("X_FLAG", true))
}
