package otel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/otel"
)

func TestSetup_StdoutExporter(t *testing.T) {
	providers, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		Exporter:       "stdout",
	})
	require.NoError(t, err)
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestSetup_NoneExporter(t *testing.T) {
	providers, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName: "test",
		Exporter:    "none",
	})
	require.NoError(t, err)
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestSetup_InvalidExporter(t *testing.T) {
	_, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		Exporter:       "invalid",
	})
	assert.ErrorContains(t, err, "unsupported exporter")
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := adapter.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "wrkcopilot", cfg.ServiceName)
	assert.Equal(t, "0.1.0", cfg.ServiceVersion)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "stdout", cfg.Exporter)
	assert.True(t, cfg.Insecure)
}

func TestConfigFromEnv_CustomValues(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom-service")
	t.Setenv("OTEL_SERVICE_VERSION", "1.0.0")
	t.Setenv("OTEL_ENVIRONMENT", "production")
	t.Setenv("OTEL_EXPORTER", "otlp")

	cfg, err := adapter.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "custom-service", cfg.ServiceName)
	assert.Equal(t, "1.0.0", cfg.ServiceVersion)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "otlp", cfg.Exporter)
	assert.False(t, cfg.Insecure)
}

func TestOpenDB_ConfiguresInstrumentedPool(t *testing.T) {
	db, err := adapter.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.PingContext(context.Background()))
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
