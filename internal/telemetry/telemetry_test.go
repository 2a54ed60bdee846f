package telemetry_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/config"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMeterProvider_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mp, err := telemetry.InitMeterProvider(context.Background(), config.TelemetryConfig{}, "siak", "test", logger)
	require.NoError(t, err)
	assert.Nil(t, mp)

	assert.NoError(t, telemetry.Shutdown(context.Background(), mp, logger))
}
