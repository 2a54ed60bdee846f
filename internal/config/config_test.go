package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 24, cfg.Academic.MaxCredits)
	assert.Equal(t, 1, cfg.Academic.MinCourses)
	assert.Equal(t, "standard", cfg.Academic.DefaultPolicy)
	assert.Equal(t, "siak.audit", cfg.Audit.NATSSubject)
	assert.Empty(t, cfg.Audit.NATSURL)
	assert.False(t, cfg.Persistence.Enabled)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, 10, cfg.Telemetry.ExportInterval)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
academic:
  max_credits: 20
  default_policy: strict
database:
  host: db.internal
  user: fromfile
persistence:
  enabled: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.test.yaml"), []byte(yaml), 0o600))

	t.Setenv("ENV", "test")
	t.Setenv("DB_USER", "fromenv")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, 20, cfg.Academic.MaxCredits)
	assert.Equal(t, 1, cfg.Academic.MinCourses)
	assert.Equal(t, "strict", cfg.Academic.DefaultPolicy)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "fromenv", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.True(t, cfg.Persistence.Enabled)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.broken.yaml"), []byte("academic: [unterminated"), 0o600))
	t.Setenv("ENV", "broken")

	_, err := config.LoadFrom(dir)
	assert.Error(t, err)
}
