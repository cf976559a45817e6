package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n2ilva/motorista-inteligente/internal/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, "motorista-inteligente", cfg.Service.Name)
	assert.Equal(t, 400*time.Millisecond, cfg.Detection.DebounceDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.Detection.SuppressionWindow)
	assert.Equal(t, 3, cfg.Detection.MinContextScore)
	assert.Equal(t, 4, cfg.Detection.MinContentChangeScore)
	assert.Equal(t, 30*time.Second, cfg.Detection.AcceptanceWindow)
	assert.InDelta(t, 2.0, cfg.Estimate.FarePerKm, 0.001)
	assert.InDelta(t, 25.0, cfg.Estimate.UrbanSpeedKmh, 0.001)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
service:
  port: 9099
detection:
  min_context_score: 5
  min_plausible_price: 7.5
economics:
  max_pickup_km: 6
sources:
  app_a_signatures: ["corrida premium"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9099, cfg.Service.Port)
	assert.Equal(t, 5, cfg.Detection.MinContextScore)
	assert.InDelta(t, 7.5, cfg.Detection.MinPlausiblePrice, 0.001)
	assert.InDelta(t, 6.0, cfg.Economics.MaxPickupKm, 0.001)
	assert.Equal(t, []string{"corrida premium"}, cfg.Sources.AppASignatures)
	// untouched sections keep defaults
	assert.Equal(t, 3, cfg.Detection.QuarantineMaxRepeats)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  port: 9000\n"), 0o600))

	t.Setenv("DETECTOR_PORT", "9443")
	t.Setenv("MAX_PICKUP_KM", "4.5")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9443, cfg.Service.Port)
	assert.InDelta(t, 4.5, cfg.Economics.MaxPickupKm, 0.001)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("estimate:\n  fare_per_km: -1\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fare_per_km")
}
