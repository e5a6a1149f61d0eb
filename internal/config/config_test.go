package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotisserie/eris"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.InDelta(t, 5, cfg.Origin.RadiusKM, 0.001)
	assert.InDelta(t, 1e-6, cfg.Graph.Epsilon, 1e-12)
	assert.InDelta(t, 50, cfg.Metrics.PedBufferM, 0.001)
	assert.Equal(t, "minmax", cfg.Merge.Normalization)
	assert.InDelta(t, 0.35, cfg.Merge.Weights.Distance, 0.001)
	assert.InDelta(t, 0.35, cfg.Merge.Weights.Centrality, 0.001)
	assert.InDelta(t, 0.15, cfg.Merge.Weights.Intersection, 0.001)
	assert.InDelta(t, 0.15, cfg.Merge.Weights.Pedestrian, 0.001)
	assert.Equal(t, 100, cfg.Select.TopK)
	assert.True(t, cfg.Select.MultiComponent)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
origin:
  lat: 21.0285
  lon: 105.8542
  radius_km: 10
graph:
  epsilon: 1e-5
merge:
  normalization: rank
select:
  top_k: 25
log:
  level: debug
  format: console
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 21.0285, cfg.Origin.Lat, 1e-6)
	assert.InDelta(t, 105.8542, cfg.Origin.Lon, 1e-6)
	assert.InDelta(t, 10, cfg.Origin.RadiusKM, 0.001)
	assert.InDelta(t, 1e-5, cfg.Graph.Epsilon, 1e-12)
	assert.Equal(t, "rank", cfg.Merge.Normalization)
	assert.Equal(t, 25, cfg.Select.TopK)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func validConfig() *Config {
	return &Config{
		DataDir: "data",
		Origin:  OriginConfig{Lat: 21.0285, Lon: 105.8542, RadiusKM: 5},
		Graph:   GraphConfig{Epsilon: 1e-6},
		Metrics: MetricsConfig{PedBufferM: 50},
		Merge: MergeConfig{
			Normalization: "minmax",
			Weights:       Weights{Distance: 0.35, Centrality: 0.35, Intersection: 0.15, Pedestrian: 0.15},
		},
		Select: SelectConfig{TopK: 100, MultiComponent: true},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"lat out of range", func(c *Config) { c.Origin.Lat = 91 }},
		{"lon out of range", func(c *Config) { c.Origin.Lon = -181 }},
		{"zero radius", func(c *Config) { c.Origin.RadiusKM = 0 }},
		{"zero epsilon", func(c *Config) { c.Graph.Epsilon = 0 }},
		{"epsilon too large", func(c *Config) { c.Graph.Epsilon = 0.1 }},
		{"zero ped buffer", func(c *Config) { c.Metrics.PedBufferM = 0 }},
		{"bad normalization", func(c *Config) { c.Merge.Normalization = "zscore" }},
		{"negative weight", func(c *Config) { c.Merge.Weights.Distance = -0.1 }},
		{"all weights zero", func(c *Config) { c.Merge.Weights = Weights{} }},
		{"zero top k", func(c *Config) { c.Select.TopK = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalid))
		})
	}
}
