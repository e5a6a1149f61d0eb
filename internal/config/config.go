// Package config loads and validates the application configuration.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalid marks configuration validation failures. Fatal at startup; a run
// never starts with a partially applied configuration.
var ErrInvalid = eris.New("config: invalid configuration")

// Config holds the full application configuration.
type Config struct {
	DataDir string        `yaml:"data_dir" mapstructure:"data_dir"`
	Origin  OriginConfig  `yaml:"origin" mapstructure:"origin"`
	Graph   GraphConfig   `yaml:"graph" mapstructure:"graph"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Merge   MergeConfig   `yaml:"merge" mapstructure:"merge"`
	Select  SelectConfig  `yaml:"select" mapstructure:"select"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// OriginConfig fixes the reference coordinate and the search radius used for
// context framing.
type OriginConfig struct {
	Lat      float64 `yaml:"lat" mapstructure:"lat"`
	Lon      float64 `yaml:"lon" mapstructure:"lon"`
	RadiusKM float64 `yaml:"radius_km" mapstructure:"radius_km"`
}

// GraphConfig configures graph construction.
type GraphConfig struct {
	// Epsilon is the coordinate quantization tolerance in degrees. Endpoints
	// within Epsilon of each other resolve to the same node.
	Epsilon float64 `yaml:"epsilon" mapstructure:"epsilon"`
}

// MetricsConfig configures the supplementary metrics stage.
type MetricsConfig struct {
	// PedBufferM is the search radius in meters for pedestrian infrastructure
	// near a road segment.
	PedBufferM float64 `yaml:"ped_buffer_m" mapstructure:"ped_buffer_m"`
}

// MergeConfig configures metric normalization and weighting.
type MergeConfig struct {
	// Normalization is "minmax" or "rank".
	Normalization string  `yaml:"normalization" mapstructure:"normalization"`
	Weights       Weights `yaml:"weights" mapstructure:"weights"`
}

// Weights holds the relative weight of each metric in the composite score.
type Weights struct {
	Distance     float64 `yaml:"distance" mapstructure:"distance"`
	Centrality   float64 `yaml:"centrality" mapstructure:"centrality"`
	Intersection float64 `yaml:"intersection" mapstructure:"intersection"`
	Pedestrian   float64 `yaml:"pedestrian" mapstructure:"pedestrian"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Distance + w.Centrality + w.Intersection + w.Pedestrian
}

// SelectConfig configures the selection stage.
type SelectConfig struct {
	TopK int `yaml:"top_k" mapstructure:"top_k"`
	// MultiComponent permits seeding a new component when no adjacent
	// candidate remains before K segments are admitted.
	MultiComponent bool `yaml:"multi_component" mapstructure:"multi_component"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ROADRANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("origin.radius_km", 5)
	v.SetDefault("graph.epsilon", 1e-6)
	v.SetDefault("metrics.ped_buffer_m", 50)
	v.SetDefault("merge.normalization", "minmax")
	v.SetDefault("merge.weights.distance", 0.35)
	v.SetDefault("merge.weights.centrality", 0.35)
	v.SetDefault("merge.weights.intersection", 0.15)
	v.SetDefault("merge.weights.pedestrian", 0.15)
	v.SetDefault("select.top_k", 100)
	v.SetDefault("select.multi_component", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks value ranges. The first bad value aborts; nothing is
// applied partially.
func (c *Config) Validate() error {
	if c.Origin.Lat < -90 || c.Origin.Lat > 90 {
		return eris.Wrapf(ErrInvalid, "origin.lat %v out of range [-90, 90]", c.Origin.Lat)
	}
	if c.Origin.Lon < -180 || c.Origin.Lon > 180 {
		return eris.Wrapf(ErrInvalid, "origin.lon %v out of range [-180, 180]", c.Origin.Lon)
	}
	if c.Origin.RadiusKM <= 0 {
		return eris.Wrapf(ErrInvalid, "origin.radius_km %v must be positive", c.Origin.RadiusKM)
	}
	if c.Graph.Epsilon <= 0 || c.Graph.Epsilon > 0.01 {
		return eris.Wrapf(ErrInvalid, "graph.epsilon %v must be in (0, 0.01]", c.Graph.Epsilon)
	}
	if c.Metrics.PedBufferM <= 0 {
		return eris.Wrapf(ErrInvalid, "metrics.ped_buffer_m %v must be positive", c.Metrics.PedBufferM)
	}
	switch c.Merge.Normalization {
	case "minmax", "rank":
	default:
		return eris.Wrapf(ErrInvalid, "merge.normalization %q must be minmax or rank", c.Merge.Normalization)
	}
	w := c.Merge.Weights
	for name, val := range map[string]float64{
		"distance":     w.Distance,
		"centrality":   w.Centrality,
		"intersection": w.Intersection,
		"pedestrian":   w.Pedestrian,
	} {
		if val < 0 {
			return eris.Wrapf(ErrInvalid, "merge.weights.%s %v must be non-negative", name, val)
		}
	}
	if w.Sum() == 0 {
		return eris.Wrap(ErrInvalid, "merge.weights sum to zero")
	}
	if c.Select.TopK <= 0 {
		return eris.Wrapf(ErrInvalid, "select.top_k %d must be positive", c.Select.TopK)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
