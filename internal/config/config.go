// Package config loads the application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Globe  GlobeConfig  `yaml:"globe" mapstructure:"globe"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// GlobeConfig tunes the rendered globe.
type GlobeConfig struct {
	Radius          float64 `yaml:"radius" mapstructure:"radius"`
	StepDegrees     float64 `yaml:"step_degrees" mapstructure:"step_degrees"`
	PointPixelScale float64 `yaml:"point_pixel_scale" mapstructure:"point_pixel_scale"`
	PickPixelScale  float64 `yaml:"pick_pixel_scale" mapstructure:"pick_pixel_scale"`
}

// DataConfig points at the station list, the outline document, and the
// upstream point-data API. Stations and outlines are independent: either
// may be a URL or a local path, and either may be absent.
type DataConfig struct {
	StationsSource string        `yaml:"stations_source" mapstructure:"stations_source"`
	OutlinesSource string        `yaml:"outlines_source" mapstructure:"outlines_source"`
	UpstreamBase   string        `yaml:"upstream_base" mapstructure:"upstream_base"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	RawTTL         time.Duration `yaml:"raw_ttl" mapstructure:"raw_ttl"`
	SliceTTL       time.Duration `yaml:"slice_ttl" mapstructure:"slice_ttl"`
	RatePerSecond  float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// ServerConfig configures the local API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STATIONGLOBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("globe.radius", 100.0)
	v.SetDefault("globe.step_degrees", 5.0)
	v.SetDefault("globe.point_pixel_scale", 1.0)
	v.SetDefault("globe.pick_pixel_scale", 1.0)
	v.SetDefault("data.upstream_base", "https://sfc.windbornesystems.com")
	v.SetDefault("data.user_agent", "stationglobe/1.0")
	v.SetDefault("data.raw_ttl", "6h")
	v.SetDefault("data.slice_ttl", "5m")
	v.SetDefault("data.rate_per_second", 5.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
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
