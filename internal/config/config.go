// Package config loads refltool settings from refltool.yaml and REFLTOOL_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides, e.g. REFLTOOL_LOG_LEVEL.
const EnvPrefix = "REFLTOOL"

// Config is the refltool configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Dump    DumpConfig    `mapstructure:"dump"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ArchiveConfig controls compressed output.
type ArchiveConfig struct {
	CompressionLevel int `mapstructure:"compression_level"`
}

// DumpConfig controls record dumps.
type DumpConfig struct {
	ShowHashes bool `mapstructure:"show_hashes"`
	Color      bool `mapstructure:"color"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
	v.SetDefault("archive.compression_level", zstd.BestSpeed)
	v.SetDefault("dump.show_hashes", false)
	v.SetDefault("dump.color", true)
}

// Load reads path, or refltool.yaml from the working directory when path is
// empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("refltool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the log level and compression level.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	if l := c.Archive.CompressionLevel; l < zstd.BestSpeed || l > zstd.BestCompression {
		return fmt.Errorf("archive.compression_level must be between %d and %d, got: %d",
			zstd.BestSpeed, zstd.BestCompression, l)
	}
	return nil
}

func (c *Config) level() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return lvl, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Logger builds the zap logger described by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
