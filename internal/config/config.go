// Package config loads runtime settings from defaults, an optional config
// file and IVCALC_* environment variables.
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. IVCALC_SOLVER_METHOD.
const EnvPrefix = "IVCALC"

// Config is the top-level configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Solver SolverConfig `mapstructure:"solver"`
	Batch  BatchConfig  `mapstructure:"batch"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig controls the logger sink.
type LogConfig struct {
	Verbosity  int    `mapstructure:"verbosity" validate:"min=0,max=3"` // 0=errors,1=info,2=debug,3=trace
	Format     string `mapstructure:"format" validate:"oneof=console json"`
	File       string `mapstructure:"file"` // empty -> stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
}

// SolverConfig selects the default implied volatility method.
type SolverConfig struct {
	Method string `mapstructure:"method" validate:"oneof=bisection newton"`
}

// BatchConfig controls batch parallelism.
type BatchConfig struct {
	Workers int `mapstructure:"workers" validate:"min=1"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.verbosity", 1)
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("solver.method", "bisection")
	v.SetDefault("batch.workers", runtime.NumCPU())
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment overrides apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	cfg.Solver.Method = strings.ToLower(cfg.Solver.Method)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
