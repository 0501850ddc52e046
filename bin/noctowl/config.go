package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Noctowl/logging"
	"github.com/UnownHash/Noctowl/render"
	"github.com/UnownHash/Noctowl/stats_collector"
)

const (
	DEFAULT_JOBS_FILENAME = "config/config.json"
	DEFAULT_ENV_FILENAME  = ".env"
)

type Config struct {
	JobsFile string `koanf:"jobs_file"`
	EnvFile  string `koanf:"env_file"`

	Render  render.Config                    `koanf:"render"`
	Metrics stats_collector.PrometheusConfig `koanf:"metrics"`
	Logging logging.Config                   `koanf:"logging"`
}

func (cfg *Config) CreateLogger(rotate bool) *logrus.Logger {
	return cfg.Logging.CreateLogger(rotate, true)
}

func (cfg *Config) GetPrometheusConfig() stats_collector.PrometheusConfig {
	return cfg.Metrics
}

func (cfg *Config) Validate() error {
	if cfg.JobsFile == "" {
		return errors.New("jobs_file must not be empty")
	}

	if err := cfg.Render.Validate(); err != nil {
		return err
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}

	if err := cfg.Logging.Validate(); err != nil {
		return err
	}

	return nil
}

func getDefaultConfig() Config {
	loggingConfig := logging.GetDefaultConfig()
	loggingConfig.Filename = filepath.FromSlash("logs/noctowl.log")

	return Config{
		JobsFile: DEFAULT_JOBS_FILENAME,
		EnvFile:  DEFAULT_ENV_FILENAME,
		Metrics:  stats_collector.GetDefaultPrometheusConfig(),
		Logging:  loggingConfig,
	}
}

// LoadConfig reads the settings file over the defaults. A missing file is
// not an error when allowMissing is set: the defaults are used as they are.
func LoadConfig(filename string, allowMissing bool) (*Config, error) {
	k := koanf.New(".")
	err := k.Load(structs.Provider(getDefaultConfig(), "koanf"), nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't load default config: %w", err)
	}

	_, err = os.Stat(filename)
	switch {
	case err == nil:
		if err := k.Load(file.Provider(filename), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && allowMissing:
	default:
		return nil, err
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
