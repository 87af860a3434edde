package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"recast/internal/catalog"
	"recast/internal/codec"
)

const EnvPrefix = "RECAST"

// Config holds everything that can come from a config file, the environment
// or flags. Flags win over the environment, which wins over the file.
type Config struct {
	Concurrency  int           `mapstructure:"concurrency"` // 0 = derive from CPU count
	Quality      int           `mapstructure:"quality"`
	JobTimeout   time.Duration `mapstructure:"job_timeout"` // 0 = no bound
	Advanced     Advanced      `mapstructure:"advanced"`
	SettingsPath string        `mapstructure:"settings_path"`
	HistoryDir   string        `mapstructure:"history_dir"`
	Log          Log           `mapstructure:"log"`
}

type Advanced struct {
	Enabled bool `mapstructure:"enabled"`
}

type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("concurrency", 0)
	v.SetDefault("quality", catalog.DefaultQuality)
	v.SetDefault("job_timeout", time.Duration(0))
	v.SetDefault("advanced.enabled", true)
	v.SetDefault("settings_path", "")
	v.SetDefault("history_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and unmarshals v. An explicit path must exist;
// without one, <user config dir>/recast/config.yaml is used when present.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "recast"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Quality < codec.QualityMin || c.Quality > codec.QualityMax {
		return fmt.Errorf("quality %d out of range %d..%d", c.Quality, codec.QualityMin, codec.QualityMax)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if c.JobTimeout < 0 {
		return fmt.Errorf("job_timeout must not be negative")
	}
	return nil
}
