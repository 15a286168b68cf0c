package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Parse  ParseConfig  `mapstructure:"parse"`
}

// ServerConfig holds HTTP boundary settings.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	BodyLimitMB    int           `mapstructure:"body_limit_mb"`
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ParseConfig holds batch parsing settings.
type ParseConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration from defaults, an optional TOML file, a .env
// file in the working directory and the environment. Env var overrides use
// prefix STATEMENTS_, e.g. STATEMENTS_SERVER_ADDR.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.body_limit_mb", 50)
	v.SetDefault("server.extract_timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("parse.concurrency", 4)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("STATEMENTS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "statements"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("STATEMENTS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicitly named file must exist; the default location is optional.
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the server or CLI cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.BodyLimitMB <= 0 {
		errs = append(errs, fmt.Errorf("server.body_limit_mb must be positive, got %d", c.Server.BodyLimitMB))
	}
	if c.Server.ExtractTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.extract_timeout must be positive, got %s", c.Server.ExtractTimeout))
	}
	if c.Parse.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("parse.concurrency must be at least 1, got %d", c.Parse.Concurrency))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
