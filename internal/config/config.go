// Package config loads CLI settings from a YAML file in the XDG config dir,
// a .env file in the working directory and DAWGTOOLS_* environment variables.
// Secrets may be given here or through the environment, but the preferred home
// for them is the OS keychain (see package keychain).
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

	"dawgtools/cli/internal/xdg"
)

// DefaultDSN points at the shared SQL Server using integrated authentication.
const DefaultDSN = "odbc:server=am-dawg-sql-trt;trusted_connection=yes"

// EnvPrefix is prepended to every config key when read from the environment.
const EnvPrefix = "DAWGTOOLS"

// Config holds CLI settings.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Extract ExtractConfig `mapstructure:"extract"`
	Queries QueriesConfig `mapstructure:"queries"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// OpenAIConfig configures the model API client.
type OpenAIConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// ExtractConfig holds feature extraction defaults.
type ExtractConfig struct {
	Model    string `mapstructure:"model"`
	CacheDir string `mapstructure:"cache_dir"`
}

// QueriesConfig points at an extra directory of named *.sql queries.
type QueriesConfig struct {
	Dir string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.dsn", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.timeout", 10*time.Minute)
	v.SetDefault("openai.requests_per_minute", 0)
	v.SetDefault("extract.model", "gpt-5.1")
	v.SetDefault("extract.cache_dir", "extract_batch_cache")
	v.SetDefault("queries.dir", "")
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration. An empty file means the default path, where a
// missing file yields defaults; an explicitly named file must exist.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// The unprefixed names are what the OpenAI tooling ecosystem uses.
	_ = v.BindEnv("db.dsn", EnvPrefix+"_DB_DSN", EnvPrefix+"_DSN")
	_ = v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", EnvPrefix+"_OPENAI_BASE_URL", "OPENAI_BASE_URL")

	explicit := file != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		file = p
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	if c.OpenAI.RequestsPerMinute < 0 {
		return Config{}, fmt.Errorf("openai.requests_per_minute must not be negative, got %d", c.OpenAI.RequestsPerMinute)
	}
	return c, nil
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist)
}
