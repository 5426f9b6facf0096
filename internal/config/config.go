package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath overrides the default config location.
	EnvConfigPath = "STUDYSPACES_CONFIG_PATH"

	defaultPath = "configs/config.yaml"
)

type Config struct {
	Source struct {
		BaseURL        string  `yaml:"base_url"`
		FallbackURL    string  `yaml:"fallback_url"`
		APIKey         string  `yaml:"api_key"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RatePerSecond  float64 `yaml:"rate_per_second"`
		Burst          int     `yaml:"burst"`
		MaxRetries     *int    `yaml:"max_retries"`
	} `yaml:"source"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Search struct {
		MaxResults     int    `yaml:"max_results"`
		HighlightOpen  string `yaml:"highlight_open"`
		HighlightClose string `yaml:"highlight_close"`
	} `yaml:"search"`

	Monitoring struct {
		PushgatewayURL string `yaml:"pushgateway_url"`
		Job            string `yaml:"job"`
		Namespace      string `yaml:"namespace"`
	} `yaml:"monitoring"`

	// CatalogPath replaces the embedded building catalog when set.
	CatalogPath string `yaml:"catalog_path"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the config file at path. An empty path falls back to
// $STUDYSPACES_CONFIG_PATH and then configs/config.yaml; a missing file at the default
// location yields the built-in defaults. Variables from a .env file in the working
// directory are loaded first so ${VAR} placeholders can refer to them.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes config YAML, expanding ${ENV_VAR} placeholders.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Source.TimeoutSeconds < 0 {
		return fmt.Errorf("source.timeout_seconds must not be negative")
	}
	if c.Source.RatePerSecond < 0 {
		return fmt.Errorf("source.rate_per_second must not be negative")
	}
	if c.Source.MaxRetries != nil && *c.Source.MaxRetries < 0 {
		return fmt.Errorf("source.max_retries must not be negative")
	}
	if c.Redis.CacheTTLSeconds < 0 {
		return fmt.Errorf("redis.cache_ttl_seconds must not be negative")
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

func (c *Config) SourceTimeout() time.Duration {
	if c.Source.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// SourceMaxRetries defaults to 2 when max_retries is unset. An explicit 0 disables
// retries.
func (c *Config) SourceMaxRetries() int {
	if c.Source.MaxRetries == nil {
		return 2
	}
	return *c.Source.MaxRetries
}

// CacheTTL is how long the data source's building list is cached. Zero disables the
// cache.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.Address == "" {
		return 0
	}
	if c.Redis.CacheTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) SearchMaxResults() int {
	if c.Search.MaxResults <= 0 {
		return 10
	}
	return c.Search.MaxResults
}

func (c *Config) HighlightMarkers() (string, string) {
	if c.Search.HighlightOpen == "" && c.Search.HighlightClose == "" {
		return "<mark>", "</mark>"
	}
	return c.Search.HighlightOpen, c.Search.HighlightClose
}

func (c *Config) MonitoringJob() string {
	if c.Monitoring.Job == "" {
		return "studyspaces_cli"
	}
	return c.Monitoring.Job
}

func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}
