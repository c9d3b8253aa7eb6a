package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"flashmirror/internal/app/dispatch"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	BaseURL          string              `yaml:"base_url"`
	RequestTimeout   time.Duration       `yaml:"request_timeout"`
	AutoStepInterval time.Duration       `yaml:"autostep_interval"`
	CellSize         float64             `yaml:"cell_size"`
	Game             dispatch.GameConfig `yaml:"game"`
	OpsAddr          string              `yaml:"ops_addr"`
	FeedAddr         string              `yaml:"feed_addr"`
	DBDSN            string              `yaml:"db_dsn"`
	Log              LogConfig           `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		BaseURL:          "http://localhost:3690",
		RequestTimeout:   10 * time.Second,
		AutoStepInterval: time.Second,
		CellSize:         1,
		Game:             dispatch.DefaultGameConfig(),
		OpsAddr:          ":8080",
		FeedAddr:         ":8081",
		Log:              LogConfig{Level: "info", Format: "text"},
	}
}

// Load layers defaults, the optional YAML file at path, and the environment,
// then validates the result.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, v)
		}
		*dst = d
		return nil
	}

	str("FLASHMIRROR_BASE_URL", &c.BaseURL)
	str("FLASHMIRROR_OPS_ADDR", &c.OpsAddr)
	str("FLASHMIRROR_FEED_ADDR", &c.FeedAddr)
	str("FLASHMIRROR_DB_DSN", &c.DBDSN)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	if err := dur("FLASHMIRROR_REQUEST_TIMEOUT", &c.RequestTimeout); err != nil {
		return err
	}
	return dur("FLASHMIRROR_AUTOSTEP_INTERVAL", &c.AutoStepInterval)
}

// parseDuration accepts Go durations ("1.5s") and bare seconds ("2").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base url %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if c.AutoStepInterval <= 0 {
		return fmt.Errorf("%w: auto-step interval must be positive", ErrInvalidConfig)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell size must be positive", ErrInvalidConfig)
	}
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("%w: game: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.OpsAddr) == "" {
		return fmt.Errorf("%w: ops addr is required", ErrInvalidConfig)
	}
	return nil
}
