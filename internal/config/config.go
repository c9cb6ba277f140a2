package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName    = "dayplan"
	configFile = "dayplan.yml"
	envPrefix  = "DAYPLAN"
)

type Config struct {
	BackendURL      string        `mapstructure:"backend_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	DBPath          string        `mapstructure:"db_path"`
	LogFile         string        `mapstructure:"log_file"`
	FocusDelay      time.Duration `mapstructure:"focus_delay"`
}

// Dir returns the XDG config directory for dayplan.
func Dir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting user home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName), nil
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the YAML config at path, writing one with defaults when it does
// not exist yet. DAYPLAN_* environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("refresh_interval", "30s")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("db_path", filepath.Join(dir, "dayplan.db"))
	v.SetDefault("log_file", filepath.Join(dir, "dayplan.log"))
	v.SetDefault("focus_delay", "300ms")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := v.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("error creating config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return errors.New("backend_url must be set")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.FocusDelay < 0 {
		return fmt.Errorf("focus_delay must not be negative, got %s", c.FocusDelay)
	}
	return nil
}
