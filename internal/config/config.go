package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Telegram contains configuration for the chat transport.
type Telegram struct {
	Token       string `toml:"token"`
	BaseURL     string `toml:"base_url"`
	PollTimeout int    `toml:"poll_timeout"`
}

// Metadata contains configuration for the movie metadata provider. Locales
// maps a user-facing language code (e.g. "en") to the locale string the
// provider expects for that language (e.g. "en-US"). One provider client is
// built per entry at startup.
type Metadata struct {
	APIKey         string            `toml:"api_key"`
	BaseURL        string            `toml:"base_url"`
	RequestTimeout int               `toml:"request_timeout"`
	Locales        map[string]string `toml:"locales"`
}

// Sweep contains configuration for the recurring release check.
type Sweep struct {
	IntervalHours int `toml:"interval_hours"`
	QueryTimeout  int `toml:"query_timeout"`
}

// Users contains configuration applied to new user records.
type Users struct {
	DefaultLanguage string `toml:"default_language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for filmwatch.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Telegram: bot token and long-poll transport settings
//   - Metadata: movie search / release lookup provider per language
//   - Sweep: release check interval and per-query timeout
//   - Users: defaults applied on first contact
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Telegram Telegram `toml:"telegram"`
	Metadata Metadata `toml:"metadata"`
	Sweep    Sweep    `toml:"sweep"`
	Users    Users    `toml:"users"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/filmwatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the data and log directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SweepInterval returns the configured sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	hours := c.Sweep.IntervalHours
	if hours <= 0 {
		hours = defaultSweepIntervalHours
	}
	return time.Duration(hours) * time.Hour
}

// QueryTimeout returns the per-provider-query timeout used during sweeps.
func (c *Config) QueryTimeout() time.Duration {
	seconds := c.Sweep.QueryTimeout
	if seconds <= 0 {
		seconds = defaultSweepQueryTimeout
	}
	return time.Duration(seconds) * time.Second
}

// Languages returns the configured language codes in sorted order.
func (c *Config) Languages() []string {
	codes := make([]string, 0, len(c.Metadata.Locales))
	for code := range c.Metadata.Locales {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// LogDirectory implements logging.LogDirProvider.
func (c *Config) LogDirectory() string { return c.Paths.LogDir }

// LogLevel implements logging.LogDirProvider.
func (c *Config) LogLevel() string { return c.Logging.Level }

// LogFormat implements logging.LogDirProvider.
func (c *Config) LogFormat() string { return c.Logging.Format }

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}

