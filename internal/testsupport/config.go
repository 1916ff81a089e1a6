// Package testsupport provides shared constructors for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"filmwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Metadata.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLocales overrides the configured language-to-locale map.
func WithLocales(locales map[string]string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Metadata.Locales = locales
	}
}

// WithDefaultLanguage overrides the language assigned to new users.
func WithDefaultLanguage(lang string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Users.DefaultLanguage = lang
	}
}
