package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}

	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telegram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.BaseURL), "/")
	c.Metadata.APIKey = strings.TrimSpace(c.Metadata.APIKey)
	c.Metadata.BaseURL = strings.TrimRight(strings.TrimSpace(c.Metadata.BaseURL), "/")
	c.Users.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.Users.DefaultLanguage))

	normalized := make(map[string]string, len(c.Metadata.Locales))
	for code, locale := range c.Metadata.Locales {
		normalized[strings.ToLower(strings.TrimSpace(code))] = strings.TrimSpace(locale)
	}
	c.Metadata.Locales = normalized
	return nil
}

// Validate verifies that the configuration is internally consistent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must not be empty")
	}
	if len(c.Metadata.Locales) == 0 {
		return errors.New("metadata.locales must configure at least one language")
	}
	for code, locale := range c.Metadata.Locales {
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("metadata.locales: invalid language code %q: %w", code, err)
		}
		if locale == "" {
			return fmt.Errorf("metadata.locales: language %q has an empty locale", code)
		}
		if _, err := language.Parse(locale); err != nil {
			return fmt.Errorf("metadata.locales: invalid locale %q for language %q: %w", locale, code, err)
		}
	}
	if _, ok := c.Metadata.Locales[c.Users.DefaultLanguage]; !ok {
		return fmt.Errorf("users.default_language %q is not present in metadata.locales", c.Users.DefaultLanguage)
	}
	if c.Telegram.PollTimeout < 0 {
		return errors.New("telegram.poll_timeout must not be negative")
	}
	if c.Sweep.IntervalHours < 0 {
		return errors.New("sweep.interval_hours must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
