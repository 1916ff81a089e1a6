package metadata

import (
	"fmt"
	"time"

	"filmwatch/internal/config"
)

// Providers maps a language code to the metadata client serving that
// language. The map is built once at startup; lookups at call time never
// construct clients.
type Providers map[string]Provider

// BuildProviders constructs one client per configured locale.
func BuildProviders(cfg *config.Config, opts ...Option) (Providers, error) {
	timeout := time.Duration(cfg.Metadata.RequestTimeout) * time.Second
	providers := make(Providers, len(cfg.Metadata.Locales))
	for lang, locale := range cfg.Metadata.Locales {
		client, err := New(cfg.Metadata.APIKey, cfg.Metadata.BaseURL, locale, timeout, opts...)
		if err != nil {
			return nil, fmt.Errorf("build provider for language %s: %w", lang, err)
		}
		providers[lang] = client
	}
	return providers, nil
}

// ForLanguage returns the provider serving lang.
func (p Providers) ForLanguage(lang string) (Provider, bool) {
	provider, ok := p[lang]
	return provider, ok
}
