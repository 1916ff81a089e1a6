package config

const (
	defaultDataDir            = "~/.local/share/filmwatch"
	defaultLogDir             = "~/.local/share/filmwatch/logs"
	defaultTelegramBaseURL    = "https://api.telegram.org"
	defaultTelegramPollSecs   = 30
	defaultMetadataBaseURL    = "https://api.themoviedb.org/3"
	defaultMetadataTimeout    = 10
	defaultSweepIntervalHours = 24
	defaultSweepQueryTimeout  = 10
	defaultUserLanguage       = "en"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Telegram: Telegram{
			BaseURL:     defaultTelegramBaseURL,
			PollTimeout: defaultTelegramPollSecs,
		},
		Metadata: Metadata{
			BaseURL:        defaultMetadataBaseURL,
			RequestTimeout: defaultMetadataTimeout,
			Locales: map[string]string{
				"en": "en-US",
				"ru": "ru-RU",
			},
		},
		Sweep: Sweep{
			IntervalHours: defaultSweepIntervalHours,
			QueryTimeout:  defaultSweepQueryTimeout,
		},
		Users: Users{
			DefaultLanguage: defaultUserLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
