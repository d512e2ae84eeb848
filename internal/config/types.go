package config

// Config is the operator-facing configuration file.
//
// The file may be JSON or YAML; both are decoded strictly (unknown keys are
// rejected) so a typo never silently disables a section. All durations are
// Go duration strings (e.g. "500ms", "30s", "2m").
type Config struct {
	Funpay   FunpayConfig   `json:"funpay"`
	Watch    WatchConfig    `json:"watch"`
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

// FunpayConfig carries the opaque session credentials for the marketplace.
// The golden key and user agent are pass-through values; lotwatch never
// interprets them.
type FunpayConfig struct {
	BaseURL   string `json:"base_url,omitempty"`
	GoldenKey string `json:"golden_key"`
	UserAgent string `json:"user_agent"`

	// RequestTimeout bounds every request to the marketplace so one
	// unreachable endpoint cannot stall a watch loop. Default "15s".
	RequestTimeout string `json:"request_timeout,omitempty"`
}

// WatchConfig holds the defaults offered by the interactive prompts and the
// live-reloadable knobs of a running watch.
type WatchConfig struct {
	// Interval is the poll cadence: a Go duration ("30s"), HH:MM ("00:05"),
	// or a cron expression ("*/5 * * * *"). Sub-second values clamp to 1s.
	Interval string `json:"interval,omitempty"`

	// PriceFloor drops offers cheaper than this many currency units.
	PriceFloor float64 `json:"price_floor,omitempty"`

	// MethodFilter keeps only offers whose method or type contains this
	// substring (case-insensitive). Empty disables the filter.
	MethodFilter string `json:"method_filter,omitempty"`

	// ThreadInterval is the thread monitor refresh cadence. Default "5s".
	ThreadInterval string `json:"thread_interval,omitempty"`
}

// TelegramConfig controls the broadcast channel.
//
// If ChatIDs is empty the channel resolves recipients through the subscriber
// registry (everyone who messaged the bot), refreshing it before each send.
type TelegramConfig struct {
	Enabled    bool     `json:"enabled"`
	Token      string   `json:"token"`
	ChatIDs    []string `json:"chat_ids,omitempty"`
	RatePerSec int      `json:"rate_per_sec,omitempty"`
	RetryMax   int      `json:"retry_max,omitempty"`

	// PollTimeout is the getUpdates long-poll timeout. Default "10s".
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls where the subscriber set persists.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./subscribers.json" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

// Default returns the built-in configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			Interval:       "30s",
			PriceFloor:     0.30,
			ThreadInterval: "5s",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    LoggingFile{Enabled: true, Path: "./lotwatch.log"},
		},
	}
}
