package config

// Config is the full process configuration. It is decoded strictly
// (DisallowUnknownFields) from JSON or YAML.
//
// All durations are Go duration strings (e.g. "500ms", "2s", "2m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Watch    WatchConfig    `json:"watch"`
	Storage  StorageConfig  `json:"storage"`
	Report   ReportConfig   `json:"report,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// ChatID is the alert target (group/channel id as a string, since
	// Telegram group ids are negative and often copy-pasted).
	ChatID   string `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ThreadID   int    `json:"thread_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// WatchConfig controls the poll scheduler and the status extractor.
//
// PollInterval and AccountDelay encode an anti-rate-limiting policy against
// the source site; they are deliberate constants, not incidental timing.
// Defaults (when omitted): poll_interval 120s, account_delay 2s,
// page_timeout 20s, badge_timeout 1s.
type WatchConfig struct {
	AccountsFile string `json:"accounts_file"`

	PollInterval string `json:"poll_interval,omitempty"`
	AccountDelay string `json:"account_delay,omitempty"`
	PageTimeout  string `json:"page_timeout,omitempty"`
	BadgeTimeout string `json:"badge_timeout,omitempty"`

	// URLFormat/ProfileURLFormat are fmt strings taking the account name.
	URLFormat        string `json:"url_format,omitempty"`
	ProfileURLFormat string `json:"profile_url_format,omitempty"`

	// StateElementID is the DOM id of the embedded application-state blob;
	// BadgeText is the visible badge used as a fallback live signal.
	// Both are configurable so minor upstream drift is a config change.
	StateElementID string `json:"state_element_id,omitempty"`
	BadgeText      string `json:"badge_text,omitempty"`

	// Timezone for alert timestamps (IANA name).
	Timezone string `json:"timezone,omitempty"`

	// NotifyOnEnd also alerts on the ON->OFF edge. Off by default.
	NotifyOnEnd bool `json:"notify_on_end,omitempty"`
}

// StorageConfig controls the persistence layer.
//
// Driver values:
//   - "file" (default): pretty-printed JSON state file
//   - "sqlite": SQLite database file (optional build tag)
//   - "none": no persistence (transitions reset on restart)
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

// ReportConfig controls the optional daily watch report.
type ReportConfig struct {
	Enabled bool `json:"enabled"`
	// Schedule is a cron spec (5 fields), evaluated in watch.timezone.
	Schedule string `json:"schedule,omitempty"`
}
