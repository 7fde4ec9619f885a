package config

// Config is the on-disk printbot configuration. Unknown keys are rejected.
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Colors  ColorsConfig  `json:"colors,omitempty"`
	Embed   EmbedConfig   `json:"embed,omitempty"`
	Upload  UploadConfig  `json:"upload,omitempty"`
	Spool   SpoolConfig   `json:"spool"`
	Outbox  OutboxConfig  `json:"outbox"`
	Notify  NotifyConfig  `json:"notify,omitempty"`
	Storage StorageConfig `json:"storage,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	Format  string      `json:"format,omitempty"` // "pretty" (default) or "json"
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ColorsConfig overrides the preset accent colors. Zero keeps the default.
type ColorsConfig struct {
	Success int `json:"success,omitempty"`
	Error   int `json:"error,omitempty"`
	Info    int `json:"info,omitempty"`
}

// EmbedConfig controls shared embed attributes.
//
// Timestamp is a pointer so an omitted key (default true) can be told apart
// from an explicit false.
type EmbedConfig struct {
	Author    string `json:"author,omitempty"`
	AuthorURL string `json:"author_url,omitempty"`
	IconURL   string `json:"icon_url,omitempty"`
	Timestamp *bool  `json:"timestamp,omitempty"`
}

// UploadConfig controls attachment splitting.
//
// Example:
//
//	"upload": { "max_part_size": "5MiB", "sweep_schedule": "@every 1h", "sweep_max_age": "6h" }
type UploadConfig struct {
	MaxPartSize ByteSize `json:"max_part_size,omitempty"` // capped at 5 MiB
	TempDir     string   `json:"temp_dir,omitempty"`

	// SweepSchedule is a cron spec (or "@every <duration>") for removing
	// temporary archives left by crashed runs. Empty disables the sweep.
	SweepSchedule string `json:"sweep_schedule,omitempty"`
	// SweepMaxAge is a Go duration string; archives younger than this are kept.
	SweepMaxAge string `json:"sweep_max_age,omitempty"`
}

type SpoolConfig struct {
	Dir string `json:"dir"`
	// FailedDir receives requests that could not be processed.
	// Defaults to <dir>/failed.
	FailedDir string `json:"failed_dir,omitempty"`
}

type OutboxConfig struct {
	Dir string `json:"dir"`
}

// NotifyConfig controls local event coalescing.
type NotifyConfig struct {
	// ProgressInterval is the minimum gap between two progress notifications
	// (Go duration string). "0s" disables throttling.
	ProgressInterval string `json:"progress_interval,omitempty"`
}

// StorageConfig selects the dispatch journal backend.
//
// Driver values: "" or "none" (disabled), "file" (JSON Lines), "sqlite".
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

// TimestampEnabled resolves the embed timestamp default.
func (c EmbedConfig) TimestampEnabled() bool {
	return c.Timestamp == nil || *c.Timestamp
}

// AuthorName resolves the default author shown on every embed.
func (c EmbedConfig) AuthorName() string {
	if c.Author == "" {
		return "OctoPrint"
	}
	return c.Author
}
