package app

import (
	"fmt"
	"strings"
	"time"

	"printbot/internal/config"
	"printbot/internal/janitor"
	"printbot/internal/notify"
	"printbot/internal/storage"
	"printbot/pkg/dcui"
	logx "printbot/pkg/logx"
	"printbot/pkg/upload"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		Format:  cfg.Logging.Format,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	if !storage.ValidDriver(driver) {
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
	if err != nil {
		return storage.Config{}, false, err
	}
	return storage.Config{Driver: driver, Path: strings.TrimSpace(sc.Path), BusyTimeout: busy}, true, nil
}

// mapStyle resolves embed defaults. Zero colors keep the preset.
func mapStyle(cfg *config.Config) notify.Style {
	st := notify.DefaultStyle()
	st.Author = cfg.Embed.AuthorName()
	st.AuthorURL = cfg.Embed.AuthorURL
	st.IconURL = cfg.Embed.IconURL
	st.Timestamp = cfg.Embed.TimestampEnabled()

	info := pick(cfg.Colors.Info, dcui.ColorInfo)
	st.Colors[notify.KindInfo] = info
	st.Colors[notify.KindProgress] = info
	st.Colors[notify.KindUpload] = info
	st.Colors[notify.KindSuccess] = pick(cfg.Colors.Success, dcui.ColorSuccess)
	st.Colors[notify.KindError] = pick(cfg.Colors.Error, dcui.ColorError)
	return st
}

func pick(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func mapSplitter(cfg *config.Config, log logx.Logger) *upload.Splitter {
	return &upload.Splitter{
		MaxPartSize: int64(cfg.Upload.MaxPartSize),
		TempDir:     cfg.Upload.TempDir,
		Log:         log.Component("upload"),
	}
}

func mapNotifyConfig(cfg *config.Config) (notify.Config, error) {
	d, err := config.ParseDurationField("notify.progress_interval", cfg.Notify.ProgressInterval)
	if err != nil {
		return notify.Config{}, err
	}
	return notify.Config{ProgressInterval: d}, nil
}

func mapJanitorConfig(cfg *config.Config) (janitor.Config, error) {
	maxAge, err := config.ParseDurationOrDefault("upload.sweep_max_age", cfg.Upload.SweepMaxAge, janitor.DefaultMaxAge)
	if err != nil {
		return janitor.Config{}, err
	}
	if s := strings.TrimSpace(cfg.Upload.SweepSchedule); s != "" {
		if _, err := janitor.ParseSchedule(s); err != nil {
			return janitor.Config{}, fmt.Errorf("upload.sweep_schedule: %w", err)
		}
	}
	return janitor.Config{Schedule: cfg.Upload.SweepSchedule, MaxAge: maxAge, Dir: cfg.Upload.TempDir}, nil
}

// validate checks everything Config.Validate cannot: values owned by
// other packages.
func validate(cfg *config.Config) error {
	if _, err := mapNotifyConfig(cfg); err != nil {
		return err
	}
	if _, err := mapJanitorConfig(cfg); err != nil {
		return err
	}
	if _, _, err := mapStorageConfig(cfg); err != nil {
		return err
	}
	return nil
}
