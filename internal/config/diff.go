package config

import (
	"reflect"

	logx "printbot/pkg/logx"
)

// SummarizeConfigChange returns the names of the sections that differ between
// oldCfg and newCfg, plus structured attrs describing the new values.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 8)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if oldCfg.Colors != newCfg.Colors {
		changed = append(changed, "colors")
	}
	if !reflect.DeepEqual(oldCfg.Embed, newCfg.Embed) {
		changed = append(changed, "embed")
		attrs = append(attrs,
			logx.String("embed.author", newCfg.Embed.AuthorName()),
			logx.Bool("embed.timestamp", newCfg.Embed.TimestampEnabled()),
		)
	}
	if oldCfg.Upload != newCfg.Upload {
		changed = append(changed, "upload")
		attrs = append(attrs,
			logx.String("upload.max_part_size", newCfg.Upload.MaxPartSize.String()),
			logx.String("upload.sweep_schedule", newCfg.Upload.SweepSchedule),
		)
	}
	if oldCfg.Spool != newCfg.Spool {
		changed = append(changed, "spool")
		attrs = append(attrs, logx.String("spool.dir", newCfg.Spool.Dir))
	}
	if oldCfg.Outbox != newCfg.Outbox {
		changed = append(changed, "outbox")
		attrs = append(attrs, logx.String("outbox.dir", newCfg.Outbox.Dir))
	}
	if oldCfg.Notify != newCfg.Notify {
		changed = append(changed, "notify")
		attrs = append(attrs, logx.String("notify.progress_interval", newCfg.Notify.ProgressInterval))
	}
	if oldCfg.Storage != newCfg.Storage {
		changed = append(changed, "storage")
		attrs = append(attrs, logx.String("storage.driver", newCfg.Storage.Driver))
	}
	return changed, attrs
}
