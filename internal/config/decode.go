package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decode strictly decodes and validates data. The format is picked from the
// extension of path: .yaml/.yml, .toml, anything else is JSON. Unknown keys
// and trailing data are errors.
func Decode(path string, data []byte) (*Config, error) {
	jb, format, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s config: %w", format, err)
	}
	switch err := dec.Decode(&struct{}{}); {
	case err == nil:
		return nil, errors.New("invalid config: trailing data")
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("invalid config: trailing data: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks what can be checked without other packages. Schedules and
// storage drivers are validated by the app.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Spool.Dir) == "" {
		return errors.New("spool.dir is required")
	}
	if strings.TrimSpace(c.Outbox.Dir) == "" {
		return errors.New("outbox.dir is required")
	}
	if c.Upload.MaxPartSize < 0 {
		return errors.New("upload.max_part_size must be >= 0")
	}
	for key, raw := range map[string]string{
		"upload.sweep_max_age":     c.Upload.SweepMaxAge,
		"notify.progress_interval": c.Notify.ProgressInterval,
		"storage.busy_timeout":     c.Storage.BusyTimeout,
	} {
		if _, err := ParseDurationField(key, raw); err != nil {
			return err
		}
	}
	if d := strings.ToLower(strings.TrimSpace(c.Storage.Driver)); d != "" && d != "none" && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
	}
	return nil
}
