package storage

import (
	"context"
	"errors"
	"strings"

	logx "printbot/pkg/logx"
)

// Store is the journal API used by the app and the CLI.
type Store interface {
	Append(ctx context.Context, r Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Drivers lists the accepted Config.Driver values.
var Drivers = []string{"", "none", "file", "sqlite", "sqlite3"}

// ValidDriver reports whether driver names a known backend.
func ValidDriver(driver string) bool {
	driver = strings.ToLower(strings.TrimSpace(driver))
	for _, d := range Drivers {
		if d == driver {
			return true
		}
	}
	return false
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
