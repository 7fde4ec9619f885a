package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Record is one journal entry. Keep it compact and schema-stable.
type Record struct {
	At     time.Time `json:"at"`
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Title  string    `json:"title,omitempty"`
	Embeds int       `json:"embeds"`
	Files  int       `json:"files"`
	Error  string    `json:"error,omitempty"`
}
