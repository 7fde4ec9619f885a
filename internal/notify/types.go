package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"printbot/pkg/dcui"
)

var (
	ErrThrottled      = errors.New("notify: throttled")
	ErrInvalidRequest = errors.New("notify: invalid request")
)

type Kind string

const (
	KindInfo     Kind = "info"
	KindSuccess  Kind = "success"
	KindError    Kind = "error"
	KindProgress Kind = "progress"
	KindUpload   Kind = "upload"
)

// ParseKind maps a request kind to a Kind. Unknown or empty values are info.
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSuccess, KindError, KindProgress, KindUpload:
		return k
	default:
		return KindInfo
	}
}

// Notification is one finalized message handed to the Sender.
type Notification struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time
	Message   dcui.Message
}

// Sender delivers notifications to the messaging client.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n Notification) error

func (f SenderFunc) Send(ctx context.Context, n Notification) error { return f(ctx, n) }

// Draft is a not yet finalized notification.
type Draft struct {
	Kind    Kind
	Builder *dcui.Builder
	// Files are sent with the message in addition to embed images
	// (upload parts).
	Files []dcui.File
}

// Config controls the dispatcher.
type Config struct {
	// ProgressInterval is the minimum gap between two progress
	// notifications. Zero disables throttling.
	ProgressInterval time.Duration
}

type HistoryItem struct {
	At     time.Time
	ID     string
	Kind   Kind
	Title  string
	Embeds int
	Files  int
	Error  string
}

// Recorder persists dispatch history beyond the in-memory window.
type Recorder interface {
	Record(ctx context.Context, it HistoryItem) error
}
