package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	logx "printbot/pkg/logx"
)

const historySize = 50

// Dispatcher finalizes drafts and passes them to a Sender.
//
// It is safe for concurrent use.
type Dispatcher struct {
	mu sync.Mutex

	log    logx.Logger
	sender Sender
	cfg    Config
	now    func() time.Time

	progress *rate.Limiter
	recorder Recorder

	hmu     sync.Mutex
	history []HistoryItem
}

// New returns a dispatcher delivering through sender.
func New(cfg Config, sender Sender, log logx.Logger) *Dispatcher {
	d := &Dispatcher{
		log:    log.Component("notify"),
		sender: sender,
		now:    time.Now,
	}
	d.applyLocked(cfg)
	return d
}

// SetRecorder installs r; every dispatch is recorded after it is sent.
// Recorder failures are logged only.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.mu.Lock()
	d.recorder = r
	d.mu.Unlock()
}

// Apply swaps in cfg; the progress throttle restarts with the new interval.
func (d *Dispatcher) Apply(cfg Config) {
	d.mu.Lock()
	d.applyLocked(cfg)
	d.mu.Unlock()
}

func (d *Dispatcher) applyLocked(cfg Config) {
	if cfg.ProgressInterval < 0 {
		cfg.ProgressInterval = 0
	}
	d.cfg = cfg
	if cfg.ProgressInterval == 0 {
		d.progress = rate.NewLimiter(rate.Inf, 1)
		return
	}
	// Burst of one: the first progress update goes out immediately, the next
	// one only after a full interval.
	d.progress = rate.NewLimiter(rate.Every(cfg.ProgressInterval), 1)
}

// Dispatch finalizes the draft and sends it. Progress drafts arriving inside
// the throttle window are dropped with ErrThrottled.
func (d *Dispatcher) Dispatch(ctx context.Context, draft Draft) (Notification, error) {
	d.mu.Lock()
	now := d.now()
	lim := d.progress
	rec := d.recorder
	d.mu.Unlock()

	if draft.Kind == KindProgress && !lim.AllowN(now, 1) {
		d.log.Debug("progress notification throttled")
		return Notification{}, ErrThrottled
	}

	msg := draft.Builder.Build(now)
	msg.Files = append(msg.Files, draft.Files...)
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      draft.Kind,
		CreatedAt: now,
		Message:   msg,
	}

	item := HistoryItem{At: now, ID: n.ID, Kind: n.Kind, Embeds: len(msg.Embeds), Files: len(msg.Files)}
	if len(msg.Embeds) > 0 {
		item.Title = msg.Embeds[0].Title
	}

	err := d.sender.Send(ctx, n)
	if err != nil {
		item.Error = err.Error()
		d.log.Warn("notification send failed", logx.String("id", n.ID), logx.String("kind", string(n.Kind)), logx.Err(err))
		err = fmt.Errorf("notify: send %s: %w", n.ID, err)
	} else {
		d.log.Info("notification sent",
			logx.String("id", n.ID),
			logx.String("kind", string(n.Kind)),
			logx.Int("embeds", len(msg.Embeds)),
			logx.Int("files", len(msg.Files)),
		)
	}
	d.record(item)
	if rec != nil {
		if rerr := rec.Record(ctx, item); rerr != nil {
			d.log.Warn("dispatch journal write failed", logx.String("id", n.ID), logx.Err(rerr))
		}
	}
	return n, err
}

func (d *Dispatcher) record(it HistoryItem) {
	d.hmu.Lock()
	defer d.hmu.Unlock()
	d.history = append(d.history, it)
	if over := len(d.history) - historySize; over > 0 {
		d.history = append(d.history[:0], d.history[over:]...)
	}
}

// History returns the most recent dispatches, oldest first.
func (d *Dispatcher) History() []HistoryItem {
	d.hmu.Lock()
	defer d.hmu.Unlock()
	return append([]HistoryItem(nil), d.history...)
}
