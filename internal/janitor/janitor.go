// Package janitor periodically removes temporary upload archives left behind
// by runs that died mid-split.
package janitor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "printbot/pkg/logx"
	"printbot/pkg/upload"
)

// DefaultMaxAge keeps archives that may still belong to a running split.
const DefaultMaxAge = time.Hour

type Config struct {
	// Schedule is passed through ParseSchedule. Empty disables sweeping.
	Schedule string
	MaxAge   time.Duration
	// Dir is the archive directory; empty means os.TempDir().
	Dir string
}

type Janitor struct {
	mu    sync.Mutex
	cfg   Config
	c     *cron.Cron
	entry cron.EntryID

	log logx.Logger
	now func() time.Time
}

func New(cfg Config, log logx.Logger) *Janitor {
	return &Janitor{cfg: cfg, log: log.Component("janitor"), now: time.Now}
}

// Sweep runs one pass with the current config.
func (j *Janitor) Sweep() (int, error) {
	j.mu.Lock()
	cfg := j.cfg
	j.mu.Unlock()

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	n, err := upload.SweepStale(cfg.Dir, maxAge, j.now())
	if err != nil {
		j.log.Warn("archive sweep incomplete", logx.Int("removed", n), logx.Err(err))
		return n, err
	}
	if n > 0 {
		j.log.Info("stale archives removed", logx.Int("removed", n), logx.Duration("max_age", maxAge))
	}
	return n, nil
}

// Apply swaps the config, rescheduling the sweep when the janitor runs.
func (j *Janitor) Apply(cfg Config) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	old := j.cfg
	j.cfg = cfg
	if j.c == nil || strings.TrimSpace(old.Schedule) == strings.TrimSpace(cfg.Schedule) {
		return nil
	}
	return j.scheduleLocked()
}

func (j *Janitor) scheduleLocked() error {
	if j.entry != 0 {
		j.c.Remove(j.entry)
		j.entry = 0
	}
	if strings.TrimSpace(j.cfg.Schedule) == "" {
		j.log.Debug("archive sweep disabled")
		return nil
	}
	spec, err := ParseSchedule(j.cfg.Schedule)
	if err != nil {
		return err
	}
	id, err := j.c.AddFunc(spec, func() { _, _ = j.Sweep() })
	if err != nil {
		return err
	}
	j.entry = id
	j.log.Debug("archive sweep scheduled", logx.String("spec", spec))
	return nil
}

// Run sweeps once, then on schedule until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	j.mu.Lock()
	j.c = cron.New(cron.WithParser(parser))
	if err := j.scheduleLocked(); err != nil {
		j.c = nil
		j.mu.Unlock()
		return err
	}
	c := j.c
	j.mu.Unlock()

	_, _ = j.Sweep()
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		j.log.Warn("archive sweep still running at shutdown")
	}
	j.mu.Lock()
	j.c = nil
	j.entry = 0
	j.mu.Unlock()
	return nil
}
