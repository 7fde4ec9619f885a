package config

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "printbot/pkg/logx"
)

const (
	reloadDebounce  = 250 * time.Millisecond
	validateTimeout = 5 * time.Second
	backoffBase     = 250 * time.Millisecond
	backoffMax      = 5 * time.Second
)

// reload is the debounced watcher callback: parse, skip if unchanged,
// validate, commit, publish.
func (m *ConfigManager) reload(ctx context.Context) {
	cfg, err := m.Parse()
	if err != nil {
		m.log.Warn("config parse failed", logx.String("path", m.path), logx.Err(err))
		return
	}

	h := hashConfig(cfg)
	m.mu.RLock()
	prev, unchanged := m.cfg, h != 0 && h == m.lastHash
	m.mu.RUnlock()
	if unchanged {
		m.log.Debug("config unchanged; skipping publish", logx.String("path", m.path))
		return
	}

	if m.validator != nil {
		vctx, cancel := context.WithTimeout(ctx, validateTimeout)
		err := m.validator(vctx, cfg)
		cancel()
		if err != nil {
			m.log.Warn("config rejected", logx.String("path", m.path), logx.Err(err))
			return
		}
	}

	m.Commit(cfg)
	m.publish(cfg)
	changed, attrs := SummarizeConfigChange(prev, cfg)
	attrs = append(attrs, logx.String("path", m.path), logx.Strings("changed", changed))
	m.log.Info("config reloaded", attrs...)
}

// backoff is a jittered exponential delay between watcher restarts.
type backoff struct{ next time.Duration }

func (b *backoff) reset() { b.next = backoffBase }

// wait sleeps for the next delay and reports false if ctx ended first.
func (b *backoff) wait(ctx context.Context) bool {
	if b.next <= 0 {
		b.reset()
	}
	d := b.next + rand.N(b.next/2+1)
	b.next = min(b.next*2, backoffMax)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// debouncer runs fn once events stop arriving for reloadDebounce.
type debouncer struct {
	mu sync.Mutex
	t  *time.Timer
	fn func()
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
	}
	d.t = time.AfterFunc(reloadDebounce, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
	}
}

// Watch reloads the config whenever its file changes, until ctx is done.
// The directory is watched rather than the file so editors that replace the
// file by rename are followed. A broken watcher is recreated with backoff.
func (m *ConfigManager) Watch(ctx context.Context) error {
	deb := &debouncer{fn: func() { m.reload(ctx) }}
	defer deb.stop()

	var bo backoff
	for ctx.Err() == nil {
		err := m.watchSession(ctx, deb, &bo)
		if err == nil {
			return nil
		}
		m.log.Warn("config watcher failed; restarting", logx.String("path", m.path), logx.Err(err))
		if !bo.wait(ctx) {
			return nil
		}
	}
	return nil
}

var errWatcherClosed = errors.New("watcher channel closed")

// watchSession runs one fsnotify watcher. It returns nil only when ctx ends.
func (m *ConfigManager) watchSession(ctx context.Context, deb *debouncer, bo *backoff) error {
	dir, file := filepath.Dir(m.path), filepath.Base(m.path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	bo.reset()
	m.log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", file))

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return errWatcherClosed
			}
			if ev.Op&relevant != 0 && strings.EqualFold(filepath.Base(ev.Name), file) {
				m.log.Debug("config change detected", logx.String("op", ev.Op.String()))
				deb.trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errWatcherClosed
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				m.log.Warn("config watch overflow; forcing reload", logx.String("dir", dir))
				deb.trigger()
				continue
			}
			m.log.Warn("config watch error", logx.Err(err), logx.String("dir", dir))
		}
	}
}
