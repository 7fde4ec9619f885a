// Package spool watches a directory for notification requests.
//
// Producers write <name>.json files (ideally under another name first, then
// rename). Every request is decoded and passed to the handler; handled files
// are removed, rejected ones move to the failed directory for inspection.
package spool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"printbot/internal/notify"
	logx "printbot/pkg/logx"
)

const (
	Ext = ".json"

	settleDelay    = 150 * time.Millisecond
	rescanInterval = 30 * time.Second
)

// Handler processes one decoded request.
type Handler func(ctx context.Context, req notify.Request) error

type Watcher struct {
	dir    string
	failed string
	handle Handler
	log    logx.Logger

	mu sync.Mutex // serializes Drain
}

// New returns a watcher for dir. An empty failedDir means <dir>/failed.
func New(dir, failedDir string, handle Handler, log logx.Logger) *Watcher {
	if strings.TrimSpace(failedDir) == "" {
		failedDir = filepath.Join(dir, "failed")
	}
	return &Watcher{
		dir:    dir,
		failed: failedDir,
		handle: handle,
		log:    log.Component("spool"),
	}
}

func (w *Watcher) Dir() string       { return w.dir }
func (w *Watcher) FailedDir() string { return w.failed }

// Decode strictly decodes a request file.
func Decode(data []byte) (notify.Request, error) {
	var req notify.Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", notify.ErrInvalidRequest, err)
	}
	return req, nil
}

// Drain processes every pending request in name order and returns how many
// were handled successfully.
func (w *Watcher) Drain(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("spool: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && pending(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	ok := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return ok, err
		}
		if w.process(ctx, filepath.Join(w.dir, name)) {
			ok++
		}
	}
	return ok, nil
}

func pending(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext) && !strings.HasPrefix(name, ".")
}

func (w *Watcher) process(ctx context.Context, path string) bool {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.log.Warn("spool read failed", logx.String("file", name), logx.Err(err))
		}
		return false
	}

	req, err := Decode(data)
	if err == nil {
		err = w.handle(ctx, req)
	}
	switch {
	case err == nil:
		w.log.Debug("spool request handled", logx.String("file", name))
	case errors.Is(err, notify.ErrThrottled):
		w.log.Debug("spool request coalesced", logx.String("file", name))
	default:
		w.log.Warn("spool request failed", logx.String("file", name), logx.Err(err))
		w.quarantine(path)
		return false
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.log.Warn("spool remove failed", logx.String("file", name), logx.Err(err))
	}
	return true
}

func (w *Watcher) quarantine(path string) {
	if err := os.MkdirAll(w.failed, 0o755); err != nil {
		w.log.Error("spool failed dir unavailable", logx.String("dir", w.failed), logx.Err(err))
		_ = os.Remove(path)
		return
	}
	dst := filepath.Join(w.failed, time.Now().UTC().Format("20060102T150405.000")+"-"+filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		w.log.Error("spool quarantine failed", logx.String("file", path), logx.Err(err))
		_ = os.Remove(path)
	}
}

// Run drains the spool, then keeps draining on every change until ctx is
// done. A periodic rescan covers events the watcher missed.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("spool: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("spool: watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("spool: watch %s: %w", w.dir, err)
	}
	w.log.Info("spool watching", logx.String("dir", w.dir))

	kick := make(chan struct{}, 1)
	signal := func() {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	settle := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(settleDelay, signal)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	rescan := time.NewTicker(rescanInterval)
	defer rescan.Stop()

	signal()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-kick:
			if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
				w.log.Warn("spool drain failed", logx.Err(err))
			}
		case <-rescan.C:
			signal()
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("spool: watcher closed")
			}
			if pending(filepath.Base(ev.Name)) && ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				settle()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("spool: watcher closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("spool watch overflow; rescanning", logx.String("dir", w.dir))
				signal()
				continue
			}
			w.log.Warn("spool watch error", logx.Err(err))
		}
	}
}
