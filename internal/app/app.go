// Package app wires the printbot runtime: config hot reload, the spool
// watcher, the dispatcher with its outbox, and the archive janitor.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"printbot/internal/config"
	"printbot/internal/janitor"
	"printbot/internal/notify"
	"printbot/internal/outbox"
	"printbot/internal/spool"
	"printbot/internal/storage"
	logx "printbot/pkg/logx"
)

type App struct {
	cfgm *config.ConfigManager

	log   logx.Logger
	logs  *logx.Service
	store storage.Store

	mu       sync.RWMutex
	composer notify.Composer
	storeCfg config.StorageConfig

	disp    *notify.Dispatcher
	outbox  *outbox.Sender
	spool   *spool.Watcher
	janitor *janitor.Janitor
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return newApp(cfgm, cfg)
}

func newApp(cfgm *config.ConfigManager, cfg *config.Config) (*App, error) {
	logSvc, log := logx.New(mapLogConfig(cfg))

	ncfg, err := mapNotifyConfig(cfg)
	if err != nil {
		return nil, err
	}
	jcfg, err := mapJanitorConfig(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfgm:     cfgm,
		log:      log.Component("app"),
		logs:     logSvc,
		composer: notify.Composer{
			Style:    mapStyle(cfg),
			Splitter: mapSplitter(cfg, log),
		},
		storeCfg: cfg.Storage,
		outbox:   outbox.New(cfg.Outbox.Dir, log),
		janitor:  janitor.New(jcfg, log),
	}
	a.disp = notify.New(ncfg, a.outbox, log)
	a.spool = spool.New(cfg.Spool.Dir, cfg.Spool.FailedDir, a.Handle, log)

	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.Component("storage"))
		if err != nil {
			return nil, err
		}
		a.store = st
		a.disp.SetRecorder(journal{store: st})
		a.log.Info("dispatch journal enabled", logx.String("driver", sc.Driver))
	}

	cfgm.SetLogger(log.Component("config"))
	cfgm.SetValidator(func(_ context.Context, c *config.Config) error { return validate(c) })
	return a, nil
}

func (a *App) Logger() logx.Logger            { return a.log }
func (a *App) Dispatcher() *notify.Dispatcher { return a.disp }
func (a *App) Store() storage.Store           { return a.store }

// Handle composes req and dispatches every resulting draft in order.
// Throttled progress drafts are skipped; the first other error stops.
func (a *App) Handle(ctx context.Context, req notify.Request) error {
	a.mu.RLock()
	c := a.composer
	a.mu.RUnlock()

	drafts, err := c.Compose(req)
	if err != nil {
		return err
	}
	throttled := 0
	for _, d := range drafts {
		_, err := a.disp.Dispatch(ctx, d)
		switch {
		case err == nil:
		case errors.Is(err, notify.ErrThrottled):
			throttled++
		default:
			return err
		}
	}
	if throttled == len(drafts) {
		return notify.ErrThrottled
	}
	return nil
}

// Run blocks until ctx is done or a component fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.cfgm.Watch(gctx) })
	g.Go(func() error { return a.spool.Run(gctx) })
	g.Go(func() error { return a.janitor.Run(gctx) })

	sub := a.cfgm.Subscribe(8)
	g.Go(func() error {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-gctx.Done():
				return nil
			case cfg, ok := <-sub:
				if !ok {
					return nil
				}
				a.apply(cfg)
			}
		}
	})

	a.log.Info("app started",
		logx.String("spool", a.spool.Dir()),
		logx.String("outbox", a.outbox.Dir),
	)
	err := g.Wait()
	a.log.Info("app stopped", logx.Err(err))
	return err
}

// apply pushes a reloaded config into the live components. Directories
// are fixed for the lifetime of the process.
func (a *App) apply(cfg *config.Config) {
	a.logs.Apply(mapLogConfig(cfg))

	a.mu.Lock()
	a.composer = notify.Composer{
		Style:    mapStyle(cfg),
		Splitter: mapSplitter(cfg, a.log),
	}
	a.mu.Unlock()

	if ncfg, err := mapNotifyConfig(cfg); err != nil {
		a.log.Warn("invalid notify config; keeping previous", logx.Err(err))
	} else {
		a.disp.Apply(ncfg)
	}
	if jcfg, err := mapJanitorConfig(cfg); err != nil {
		a.log.Warn("invalid janitor config; keeping previous", logx.Err(err))
	} else if err := a.janitor.Apply(jcfg); err != nil {
		a.log.Warn("sweep reschedule failed", logx.Err(err))
	}

	var fixed []string
	if cfg.Spool.Dir != a.spool.Dir() {
		fixed = append(fixed, "spool.dir")
	}
	if cfg.Outbox.Dir != a.outbox.Dir {
		fixed = append(fixed, "outbox.dir")
	}
	if cfg.Storage != a.storeCfg {
		fixed = append(fixed, "storage")
	}
	if len(fixed) > 0 {
		a.log.Warn("restart required for changes to take effect", logx.Strings("keys", fixed))
	}
}

func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if err := a.logs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
