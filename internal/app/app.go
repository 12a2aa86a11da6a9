// Package app wires configuration, logging, transport, storage, and the
// watch loop into one runnable unit.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"livewatch/internal/adapters/telegram"
	"livewatch/internal/config"
	"livewatch/internal/extract"
	"livewatch/internal/kit"
	"livewatch/internal/notify"
	"livewatch/internal/render"
	"livewatch/internal/report"
	"livewatch/internal/storage"
	"livewatch/internal/track"
	"livewatch/internal/watch"
	"livewatch/pkg/logx"
)

const (
	defaultURLFormat        = "https://www.tiktok.com/@%s/live"
	defaultProfileURLFormat = "https://www.tiktok.com/@%s"
	defaultTimezone         = "Asia/Jakarta"
)

type App struct {
	cfgm *config.Manager
	log  logx.Logger
	logs *logx.Service

	adapter  kit.Adapter
	renderer render.Renderer
	store    storage.Store
	notifier *notify.Notifier
	watcher  *watch.Watcher
	reporter *report.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	chatID, err := cfg.ChatID()
	if err != nil {
		return nil, err
	}

	ad, err := telegram.New(telegram.Config{Token: cfg.Telegram.Token})
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			ThreadID:   cfg.Logging.Telegram.ThreadID,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}, ad)
	logSvc.SetTelegramTarget(chatID, cfg.Logging.Telegram.ThreadID)
	log = log.With(logx.String("comp", "app"))

	accounts, err := config.LoadRoster(cfg.Watch.AccountsFile)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	pollInterval, err := config.ParseDurationOrDefault("watch.poll_interval", cfg.Watch.PollInterval, 120*time.Second)
	if err != nil {
		return nil, err
	}
	accountDelay, err := config.ParseDurationOrDefault("watch.account_delay", cfg.Watch.AccountDelay, 2*time.Second)
	if err != nil {
		return nil, err
	}
	pageTimeout, err := config.ParseDurationOrDefault("watch.page_timeout", cfg.Watch.PageTimeout, 20*time.Second)
	if err != nil {
		return nil, err
	}
	badgeTimeout, err := config.ParseDurationOrDefault("watch.badge_timeout", cfg.Watch.BadgeTimeout, time.Second)
	if err != nil {
		return nil, err
	}
	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}

	tzName := cfg.Watch.Timezone
	if strings.TrimSpace(tzName) == "" {
		tzName = defaultTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("watch.timezone: %w", err)
	}

	urlFormat := cfg.Watch.URLFormat
	if urlFormat == "" {
		urlFormat = defaultURLFormat
	}
	profileFormat := cfg.Watch.ProfileURLFormat
	if profileFormat == "" {
		profileFormat = defaultProfileURLFormat
	}

	// Persistence: load failure degrades to an empty store, never fatal.
	storeCfg := storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}
	if storeCfg.Driver == "" {
		storeCfg.Driver = "file"
	}
	if storeCfg.Path == "" && strings.EqualFold(storeCfg.Driver, "file") {
		storeCfg.Path = "./livewatch_state.json"
	}
	store, err := storage.Open(storeCfg, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}

	pol := track.DefaultPolicy()
	pol.NotifyOnEnd = cfg.Watch.NotifyOnEnd
	tracker := track.New(pol)
	if store != nil {
		states, err := store.LoadStates(context.Background())
		if err != nil {
			log.Warn("state load failed; starting from empty state", logx.Err(err))
		} else {
			tracker.Seed(states)
			log.Info("state loaded", logx.Int("accounts", len(states)))
		}
	}

	extr := extract.New(extract.Patterns{
		StateElementID: cfg.Watch.StateElementID,
		BadgeText:      cfg.Watch.BadgeText,
		BadgeWait:      badgeTimeout,
	}, log.With(logx.String("comp", "extract")))

	notifier := notify.New(notify.Config{
		Target:           kit.ChatTarget{ChatID: chatID, ThreadID: cfg.Telegram.ThreadID},
		WatchURLFormat:   urlFormat,
		ProfileURLFormat: profileFormat,
		Location:         loc,
	}, ad, log.With(logx.String("comp", "notify")))

	renderer := render.NewHTTPRenderer()

	watcher := watch.New(watch.Config{
		Accounts:     accounts,
		PollInterval: pollInterval,
		AccountDelay: accountDelay,
		PageTimeout:  pageTimeout,
		URLFormat:    urlFormat,
	}, renderer, extr, tracker, notifier, store, log.With(logx.String("comp", "watch")))

	reporter := report.New(report.Config{
		Enabled:  cfg.Report.Enabled,
		Schedule: cfg.Report.Schedule,
		Location: loc,
		Accounts: len(accounts),
	}, watcher, notifier, log.With(logx.String("comp", "report")))

	return &App{
		cfgm:     cfgm,
		log:      log,
		logs:     logSvc,
		adapter:  ad,
		renderer: renderer,
		store:    store,
		notifier: notifier,
		watcher:  watcher,
		reporter: reporter,
	}, nil
}

// Start launches the watch loop, the report scheduler, and the config
// watcher (hot-applies the logging section only).
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.reporter.Start(runCtx); err != nil {
		cancel()
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.cfgm.Watch(runCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sub := a.cfgm.Subscribe(1)
		for {
			select {
			case <-runCtx.Done():
				return
			case cfg := <-sub:
				a.log.Info("config reloaded; applying logging settings")
				a.logs.Apply(logx.Config{
					Level:   cfg.Logging.Level,
					Console: cfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: cfg.Logging.File.Enabled,
						Path:    cfg.Logging.File.Path,
					},
					Telegram: logx.TelegramConfig{
						Enabled:    cfg.Logging.Telegram.Enabled,
						ThreadID:   cfg.Logging.Telegram.ThreadID,
						MinLevel:   cfg.Logging.Telegram.MinLevel,
						RatePerSec: cfg.Logging.Telegram.RatePerSec,
					},
				})
			}
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.watcher.Run(runCtx); err != nil && runCtx.Err() == nil {
			a.log.Error("watch loop exited", logx.Err(err))
		}
	}()

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	_ = ctx
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	a.reporter.Stop()
	_ = a.renderer.Close()
	if a.store != nil {
		_ = a.store.Close()
	}
	return a.logs.Close()
}

// SelfTest sends one canned confirmation message (the -send-test mode).
func (a *App) SelfTest(ctx context.Context) error {
	return a.notifier.SelfTest(ctx)
}
