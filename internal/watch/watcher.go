// Package watch runs the poll loop: one sequential pass over the roster per
// cycle, pacing between accounts, per-account failure isolation, and one
// state snapshot write per cycle.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"livewatch/internal/extract"
	"livewatch/internal/notify"
	"livewatch/internal/render"
	"livewatch/internal/storage"
	"livewatch/internal/track"
	"livewatch/pkg/logx"
)

type Config struct {
	// Accounts is the fixed roster, checked in order every cycle.
	Accounts []string

	// PollInterval is the cycle cadence (default 120s). The first cycle
	// fires immediately at startup.
	PollInterval time.Duration
	// AccountDelay paces consecutive account checks (default 2s). This is
	// rate-limit avoidance against the source site, not incidental timing.
	AccountDelay time.Duration
	// PageTimeout bounds one page navigation (default 20s).
	PageTimeout time.Duration

	// URLFormat is a fmt string producing the live page URL for an account.
	URLFormat string
}

// Stats are cumulative counters for the periodic watch report.
type Stats struct {
	Cycles       uint64
	Checks       uint64
	CheckFailed  uint64
	SessionsSeen uint64
}

type Watcher struct {
	cfg      Config
	renderer render.Renderer
	extr     *extract.Extractor
	tracker  *track.Tracker
	notif    *notify.Notifier
	store    storage.Store
	log      logx.Logger

	pacer *rate.Limiter

	mu    sync.Mutex
	stats Stats
}

func New(cfg Config, renderer render.Renderer, extr *extract.Extractor,
	tracker *track.Tracker, notif *notify.Notifier, store storage.Store, log logx.Logger) *Watcher {

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 120 * time.Second
	}
	if cfg.AccountDelay <= 0 {
		cfg.AccountDelay = 2 * time.Second
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 20 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{
		cfg:      cfg,
		renderer: renderer,
		extr:     extr,
		tracker:  tracker,
		notif:    notif,
		store:    store,
		log:      log,
		pacer:    rate.NewLimiter(rate.Every(cfg.AccountDelay), 1),
	}
}

// Run blocks until ctx is cancelled. The first cycle starts immediately;
// afterwards the next cycle is due at cycleStart+interval, or right away if
// the cycle overran. Cycles never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watch loop started",
		logx.Int("accounts", len(w.cfg.Accounts)),
		logx.Duration("interval", w.cfg.PollInterval),
		logx.Duration("account_delay", w.cfg.AccountDelay))

	for {
		start := time.Now()
		w.runCycle(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := w.cfg.PollInterval - time.Since(start)
		if wait < 0 {
			w.log.Debug("cycle overran interval; starting next immediately",
				logx.Duration("overrun", -wait))
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (w *Watcher) runCycle(ctx context.Context) {
	cycleStart := time.Now()
	var failed int

	for _, account := range w.cfg.Accounts {
		if err := w.pacer.Wait(ctx); err != nil {
			return
		}
		if err := w.checkAccount(ctx, account); err != nil {
			failed++
			w.log.Warn("account check failed", logx.String("account", account), logx.Err(err))
		}
		if ctx.Err() != nil {
			return
		}
	}

	w.mu.Lock()
	w.stats.Cycles++
	w.mu.Unlock()

	w.persist(ctx)

	w.log.Debug("cycle done",
		logx.Int("accounts", len(w.cfg.Accounts)),
		logx.Int("failed", failed),
		logx.Duration("took", time.Since(cycleStart)))
}

// checkAccount runs the per-account state machine: navigate, extract,
// evaluate, maybe alert, commit. Any failure here is contained: the
// account's tracked state is only touched once a full status was extracted.
func (w *Watcher) checkAccount(ctx context.Context, account string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	w.mu.Lock()
	w.stats.Checks++
	w.mu.Unlock()

	url := fmt.Sprintf(w.cfg.URLFormat, account)
	page, err := w.renderer.Navigate(ctx, url, w.cfg.PageTimeout)
	if err != nil {
		w.mu.Lock()
		w.stats.CheckFailed++
		w.mu.Unlock()
		return err
	}

	status := w.extr.Extract(ctx, page)
	tr, shouldNotify := w.tracker.Observe(account, status)

	if tr != track.TransitionNone {
		w.log.Info("status transition",
			logx.String("account", account),
			logx.String("transition", tr.String()),
			logx.String("room_id", status.RoomID),
			logx.Bool("notify", shouldNotify))
	}
	if tr == track.TransitionLive {
		w.mu.Lock()
		w.stats.SessionsSeen++
		w.mu.Unlock()
	}

	if shouldNotify {
		switch tr {
		case track.TransitionLive:
			w.notif.LiveAlert(ctx, account, status)
		case track.TransitionEnded:
			w.notif.EndAlert(ctx, account, status)
		}
	}
	return nil
}

// persist writes the full snapshot once per cycle. Failure is logged and
// dropped; state simply doesn't survive a crash until the next good write.
func (w *Watcher) persist(ctx context.Context) {
	if w.store == nil {
		return
	}
	if err := w.store.SaveStates(ctx, w.tracker.Snapshot()); err != nil {
		w.log.Warn("state snapshot write failed", logx.Err(err))
	}
}

// Stats returns cumulative counters since process start.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
