// Package report sends a periodic summary of watch activity through the
// same chat transport as the alerts. Entirely optional.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"livewatch/internal/notify"
	"livewatch/internal/watch"
	"livewatch/pkg/logx"
)

type Config struct {
	Enabled  bool
	Schedule string // cron spec, default "0 9 * * *"
	Location *time.Location
	Accounts int
}

type Service struct {
	cfg     Config
	watcher *watch.Watcher
	notif   *notify.Notifier
	log     logx.Logger

	cron *cron.Cron
	last watch.Stats
}

func New(cfg Config, watcher *watch.Watcher, notif *notify.Notifier, log logx.Logger) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 9 * * *"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, watcher: watcher, notif: notif, log: log}
}

// Start schedules the report job. Returns without starting anything when
// disabled; a bad cron spec is a startup error.
func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	c := cron.New(cron.WithLocation(s.cfg.Location))
	_, err := c.AddFunc(s.cfg.Schedule, func() { s.emit(ctx) })
	if err != nil {
		return fmt.Errorf("report.schedule: %w", err)
	}
	s.cron = c
	c.Start()
	s.log.Info("watch report scheduled", logx.String("schedule", s.cfg.Schedule))
	return nil
}

func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Service) emit(ctx context.Context) {
	now := s.watcher.Stats()
	delta := watch.Stats{
		Cycles:       now.Cycles - s.last.Cycles,
		Checks:       now.Checks - s.last.Checks,
		CheckFailed:  now.CheckFailed - s.last.CheckFailed,
		SessionsSeen: now.SessionsSeen - s.last.SessionsSeen,
	}
	s.last = now

	text := fmt.Sprintf(
		"📊 <b>livewatch report</b>\naccounts: %d\ncycles: %d\nchecks: %d (failed %d)\nnew live sessions: %d",
		s.cfg.Accounts, delta.Cycles, delta.Checks, delta.CheckFailed, delta.SessionsSeen,
	)
	s.notif.WatchReport(ctx, text)
}
