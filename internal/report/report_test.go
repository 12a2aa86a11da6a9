package report

import (
	"context"
	"testing"

	"livewatch/pkg/logx"
)

func TestStartDisabledIsNoop(t *testing.T) {
	s := New(Config{Enabled: false}, nil, nil, logx.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("disabled report must not error: %v", err)
	}
	s.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(Config{Enabled: true, Schedule: "every day at nine"}, nil, nil, logx.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("invalid cron spec must be a startup error")
	}
}

func TestDefaultSchedule(t *testing.T) {
	s := New(Config{}, nil, nil, logx.Nop())
	if s.cfg.Schedule != "0 9 * * *" {
		t.Fatalf("default schedule not applied: %q", s.cfg.Schedule)
	}
}
