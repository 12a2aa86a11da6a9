package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"livewatch/internal/extract"
	"livewatch/internal/kit"
	"livewatch/pkg/logx"
)

type fakeAdapter struct {
	sent []string
	err  error
}

func (a *fakeAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if a.err != nil {
		return kit.MessageRef{}, a.err
	}
	a.sent = append(a.sent, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(a.sent)}, nil
}

func newTestNotifier(ad kit.Adapter) *Notifier {
	return New(Config{
		Target:           kit.ChatTarget{ChatID: -100},
		WatchURLFormat:   "https://example.com/@%s/live",
		ProfileURLFormat: "https://example.com/@%s",
		Location:         time.UTC,
	}, ad, logx.Nop())
}

func TestLiveAlertFullMessage(t *testing.T) {
	ad := &fakeAdapter{}
	n := newTestNotifier(ad)

	viewers := int64(12345)
	n.LiveAlert(context.Background(), "alice", extract.LiveStatus{
		Live:        true,
		RoomID:      "7000000012345678",
		Title:       `Q&A <today> "special"`,
		ViewerCount: &viewers,
		ObservedAt:  time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC),
	})

	if len(ad.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ad.sent))
	}
	msg := ad.sent[0]

	for _, want := range []string{
		"<b>alice</b>",
		"Q&amp;A &lt;today&gt; &quot;special&quot;",
		"12,345 watching",
		"https://example.com/@alice/live",
		"https://example.com/@alice",
		"2025-06-01 20:30:00 UTC",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, `Q&A <today>`) {
		t.Fatalf("raw HTML leaked into message:\n%s", msg)
	}
}

func TestLiveAlertBadgeOnlyOmitsLines(t *testing.T) {
	ad := &fakeAdapter{}
	n := newTestNotifier(ad)

	n.LiveAlert(context.Background(), "bob", extract.LiveStatus{Live: true, ObservedAt: time.Now()})

	msg := ad.sent[0]
	if strings.Contains(msg, "📢") {
		t.Fatalf("badge-only alert must have no title line:\n%s", msg)
	}
	if strings.Contains(msg, "watching") {
		t.Fatalf("badge-only alert must have no viewer line:\n%s", msg)
	}
}

func TestSendFailureSwallowed(t *testing.T) {
	ad := &fakeAdapter{err: errors.New("telegram: 502")}
	n := newTestNotifier(ad)

	// Must not panic or propagate; failure is logged and dropped.
	n.LiveAlert(context.Background(), "alice", extract.LiveStatus{Live: true, ObservedAt: time.Now()})
	n.EndAlert(context.Background(), "alice", extract.LiveStatus{ObservedAt: time.Now()})
}

func TestSelfTest(t *testing.T) {
	ad := &fakeAdapter{}
	n := newTestNotifier(ad)
	if err := n.SelfTest(context.Background()); err != nil {
		t.Fatalf("self test: %v", err)
	}
	if len(ad.sent) != 1 || !strings.Contains(ad.sent[0], "livewatch") {
		t.Fatalf("unexpected self-test message: %v", ad.sent)
	}

	ad.err = errors.New("bad token")
	if err := n.SelfTest(context.Background()); err == nil {
		t.Fatalf("self test must surface transport errors")
	}
}

func TestDefaultLocation(t *testing.T) {
	n := New(Config{
		Target:           kit.ChatTarget{ChatID: 1},
		WatchURLFormat:   "https://example.com/@%s/live",
		ProfileURLFormat: "https://example.com/@%s",
	}, &fakeAdapter{}, logx.Nop())
	if n.cfg.Location == nil {
		t.Fatalf("location default not applied")
	}
}
