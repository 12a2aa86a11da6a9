// Package notify formats and dispatches alerts. Delivery is fire-and-forget:
// a failed send is logged and dropped, never retried, and never fails the
// poll cycle that produced it.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"livewatch/internal/extract"
	"livewatch/internal/kit"
	"livewatch/pkg/logx"
)

type Config struct {
	Target kit.ChatTarget

	// WatchURLFormat/ProfileURLFormat are fmt strings taking the account.
	WatchURLFormat   string
	ProfileURLFormat string

	// Location renders alert timestamps; defaults to Asia/Jakarta.
	Location *time.Location
}

type Notifier struct {
	cfg     Config
	adapter kit.Adapter
	log     logx.Logger
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Notifier {
	if cfg.Location == nil {
		loc, err := time.LoadLocation("Asia/Jakarta")
		if err != nil {
			loc = time.UTC
		}
		cfg.Location = loc
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{cfg: cfg, adapter: adapter, log: log}
}

// LiveAlert announces an OFF->ON transition. Always exactly one message per
// detected transition; the caller guarantees the edge.
func (n *Notifier) LiveAlert(ctx context.Context, account string, status extract.LiveStatus) {
	var b strings.Builder
	fmt.Fprintf(&b, "🔴 <b>%s</b> is LIVE!\n", escapeHTML(account))
	if status.Title != "" {
		fmt.Fprintf(&b, "📢 %s\n", escapeHTML(status.Title))
	}
	if status.ViewerCount != nil {
		fmt.Fprintf(&b, "👀 %s watching\n", humanize.Comma(*status.ViewerCount))
	}
	fmt.Fprintf(&b, "▶️ %s\n", fmt.Sprintf(n.cfg.WatchURLFormat, account))
	fmt.Fprintf(&b, "👤 %s\n", fmt.Sprintf(n.cfg.ProfileURLFormat, account))
	fmt.Fprintf(&b, "🕒 %s", n.stamp(status.ObservedAt))

	n.send(ctx, account, "live", b.String())
}

// EndAlert announces an ON->OFF transition. Only dispatched when the
// tracker's policy enables the edge.
func (n *Notifier) EndAlert(ctx context.Context, account string, status extract.LiveStatus) {
	var b strings.Builder
	fmt.Fprintf(&b, "⚫ <b>%s</b> ended the live session.\n", escapeHTML(account))
	fmt.Fprintf(&b, "🕒 %s", n.stamp(status.ObservedAt))

	n.send(ctx, account, "ended", b.String())
}

// SelfTest sends one canned message so operators can validate the transport
// configuration without running the poll loop.
func (n *Notifier) SelfTest(ctx context.Context) error {
	text := fmt.Sprintf("✅ livewatch transport OK, %s", n.stamp(time.Now()))
	_, err := n.adapter.SendText(ctx, n.cfg.Target, text, &kit.SendOptions{DisablePreview: true})
	return err
}

// WatchReport delivers the periodic summary text (already formatted).
func (n *Notifier) WatchReport(ctx context.Context, text string) {
	n.send(ctx, "", "report", text)
}

func (n *Notifier) send(ctx context.Context, account, kind, text string) {
	opt := &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}
	_, err := n.adapter.SendText(ctx, n.cfg.Target, text, opt)
	if err != nil {
		n.log.Warn("notification send failed",
			logx.String("kind", kind),
			logx.String("account", account),
			logx.Int64("chat_id", n.cfg.Target.ChatID),
			logx.Err(err))
		return
	}
	n.log.Debug("notification sent",
		logx.String("kind", kind),
		logx.String("account", account),
		logx.Int64("chat_id", n.cfg.Target.ChatID))
}

func (n *Notifier) stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(n.cfg.Location).Format("2006-01-02 15:04:05 MST")
}

// escapeHTML covers the characters Telegram's HTML parse mode rejects in
// text: & < > and the double quote.
func escapeHTML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
