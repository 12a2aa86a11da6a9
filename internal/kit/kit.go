// Package kit holds the outbound transport contract shared by the notifier,
// the report scheduler, and the logging service. livewatch never receives
// updates, so the surface is send-only.
package kit

import "context"

type ChatTarget struct {
	ChatID   int64
	ThreadID int
}

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Adapter is implemented by chat transports (Telegram today).
type Adapter interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
