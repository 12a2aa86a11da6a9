// Package extract turns a rendered live page into a normalized LiveStatus.
//
// The embedded application-state blob is unversioned and undocumented, so the
// extractor does pattern searches over the (re-serialized) JSON text instead
// of schema parsing, and falls back to the visible "LIVE" badge when the blob
// yields nothing. Extraction is total: whatever the page looks like, the
// result is a well-formed LiveStatus and no error.
package extract

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"livewatch/internal/render"
	"livewatch/pkg/logx"
)

// LiveStatus is one observation of an account. RoomID and Title are empty
// when unresolved; ViewerCount is nil when unresolved (never a 0 sentinel).
// RoomID implies Live, but Live can hold without a RoomID (badge-only).
type LiveStatus struct {
	Live        bool
	RoomID      string
	Title       string
	ViewerCount *int64
	ObservedAt  time.Time
}

type Extractor struct {
	pat Patterns
	log logx.Logger

	now func() time.Time
}

func New(pat Patterns, log logx.Logger) *Extractor {
	pat.applyDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Extractor{pat: pat, log: log, now: time.Now}
}

// Extract runs the strategies in order (embedded state, then badge fallback)
// and never fails: a page with no usable signal is simply not live.
func (e *Extractor) Extract(ctx context.Context, page render.Page) (st LiveStatus) {
	defer func() {
		// Extraction must never raise past this boundary.
		if r := recover(); r != nil {
			e.log.Warn("extractor panic recovered", logx.Any("panic", r))
			st = LiveStatus{ObservedAt: e.now()}
		}
	}()

	st = LiveStatus{ObservedAt: e.now()}
	if page == nil {
		return st
	}

	e.fromEmbeddedState(page, &st)
	if !st.Live {
		if page.VisibleText(ctx, e.pat.BadgeText, e.pat.BadgeWait) {
			st.Live = true
		}
	}
	return st
}

// fromEmbeddedState locates the state blob, normalizes it through a
// decode/encode round trip, and pattern-searches the result. A missing or
// unparsable blob contributes nothing.
func (e *Extractor) fromEmbeddedState(page render.Page, st *LiveStatus) {
	raw, ok := page.EmbeddedState(e.pat.StateElementID)
	if !ok {
		return
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		e.log.Debug("embedded state not parsable", logx.Err(err))
		return
	}
	norm, err := json.Marshal(v)
	if err != nil {
		return
	}
	text := string(norm)

	if m := e.pat.roomID.FindStringSubmatch(text); m != nil {
		st.RoomID = m[1]
		// A resolved room identifier is the strong live signal.
		st.Live = true
	}
	if m := e.pat.title.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(unescapeJSON(m[1])); t != "" {
			st.Title = t
		}
	}
	for _, re := range e.pat.viewers {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				st.ViewerCount = &n
				break
			}
		}
	}
}

// unescapeJSON resolves backslash escapes captured out of a JSON string
// literal. Falls back to the raw capture if it is not a valid literal body.
func unescapeJSON(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
