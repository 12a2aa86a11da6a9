package extract

import (
	"regexp"
	"time"
)

// Patterns configures where the extractor looks. The zero value gets the
// defaults below, so callers only override what drifted upstream.
type Patterns struct {
	// StateElementID is the DOM id of the embedded application-state blob.
	StateElementID string
	// BadgeText is the visible badge checked as a fallback live signal.
	BadgeText string
	// BadgeWait bounds the fallback visibility check.
	BadgeWait time.Duration

	// ViewerKeys are tried in order; first match wins.
	ViewerKeys []string

	roomID  *regexp.Regexp
	title   *regexp.Regexp
	viewers []*regexp.Regexp
}

const (
	defaultStateElementID = "SIGI_STATE"
	defaultBadgeText      = "LIVE"
	defaultBadgeWait      = time.Second
)

// Room identifiers are long digit runs; anything shorter than 8 digits is
// some other numeric field that happens to sit under a roomId-ish key.
var roomIDPattern = regexp.MustCompile(`"roomId"\s*:\s*"?(\d{8,})"?`)

// Bounded and escaped-quote-safe: consume escape pairs as units so an
// embedded \" doesn't terminate the capture early.
var titlePattern = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.){1,256}?)"`)

func viewerPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"?(\d+)"?`)
}

func (p *Patterns) applyDefaults() {
	if p.StateElementID == "" {
		p.StateElementID = defaultStateElementID
	}
	if p.BadgeText == "" {
		p.BadgeText = defaultBadgeText
	}
	if p.BadgeWait <= 0 {
		p.BadgeWait = defaultBadgeWait
	}
	if len(p.ViewerKeys) == 0 {
		p.ViewerKeys = []string{"viewerCount", "userCount", "audienceCount"}
	}

	p.roomID = roomIDPattern
	p.title = titlePattern
	p.viewers = p.viewers[:0]
	for _, k := range p.ViewerKeys {
		p.viewers = append(p.viewers, viewerPattern(k))
	}
}
