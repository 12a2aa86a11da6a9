// Package render abstracts the page-rendering collaborator the extractor
// reads from: navigate to a URL, pull an embedded application-state blob out
// of the document, or check for visible text.
package render

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNavigation covers unreachable pages and non-2xx responses.
	ErrNavigation = errors.New("render: navigation failed")
	// ErrTimeout is a navigation that ran out of time. It also matches
	// ErrNavigation via errors.Is.
	ErrTimeout = errors.New("render: navigation timed out")
)

// Page is a rendered document. Implementations hold the content; callers
// never see raw HTML.
type Page interface {
	// EmbeddedState returns the text content of the state element with the
	// given DOM id, or ok=false when absent.
	EmbeddedState(elementID string) (string, bool)

	// VisibleText reports whether the given text is visible on the page,
	// waiting up to wait for it to appear. A static page resolves
	// immediately; wait is an upper bound, not a sleep.
	VisibleText(ctx context.Context, text string, wait time.Duration) bool
}

// Renderer navigates to pages. One Renderer (and its underlying browsing
// context) is shared across accounts and cycles; the poll scheduler is its
// only caller.
type Renderer interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) (Page, error)
	Close() error
}
