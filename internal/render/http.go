package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	// Pretend to be a desktop browser; the source site serves a stripped
	// page (without the embedded state blob) to obvious bots.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	maxBodyBytes = 4 << 20
)

// HTTPRenderer fetches pages with a plain HTTP client and treats the response
// body as the rendered document. It approximates the headless-browser
// contract: EmbeddedState locates <script id="..."> blobs in the static HTML,
// and VisibleText is a text search (static pages resolve immediately, so the
// bounded wait never sleeps).
type HTTPRenderer struct {
	client    *http.Client
	userAgent string
}

func NewHTTPRenderer() *HTTPRenderer {
	return &HTTPRenderer{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: defaultUserAgent,
	}
}

func (r *HTTPRenderer) Navigate(ctx context.Context, url string, timeout time.Duration) (Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %s", ErrNavigation, ErrTimeout, url)
		}
		return nil, fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrNavigation, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %s", ErrNavigation, ErrTimeout, url)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNavigation, url, err)
	}

	return &staticPage{html: string(body)}, nil
}

func (r *HTTPRenderer) Close() error { return nil }

type staticPage struct {
	html string
}

func (p *staticPage) EmbeddedState(elementID string) (string, bool) {
	if elementID == "" {
		return "", false
	}
	re, err := regexp.Compile(`(?s)<script[^>]*\bid="` + regexp.QuoteMeta(elementID) + `"[^>]*>(.*?)</script>`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(p.html)
	if m == nil {
		return "", false
	}
	blob := strings.TrimSpace(m[1])
	if blob == "" {
		return "", false
	}
	return blob, true
}

func (p *staticPage) VisibleText(ctx context.Context, text string, wait time.Duration) bool {
	_ = wait // static content is already final
	if text == "" || ctx.Err() != nil {
		return false
	}
	return strings.Contains(p.html, text)
}
