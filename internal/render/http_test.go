package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const livePageHTML = `<!DOCTYPE html>
<html><head><title>@alice</title></head>
<body>
<div class="badge">LIVE</div>
<script id="SIGI_STATE" type="application/json">{"LiveRoom":{"roomId":"7123456789012345678"}}</script>
<script id="other">var x = 1;</script>
</body></html>`

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNavigateAndEmbeddedState(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Errorf("expected a browser user agent")
		}
		_, _ = w.Write([]byte(livePageHTML))
	})

	r := NewHTTPRenderer()
	page, err := r.Navigate(context.Background(), srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}

	blob, ok := page.EmbeddedState("SIGI_STATE")
	if !ok {
		t.Fatalf("embedded state not found")
	}
	if blob != `{"LiveRoom":{"roomId":"7123456789012345678"}}` {
		t.Fatalf("unexpected blob: %q", blob)
	}

	if _, ok := page.EmbeddedState("NOT_THERE"); ok {
		t.Fatalf("absent element id must report ok=false")
	}
}

func TestVisibleText(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(livePageHTML))
	})

	r := NewHTTPRenderer()
	page, err := r.Navigate(context.Background(), srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if !page.VisibleText(context.Background(), "LIVE", time.Second) {
		t.Fatalf("badge text should be visible")
	}
	if page.VisibleText(context.Background(), "OFFLINE", time.Second) {
		t.Fatalf("absent text should not be visible")
	}
}

func TestNavigateNon2xx(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	r := NewHTTPRenderer()
	_, err := r.Navigate(context.Background(), srv.URL, 5*time.Second)
	if !errors.Is(err, ErrNavigation) {
		t.Fatalf("expected ErrNavigation, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("a 404 is not a timeout: %v", err)
	}
}

func TestNavigateTimeout(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	})

	r := NewHTTPRenderer()
	_, err := r.Navigate(context.Background(), srv.URL, 30*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !errors.Is(err, ErrNavigation) {
		t.Fatalf("timeouts are also navigation failures: %v", err)
	}
}

func TestNavigateConnectionRefused(t *testing.T) {
	r := NewHTTPRenderer()
	_, err := r.Navigate(context.Background(), "http://127.0.0.1:1", time.Second)
	if !errors.Is(err, ErrNavigation) {
		t.Fatalf("expected ErrNavigation, got %v", err)
	}
}

func TestEmbeddedStateEmptyBlob(t *testing.T) {
	p := &staticPage{html: `<script id="SIGI_STATE">   </script>`}
	if _, ok := p.EmbeddedState("SIGI_STATE"); ok {
		t.Fatalf("whitespace-only blob must report absent")
	}
}
