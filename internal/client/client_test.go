package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type nopLogger struct{}

func (nopLogger) Debug(v ...any)                 {}
func (nopLogger) Warn(v ...any)                  {}
func (nopLogger) Debugf(format string, v ...any) {}
func (nopLogger) Warnf(format string, v ...any)  {}
func (nopLogger) Errorf(format string, v ...any) {}

func newTestClient(retries int) Client {
	return Client{
		Client:         &http.Client{Timeout: 5 * time.Second},
		UserAgents:     []string{"test-agent/1.0"},
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		CaptchaBackoff: time.Millisecond,
		Logger:         nopLogger{},
	}
}

func TestFetchPageRetriesOn503(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`<html><body><h1>ok</h1></body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	doc, err := c.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "ok" {
		t.Errorf("h1 = %q", got)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("server hit %d times, want 3", n)
	}
}

func TestFetchPageGivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.FetchPage(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("server hit %d times, want 3", n)
	}
}

func TestFetchPageDoesNotRetry404(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.FetchPage(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestFetchPageRetriesOnCaptchaMarker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			_, _ = w.Write([]byte(`<html><body>please solve this CAPTCHA</body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body><h1>real page</h1></body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	doc, err := c.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "real page" {
		t.Errorf("h1 = %q", got)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestFetchPageRotatesUserAgent(t *testing.T) {
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	c := newTestClient(1)
	if _, err := c.FetchPage(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := ua.Load().(string); got != "test-agent/1.0" {
		t.Errorf("User-Agent = %q, want configured agent", got)
	}
}

func TestScrapeProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="Lamp"></head>
			<body><span class="price">$35.50</span></body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(1)
	info, err := c.ScrapeProduct(context.Background(), srv.URL+"/p/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Price != 35.50 {
		t.Errorf("Price = %v, want 35.50", info.Price)
	}
	if info.Title != "Lamp" {
		t.Errorf("Title = %q", info.Title)
	}
}

func TestScrapeProductPriceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>nothing to see</p></body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(1)
	_, err := c.ScrapeProduct(context.Background(), srv.URL+"/p/1")
	if !errors.Is(err, ErrPriceNotFound) {
		t.Errorf("err = %v, want ErrPriceNotFound", err)
	}
}
