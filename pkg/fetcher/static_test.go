package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><h1>ok</h1></body></html>`))
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body><h1>Caf\xe9</h1></body></html>"))
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(r.UserAgent() + "|" + r.Header.Get("X-Test")))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})
	mux.HandleFunc("/accepted", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = w.Write([]byte(`<p>cached</p>`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// --- StaticFetcher Tests ---

func TestStaticFetcher_Fetch_OK(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(StaticConfig{})

	content, err := f.Fetch(context.Background(), srv.URL+"/ok", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if content.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", content.StatusCode)
	}
	if !strings.Contains(string(content.HTML), "<h1>ok</h1>") {
		t.Errorf("HTML = %q", content.HTML)
	}
	if content.URL != srv.URL+"/ok" {
		t.Errorf("URL = %q", content.URL)
	}
	if content.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestStaticFetcher_Fetch_TranscodesDeclaredCharset(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(StaticConfig{})

	content, err := f.Fetch(context.Background(), srv.URL+"/latin1", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(string(content.HTML), "Café") {
		t.Errorf("HTML = %q, want UTF-8 body", content.HTML)
	}
	if content.ContentType != "text/html; charset=utf-8" {
		t.Errorf("ContentType = %q", content.ContentType)
	}
}

func TestStaticFetcher_Fetch_UserAgentAndHeaders(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(StaticConfig{UserAgent: "config-agent"})

	content, err := f.Fetch(context.Background(), srv.URL+"/echo", Options{
		Headers: map[string]string{"X-Test": "yes"},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(content.HTML) != "config-agent|yes" {
		t.Errorf("echo = %q", content.HTML)
	}

	content, err = f.Fetch(context.Background(), srv.URL+"/echo", Options{UserAgent: "override"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.HasPrefix(string(content.HTML), "override|") {
		t.Errorf("echo = %q, want per-request user agent", content.HTML)
	}
}

func TestStaticFetcher_Fetch_NotFound(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(StaticConfig{})

	_, err := f.Fetch(context.Background(), srv.URL+"/missing", Options{})

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", fetchErr.StatusCode)
	}
	if !strings.Contains(fetchErr.Error(), "status 404") {
		t.Errorf("Error() = %q", fetchErr.Error())
	}
}

func TestStaticFetcher_Fetch_Non200Success(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(StaticConfig{})

	content, err := f.Fetch(context.Background(), srv.URL+"/accepted", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if content.StatusCode != http.StatusNonAuthoritativeInfo {
		t.Errorf("StatusCode = %d, want 203", content.StatusCode)
	}
}

func TestStaticFetcher_Fetch_Timeout(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(StaticConfig{Timeout: 50 * time.Millisecond})

	_, err := f.Fetch(context.Background(), srv.URL+"/slow", Options{})

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", fetchErr.StatusCode)
	}
}

func TestStaticFetcher_Fetch_CanceledContext(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(StaticConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fetch(ctx, srv.URL+"/ok", Options{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestStaticFetcher_Type(t *testing.T) {
	f := NewStatic(StaticConfig{})
	if f.Type() != "static" {
		t.Errorf("Type() = %q", f.Type())
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// --- FetchError Tests ---

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{URL: "https://shop.example.com", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Error() != "fetch https://shop.example.com: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestSuccess(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{199, false},
		{200, true},
		{204, true},
		{299, true},
		{301, false},
		{404, false},
		{500, false},
	}
	for _, tt := range tests {
		if got := Success(tt.status); got != tt.want {
			t.Errorf("Success(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
