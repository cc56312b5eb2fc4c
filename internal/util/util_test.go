package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3128", "internal.example,.corp")

	tests := []struct {
		target   string
		expected string
	}{
		{"http://news.example/flood", "http://proxy.local:3128"},
		{"https://news.example/flood", "http://secure-proxy.local:3128"},
		{"https://internal.example/status", ""},
		{"http://wiki.corp/page", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			u, _ := url.Parse(tt.target)
			got, err := proxy(&http.Request{URL: u})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.expected == "" {
				if got != nil {
					t.Errorf("Expected direct connection, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.expected {
				t.Errorf("Expected %s, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewTransport(t *testing.T) {
	tr := NewTransport("http://proxy.local:3128", "", "")
	if tr.Proxy == nil {
		t.Fatal("Expected proxy function")
	}
	if tr == http.DefaultTransport {
		t.Error("Expected a cloned transport")
	}
}

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		hits.Add(1)
		_, _ = w.Write([]byte("User-agent: reliefscout\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
	}))
	defer server.Close()

	checker := NewRobotsChecker("Mozilla/5.0 (compatible; reliefscout/1.0)", 5*time.Second, nil)

	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/news/flood")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("Expected /news/flood to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("Expected crawl delay 2s, got %v", delay)
	}

	if checker.IsAllowed(context.Background(), server.URL+"/private/report") {
		t.Error("Expected /private to be disallowed")
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("Expected robots.txt to be cached, got %d fetches", got)
	}
}

func TestRobotsChecker_Expiry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("reliefscout/1.0", 5*time.Second, nil)
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	checker.now = func() time.Time { return now }

	if !checker.IsAllowed(context.Background(), server.URL+"/a") {
		t.Error("Expected missing robots.txt to allow everything")
	}
	now = now.Add(robotsTTL + time.Minute)
	_ = checker.IsAllowed(context.Background(), server.URL+"/b")

	if got := hits.Load(); got != 2 {
		t.Errorf("Expected refetch after TTL, got %d fetches", got)
	}
}

func TestRobotsChecker_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	checker := NewRobotsChecker("reliefscout/1.0", 5*time.Second, nil)
	if checker.IsAllowed(context.Background(), server.URL+"/a") {
		t.Error("Expected 5xx robots.txt to disallow")
	}
}

func TestRobotsChecker_Unreachable(t *testing.T) {
	checker := NewRobotsChecker("reliefscout/1.0", 200*time.Millisecond, nil)

	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/page")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !allowed {
		t.Error("Expected unreachable robots.txt to allow")
	}

	if _, _, err := checker.CanFetch(context.Background(), "not a url"); err == nil {
		t.Error("Expected error for URL without host")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		ua       string
		expected string
	}{
		{"Mozilla/5.0 (compatible; reliefscout/1.0)", "reliefscout"},
		{"reliefscout/1.0", "reliefscout"},
		{"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "Googlebot"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.ua); got != tt.expected {
			t.Errorf("NormalizeUserAgent(%q): expected %q, got %q", tt.ua, tt.expected, got)
		}
	}
}
