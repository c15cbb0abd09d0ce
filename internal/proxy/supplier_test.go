package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetWithoutProxies(t *testing.T) {
	s := NewProxySupplier(context.Background(), nil, "http://unused")
	if got := s.Get(); got != "" {
		t.Fatalf("expected empty proxy, got %q", got)
	}
}

func TestGetRoundRobin(t *testing.T) {
	s := &proxySupplier{proxies: []string{"a", "b"}}

	got := []string{s.Get(), s.Get(), s.Get()}
	want := []string{"a", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewProxySupplierDropsDeadProxies(t *testing.T) {
	// A plain HTTP server accepts absolute-URI requests, so it works as a
	// forward proxy for http:// test URLs.
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer live.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	s := NewProxySupplier(context.Background(), []string{deadURL, live.URL}, "http://pokeapi.test/api/v2")

	if got := s.Get(); got != live.URL {
		t.Fatalf("expected live proxy %q, got %q", live.URL, got)
	}
	if got := s.Get(); got != live.URL {
		t.Fatalf("expected only the live proxy to remain, got %q", got)
	}
}
