package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lat": 19.0760, "lon": 72.8777}`))
	}))
	t.Cleanup(server.Close)

	p := &HTTPProvider{URL: server.URL}
	fix, err := p.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if fix.Latitude != 19.0760 || fix.Longitude != 72.8777 {
		t.Errorf("unexpected fix: %+v", fix)
	}
}

func TestHTTPProviderEndpointDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no fix", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	p := &HTTPProvider{URL: server.URL}
	_, err := p.Current(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHTTPProviderNoEndpoint(t *testing.T) {
	p := &HTTPProvider{}
	_, err := p.Current(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCachedServesFreshFix(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"lat": 1, "lon": 2}`))
	}))
	t.Cleanup(server.Close)

	c := NewCached(&HTTPProvider{URL: server.URL}, time.Second, time.Minute)

	for i := 0; i < 3; i++ {
		fix, err := c.Current(context.Background())
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		if fix.Latitude != 1 {
			t.Errorf("unexpected fix: %+v", fix)
		}
	}

	// Re-scans within the staleness bound reuse the cached fix.
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}

func TestCachedTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	c := NewCached(&HTTPProvider{URL: server.URL}, 50*time.Millisecond, time.Minute)

	start := time.Now()
	_, err := c.Current(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not applied, took %v", elapsed)
	}
}

func TestCachedAbandonedRequest(t *testing.T) {
	c := NewCached(None{}, time.Second, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Abandoning a request produces no observable error besides unavailable.
	_, err := c.Current(ctx)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNoneProvider(t *testing.T) {
	_, err := None{}.Current(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
