// Package geo resolves the scanning operator's current coordinates. Location
// is always optional downstream: every failure mode collapses to
// ErrUnavailable and callers proceed without a fix.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrUnavailable is returned when no fix can be obtained (timeout, permission
// denial, hardware absence, endpoint unreachable).
var ErrUnavailable = errors.New("location unavailable")

// Default bounds on a location request.
const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxAge  = 5 * time.Minute
)

// Fix is a single resolved position.
type Fix struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	At        time.Time `json:"at"`
}

// Provider resolves the current position, single-shot.
type Provider interface {
	Current(ctx context.Context) (Fix, error)
}

// HTTPProvider queries a location endpoint (a GPS sidecar or gateway)
// returning {"lat": ..., "lon": ...}.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

func (p *HTTPProvider) Current(ctx context.Context) (Fix, error) {
	if p.URL == "" {
		return Fix{}, ErrUnavailable
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fix{}, fmt.Errorf("%w: endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Fix{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return Fix{Latitude: body.Lat, Longitude: body.Lon, At: time.Now()}, nil
}

// Cached wraps a provider with a request timeout and bounded fix staleness,
// so a slow GPS fix never blocks the scan flow and quick re-scans reuse the
// previous position.
type Cached struct {
	provider Provider
	timeout  time.Duration
	maxAge   time.Duration

	mu   sync.Mutex
	last Fix
	ok   bool
}

// NewCached wraps provider. Zero timeout or maxAge use the defaults.
func NewCached(provider Provider, timeout, maxAge time.Duration) *Cached {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cached{provider: provider, timeout: timeout, maxAge: maxAge}
}

func (c *Cached) Current(ctx context.Context) (Fix, error) {
	c.mu.Lock()
	if c.ok && time.Since(c.last.At) <= c.maxAge {
		fix := c.last
		c.mu.Unlock()
		return fix, nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fix, err := c.provider.Current(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return Fix{}, err
		}
		return Fix{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	c.last = fix
	c.ok = true
	c.mu.Unlock()

	return fix, nil
}

// None is a provider with no location source. Current always reports
// ErrUnavailable.
type None struct{}

func (None) Current(context.Context) (Fix, error) {
	return Fix{}, ErrUnavailable
}
