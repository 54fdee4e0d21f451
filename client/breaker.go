package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// ErrUpstreamDown is returned when a registry host's circuit is open.
var ErrUpstreamDown = errors.New("upstream registry unavailable")

// Breaker wraps a Client with per-host circuit breakers.
type Breaker struct {
	client   *Client
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewBreaker creates a circuit breaker wrapper for a client.
func NewBreaker(c *Client) *Breaker {
	return &Breaker{
		client:   c,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates a circuit breaker for the given host.
func (b *Breaker) getBreaker(host string) *circuit.Breaker {
	b.mu.RLock()
	br, exists := b.breakers[host]
	b.mu.RUnlock()

	if exists {
		return br
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Double-check after acquiring write lock
	if br, exists := b.breakers[host]; exists {
		return br
	}

	// Trips after 5 consecutive failures, resets with exponential backoff
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	br = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})

	b.breakers[host] = br
	return br
}

// GetJSON fetches url through the host's circuit breaker.
func (b *Breaker) GetJSON(ctx context.Context, rawURL string, out any, headers ...Header) error {
	host := extractHost(rawURL)
	br := b.getBreaker(host)

	if !br.Ready() {
		return fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	return br.Call(func() error {
		return b.client.GetJSON(ctx, rawURL, out, headers...)
	}, 0)
}

// State returns the current state of all circuit breakers.
func (b *Breaker) State() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make(map[string]string)
	for host, br := range b.breakers {
		if br.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// extractHost extracts a host identifier from a URL for breaker grouping.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
