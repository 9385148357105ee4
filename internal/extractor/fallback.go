package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"sva/internal/port"
)

// circuitState tracks quota backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries providers in order, skipping those with open circuits.
// Only quota errors move on to the next provider; any other failure is returned
// as is, since the call is not retried.
type FallbackExtractor struct {
	extractors []port.RemoteExtractor
	circuits   []*circuitState
	names      []string
	now        func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.RemoteExtractor, names []string) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		now:        time.Now,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.RemoteInput) (*port.RemoteOutput, error) {
	now := f.now()
	var lastErr error
	var earliestReset time.Time

	for i, x := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("extractor.FallbackExtractor: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := x.Extract(ctx, input)
		if err == nil {
			return out, nil
		}

		log.Printf("extractor.FallbackExtractor: %s failed: %v", f.names[i], err)

		var xErr *Error
		if !errors.As(err, &xErr) || xErr.Kind != KindQuota {
			return nil, err
		}
		lastErr = err

		backoff := xErr.RetryAfter
		if backoff <= 0 {
			backoff = 60 * time.Second
		}
		resetAt := now.Add(backoff)
		f.circuits[i].open(resetAt)
		if earliestReset.IsZero() || resetAt.Before(earliestReset) {
			earliestReset = resetAt
		}
	}

	retryAfter := earliestReset.Sub(now)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all providers rate limited")
	}
	return nil, NewRateLimitError("all", lastErr, int(retryAfter.Seconds()))
}
