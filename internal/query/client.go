// Package query is a small client-side query cache: results are served
// fresh for a staleness window, evicted after a retention window without
// reads, and concurrent fetches of one key share a single call.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cicbolivia/portal/internal/logger"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime = 10 * time.Minute
	DefaultGCTime    = 30 * time.Minute
)

// Options configures a Client. Zero values take the defaults.
type Options struct {
	// StaleTime is how long a fetched value is served without refetching.
	StaleTime time.Duration
	// GCTime is how long an unread value is retained.
	GCTime time.Duration
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

type entry struct {
	value     any
	fetchedAt time.Time
	lastUsed  time.Time
}

// Client holds cached query results keyed by query identity.
type Client struct {
	opts    Options
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

func NewClient(opts Options) *Client {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.GCTime <= 0 {
		opts.GCTime = DefaultGCTime
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		opts:    opts,
		entries: make(map[string]*entry),
	}
}

// Fetch returns the cached value for key when it is younger than the
// staleness window; otherwise it calls fn. Concurrent callers that miss the
// cache share one call of fn and its context is the first caller's. A failed
// call stores nothing.
func Fetch[T any](ctx context.Context, c *Client, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	log := logger.Component("query")

	if v, ok := c.fresh(key); ok {
		typed, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("query %q: cached value is %T, not %T", key, v, zero)
		}
		log.Debug().Str("key", key).Msg("Cache hit")
		return typed, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		log.Debug().Str("key", key).Msg("Fetching")
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value)
		return value, nil
	})
	if err != nil {
		log.Debug().Err(err).Str("key", key).Bool("shared", shared).Msg("Fetch failed")
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %q: fetched value is %T, not %T", key, v, zero)
	}
	return typed, nil
}

// fresh returns the value for key if it is within the staleness window.
// Any read refreshes the entry's retention clock; an entry past retention
// is evicted first.
func (c *Client) fresh(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(e.lastUsed) >= c.opts.GCTime {
		delete(c.entries, key)
		log := logger.Component("query")
		log.Debug().Str("key", key).Msg("Evicted unused entry")
		return nil, false
	}
	e.lastUsed = now
	if now.Sub(e.fetchedAt) >= c.opts.StaleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Client) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	c.entries[key] = &entry{value: value, fetchedAt: now, lastUsed: now}
}

// Invalidate drops key so the next Fetch calls through.
func (c *Client) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len is the number of retained entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep evicts every entry that has not been read within the retention
// window and returns how many were removed.
func (c *Client) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.lastUsed) >= c.opts.GCTime {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		log := logger.Component("query")
		log.Debug().Int("evicted", removed).Msg("Swept cache")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (c *Client) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
