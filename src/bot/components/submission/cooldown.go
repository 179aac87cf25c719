package submission

import (
	"context"
	"sync"
	"time"
)

// Cooldown throttles how often one author can submit. A zero window disables
// throttling entirely.
type Cooldown struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		seen:   make(map[string]time.Time),
		window: window,
	}
}

// Allow records an attempt and reports whether the author is outside their
// cooldown window.
func (c *Cooldown) Allow(authorID string) bool {
	if c.window == 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	last, exists := c.seen[authorID]
	if !exists || time.Since(last) >= c.window {
		c.seen[authorID] = time.Now()
		return true
	}
	return false
}

// Remaining returns how long until the author may submit again.
func (c *Cooldown) Remaining(authorID string) time.Duration {
	if c.window == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	last, exists := c.seen[authorID]
	if !exists {
		return 0
	}

	elapsed := time.Since(last)
	if elapsed >= c.window {
		return 0
	}
	return c.window - elapsed
}

func (c *Cooldown) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for authorID, last := range c.seen {
		if now.Sub(last) > c.window*2 {
			delete(c.seen, authorID)
		}
	}
}

// StartSweeper drops expired entries until ctx is cancelled.
func (c *Cooldown) StartSweeper(ctx context.Context, interval time.Duration) {
	if c.window == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}
