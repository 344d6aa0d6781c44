package report

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the shared snapshot of live reports that the warning and route
// paths read. It is refreshed on an interval and on redis change
// notifications; readers always get a copy, never the backing slice.
type Cache struct {
	fetch func(ctx context.Context) ([]Report, error)
	redis *redis.Client

	mu      sync.RWMutex
	reports []Report
}

func NewCache(fetch func(ctx context.Context) ([]Report, error), redisClient *redis.Client) *Cache {
	return &Cache{fetch: fetch, redis: redisClient}
}

// Snapshot returns a consistent copy of the live report set.
func (c *Cache) Snapshot() []Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// Refresh replaces the snapshot with the authoritative set. A failed fetch
// keeps the previous snapshot; retrying is the caller's loop.
func (c *Cache) Refresh(ctx context.Context) error {
	reports, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.reports = reports
	c.mu.Unlock()
	return nil
}

// Run refreshes the snapshot on the given interval and whenever a change
// notification arrives, until ctx is cancelled.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	notify := c.subscribeChanges(ctx)

	if err := c.Refresh(ctx); err != nil {
		log.Printf("report cache initial refresh failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-notify:
		}
		if err := c.Refresh(ctx); err != nil {
			log.Printf("report cache refresh failed: %v", err)
		}
	}
}

func (c *Cache) subscribeChanges(ctx context.Context) <-chan struct{} {
	notify := make(chan struct{}, 1)
	if c.redis == nil {
		return notify
	}

	pubsub := c.redis.Subscribe(ctx, ChangedChannel)
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				select {
				case notify <- struct{}{}:
				default:
				}
			}
		}
	}()
	return notify
}
