package repository

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

type cacheEntry struct {
	table    *models.Table
	loadedAt time.Time
}

// CachedStore keeps recently loaded tables for a short TTL. Every successful
// Save drops the cached copy of that kind so the next Load sees the write.
type CachedStore struct {
	next   Store
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[models.Kind]cacheEntry
}

// NewCachedStore wraps next with a read cache. A non-positive ttl returns next
// unchanged.
func NewCachedStore(next Store, ttl time.Duration, logger *zap.Logger) Store {
	if ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{
		next:    next,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[models.Kind]cacheEntry),
	}
}

// Load serves a copy of the cached table while it is fresh.
func (c *CachedStore) Load(ctx context.Context, schema models.Schema) (*models.Table, error) {
	c.mu.Lock()
	entry, ok := c.entries[schema.Kind]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.loadedAt) < c.ttl {
		c.logger.Debug("table served from cache", zap.String("kind", string(schema.Kind)))
		return entry.table.Clone(), nil
	}

	table, err := c.next.Load(ctx, schema)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[schema.Kind] = cacheEntry{table: table.Clone(), loadedAt: c.now()}
	c.mu.Unlock()

	return table, nil
}

// Save writes through and invalidates the cached kind on success.
func (c *CachedStore) Save(ctx context.Context, table *models.Table) error {
	if err := c.next.Save(ctx, table); err != nil {
		return err
	}
	c.Invalidate(table.Schema.Kind)
	return nil
}

// Invalidate forgets the cached copy of one kind.
func (c *CachedStore) Invalidate(kind models.Kind) {
	c.mu.Lock()
	delete(c.entries, kind)
	c.mu.Unlock()
}
