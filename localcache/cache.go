// Package localcache is the secondary, client-side cache: a memory tier in
// front of a persisted storage.Store.
//
// Values are written to both tiers and read from memory first. A valid entry
// found only in the store is promoted to memory; an expired one is removed.
// Failures of the persisted tier are logged and never surface to callers, so
// the cache degrades to memory-only when the store is unavailable.
//
// The local cache holds values derived on the client or shared across
// sessions (the signed-in profile, the contact card, image load results).
// Server resources are read through the query cache in package cache.
package localcache

import (
	"context"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/internal/metrics"
	"github.com/goliatone/go-portfolio-client/storage"
)

const (
	DefaultPrefix = "cache_"
	DefaultTTL    = 30 * time.Minute
)

// Options configures a Cache. Zero values select the defaults.
type Options struct {
	Store      storage.Store
	Codec      Codec
	Clock      clock.Clock
	Logger     *zap.Logger
	Prefix     string
	DefaultTTL time.Duration
}

// Stats counts entries per tier.
type Stats struct {
	MemoryEntries    int `json:"memory_entries"`
	PersistedEntries int `json:"persisted_entries"`
}

type Cache struct {
	memory     *xsync.MapOf[string, Entry]
	store      storage.Store
	codec      Codec
	clock      clock.Clock
	logger     *zap.Logger
	prefix     string
	defaultTTL time.Duration
}

func New(opts Options) *Cache {
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}

	return &Cache{
		memory:     xsync.NewMapOf[string, Entry](),
		store:      opts.Store,
		codec:      opts.Codec,
		clock:      opts.Clock,
		logger:     opts.Logger,
		prefix:     opts.Prefix,
		defaultTTL: opts.DefaultTTL,
	}
}

// Set stores data under key for ttl (DefaultTTL when ttl <= 0). Only an
// encoding failure is returned.
func (c *Cache) Set(ctx context.Context, key string, data any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	payload, err := c.codec.Marshal(data)
	if err != nil {
		return err
	}

	entry := Entry{
		Data:      payload,
		Timestamp: c.clock.Now().UnixMilli(),
		TTL:       ttlMillis(ttl),
	}
	c.memory.Store(key, entry)

	raw, err := c.codec.EncodeEntry(entry)
	if err != nil {
		c.logger.Warn("failed to encode local cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	if err := c.store.Set(ctx, c.storeKey(key), raw); err != nil {
		c.logger.Warn("failed to persist local cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordStorageError("set")
	}
	return nil
}

// ttlMillis rounds ttl up to whole milliseconds so a positive ttl never
// becomes an already expired entry.
func ttlMillis(ttl time.Duration) int64 {
	return (ttl + time.Millisecond - 1).Milliseconds()
}

// Get decodes the cached value for key into dest and reports whether a valid
// entry was found.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	now := c.clock.Now().UnixMilli()

	if entry, ok := c.memory.Load(key); ok {
		if entry.Valid(now) {
			if c.decode(key, entry, dest) {
				metrics.RecordLocalHit("memory")
				return true
			}
		} else {
			c.memory.Delete(key)
		}
	}

	entry, ok := c.loadPersisted(ctx, key, now)
	if !ok {
		metrics.RecordLocalMiss()
		return false
	}

	if !c.decode(key, entry, dest) {
		metrics.RecordLocalMiss()
		return false
	}

	c.memory.Store(key, entry)
	metrics.RecordLocalHit("persisted")
	return true
}

// GetAs is the typed form of Get.
func GetAs[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var out T
	if !c.Get(ctx, key, &out) {
		var zero T
		return zero, false
	}
	return out, true
}

// Delete removes key from both tiers. Deleting a missing key is a no-op.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.memory.Delete(key)
	if err := c.store.Delete(ctx, c.storeKey(key)); err != nil {
		c.logger.Warn("failed to delete persisted local cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordStorageError("delete")
	}
}

// Clear empties the memory tier and removes every persisted key carrying the
// cache prefix. Other keys of the store are left alone.
func (c *Cache) Clear(ctx context.Context) {
	c.memory.Clear()

	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		c.logger.Warn("failed to list persisted local cache entries", zap.Error(err))
		metrics.RecordStorageError("keys")
		return
	}
	for _, k := range keys {
		if err := c.store.Delete(ctx, k); err != nil {
			c.logger.Warn("failed to clear persisted local cache entry", zap.String("key", k), zap.Error(err))
			metrics.RecordStorageError("delete")
		}
	}
}

func (c *Cache) Stats(ctx context.Context) Stats {
	stats := Stats{MemoryEntries: c.memory.Size()}

	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		c.logger.Warn("failed to count persisted local cache entries", zap.Error(err))
		metrics.RecordStorageError("keys")
		return stats
	}
	stats.PersistedEntries = len(keys)
	return stats
}

// Keys lists the logical keys currently persisted.
func (c *Cache) Keys(ctx context.Context) []string {
	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		c.logger.Warn("failed to list persisted local cache entries", zap.Error(err))
		metrics.RecordStorageError("keys")
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, c.prefix))
	}
	return out
}

func (c *Cache) loadPersisted(ctx context.Context, key string, now int64) (Entry, bool) {
	raw, err := c.store.Get(ctx, c.storeKey(key))
	if err != nil {
		if !storage.IsNotFound(err) {
			c.logger.Warn("failed to read persisted local cache entry", zap.String("key", key), zap.Error(err))
			metrics.RecordStorageError("get")
		}
		return Entry{}, false
	}

	entry, err := c.codec.DecodeEntry(raw)
	if err != nil {
		c.logger.Warn("discarding unreadable local cache entry", zap.String("key", key), zap.Error(err))
		c.removePersisted(ctx, key)
		return Entry{}, false
	}

	if !entry.Valid(now) {
		c.removePersisted(ctx, key)
		return Entry{}, false
	}
	return entry, true
}

func (c *Cache) removePersisted(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, c.storeKey(key)); err != nil {
		c.logger.Warn("failed to delete persisted local cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordStorageError("delete")
	}
}

func (c *Cache) decode(key string, entry Entry, dest any) bool {
	if dest == nil {
		return true
	}
	if err := c.codec.Unmarshal(entry.Data, dest); err != nil {
		c.logger.Warn("failed to decode local cache value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) storeKey(key string) string {
	return c.prefix + key
}
