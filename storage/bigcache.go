package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"
)

// BigCacheConfig sizes the process-lifetime byte store.
type BigCacheConfig struct {
	// LifeWindow bounds how long bigcache keeps an entry regardless of the
	// ttl recorded inside it.
	LifeWindow time.Duration
	// HardMaxCacheSize in MB, zero means unbounded.
	HardMaxCacheSize int
	MaxEntrySize     int
}

// BigCache is a Store backed by allegro/bigcache. Entries survive for the
// lifetime of the process only.
type BigCache struct {
	cache  *bigcache.BigCache
	logger *zap.Logger
}

var _ Store = (*BigCache)(nil)

func NewBigCache(ctx context.Context, cfg BigCacheConfig, logger *zap.Logger) (*BigCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LifeWindow <= 0 {
		cfg.LifeWindow = time.Hour
	}
	if cfg.MaxEntrySize <= 0 {
		cfg.MaxEntrySize = 1024 * 1024
	}

	bcCfg := bigcache.DefaultConfig(cfg.LifeWindow)
	bcCfg.HardMaxCacheSize = cfg.HardMaxCacheSize
	bcCfg.MaxEntrySize = cfg.MaxEntrySize
	bcCfg.Verbose = false

	c, err := bigcache.New(ctx, bcCfg)
	if err != nil {
		return nil, fmt.Errorf("create bigcache store: %w", err)
	}

	return &BigCache{cache: c, logger: logger}, nil
}

func (b *BigCache) Get(_ context.Context, key string) ([]byte, error) {
	v, err := b.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (b *BigCache) Set(_ context.Context, key string, value []byte) error {
	return b.cache.Set(key, value)
}

func (b *BigCache) Delete(_ context.Context, key string) error {
	err := b.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (b *BigCache) Keys(_ context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0, b.cache.Len())
	it := b.cache.Iterator()
	for it.SetNext() {
		entry, err := it.Value()
		if err != nil {
			b.logger.Debug("bigcache iterator skipped an entry", zap.Error(err))
			continue
		}
		keys = append(keys, entry.Key())
	}
	return filterSorted(keys, prefix), nil
}

func (b *BigCache) Close() error {
	return b.cache.Close()
}
