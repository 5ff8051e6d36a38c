package resourcecache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
)

// decorator is the shared part of every cached service: reads go through
// the query cache, successful writes invalidate.
type decorator struct {
	cache  cache.CacheService
	keys   cache.KeySerializer
	logger *zap.Logger
}

func newDecorator(cacheService cache.CacheService, logger *zap.Logger) decorator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return decorator{cache: cacheService, keys: cache.NewDefaultKeySerializer(), logger: logger}
}

func (d decorator) key(k cache.QueryKey) string {
	return k.Serialize(d.keys)
}

// read serves key from the cache, running fetch on a miss. Failed fetches
// are not stored.
func read[T any](ctx context.Context, d decorator, key cache.QueryKey, fetch cache.FetchFn[T]) (T, error) {
	return cache.GetOrFetch(ctx, d.cache, d.key(key), fetch)
}

// invalidate drops families and keys after a successful write. Failures are
// logged; the write itself already succeeded.
func (d decorator) invalidate(ctx context.Context, families []string, keys ...cache.QueryKey) {
	var errs []error
	if err := cache.InvalidateFamilies(ctx, d.cache, families...); err != nil {
		errs = append(errs, err)
	}

	if len(keys) > 0 {
		serialized := make([]string, len(keys))
		for i, k := range keys {
			serialized[i] = d.key(k)
		}
		if err := d.cache.InvalidateKeys(ctx, serialized); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		d.logger.Warn("query cache invalidation failed",
			zap.Strings("families", families),
			zap.Error(err),
		)
	}
}
