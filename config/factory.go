package config

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/client"
	"github.com/goliatone/go-portfolio-client/localcache"
	"github.com/goliatone/go-portfolio-client/resourcecache"
	"github.com/goliatone/go-portfolio-client/services"
	"github.com/goliatone/go-portfolio-client/storage"
)

func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		UserAgent: c.API.UserAgent,
	}
}

func (c Config) UploadPolicy() services.UploadPolicy {
	return services.UploadPolicy{
		MaxSize:    c.Upload.MaxSize,
		Extensions: c.Upload.Extensions,
		MIMETypes:  c.Upload.MIMETypes,
	}
}

// QueryCacheConfig merges the configured family overrides over the
// resource family defaults. Fields left out of an override keep the
// default of that family.
func (c Config) QueryCacheConfig() cache.Config {
	cc := cache.DefaultConfig().WithFamilies(resourcecache.DefaultPolicies())
	cc.Capacity = c.QueryCache.Capacity
	cc.NumShards = c.QueryCache.Shards
	cc.EvictionPercentage = c.QueryCache.EvictionPercentage
	cc.EvictionInterval = c.QueryCache.EvictionInterval

	overrides := make(map[string]cache.FamilyPolicy, len(c.QueryCache.Families))
	for family, p := range c.QueryCache.Families {
		base := cc.PolicyFor(family)
		if p.StaleTime <= 0 {
			p.StaleTime = base.StaleTime
		}
		if p.ExpireTime <= 0 {
			p.ExpireTime = base.ExpireTime
		}
		if p.GCTime <= 0 {
			p.GCTime = base.GCTime
		}
		if p.RetryBaseDelay <= 0 {
			p.RetryBaseDelay = base.RetryBaseDelay
		}
		overrides[family] = p
	}
	return cc.WithFamilies(overrides)
}

// Logger builds the zap logger described by the log section.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// OpenStore opens the persisted backend of the local cache. The session
// tokens are kept in the same store.
func (c Config) OpenStore(ctx context.Context, logger *zap.Logger) (storage.Store, error) {
	lc := c.LocalCache
	switch lc.Backend {
	case BackendMemory, "":
		return storage.NewMemory(), nil
	case BackendBigCache:
		return storage.NewBigCache(ctx, storage.BigCacheConfig{
			LifeWindow:       lc.BigCache.LifeWindow,
			HardMaxCacheSize: lc.BigCache.MaxSizeMB,
			MaxEntrySize:     lc.BigCache.MaxEntrySize,
		}, logger)
	case BackendSQLite:
		return storage.OpenSQLite(ctx, lc.Path, logger)
	case BackendPostgres:
		return storage.OpenPostgres(ctx, lc.DSN, logger)
	case BackendRedis:
		return storage.DialRedis(ctx, lc.URL, lc.Timeout, logger)
	}
	return nil, fmt.Errorf("unknown local cache backend %q", lc.Backend)
}

// NewLocalCache builds the local cache over store.
func (c Config) NewLocalCache(store storage.Store, logger *zap.Logger, clk clock.Clock) (*localcache.Cache, error) {
	codec, err := localcache.CodecByName(c.LocalCache.Codec)
	if err != nil {
		return nil, err
	}
	return localcache.New(localcache.Options{
		Store:      store,
		Codec:      codec,
		Clock:      clk,
		Logger:     logger,
		Prefix:     c.LocalCache.Prefix,
		DefaultTTL: c.LocalCache.DefaultTTL,
	}), nil
}
