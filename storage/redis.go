package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisClient is the subset of *redis.Client the Redis store needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

var _ RedisClient = (*redis.Client)(nil)

// Redis is a Store shared across processes through Redis or KeyDB. Values
// are stored without a server-side expiry; entry ttl is tracked by the
// caller.
type Redis struct {
	client    RedisClient
	logger    *zap.Logger
	scanCount int64
}

var _ Store = (*Redis)(nil)

func NewRedis(client RedisClient, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger, scanCount: 100}
}

// DialRedis connects to a redis://[:password@]host[:port][/db] URL.
func DialRedis(ctx context.Context, rawURL string, timeout time.Duration, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	port := parsed.Port()
	if port == "" {
		port = "6379"
	}

	opts := &redis.Options{
		Addr:        fmt.Sprintf("%s:%s", parsed.Hostname(), port),
		DialTimeout: timeout,
		ReadTimeout: timeout,
	}
	if parsed.User != nil {
		if password, ok := parsed.User.Password(); ok {
			opts.Password = password
		}
	}
	if len(parsed.Path) > 1 {
		if db, err := strconv.Atoi(parsed.Path[1:]); err == nil {
			opts.DB = db
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", opts.Addr, err)
	}

	logger.Info("connected to redis", zap.String("address", opts.Addr), zap.Int("db", opts.DB))
	return NewRedis(client, logger), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, globEscape(prefix)+"*", r.scanCount).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	return filterSorted(keys, prefix), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func globEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
