package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// cacheService mirrors cache.CacheService; the cache package imports this one.
type cacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	InvalidateKeys(ctx context.Context, keys []string) error
}

var _ cacheService = (*sturdycService)(nil)

func testPolicy() Policy {
	return Policy{
		StaleTime:      time.Minute,
		ExpireTime:     2 * time.Minute,
		GCTime:         5 * time.Minute,
		RetryBaseDelay: 10 * time.Millisecond,
	}
}

func testConfig() Config {
	return Config{
		Capacity:           100,
		NumShards:          2,
		EvictionPercentage: 10,
		DefaultPolicy:      testPolicy(),
		Families:           map[string]Policy{},
	}
}

func newTestService(t *testing.T, cfg Config) *sturdycService {
	t.Helper()
	service, err := NewSturdycService(cfg)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 5000 {
		t.Errorf("expected Capacity to be 5000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}

	if cfg.DefaultPolicy.StaleTime != 5*time.Minute {
		t.Errorf("expected DefaultPolicy.StaleTime to be 5 minutes, got %v", cfg.DefaultPolicy.StaleTime)
	}

	if cfg.DefaultPolicy.ExpireTime != 10*time.Minute {
		t.Errorf("expected DefaultPolicy.ExpireTime to be 10 minutes, got %v", cfg.DefaultPolicy.ExpireTime)
	}

	if cfg.DefaultPolicy.GCTime != 30*time.Minute {
		t.Errorf("expected DefaultPolicy.GCTime to be 30 minutes, got %v", cfg.DefaultPolicy.GCTime)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:     "invalid capacity - zero",
			mutate:   func(c *Config) { c.Capacity = 0 },
			errorMsg: "config error in field Capacity: must be greater than 0",
		},
		{
			name:     "invalid num shards - zero",
			mutate:   func(c *Config) { c.NumShards = 0 },
			errorMsg: "config error in field NumShards: must be greater than 0",
		},
		{
			name:     "invalid eviction percentage - too high",
			mutate:   func(c *Config) { c.EvictionPercentage = 101 },
			errorMsg: "config error in field EvictionPercentage: must be between 1 and 100",
		},
		{
			name:     "stale time zero",
			mutate:   func(c *Config) { c.DefaultPolicy.StaleTime = 0 },
			errorMsg: "config error in field DefaultPolicy.StaleTime: must be greater than 0",
		},
		{
			name: "expire before stale",
			mutate: func(c *Config) {
				c.DefaultPolicy.ExpireTime = c.DefaultPolicy.StaleTime
			},
			errorMsg: "config error in field DefaultPolicy.ExpireTime: must be greater than StaleTime",
		},
		{
			name: "gc before expire",
			mutate: func(c *Config) {
				c.Families["skills"] = Policy{StaleTime: time.Minute, ExpireTime: 2 * time.Minute, GCTime: time.Minute}
			},
			errorMsg: "config error in field Families[skills].GCTime: must be greater than or equal to ExpireTime",
		},
		{
			name: "empty family name",
			mutate: func(c *Config) {
				c.Families[""] = testPolicy()
			},
			errorMsg: "config error in field Families: family name cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("expected no error but got: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error %q but got none", tt.errorMsg)
			}
			if err.Error() != tt.errorMsg {
				t.Errorf("expected error message %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := testConfig()

	if got := len(cfg.ToSturdycOptions(testPolicy())); got != 1 {
		t.Errorf("expected 1 sturdyc option without eviction interval, got %d", got)
	}

	cfg.EvictionInterval = time.Second
	if got := len(cfg.ToSturdycOptions(testPolicy())); got != 2 {
		t.Errorf("expected 2 sturdyc options with eviction interval, got %d", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{
		Field:   "TestField",
		Message: "test message",
	}

	expected := "config error in field TestField: test message"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestNewSturdycService_SharesClientsPerPolicy(t *testing.T) {
	cfg := testConfig()
	stats := Policy{StaleTime: 2 * time.Minute, ExpireTime: 5 * time.Minute, GCTime: 10 * time.Minute}
	cfg.Families["skills-stats"] = stats
	cfg.Families["projects-stats"] = stats
	cfg.Families["skills"] = testPolicy()

	service := newTestService(t, cfg)

	if len(service.byPolicy) != 2 {
		t.Errorf("expected 2 sturdyc clients, got %d", len(service.byPolicy))
	}

	if service.client("skills-stats") != service.client("projects-stats::x") {
		t.Error("expected families with the same policy to share a client")
	}

	if service.client("skills::page=1") != service.fallback {
		t.Error("expected skills to share the default policy client")
	}

	if service.client("unknown") != service.fallback {
		t.Error("expected unknown family to use the fallback client")
	}
}

func TestNewSturdycService_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = 0

	service, err := NewSturdycService(cfg)
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if service != nil {
		t.Error("expected service to be nil when error occurs")
	}
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	service := newTestService(t, testConfig())
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		calls := 0
		fetchFn := func(ctx context.Context) (string, error) {
			calls++
			return "value", nil
		}

		for i := 0; i < 3; i++ {
			result, err := service.GetOrFetch(ctx, "skills::page=1", fetchFn)
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			if result != "value" {
				t.Errorf("expected result %q, got %v", "value", result)
			}
		}

		if calls != 1 {
			t.Errorf("expected fetch function to be called once, got %d", calls)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		calls := 0
		failing := errors.New("fetch failed")
		fetchFn := func(ctx context.Context) (any, error) {
			calls++
			if calls == 1 {
				return nil, failing
			}
			return "recovered", nil
		}

		_, err := service.GetOrFetch(ctx, "projects", fetchFn)
		if !errors.Is(err, failing) {
			t.Fatalf("expected fetch error, got %v", err)
		}

		result, err := service.GetOrFetch(ctx, "projects", fetchFn)
		if err != nil {
			t.Fatalf("expected no error but got: %v", err)
		}
		if result != "recovered" {
			t.Errorf("expected recovered value, got %v", result)
		}
		if calls != 2 {
			t.Errorf("expected 2 fetch calls, got %d", calls)
		}
	})

	t.Run("nil results are cached as nil", func(t *testing.T) {
		calls := 0
		fetchFn := func(ctx context.Context) (any, error) {
			calls++
			return nil, nil
		}

		for i := 0; i < 2; i++ {
			result, err := service.GetOrFetch(ctx, "blog-posts::status=draft", fetchFn)
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %v", result)
			}
		}
		if calls != 1 {
			t.Errorf("expected 1 fetch call, got %d", calls)
		}
	})

	t.Run("typed errors keep their identity", func(t *testing.T) {
		failing := errors.New("api down")
		fetchFn := func(ctx context.Context) (*string, error) {
			return nil, failing
		}

		if _, err := service.GetOrFetch(ctx, "skill::99", fetchFn); !errors.Is(err, failing) {
			t.Fatalf("expected fetch error, got %v", err)
		}
	})

	t.Run("invalid fetch functions", func(t *testing.T) {
		cases := []struct {
			name    string
			fetchFn any
			message string
		}{
			{"nil", nil, "cannot be nil"},
			{"not a function", "nope", "must be a function"},
			{"wrong arity", func() (any, error) { return nil, nil }, "must have signature"},
			{"wrong parameter", func(s string) (any, error) { return nil, nil }, "first parameter must be context.Context"},
			{"wrong return", func(ctx context.Context) (any, string) { return nil, "" }, "second return value must be error"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := service.GetOrFetch(ctx, "blog-posts", tc.fetchFn)
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !strings.Contains(err.Error(), tc.message) {
					t.Errorf("expected error containing %q, got %q", tc.message, err.Error())
				}
			})
		}
	})
}

func TestSturdycService_ConcurrentReadsShareOneFetch(t *testing.T) {
	service := newTestService(t, testConfig())
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	fetchFn := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const readers = 10
	var wg sync.WaitGroup
	results := make([]any, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = service.GetOrFetch(ctx, "skills", fetchFn)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 fetch for concurrent reads, got %d", got)
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("reader %d: expected shared payload, got %v", i, r)
		}
	}
}

func TestSturdycService_InvalidationDuringFetch(t *testing.T) {
	service := newTestService(t, testConfig())
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	oldRead := make(chan any, 1)

	go func() {
		v, _ := service.GetOrFetch(ctx, "skills", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "before-write", nil
		})
		oldRead <- v
	}()

	<-started
	if err := service.Delete(ctx, "skills"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	fresh, err := service.GetOrFetch(ctx, "skills", func(ctx context.Context) (string, error) {
		return "after-write", nil
	})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if fresh != "after-write" {
		t.Errorf("expected read after invalidation to fetch again, got %v", fresh)
	}

	close(release)
	if v := <-oldRead; v != "before-write" {
		t.Errorf("expected in-flight read to resolve with its own payload, got %v", v)
	}

	again, _ := service.GetOrFetch(ctx, "skills", func(ctx context.Context) (string, error) {
		return "unexpected", nil
	})
	if again != "after-write" {
		t.Errorf("expected cached post-write value, got %v", again)
	}
}

func TestSturdycService_Delete(t *testing.T) {
	service := newTestService(t, testConfig())
	ctx := context.Background()

	calls := 0
	fetchFn := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	if _, err := service.GetOrFetch(ctx, "skill::7", fetchFn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.Delete(ctx, "skill::7"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	// deleting a missing key is a no-op
	if err := service.Delete(ctx, "skill::7"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}

	result, _ := service.GetOrFetch(ctx, "skill::7", fetchFn)
	if result != 2 {
		t.Errorf("expected refetched value 2, got %v", result)
	}
}

func TestSturdycService_DeleteByPrefix(t *testing.T) {
	service := newTestService(t, testConfig())
	ctx := context.Background()

	keys := []string{"skills::page=1", "skills::page=2", "skill::1", "skills-stats"}
	for _, key := range keys {
		key := key
		if _, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) {
			return key, nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := service.DeleteByPrefix(ctx, "skills::"); err != nil {
		t.Fatalf("delete by prefix failed: %v", err)
	}

	remaining := map[string]bool{}
	for _, client := range service.byPolicy {
		for _, stored := range client.ScanKeys() {
			remaining[logicalKey(stored)] = true
		}
	}

	if remaining["skills::page=1"] || remaining["skills::page=2"] {
		t.Errorf("expected skills list keys to be removed, got %v", remaining)
	}
	if !remaining["skill::1"] || !remaining["skills-stats"] {
		t.Errorf("expected unrelated families to survive, got %v", remaining)
	}
}

func TestSturdycService_InvalidateKeys(t *testing.T) {
	service := newTestService(t, testConfig())
	ctx := context.Background()

	calls := map[string]int{}
	var mu sync.Mutex
	fetch := func(key string) func(ctx context.Context) (string, error) {
		return func(ctx context.Context) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			calls[key]++
			return key, nil
		}
	}

	for _, key := range []string{"blog-post::1", "blog-post::2", "blog-posts"} {
		_, _ = service.GetOrFetch(ctx, key, fetch(key))
	}

	if err := service.InvalidateKeys(ctx, []string{"blog-post::1", "blog-posts"}); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	for _, key := range []string{"blog-post::1", "blog-post::2", "blog-posts"} {
		_, _ = service.GetOrFetch(ctx, key, fetch(key))
	}

	if calls["blog-post::1"] != 2 || calls["blog-posts"] != 2 {
		t.Errorf("expected invalidated keys to be fetched twice, got %v", calls)
	}
	// blog-post::2 shares the family generation with blog-post::1
	if calls["blog-post::2"] != 2 {
		t.Errorf("expected sibling key to be refetched after family invalidation, got %d", calls["blog-post::2"])
	}
}

func TestSturdycService_Stats(t *testing.T) {
	service := newTestService(t, testConfig())
	ctx := context.Background()

	fetchFn := func(ctx context.Context) (string, error) { return "v", nil }
	_, _ = service.GetOrFetch(ctx, "education", fetchFn)
	_, _ = service.GetOrFetch(ctx, "education", fetchFn)
	_, _ = service.GetOrFetch(ctx, "experience", fetchFn)

	stats := service.Stats()
	if stats.Misses != 2 {
		t.Errorf("expected 2 misses, got %d", stats.Misses)
	}
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
	if stats.Entries != 2 {
		t.Errorf("expected 2 entries, got %d", stats.Entries)
	}
}
