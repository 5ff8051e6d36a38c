package cacheinfra

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-portfolio-client/internal/metrics"
)

const (
	// keySeparator mirrors cache.KeySeparator; the family is the first key segment.
	keySeparator = "::"

	generationSeparator = "@g"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries each policy tier can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 64
	NumShards int

	// EvictionPercentage specifies what percentage of entries to evict
	// when a tier reaches its capacity. Must be between 1-100.
	// Default: 10 (evict 10% of entries)
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration

	// DefaultPolicy applies to keys whose family has no entry in Families.
	DefaultPolicy Policy

	// Families maps a query family to its freshness policy.
	Families map[string]Policy
}

// Policy describes the freshness thresholds of a query family.
type Policy struct {
	// StaleTime is the age after which a read schedules a background refresh.
	StaleTime time.Duration

	// ExpireTime is the age after which a read waits for a fresh fetch.
	ExpireTime time.Duration

	// GCTime is how long an entry may stay in the cache at all.
	GCTime time.Duration

	// RetryBaseDelay is the base delay for retry attempts when a background refresh fails
	RetryBaseDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           5000,
		NumShards:          64,
		EvictionPercentage: 10,
		DefaultPolicy: Policy{
			StaleTime:      5 * time.Minute,
			ExpireTime:     10 * time.Minute,
			GCTime:         30 * time.Minute,
			RetryBaseDelay: time.Second,
		},
		Families: map[string]Policy{},
	}
}

// ToSturdycOptions converts a policy into sturdyc options.
//
// sturdyc refreshes a record in the background once it is older than a random
// point between its min and max async refresh times, and refreshes it
// synchronously once it is older than the sync refresh time. The async window
// starts at StaleTime and spans the first quarter of the stale period so that
// frequently read keys are refreshed well before they expire.
func (c Config) ToSturdycOptions(p Policy) []sturdyc.Option {
	maxAsync := p.StaleTime + (p.ExpireTime-p.StaleTime)/4
	options := []sturdyc.Option{
		sturdyc.WithEarlyRefreshes(p.StaleTime, maxAsync, p.ExpireTime, p.RetryBaseDelay),
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	if err := c.DefaultPolicy.validate("DefaultPolicy"); err != nil {
		return err
	}

	for family, p := range c.Families {
		if family == "" {
			return &ConfigError{Field: "Families", Message: "family name cannot be empty"}
		}
		if err := p.validate("Families[" + family + "]"); err != nil {
			return err
		}
	}

	return nil
}

func (p Policy) validate(field string) error {
	if p.StaleTime <= 0 {
		return &ConfigError{Field: field + ".StaleTime", Message: "must be greater than 0"}
	}
	// the async window needs room between stale and expire
	if p.ExpireTime-p.StaleTime < 4 {
		return &ConfigError{Field: field + ".ExpireTime", Message: "must be greater than StaleTime"}
	}
	if p.GCTime < p.ExpireTime {
		return &ConfigError{Field: field + ".GCTime", Message: "must be greater than or equal to ExpireTime"}
	}
	if p.RetryBaseDelay < 0 {
		return &ConfigError{Field: field + ".RetryBaseDelay", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Stats is a snapshot of the adapter counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// sturdycService routes each key to the sturdyc client of its family policy.
// Families sharing a policy share a client.
type sturdycService struct {
	byPolicy map[Policy]*sturdyc.Client[any]
	families map[string]*sturdyc.Client[any]
	fallback *sturdyc.Client[any]

	group       singleflight.Group
	generations *xsync.MapOf[string, uint64]
	hits        *xsync.Counter
	misses      *xsync.Counter
}

// NewSturdycService creates a new sturdyc cache service adapter.
// It validates the configuration and initializes one sturdyc client per
// distinct family policy.
//
// The constructor translates Config parameters to sturdyc initialization:
// - Capacity, NumShards, EvictionPercentage and the policy GCTime are passed to sturdyc.New()
// - Stale and expire thresholds are applied via ToSturdycOptions()
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &sturdycService{
		byPolicy:    map[Policy]*sturdyc.Client[any]{},
		families:    map[string]*sturdyc.Client[any]{},
		generations: xsync.NewMapOf[string, uint64](),
		hits:        xsync.NewCounter(),
		misses:      xsync.NewCounter(),
	}

	s.fallback = s.clientFor(cfg, cfg.DefaultPolicy)
	for family, p := range cfg.Families {
		s.families[family] = s.clientFor(cfg, p)
	}

	return s, nil
}

func (s *sturdycService) clientFor(cfg Config, p Policy) *sturdyc.Client[any] {
	if client, ok := s.byPolicy[p]; ok {
		return client
	}
	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		p.GCTime,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions(p)...,
	)
	s.byPolicy[p] = client
	return client
}

func familyOf(key string) string {
	family, _, _ := strings.Cut(key, keySeparator)
	return family
}

func (s *sturdycService) client(key string) *sturdyc.Client[any] {
	if client, ok := s.families[familyOf(key)]; ok {
		return client
	}
	return s.fallback
}

func (s *sturdycService) generation(family string) uint64 {
	gen, _ := s.generations.Load(family)
	return gen
}

func (s *sturdycService) bump(family string) {
	s.generations.Compute(family, func(old uint64, _ bool) (uint64, bool) {
		return old + 1, false
	})
}

// validateFetchFn performs comprehensive validation of the fetchFn parameter
// to ensure it matches the expected signature: func(context.Context) (T, error)
func validateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	fnValue := reflect.ValueOf(fetchFn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return &ConfigError{Field: "fetchFn", Message: "must be a function"}
	}

	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	if !fnType.In(0).Implements(contextType) {
		return &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	}

	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errorType) {
		return &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}

	return nil
}

// GetOrFetch implements cache.CacheService.GetOrFetch.
//
// Concurrent calls for the same key share a single underlying lookup, so at
// most one fetch per key is in flight. Failed fetches are never stored.
//
// Entries are stored under the key suffixed with the family generation.
// Invalidating a family bumps its generation, so reads issued afterwards
// neither hit an old entry nor join a fetch that started before the
// invalidation.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	family := familyOf(key)
	client := s.client(key)
	stored := storedKey(key, s.generation(family))

	v, err, _ := s.group.Do(stored, func() (any, error) {
		var fetched atomic.Bool

		value, err := client.GetOrFetch(ctx, stored, func(ctx context.Context) (any, error) {
			fetched.Store(true)
			result, err := callFetchFunctionWithReflection(ctx, fetchFn)
			if result == nil {
				// sturdyc rejects a nil any before the error is looked at.
				return nilResult{}, err
			}
			return result, err
		})
		if _, ok := value.(nilResult); ok {
			value = nil
		}

		if fetched.Load() {
			s.misses.Inc()
			metrics.RecordQueryMiss(family)
		} else if err == nil {
			s.hits.Inc()
			metrics.RecordQueryHit(family)
		}
		return value, err
	})

	return v, err
}

// nilResult stands in for a nil fetch result inside sturdyc.
type nilResult struct{}

func storedKey(key string, gen uint64) string {
	return key + generationSeparator + strconv.FormatUint(gen, 10)
}

// logicalKey strips the generation suffix from a stored key.
func logicalKey(stored string) string {
	if i := strings.LastIndex(stored, generationSeparator); i >= 0 {
		return stored[:i]
	}
	return stored
}

// callFetchFunctionWithReflection uses reflection to call any function that matches
// the FetchFn[T] signature: func(context.Context) (T, error)
// Note: fetchFn is guaranteed to be valid as it's pre validated by validateFetchFn
func callFetchFunctionWithReflection(ctx context.Context, fetchFn any) (any, error) {
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	var err error

	if resultValue := results[0]; resultValue.IsValid() && resultValue.CanInterface() {
		result = resultValue.Interface()
	}

	if errorValue := results[1]; errorValue.IsValid() && !errorValue.IsNil() {
		err = errorValue.Interface().(error)
	}

	return result, err
}

// Delete implements cache.CacheService.Delete.
// Removes a single entry so the next GetOrFetch for key fetches from the API.
// The whole family generation moves forward, which also retires in-flight
// fetches of sibling keys.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	family := familyOf(key)
	s.bump(family)

	n := s.deleteMatching(func(k string) bool { return k == key })
	metrics.RecordInvalidation(family, n)
	return nil
}

// DeleteByPrefix implements cache.CacheService.DeleteByPrefix.
// Removes all entries whose keys start with prefix, across every policy tier.
func (s *sturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	family := familyOf(prefix)
	s.bump(family)

	n := s.deleteMatching(func(k string) bool { return strings.HasPrefix(k, prefix) })
	metrics.RecordInvalidation(family, n)
	return nil
}

// InvalidateKeys implements cache.CacheService.InvalidateKeys.
func (s *sturdycService) InvalidateKeys(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *sturdycService) deleteMatching(match func(key string) bool) int {
	removed := 0
	for _, client := range s.byPolicy {
		for _, stored := range client.ScanKeys() {
			if match(logicalKey(stored)) {
				client.Delete(stored)
				removed++
			}
		}
	}
	return removed
}

// Stats returns hit and miss counters and the number of live entries.
func (s *sturdycService) Stats() Stats {
	entries := 0
	for _, client := range s.byPolicy {
		entries += len(client.ScanKeys())
	}
	return Stats{
		Hits:    s.hits.Value(),
		Misses:  s.misses.Value(),
		Entries: entries,
	}
}
