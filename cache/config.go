package cache

import (
	"time"

	"github.com/goliatone/go-portfolio-client/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Capacity           int
	NumShards          int
	EvictionPercentage int
	EvictionInterval   time.Duration

	// DefaultPolicy applies to every family without an entry in Families.
	DefaultPolicy FamilyPolicy
	Families      map[string]FamilyPolicy
}

// FamilyPolicy holds the freshness thresholds of one query family.
//
// A cached entry younger than StaleTime is served as is. Between StaleTime and
// ExpireTime it is still served, and a background refresh is scheduled. Past
// ExpireTime a read blocks on a fresh fetch. Entries left unread for GCTime
// are evicted.
type FamilyPolicy struct {
	StaleTime      time.Duration `yaml:"stale_time" json:"stale_time"`
	ExpireTime     time.Duration `yaml:"expire_time" json:"expire_time"`
	GCTime         time.Duration `yaml:"gc_time" json:"gc_time"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" json:"retry_base_delay"`
}

// Predefined policies, ordered from most to least volatile data.
var (
	// PolicyStats suits admin statistics and inbox data.
	PolicyStats = FamilyPolicy{StaleTime: 2 * time.Minute, ExpireTime: 5 * time.Minute, GCTime: 10 * time.Minute, RetryBaseDelay: time.Second}
	// PolicyContent suits published content lists and records.
	PolicyContent = FamilyPolicy{StaleTime: 5 * time.Minute, ExpireTime: 10 * time.Minute, GCTime: 30 * time.Minute, RetryBaseDelay: time.Second}
	// PolicyStatic suits lookups that change with deployments only.
	PolicyStatic = FamilyPolicy{StaleTime: 10 * time.Minute, ExpireTime: 30 * time.Minute, GCTime: 60 * time.Minute, RetryBaseDelay: time.Second}
)

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// WithFamilies returns a copy of c whose Families contains policies, merged
// over the families already set.
func (c Config) WithFamilies(policies map[string]FamilyPolicy) Config {
	merged := make(map[string]FamilyPolicy, len(c.Families)+len(policies))
	for family, p := range c.Families {
		merged[family] = p
	}
	for family, p := range policies {
		merged[family] = p
	}
	c.Families = merged
	return c
}

// PolicyFor returns the policy applied to family.
func (c Config) PolicyFor(family string) FamilyPolicy {
	if p, ok := c.Families[family]; ok {
		return p
	}
	return c.DefaultPolicy
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the default cache service implementation using the provided configuration.
func NewCacheService(cfg Config) (CacheService, error) {
	return cacheinfra.NewSturdycService(cfg.toInternal())
}

func (p FamilyPolicy) toInternal() cacheinfra.Policy {
	return cacheinfra.Policy{
		StaleTime:      p.StaleTime,
		ExpireTime:     p.ExpireTime,
		GCTime:         p.GCTime,
		RetryBaseDelay: p.RetryBaseDelay,
	}
}

func fromInternalPolicy(p cacheinfra.Policy) FamilyPolicy {
	return FamilyPolicy{
		StaleTime:      p.StaleTime,
		ExpireTime:     p.ExpireTime,
		GCTime:         p.GCTime,
		RetryBaseDelay: p.RetryBaseDelay,
	}
}

func (c Config) toInternal() cacheinfra.Config {
	families := make(map[string]cacheinfra.Policy, len(c.Families))
	for family, p := range c.Families {
		families[family] = p.toInternal()
	}

	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		DefaultPolicy:      c.DefaultPolicy.toInternal(),
		Families:           families,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	families := make(map[string]FamilyPolicy, len(cfg.Families))
	for family, p := range cfg.Families {
		families[family] = fromInternalPolicy(p)
	}

	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
		DefaultPolicy:      fromInternalPolicy(cfg.DefaultPolicy),
		Families:           families,
	}
}

// Stats is a snapshot of query cache counters.
type Stats = cacheinfra.Stats

// StatsOf returns the counters of services that keep them.
func StatsOf(service CacheService) (Stats, bool) {
	reporter, ok := service.(interface{ Stats() cacheinfra.Stats })
	if !ok {
		return Stats{}, false
	}
	return reporter.Stats(), true
}

// ConfigError names the configuration field that failed validation.
type ConfigError = cacheinfra.ConfigError
