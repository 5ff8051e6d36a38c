// Package cache provides the query cache interfaces and the canonical key
// serialization used by the resource decorators.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: A read-through cache with prefix invalidation
//   - KeySerializer: Builds stable cache keys from a query family and its params
//
// Reads are identified by a QueryKey: a family such as "skills",
// "blog-post" or "projects-stats", plus the params that narrow it down. The
// family decides the freshness policy and is the unit of invalidation.
//
// # Basic Usage
//
//	service, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	key := cache.Key("skills", models.SkillListOptions{Category: models.SkillTechnical})
//	page, err := cache.GetOrFetch(ctx, service, key.String(), func(ctx context.Context) (models.Response[models.Page[models.Skill]], error) {
//		return api.List(ctx, opts)
//	})
//
// Concurrent reads of the same key share one fetch. A failed fetch is never
// stored, so the next read tries again.
//
// # Key Serialization Strategy
//
// The default key serializer flattens params into a canonical string:
//
//   - Option structs and maps: sorted, query-escaped name=value pairs, keyed by json name
//   - Zero-valued fields and map values: omitted, so an empty options struct adds nothing
//   - Pointer fields: included whenever non-nil, so featured=false is kept
//   - Slices: bracketed, in order
//   - Times: RFC3339 in UTC
//   - Strings: query-escaped, so a value cannot forge a separator
//   - Anything else: a JSON fallback
//
// Segments are joined with KeySeparator, so every key of a family starts
// with the family name followed by "::". The same Params function drives the
// query string the services send, which keeps keys and requests in step.
//
// # Freshness
//
// Each family has a FamilyPolicy. Entries younger than StaleTime are served
// as is. Between StaleTime and ExpireTime they are still served while a
// background refresh runs. Past ExpireTime a read waits for a fresh fetch,
// and entries unread for GCTime are evicted. PolicyStats, PolicyContent and
// PolicyStatic cover the usual cases.
//
// # Invalidation
//
// InvalidateFamilies drops every entry of the given families; InvalidateKeys
// drops single keys. Both take effect before they return, so a read issued
// after a write never sees the pre-write value.
//
// # Error Handling
//
// Configuration problems are reported as *ConfigError values naming the
// offending field. The key serializer never fails: values it cannot encode
// fall back to their type name.
package cache
