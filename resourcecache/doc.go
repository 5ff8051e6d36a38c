// Package resourcecache provides cached decorators for the portfolio
// resource services.
//
// # Overview
//
// Each decorator wraps one service of package services and implements the
// same interface, so a cached service is a drop-in replacement for the
// uncached one. Reads go through the query cache; writes go to the API and
// invalidate what they changed.
//
// # Basic Usage
//
//	set := services.NewSet(api, sess, services.DefaultUploadPolicy())
//	queryCache, err := cache.NewCacheService(cache.DefaultConfig().WithFamilies(resourcecache.DefaultPolicies()))
//	if err != nil {
//		return err
//	}
//
//	cached := resourcecache.Wrap(set, queryCache, resourcecache.Options{Local: local})
//	skills, err := cached.Skills.List(ctx, models.SkillListOptions{Category: models.SkillTechnical})
//
// # Cached vs Pass-through Operations
//
// ## Cached Operations
//
//   - List, Get, GetBySlug, Categories, Statuses and Stats of every family
//   - ListMessages, GetMessage and the contact card
//   - Education, experience and interests reads, the portfolio summary
//   - The upload file listing
//
// ## Pass-through Operations
//
//   - Every write (Create, Update, Delete, Like, Submit, Reply, uploads)
//   - Auth calls and user management
//
// # Keys and Families
//
// A read is keyed by its family and parameters, e.g. "skills" for the
// unfiltered list and "skills::category=technical&page=2" for a filtered
// one. Families carry the freshness policy (see DefaultPolicies) and are the
// unit of invalidation.
//
// # Invalidation
//
// A successful write drops the list, stats and enumeration families of its
// resource, the cached item it touched, and related aggregates such as the
// portfolio summary. Invalidation completes before the write returns, so a
// read issued afterwards never sees the old value. Invalidation failures are
// logged and do not fail the write. A failed write invalidates nothing.
//
// # Local Cache
//
// Two values live in the secondary local cache instead: the signed-in profile,
// remembered on login and on Me and forgotten on logout, and a snapshot of
// the contact card, served only when the API cannot be reached.
//
// # Error Handling
//
// Errors from the base services propagate unchanged and are never cached.
package resourcecache
