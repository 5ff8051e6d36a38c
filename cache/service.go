package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned by GetOrFetch when the cached value cannot be
// converted to the type requested by the caller.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// KeySerializer builds a cache key from a query family + arbitrary params.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(family string, params ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the API.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through caching operations the resource decorators need.
// It is exported so that other packages can reuse the default serializer or provide alternate cache backends.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	InvalidateKeys(ctx context.Context, keys []string) error
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
// A nil cached value yields the zero value of T.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}

	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}

// InvalidateFamilies drops every entry of the given query families: the bare
// family key and every key built from it with params.
func InvalidateFamilies(ctx context.Context, service CacheService, families ...string) error {
	var errs []error
	for _, family := range families {
		if family == "" {
			continue
		}
		if err := service.Delete(ctx, family); err != nil {
			errs = append(errs, err)
		}
		if err := service.DeleteByPrefix(ctx, family+KeySeparator); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
