// Package storage provides the byte-oriented key/value stores the local cache
// and the session persist into.
//
// Every backend honours the same contract: Get reports ErrNotFound for a
// missing key, Delete of a missing key is not an error, and Keys lists the
// stored keys starting with a prefix in lexical order.
package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
)

//go:generate mockgen -destination=mock/store.go -package=mock github.com/goliatone/go-portfolio-client/storage Store

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a persistent string-keyed byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func filterSorted(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
