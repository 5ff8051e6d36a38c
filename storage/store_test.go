package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	bc, err := NewBigCache(ctx, BigCacheConfig{}, zap.NewNop())
	require.NoError(t, err)

	lite, err := OpenSQLite(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)

	stores := map[string]Store{
		"memory":   NewMemory(),
		"bigcache": bc,
		"sqlite":   lite,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "missing")
			assert.True(t, IsNotFound(err))

			require.NoError(t, store.Set(ctx, "cache_user", []byte(`{"id":1}`)))
			got, err := store.Get(ctx, "cache_user")
			require.NoError(t, err)
			assert.Equal(t, `{"id":1}`, string(got))

			require.NoError(t, store.Set(ctx, "cache_user", []byte(`{"id":2}`)))
			got, err = store.Get(ctx, "cache_user")
			require.NoError(t, err)
			assert.Equal(t, `{"id":2}`, string(got))

			require.NoError(t, store.Set(ctx, "cache_contact", []byte("c")))
			require.NoError(t, store.Set(ctx, "access_token", []byte("tok")))
			// "_" must not act as a wildcard
			require.NoError(t, store.Set(ctx, "cacheXuser", []byte("x")))

			keys, err := store.Keys(ctx, "cache_")
			require.NoError(t, err)
			assert.Equal(t, []string{"cache_contact", "cache_user"}, keys)

			require.NoError(t, store.Delete(ctx, "cache_user"))
			require.NoError(t, store.Delete(ctx, "cache_user"))
			_, err = store.Get(ctx, "cache_user")
			assert.True(t, IsNotFound(err))
		})
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestGlobEscape(t *testing.T) {
	assert.Equal(t, "cache_", globEscape("cache_"))
	assert.Equal(t, `a\*b\?c\[d\]`, globEscape("a*b?c[d]"))
}
