package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/goliatone/go-portfolio-client/storage"
	"github.com/goliatone/go-portfolio-client/storage/mock"
)

type profile struct {
	ID       int    `json:"id" msgpack:"id"`
	Username string `json:"username" msgpack:"username"`
}

func newTestCache(t *testing.T) (*Cache, *clock.Mock, storage.Store) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := storage.NewMemory()
	return New(Options{Store: store, Clock: clk}), clk, store
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "user", profile{ID: 1, Username: "admin"}, time.Minute))

	var got profile
	assert.True(t, c.Get(ctx, "user", &got))
	assert.Equal(t, profile{ID: 1, Username: "admin"}, got)

	typed, ok := GetAs[profile](ctx, c, "user")
	assert.True(t, ok)
	assert.Equal(t, "admin", typed.Username)

	_, ok = GetAs[profile](ctx, c, "nobody")
	assert.False(t, ok)
}

func TestExpiresAtTTLBoundary(t *testing.T) {
	ctx := context.Background()
	c, clk, store := newTestCache(t)

	require.NoError(t, c.Set(ctx, "user", profile{ID: 1}, time.Minute))

	clk.Add(59 * time.Second)
	assert.True(t, c.Get(ctx, "user", nil))

	clk.Add(time.Second)
	assert.False(t, c.Get(ctx, "user", nil))

	_, err := store.Get(ctx, "cache_user")
	assert.True(t, storage.IsNotFound(err), "expired entry should be removed from the store")
}

func TestSubMillisecondTTLIsRoundedUp(t *testing.T) {
	ctx := context.Background()
	c, clk, store := newTestCache(t)

	require.NoError(t, c.Set(ctx, "user", profile{ID: 1}, 500*time.Microsecond))
	assert.True(t, c.Get(ctx, "user", nil))

	raw, err := store.Get(ctx, "cache_user")
	require.NoError(t, err)
	var persisted struct {
		TTL int64 `json:"ttl"`
	}
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, int64(1), persisted.TTL)

	clk.Add(time.Millisecond)
	assert.False(t, c.Get(ctx, "user", nil))
}

func TestPersistedEntryFormat(t *testing.T) {
	ctx := context.Background()
	c, clk, store := newTestCache(t)

	require.NoError(t, c.Set(ctx, "contact", map[string]string{"email": "a@b.c"}, 0))

	raw, err := store.Get(ctx, "cache_contact")
	require.NoError(t, err)

	var persisted struct {
		Data      map[string]string `json:"data"`
		Timestamp int64             `json:"timestamp"`
		TTL       int64             `json:"ttl"`
	}
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, "a@b.c", persisted.Data["email"])
	assert.Equal(t, clk.Now().UnixMilli(), persisted.Timestamp)
	assert.Equal(t, DefaultTTL.Milliseconds(), persisted.TTL)
}

func TestPromotesPersistedEntries(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	store := storage.NewMemory()

	writer := New(Options{Store: store, Clock: clk})
	require.NoError(t, writer.Set(ctx, "user", profile{ID: 7}, time.Hour))

	reader := New(Options{Store: store, Clock: clk})
	assert.Equal(t, 0, reader.Stats(ctx).MemoryEntries)

	got, ok := GetAs[profile](ctx, reader, "user")
	require.True(t, ok)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, Stats{MemoryEntries: 1, PersistedEntries: 1}, reader.Stats(ctx))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "user", profile{ID: 1}, time.Minute))
	c.Delete(ctx, "user")
	c.Delete(ctx, "user")

	assert.False(t, c.Get(ctx, "user", nil))
	assert.Equal(t, Stats{}, c.Stats(ctx))
}

func TestClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCache(t)

	require.NoError(t, store.Set(ctx, "access_token", []byte("tok")))
	require.NoError(t, c.Set(ctx, "user", profile{ID: 1}, time.Minute))
	require.NoError(t, c.Set(ctx, "contact", "x", time.Minute))
	assert.ElementsMatch(t, []string{"contact", "user"}, c.Keys(ctx))

	c.Clear(ctx)

	assert.Equal(t, Stats{}, c.Stats(ctx))
	tok, err := store.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, "tok", string(tok))
}

func TestUnreadableEntryIsDiscarded(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCache(t)

	require.NoError(t, store.Set(ctx, "cache_user", []byte("not json")))

	assert.False(t, c.Get(ctx, "user", nil))
	_, err := store.Get(ctx, "cache_user")
	assert.True(t, storage.IsNotFound(err))
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	boom := errors.New("disk full")

	store.EXPECT().Set(gomock.Any(), "cache_user", gomock.Any()).Return(boom)
	store.EXPECT().Get(gomock.Any(), "cache_other").Return(nil, boom)
	store.EXPECT().Delete(gomock.Any(), "cache_user").Return(boom)
	store.EXPECT().Keys(gomock.Any(), "cache_").Return(nil, boom).Times(2)

	c := New(Options{Store: store, Clock: clock.NewMock()})

	require.NoError(t, c.Set(ctx, "user", profile{ID: 1}, time.Minute))
	assert.True(t, c.Get(ctx, "user", nil), "memory tier still serves the value")
	assert.False(t, c.Get(ctx, "other", nil))

	c.Delete(ctx, "user")
	c.Clear(ctx)
	assert.Equal(t, Stats{}, c.Stats(ctx))
}

func TestSetRejectsUnencodableValues(t *testing.T) {
	c, _, _ := newTestCache(t)
	err := c.Set(context.Background(), "bad", make(chan int), time.Minute)
	assert.Error(t, err)
}

func TestMsgpackCodec(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	store := storage.NewMemory()

	c := New(Options{Store: store, Clock: clk, Codec: MsgpackCodec{}})
	require.NoError(t, c.Set(ctx, "user", profile{ID: 3, Username: "ed"}, time.Minute))

	fresh := New(Options{Store: store, Clock: clk, Codec: MsgpackCodec{}})
	got, ok := GetAs[profile](ctx, fresh, "user")
	require.True(t, ok)
	assert.Equal(t, profile{ID: 3, Username: "ed"}, got)
}

func TestCodecByName(t *testing.T) {
	for name, want := range map[string]string{"": "json", "json": "json", "msgpack": "msgpack"} {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, codec.Name())
	}

	_, err := CodecByName("gob")
	assert.Error(t, err)
}
