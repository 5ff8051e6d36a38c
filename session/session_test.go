package session

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/storage"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestStartPersistsTokens(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	s := New(store)

	require.NoError(t, s.Start(ctx, models.Tokens{AccessToken: "a1", RefreshToken: "r1"}))

	v, err := store.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a1", string(v))

	resumed := New(store)
	assert.Equal(t, "a1", resumed.AccessToken(ctx))
	assert.Equal(t, "r1", resumed.RefreshToken(ctx))
	assert.True(t, resumed.Authenticated(ctx))
}

func TestStartRequiresAccessToken(t *testing.T) {
	s := New(nil)
	assert.Error(t, s.Start(context.Background(), models.Tokens{RefreshToken: "r"}))
}

func TestSetAccessTokenKeepsRefresh(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	s := New(store)
	require.NoError(t, s.Start(ctx, models.Tokens{AccessToken: "a1", RefreshToken: "r1"}))

	require.NoError(t, s.SetAccessToken(ctx, "a2"))

	assert.Equal(t, "a2", New(store).AccessToken(ctx))
	assert.Equal(t, "r1", s.RefreshToken(ctx))
}

func TestExpireClearsAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	fired := 0
	s := New(store, OnUnauthenticated(func() { fired++ }))
	s.OnUnauthenticated(func() { fired++ })
	require.NoError(t, s.Start(ctx, models.Tokens{AccessToken: "a1", RefreshToken: "r1"}))

	s.Expire(ctx)

	assert.Equal(t, 2, fired)
	assert.False(t, s.Authenticated(ctx))
	_, err := store.Get(ctx, RefreshTokenKey)
	assert.True(t, storage.IsNotFound(err))
}

func TestClearTwice(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	exp := clk.Now().Add(15 * time.Minute)

	s := New(storage.NewMemory(), WithClock(clk))
	assert.Equal(t, Status{}, s.Status(ctx))

	require.NoError(t, s.Start(ctx, models.Tokens{AccessToken: signed(t, exp), RefreshToken: "r"}))

	st := s.Status(ctx)
	assert.True(t, st.Authenticated)
	assert.True(t, st.HasRefreshToken)
	require.NotNil(t, st.ExpiresAt)
	assert.Equal(t, exp.Unix(), st.ExpiresAt.Unix())
	assert.False(t, st.Expired)

	clk.Add(15 * time.Minute)
	assert.True(t, s.Status(ctx).Expired)
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	_, ok := TokenExpiry("not-a-jwt")
	assert.False(t, ok)
}
