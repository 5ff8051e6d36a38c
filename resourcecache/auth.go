package resourcecache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/localcache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

var _ services.Auth = (*CachedAuth)(nil)

// ProfileTTL bounds how long the signed-in profile is remembered.
const ProfileTTL = 12 * time.Hour

// CachedAuth keeps the signed-in profile in the local cache and drops the
// admin-only query families whenever the session changes. Auth calls
// themselves are never served from a cache.
type CachedAuth struct {
	decorator
	base  services.Auth
	local *localcache.Cache
}

// NewAuth wraps base with the query cache.
func NewAuth(base services.Auth, cacheService cache.CacheService, local *localcache.Cache, logger *zap.Logger) *CachedAuth {
	return &CachedAuth{decorator: newDecorator(cacheService, logger), base: base, local: local}
}

// Profile returns the remembered profile without calling the API.
func (c *CachedAuth) Profile(ctx context.Context) (models.User, bool) {
	if c.local == nil {
		return models.User{}, false
	}
	return localcache.GetAs[models.User](ctx, c.local, LocalProfile)
}

// Login starts the session and remembers the profile.
func (c *CachedAuth) Login(ctx context.Context, creds models.Credentials) (models.Response[models.LoginResult], error) {
	result, err := c.base.Login(ctx, creds)
	if err == nil {
		c.invalidate(ctx, privateFamilies)
		c.remember(ctx, result.Data.User)
	}
	return result, err
}

// Logout forgets the profile even when the API call fails, matching the
// session which is always cleared.
func (c *CachedAuth) Logout(ctx context.Context) (models.Response[models.Ack], error) {
	result, err := c.base.Logout(ctx)
	c.invalidate(ctx, privateFamilies)
	if c.local != nil {
		c.local.Delete(ctx, LocalProfile)
	}
	return result, err
}

// Me fetches the signed-in user and refreshes the remembered profile.
func (c *CachedAuth) Me(ctx context.Context) (models.Response[models.User], error) {
	result, err := c.base.Me(ctx)
	if err == nil {
		c.remember(ctx, result.Data)
	}
	return result, err
}

// ValidateToken is never cached.
func (c *CachedAuth) ValidateToken(ctx context.Context) (models.Response[models.TokenValidation], error) {
	return c.base.ValidateToken(ctx)
}

// ChangePassword is passed through.
func (c *CachedAuth) ChangePassword(ctx context.Context, in models.PasswordChange) (models.Response[models.Ack], error) {
	return c.base.ChangePassword(ctx, in)
}

// ListUsers is passed through; admin lists are not cached.
func (c *CachedAuth) ListUsers(ctx context.Context) (models.Response[[]models.User], error) {
	return c.base.ListUsers(ctx)
}

// CreateUser is passed through.
func (c *CachedAuth) CreateUser(ctx context.Context, in models.UserInput) (models.Response[models.User], error) {
	return c.base.CreateUser(ctx, in)
}

// UpdateUser refreshes the remembered profile when it changes the signed-in user.
func (c *CachedAuth) UpdateUser(ctx context.Context, id int, in models.UserInput) (models.Response[models.User], error) {
	result, err := c.base.UpdateUser(ctx, id, in)
	if err == nil {
		c.refreshProfile(ctx, result.Data)
	}
	return result, err
}

// DeleteUser is passed through.
func (c *CachedAuth) DeleteUser(ctx context.Context, id int) (models.Response[models.Ack], error) {
	return c.base.DeleteUser(ctx, id)
}

func (c *CachedAuth) remember(ctx context.Context, user models.User) {
	if c.local == nil {
		return
	}
	if err := c.local.Set(ctx, LocalProfile, user, ProfileTTL); err != nil {
		c.logger.Warn("profile not stored", zap.Error(err))
	}
}

// refreshProfile replaces the remembered profile when user is the one
// signed in.
func (c *CachedAuth) refreshProfile(ctx context.Context, user models.User) {
	current, ok := c.Profile(ctx)
	if ok && current.ID == user.ID {
		c.remember(ctx, user)
	}
}
