package resourcecache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/client"
	"github.com/goliatone/go-portfolio-client/localcache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

var _ services.Contact = (*CachedContact)(nil)

// ContactInfoTTL bounds how old the contact card snapshot may be.
const ContactInfoTTL = 24 * time.Hour

var messageWrites = []string{FamilyMessages, FamilyContactStats}

// CachedContact decorates a Contact service. The public contact card is
// also kept as a snapshot in the local cache, served when the API cannot be
// reached at all.
type CachedContact struct {
	decorator
	base  services.Contact
	local *localcache.Cache
}

// NewContact wraps base with the query cache.
func NewContact(base services.Contact, cacheService cache.CacheService, local *localcache.Cache, logger *zap.Logger) *CachedContact {
	return &CachedContact{decorator: newDecorator(cacheService, logger), base: base, local: local}
}

// Info serves the contact card from the query cache, falling back to the
// local snapshot when the API is unreachable.
func (c *CachedContact) Info(ctx context.Context) (models.Response[models.ContactInfo], error) {
	result, err := read(ctx, c.decorator, cache.Key(FamilyContactInfo), c.base.Info)
	if err == nil {
		if c.local != nil {
			if serr := c.local.Set(ctx, LocalContactInfo, result.Data, ContactInfoTTL); serr != nil {
				c.logger.Warn("contact info snapshot not stored", zap.Error(serr))
			}
		}
		return result, nil
	}

	if !unreachable(err) || c.local == nil {
		return result, err
	}

	snapshot, ok := localcache.GetAs[models.ContactInfo](ctx, c.local, LocalContactInfo)
	if !ok {
		return result, err
	}
	c.logger.Info("serving contact info snapshot", zap.Error(err))
	return models.Response[models.ContactInfo]{Success: true, Data: snapshot}, nil
}

// Submit sends a contact message and invalidates the inbox.
func (c *CachedContact) Submit(ctx context.Context, in models.MessageInput) (models.Response[models.Message], error) {
	result, err := c.base.Submit(ctx, in)
	if err == nil {
		c.invalidate(ctx, messageWrites)
	}
	return result, err
}

// ListMessages serves a page of the inbox from the query cache.
func (c *CachedContact) ListMessages(ctx context.Context, opts models.MessageListOptions) (models.Response[models.Page[models.Message]], error) {
	return read(ctx, c.decorator, cache.Key(FamilyMessages, opts), func(ctx context.Context) (models.Response[models.Page[models.Message]], error) {
		return c.base.ListMessages(ctx, opts)
	})
}

// GetMessage serves one message from the query cache.
func (c *CachedContact) GetMessage(ctx context.Context, id int) (models.Response[models.Message], error) {
	return read(ctx, c.decorator, cache.Key(FamilyMessage, id), func(ctx context.Context) (models.Response[models.Message], error) {
		return c.base.GetMessage(ctx, id)
	})
}

// UpdateMessage changes a message status and invalidates the inbox.
func (c *CachedContact) UpdateMessage(ctx context.Context, id int, status models.MessageStatus) (models.Response[models.Message], error) {
	result, err := c.base.UpdateMessage(ctx, id, status)
	if err == nil {
		c.invalidate(ctx, messageWrites, cache.Key(FamilyMessage, id))
	}
	return result, err
}

// DeleteMessage removes a message and invalidates the inbox.
func (c *CachedContact) DeleteMessage(ctx context.Context, id int) (models.Response[models.Ack], error) {
	result, err := c.base.DeleteMessage(ctx, id)
	if err == nil {
		c.invalidate(ctx, messageWrites, cache.Key(FamilyMessage, id))
	}
	return result, err
}

// Reply marks the message replied on the server.
func (c *CachedContact) Reply(ctx context.Context, id int, content string) (models.Response[models.Ack], error) {
	result, err := c.base.Reply(ctx, id, content)
	if err == nil {
		c.invalidate(ctx, messageWrites, cache.Key(FamilyMessage, id))
	}
	return result, err
}

// Stats serves the message statistics from the query cache.
func (c *CachedContact) Stats(ctx context.Context) (models.Response[models.ContactStats], error) {
	return read(ctx, c.decorator, cache.Key(FamilyContactStats), c.base.Stats)
}

// unreachable reports whether err means no response arrived.
func unreachable(err error) bool {
	switch client.TextCode(err) {
	case client.CodeNetwork, client.CodeTimeout:
		return true
	}
	return false
}
