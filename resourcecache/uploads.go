package resourcecache

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/services"
)

var _ services.Uploads = (*CachedUploads)(nil)

var uploadWrites = []string{FamilyUploadedFiles}

// CachedUploads decorates a Uploads service with the query cache.
type CachedUploads struct {
	decorator
	base services.Uploads
}

// NewUploads wraps base with the query cache.
func NewUploads(base services.Uploads, cacheService cache.CacheService, logger *zap.Logger) *CachedUploads {
	return &CachedUploads{decorator: newDecorator(cacheService, logger), base: base}
}

// UploadImage uploads an image and invalidates the file list.
func (c *CachedUploads) UploadImage(ctx context.Context, filename string, content []byte) (models.Response[models.UploadedFile], error) {
	result, err := c.base.UploadImage(ctx, filename, content)
	if err == nil {
		c.invalidate(ctx, uploadWrites)
	}
	return result, err
}

// UploadDocument uploads a document and invalidates the file list.
func (c *CachedUploads) UploadDocument(ctx context.Context, filename string, content []byte) (models.Response[models.UploadedFile], error) {
	result, err := c.base.UploadDocument(ctx, filename, content)
	if err == nil {
		c.invalidate(ctx, uploadWrites)
	}
	return result, err
}

// ListFiles serves the file list from the query cache.
func (c *CachedUploads) ListFiles(ctx context.Context) (models.Response[models.FileList], error) {
	return read(ctx, c.decorator, cache.Key(FamilyUploadedFiles), c.base.ListFiles)
}

// DeleteFile removes a file and invalidates the file list.
func (c *CachedUploads) DeleteFile(ctx context.Context, filename string) (models.Response[models.Ack], error) {
	result, err := c.base.DeleteFile(ctx, filename)
	if err == nil {
		c.invalidate(ctx, uploadWrites)
	}
	return result, err
}
