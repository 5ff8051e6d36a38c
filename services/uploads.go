package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-portfolio-client/models"
)

// Uploads is the uploads part of the API.
type Uploads interface {
	UploadImage(ctx context.Context, filename string, content []byte) (models.Response[models.UploadedFile], error)
	UploadDocument(ctx context.Context, filename string, content []byte) (models.Response[models.UploadedFile], error)
	ListFiles(ctx context.Context) (models.Response[models.FileList], error)
	DeleteFile(ctx context.Context, filename string) (models.Response[models.Ack], error)
}

// UploadsService implements Uploads over the HTTP client.
type UploadsService struct {
	caller
	policy UploadPolicy
}

var _ Uploads = (*UploadsService)(nil)

// NewUploads returns a UploadsService calling api.
func NewUploads(api API, policy UploadPolicy) *UploadsService {
	return &UploadsService{caller: caller{api: api}, policy: policy.withDefaults()}
}

// UploadImage validates content against the policy and uploads it as an image.
func (s *UploadsService) UploadImage(ctx context.Context, filename string, content []byte) (models.Response[models.UploadedFile], error) {
	return s.upload(ctx, models.UploadImage, filename, content)
}

// UploadDocument validates content against the policy and uploads it as a document.
func (s *UploadsService) UploadDocument(ctx context.Context, filename string, content []byte) (models.Response[models.UploadedFile], error) {
	return s.upload(ctx, models.UploadDocument, filename, content)
}

// ListFiles lists the uploaded files.
func (s *UploadsService) ListFiles(ctx context.Context) (models.Response[models.FileList], error) {
	var out models.Response[models.FileList]
	err := s.get(ctx, "/upload/files", nil, &out)
	return out, err
}

// DeleteFile removes an upload. filename may include its folder, e.g.
// "images/logo_1a2b3c4d.png".
func (s *UploadsService) DeleteFile(ctx context.Context, filename string) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.delete(ctx, "/upload/"+escapeSegments(filename), &out)
	return out, err
}

func (s *UploadsService) upload(ctx context.Context, kind models.UploadKind, filename string, content []byte) (models.Response[models.UploadedFile], error) {
	var out models.Response[models.UploadedFile]

	contentType, err := s.policy.Validate(filename, content)
	if err != nil {
		return out, err
	}

	err = s.api.Upload(ctx, "/upload/"+string(kind), filename, contentType, content, &out)
	return out, err
}

func escapeSegments(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
