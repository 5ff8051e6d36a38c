package services

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-portfolio-client/models"
)

const DefaultMaxUploadSize int64 = 10 * 1024 * 1024

// DefaultMIMETypes lists the content types accepted for upload.
var DefaultMIMETypes = []string{
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// UploadPolicy is checked before any upload reaches the network.
type UploadPolicy struct {
	MaxSize    int64
	Extensions []string
	MIMETypes  []string
}

// DefaultUploadPolicy allows 10 MiB images and documents.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxSize:    DefaultMaxUploadSize,
		Extensions: models.AllowedExtensions(),
		MIMETypes:  append([]string(nil), DefaultMIMETypes...),
	}
}

type uploadCandidate struct {
	Filename    string `json:"filename"`
	Extension   string `json:"extension"`
	Size        int64  `json:"file_size"`
	ContentType string `json:"content_type"`
}

// Validate checks filename and content against the policy and returns the
// sniffed content type.
func (p UploadPolicy) Validate(filename string, content []byte) (string, error) {
	p = p.withDefaults()

	detected := mimetype.Detect(content)
	c := uploadCandidate{
		Filename:    filename,
		Extension:   models.Extension(filename),
		Size:        int64(len(content)),
		ContentType: p.acceptedType(detected),
	}

	typesMsg := "File type not allowed. Allowed types: " + strings.Join(p.Extensions, ", ")
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Filename, validation.Required.Error("No file selected")),
		validation.Field(&c.Extension,
			validation.Required.Error(typesMsg),
			validation.In(toAny(p.Extensions)...).Error(typesMsg)),
		validation.Field(&c.Size,
			validation.Required.Error("File is empty"),
			validation.Max(p.MaxSize).Error("File size must be less than "+sizeLabel(p.MaxSize))),
		validation.Field(&c.ContentType, validation.When(c.Size > 0,
			validation.Required.Error(fmt.Sprintf("Content type %s is not allowed", detected.String())))),
	)
	if err != nil {
		return "", goerrors.FromOzzoValidation(err, "invalid upload").
			WithTextCode("UPLOAD_REJECTED").
			WithMetadata(map[string]any{"filename": filename})
	}
	return c.ContentType, nil
}

// acceptedType returns the allowed type matching detected, or "".
func (p UploadPolicy) acceptedType(detected *mimetype.MIME) string {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range p.MIMETypes {
			if m.Is(allowed) {
				return allowed
			}
		}
	}
	return ""
}

func (p UploadPolicy) withDefaults() UploadPolicy {
	def := DefaultUploadPolicy()
	if p.MaxSize <= 0 {
		p.MaxSize = def.MaxSize
	}
	if len(p.Extensions) == 0 {
		p.Extensions = def.Extensions
	}
	if len(p.MIMETypes) == 0 {
		p.MIMETypes = def.MIMETypes
	}
	return p
}

func sizeLabel(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return models.FormatSize(n)
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
