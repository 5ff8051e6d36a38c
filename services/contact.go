package services

import (
	"context"

	"github.com/goliatone/go-portfolio-client/models"
)

const messagesPath = "/contact/messages"

// Contact is the contact part of the API.
type Contact interface {
	Info(ctx context.Context) (models.Response[models.ContactInfo], error)
	Submit(ctx context.Context, in models.MessageInput) (models.Response[models.Message], error)
	ListMessages(ctx context.Context, opts models.MessageListOptions) (models.Response[models.Page[models.Message]], error)
	GetMessage(ctx context.Context, id int) (models.Response[models.Message], error)
	UpdateMessage(ctx context.Context, id int, status models.MessageStatus) (models.Response[models.Message], error)
	DeleteMessage(ctx context.Context, id int) (models.Response[models.Ack], error)
	Reply(ctx context.Context, id int, content string) (models.Response[models.Ack], error)
	Stats(ctx context.Context) (models.Response[models.ContactStats], error)
}

// ContactService implements Contact over the HTTP client.
type ContactService struct {
	caller
}

var _ Contact = (*ContactService)(nil)

// NewContact returns a ContactService calling api.
func NewContact(api API) *ContactService {
	return &ContactService{caller{api: api}}
}

// Info fetches the public contact card.
func (s *ContactService) Info(ctx context.Context) (models.Response[models.ContactInfo], error) {
	var out models.Response[models.ContactInfo]
	err := s.get(ctx, "/contact/info", nil, &out)
	return out, err
}

// Submit sends a public contact form message.
func (s *ContactService) Submit(ctx context.Context, in models.MessageInput) (models.Response[models.Message], error) {
	var out models.Response[models.Message]
	err := s.post(ctx, messagesPath, in, &out)
	return out, err
}

// ListMessages fetches a page of inbox messages.
func (s *ContactService) ListMessages(ctx context.Context, opts models.MessageListOptions) (models.Response[models.Page[models.Message]], error) {
	var out models.Response[models.Page[models.Message]]
	err := s.get(ctx, messagesPath, opts, &out)
	return out, err
}

// GetMessage fetches one message by id.
func (s *ContactService) GetMessage(ctx context.Context, id int) (models.Response[models.Message], error) {
	var out models.Response[models.Message]
	err := s.get(ctx, itemPath(messagesPath, id), nil, &out)
	return out, err
}

// UpdateMessage sets the status of a message.
func (s *ContactService) UpdateMessage(ctx context.Context, id int, status models.MessageStatus) (models.Response[models.Message], error) {
	var out models.Response[models.Message]
	err := s.put(ctx, itemPath(messagesPath, id), models.MessageUpdate{Status: status}, &out)
	return out, err
}

// DeleteMessage removes a message.
func (s *ContactService) DeleteMessage(ctx context.Context, id int) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.delete(ctx, itemPath(messagesPath, id), &out)
	return out, err
}

// Reply sends content as a reply to a message.
func (s *ContactService) Reply(ctx context.Context, id int, content string) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.post(ctx, itemPath(messagesPath, id)+"/reply", models.Reply{ReplyContent: content}, &out)
	return out, err
}

// Stats fetches the message statistics.
func (s *ContactService) Stats(ctx context.Context) (models.Response[models.ContactStats], error) {
	var out models.Response[models.ContactStats]
	err := s.get(ctx, "/contact/stats", nil, &out)
	return out, err
}
