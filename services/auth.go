package services

import (
	"context"
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-portfolio-client/client"
	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/session"
)

const usersPath = "/auth/users"

// Auth is the auth part of the API.
type Auth interface {
	Login(ctx context.Context, creds models.Credentials) (models.Response[models.LoginResult], error)
	Logout(ctx context.Context) (models.Response[models.Ack], error)
	Me(ctx context.Context) (models.Response[models.User], error)
	ValidateToken(ctx context.Context) (models.Response[models.TokenValidation], error)
	ChangePassword(ctx context.Context, in models.PasswordChange) (models.Response[models.Ack], error)

	ListUsers(ctx context.Context) (models.Response[[]models.User], error)
	CreateUser(ctx context.Context, in models.UserInput) (models.Response[models.User], error)
	UpdateUser(ctx context.Context, id int, in models.UserInput) (models.Response[models.User], error)
	DeleteUser(ctx context.Context, id int) (models.Response[models.Ack], error)
}

// AuthService signs the admin in and out and manages admin accounts. A
// successful Login starts the session; Logout always ends it.
type AuthService struct {
	caller
	session *session.Session
}

var _ Auth = (*AuthService)(nil)

// NewAuth returns a AuthService calling api.
func NewAuth(api API, sess *session.Session) *AuthService {
	return &AuthService{caller: caller{api: api}, session: sess}
}

// Login exchanges creds for tokens and starts the session.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (models.Response[models.LoginResult], error) {
	var out models.Response[models.LoginResult]

	// a rejected password is a plain 401, not a cue to refresh a stale session
	req := &client.Request{Method: http.MethodPost, Path: "/auth/login", Body: creds, SkipAuth: true}
	if err := s.api.Do(ctx, req, &out); err != nil {
		return out, err
	}

	if s.session != nil {
		if err := s.session.Start(ctx, out.Data.Tokens); err != nil {
			return out, goerrors.Wrap(err, goerrors.CategoryInternal, "start session")
		}
	}
	return out, nil
}

// Logout ends the session, even when the API call fails.
func (s *AuthService) Logout(ctx context.Context) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.post(ctx, "/auth/logout", nil, &out)

	if s.session != nil {
		err = errors.Join(err, s.session.Clear(ctx))
	}
	return out, err
}

// Me fetches the signed-in user.
func (s *AuthService) Me(ctx context.Context) (models.Response[models.User], error) {
	var out models.Response[models.User]
	err := s.get(ctx, "/auth/me", nil, &out)
	return out, err
}

// ValidateToken asks the API whether the access token is still valid.
func (s *AuthService) ValidateToken(ctx context.Context) (models.Response[models.TokenValidation], error) {
	var out models.Response[models.TokenValidation]
	err := s.get(ctx, "/auth/validate-token", nil, &out)
	return out, err
}

// ChangePassword changes the signed-in user's password.
func (s *AuthService) ChangePassword(ctx context.Context, in models.PasswordChange) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.post(ctx, "/auth/change-password", in, &out)
	return out, err
}

// ListUsers fetches every admin account.
func (s *AuthService) ListUsers(ctx context.Context) (models.Response[[]models.User], error) {
	var out models.Response[[]models.User]
	err := s.get(ctx, usersPath, nil, &out)
	return out, err
}

// CreateUser adds an admin account.
func (s *AuthService) CreateUser(ctx context.Context, in models.UserInput) (models.Response[models.User], error) {
	var out models.Response[models.User]
	err := s.post(ctx, usersPath, in, &out)
	return out, err
}

// UpdateUser changes an admin account.
func (s *AuthService) UpdateUser(ctx context.Context, id int, in models.UserInput) (models.Response[models.User], error) {
	var out models.Response[models.User]
	err := s.put(ctx, itemPath(usersPath, id), in, &out)
	return out, err
}

// DeleteUser removes an admin account.
func (s *AuthService) DeleteUser(ctx context.Context, id int) (models.Response[models.Ack], error) {
	var out models.Response[models.Ack]
	err := s.delete(ctx, itemPath(usersPath, id), &out)
	return out, err
}
