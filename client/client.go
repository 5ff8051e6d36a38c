// Package client is the HTTP adapter between the resource services and the
// portfolio API.
//
// Every request carries the session's bearer token and an X-Request-ID.
// A 401 triggers exactly one token refresh followed by one replay of the
// original request; concurrent 401s share the same refresh call. When no
// refresh is possible the session is expired and the refresh failure is
// returned, never the original 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-portfolio-client/internal/metrics"
	"github.com/goliatone/go-portfolio-client/session"
)

const (
	headerRequestID = "X-Request-ID"
	refreshPath     = "/auth/refresh"
)

// Request describes one API call. The body is encoded once so the request
// can be replayed after a refresh.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// SkipAuth sends the request without a bearer token and disables the
	// refresh path.
	SkipAuth bool

	// Retried is set once the request has been replayed after a refresh.
	Retried bool

	payload     []byte
	contentType string
	requestID   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sends requests through hc. The configured timeout still applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request and refresh logs.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client sends authenticated requests to the portfolio API.
type Client struct {
	cfg     Config
	http    *http.Client
	session *session.Session
	logger  *zap.Logger
	refresh singleflight.Group
}

// New creates a Client for cfg. A nil session gets a memory-backed one.
func New(cfg Config, sess *session.Session, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if sess == nil {
		sess = session.New(nil)
	}

	c := &Client{
		cfg:     cfg,
		session: sess,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	return c, nil
}

// BaseURL returns the API root every path is appended to.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Session returns the session whose tokens the client sends.
func (c *Client) Session() *session.Session { return c.session }

// Get sends a GET with query and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete sends a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

// Upload posts content as the multipart field "file".
func (c *Client) Upload(ctx context.Context, path, filename, contentType string, content []byte, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req := &Request{
		Method:      http.MethodPost,
		Path:        path,
		payload:     buf.Bytes(),
		contentType: w.FormDataContentType(),
	}
	return c.Do(ctx, req, out)
}

// Do sends req and decodes a successful response body into out, which may
// be nil.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	if err := req.encode(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "encode request body")
	}
	if req.requestID == "" {
		req.requestID = uuid.NewString()
	}

	token := ""
	if !req.SkipAuth {
		token = c.session.AccessToken(ctx)
	}

	status, body, err := c.send(ctx, req, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !req.SkipAuth && !req.Retried {
		req.Retried = true

		fresh, err := c.refreshToken(ctx, token)
		if err != nil {
			return err
		}

		status, body, err = c.send(ctx, req, fresh)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return apiError(status, body, req.Method, req.Path, req.requestID)
	}

	return decode(body, out, req)
}

func (c *Client) send(ctx context.Context, req *Request, token string) (int, []byte, error) {
	// the timeout holds for injected http clients too
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	httpReq, err := c.newHTTPRequest(ctx, req, token)
	if err != nil {
		return 0, nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "build request")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.RecordAPIRequest(req.Method, 0, time.Since(start))
		c.logger.Warn("api request failed",
			zap.String("request_id", req.requestID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		return 0, nil, transportError(err, req.Method, req.Path, req.requestID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.RecordAPIRequest(req.Method, resp.StatusCode, elapsed)
	if err != nil {
		return 0, nil, transportError(err, req.Method, req.Path, req.requestID)
	}

	c.logger.Debug("api request",
		zap.String("request_id", req.requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
		zap.Bool("retried", req.Retried))

	return resp.StatusCode, body, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, token string) (*http.Request, error) {
	target := c.cfg.BaseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.payload != nil {
		body = bytes.NewReader(req.payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerRequestID, req.requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// refreshToken returns a usable access token after a 401 obtained with
// staleToken. If another caller already replaced the token the new one is
// reused without a network call.
func (c *Client) refreshToken(ctx context.Context, staleToken string) (string, error) {
	if current := c.session.AccessToken(ctx); current != "" && current != staleToken {
		return current, nil
	}

	// The flight is shared, so it must not die with the caller that
	// started it. send still bounds it by the client timeout.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.refresh.DoChan("refresh", func() (any, error) {
		// a flight that finished just before this one may already have
		// replaced the token
		if current := c.session.AccessToken(flightCtx); current != "" && current != staleToken {
			return current, nil
		}
		return c.doRefresh(flightCtx)
	})

	select {
	case <-ctx.Done():
		return "", transportError(ctx.Err(), http.MethodPost, refreshPath, "")
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

type refreshPayload struct {
	AccessToken string `json:"access_token"`
	Data        struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refreshToken := c.session.RefreshToken(ctx)
	if refreshToken == "" {
		c.logger.Info("no refresh token, expiring session")
		metrics.RecordTokenRefresh(false)
		c.session.Expire(ctx)
		return "", sessionExpiredError()
	}

	req := &Request{
		Method:    http.MethodPost,
		Path:      refreshPath,
		Body:      struct{}{},
		SkipAuth:  true,
		requestID: uuid.NewString(),
	}
	if err := req.encode(); err != nil {
		return "", err
	}

	fail := func(err error) (string, error) {
		c.logger.Warn("token refresh failed", zap.String("request_id", req.requestID), zap.Error(err))
		metrics.RecordTokenRefresh(false)
		c.session.Expire(ctx)
		return "", err
	}

	status, body, err := c.send(ctx, req, refreshToken)
	if err != nil {
		return fail(err)
	}
	if status < 200 || status >= 300 {
		return fail(apiError(status, body, req.Method, req.Path, req.requestID))
	}

	var payload refreshPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fail(goerrors.Wrap(err, goerrors.CategoryExternal, "decode refresh response").
			WithTextCode(CodeBadResponse).
			WithRequestID(req.requestID))
	}

	token := payload.Data.AccessToken
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" {
		return fail(goerrors.New("refresh response carried no access token", goerrors.CategoryAuth).
			WithCode(status).
			WithTextCode(CodeBadResponse).
			WithRequestID(req.requestID))
	}

	if err := c.session.SetAccessToken(ctx, token); err != nil {
		return fail(goerrors.Wrap(err, goerrors.CategoryInternal, "persist refreshed token"))
	}

	metrics.RecordTokenRefresh(true)
	c.logger.Debug("access token refreshed", zap.String("request_id", req.requestID))
	return token, nil
}

func (r *Request) encode() error {
	if r.payload != nil || r.Body == nil {
		return nil
	}
	b, err := json.Marshal(r.Body)
	if err != nil {
		return err
	}
	r.payload = b
	r.contentType = "application/json"
	return nil
}

func decode(body []byte, out any, req *Request) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "decode response").
			WithTextCode(CodeBadResponse).
			WithRequestID(req.requestID).
			WithMetadata(map[string]any{"method": req.Method, "path": req.Path})
	}
	return nil
}
