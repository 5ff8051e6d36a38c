package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-portfolio-client/models"
	"github.com/goliatone/go-portfolio-client/pkg/testsupport"
	"github.com/goliatone/go-portfolio-client/session"
	"github.com/goliatone/go-portfolio-client/storage"
)

func newClient(t *testing.T, api *testsupport.FakeAPI, tokens *models.Tokens, opts ...session.Option) (*Client, *session.Session, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	sess := session.New(store, opts...)
	if tokens != nil {
		require.NoError(t, sess.Start(context.Background(), *tokens))
	}
	c, err := New(Config{BaseURL: api.BaseURL(), Timeout: time.Second}, sess)
	require.NoError(t, err)
	return c, sess, store
}

func TestInjectsBearerAndRequestID(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.ReplyData(http.MethodGet, "/skills/{id}", map[string]any{"id": 4, "name": "Go"})

	c, _, _ := newClient(t, api, &models.Tokens{AccessToken: "a1", RefreshToken: "r1"})

	var out models.Response[models.Skill]
	require.NoError(t, c.Get(context.Background(), "/skills/4", nil, &out))
	assert.True(t, out.Success)
	assert.Equal(t, "Go", out.Data.Name)

	req, ok := api.LastRequest(http.MethodGet, "/skills/4")
	require.True(t, ok)
	assert.Equal(t, "Bearer a1", req.Authorization)
	assert.NotEmpty(t, req.RequestID)
}

func TestAnonymousRequestHasNoAuthorization(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.ReplyData(http.MethodGet, "/contact/info", map[string]any{"name": "W"})

	c, _, _ := newClient(t, api, nil)
	require.NoError(t, c.Get(context.Background(), "/contact/info", nil, nil))

	req, _ := api.LastRequest(http.MethodGet, "/contact/info")
	assert.Empty(t, req.Authorization)
}

func TestQueryAndJSONBody(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.ReplyData(http.MethodGet, "/skills/", map[string]any{"items": []any{}})
	api.Reply(http.MethodPost, "/skills/", http.StatusCreated, testsupport.Envelope(map[string]any{"id": 9}))

	c, _, _ := newClient(t, api, nil)
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/skills/", url.Values{"category": {"technical"}, "page": {"2"}}, nil))
	req, _ := api.LastRequest(http.MethodGet, "/skills/")
	assert.Equal(t, "category=technical&page=2", req.Query)

	var created models.Response[models.Skill]
	require.NoError(t, c.Post(ctx, "/skills/", models.SkillInput{Name: "Go"}, &created))
	assert.Equal(t, 9, created.Data.ID)

	req, _ = api.LastRequest(http.MethodPost, "/skills/")
	assert.Equal(t, "application/json", req.ContentType)
	assert.JSONEq(t, `{"name":"Go"}`, string(req.Body))
}

func TestRefreshAndReplayOn401(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if testsupport.BearerToken(r) != "a2" {
			testsupport.WriteJSON(w, http.StatusUnauthorized, testsupport.ExpiredTokenBody())
			return
		}
		testsupport.WriteJSON(w, http.StatusOK, testsupport.Envelope(map[string]any{"username": "admin"}))
	})
	api.Handle(http.MethodPost, "/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "r1", testsupport.BearerToken(r))
		testsupport.WriteJSON(w, http.StatusOK, testsupport.Envelope(map[string]any{
			"access_token": "a2", "token_type": "Bearer", "expires_in": 3600,
		}))
	})

	c, sess, store := newClient(t, api, &models.Tokens{AccessToken: "a1", RefreshToken: "r1"})
	ctx := context.Background()

	var out models.Response[models.User]
	require.NoError(t, c.Get(ctx, "/auth/me", nil, &out))
	assert.Equal(t, "admin", out.Data.Username)

	assert.Equal(t, 2, api.Calls(http.MethodGet, "/auth/me"))
	assert.Equal(t, 1, api.Calls(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, "a2", sess.AccessToken(ctx))

	persisted, err := store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a2", string(persisted))
}

func TestRefreshAcceptsBareResponse(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if testsupport.BearerToken(r) != "a2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		testsupport.WriteJSON(w, http.StatusOK, testsupport.Envelope(map[string]any{}))
	})
	api.Reply(http.MethodPost, "/auth/refresh", http.StatusOK, map[string]any{"access_token": "a2"})

	c, _, _ := newClient(t, api, &models.Tokens{AccessToken: "a1", RefreshToken: "r1"})
	require.NoError(t, c.Get(context.Background(), "/auth/me", nil, nil))
}

func TestNoRefreshTokenExpiresSession(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Reply(http.MethodGet, "/auth/me", http.StatusUnauthorized, testsupport.ExpiredTokenBody())
	api.Reply(http.MethodPost, "/auth/refresh", http.StatusOK, map[string]any{"access_token": "never"})

	var fired atomic.Int32
	c, sess, _ := newClient(t, api, &models.Tokens{AccessToken: "a1"},
		session.OnUnauthenticated(func() { fired.Add(1) }))
	ctx := context.Background()

	err := c.Get(ctx, "/auth/me", nil, nil)
	require.Error(t, err)
	assert.Equal(t, CodeSessionExpired, TextCode(err))
	assert.True(t, IsUnauthorized(err))

	assert.Equal(t, int32(1), fired.Load())
	assert.False(t, sess.Authenticated(ctx))
	assert.Equal(t, 0, api.Calls(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, 1, api.Calls(http.MethodGet, "/auth/me"))
}

func TestRefreshFailureReturnsRefreshError(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Reply(http.MethodGet, "/skills/stats", http.StatusUnauthorized, testsupport.ExpiredTokenBody())
	api.Reply(http.MethodPost, "/auth/refresh", http.StatusUnauthorized,
		testsupport.ErrorBody(http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid refresh token"))

	var fired atomic.Int32
	c, sess, store := newClient(t, api, &models.Tokens{AccessToken: "a1", RefreshToken: "r1"},
		session.OnUnauthenticated(func() { fired.Add(1) }))
	ctx := context.Background()

	err := c.Get(ctx, "/skills/stats", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid refresh token", Message(err))
	assert.Equal(t, "AUTHENTICATION_ERROR", TextCode(err))

	assert.Equal(t, int32(1), fired.Load())
	assert.False(t, sess.Authenticated(ctx))
	_, getErr := store.Get(ctx, session.RefreshTokenKey)
	assert.True(t, storage.IsNotFound(getErr))
	assert.Equal(t, 1, api.Calls(http.MethodGet, "/skills/stats"))
}

func TestReplayIsAttemptedOnce(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Reply(http.MethodGet, "/blog/stats", http.StatusUnauthorized, testsupport.ExpiredTokenBody())
	api.Reply(http.MethodPost, "/auth/refresh", http.StatusOK, testsupport.Envelope(map[string]any{"access_token": "a2"}))

	c, _, _ := newClient(t, api, &models.Tokens{AccessToken: "a1", RefreshToken: "r1"})

	err := c.Get(context.Background(), "/blog/stats", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, 2, api.Calls(http.MethodGet, "/blog/stats"))
	assert.Equal(t, 1, api.Calls(http.MethodPost, "/auth/refresh"))
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/contact/stats", func(w http.ResponseWriter, r *http.Request) {
		if testsupport.BearerToken(r) != "a2" {
			testsupport.WriteJSON(w, http.StatusUnauthorized, testsupport.ExpiredTokenBody())
			return
		}
		testsupport.WriteJSON(w, http.StatusOK, testsupport.Envelope(map[string]any{}))
	})
	api.Handle(http.MethodPost, "/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		testsupport.WriteJSON(w, http.StatusOK, testsupport.Envelope(map[string]any{"access_token": "a2"}))
	})

	c, _, _ := newClient(t, api, &models.Tokens{AccessToken: "a1", RefreshToken: "r1"})

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Get(context.Background(), "/contact/stats", nil, nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, api.Calls(http.MethodPost, "/auth/refresh"))
}

func TestErrorMapping(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Reply(http.MethodGet, "/skills/99", http.StatusNotFound,
		testsupport.ErrorBody(http.StatusNotFound, "NOT_FOUND", "Skill not found"))
	api.Reply(http.MethodPost, "/contact/messages", http.StatusInternalServerError, map[string]any{
		"success": false, "error": "database unavailable", "message": "An error occurred while processing your request",
	})
	api.Reply(http.MethodPut, "/skills/1", http.StatusBadRequest,
		testsupport.ErrorBody(http.StatusBadRequest, "VALIDATION_ERROR", "Proficiency level must be between 1 and 5"))

	c, _, _ := newClient(t, api, nil)
	ctx := context.Background()

	err := c.Get(ctx, "/skills/99", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "NOT_FOUND", TextCode(err))
	assert.Equal(t, "Skill not found", Message(err))
	assert.True(t, goerrors.IsNotFound(err))

	var gerr *goerrors.Error
	require.ErrorAs(t, err, &gerr)
	assert.NotEmpty(t, gerr.RequestID)
	assert.Equal(t, "/skills/99", gerr.Metadata["path"])

	err = c.Post(ctx, "/contact/messages", map[string]string{}, nil)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, "database unavailable", Message(err))
	assert.True(t, goerrors.IsInternal(err))

	err = c.Put(ctx, "/skills/1", map[string]int{"proficiency_level": 9}, nil)
	assert.Equal(t, "VALIDATION_ERROR", TextCode(err))
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestTimeout(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/skills/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})

	c, err := New(Config{BaseURL: api.BaseURL(), Timeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/skills/", nil, nil)
	require.Error(t, err)
	assert.Equal(t, CodeTimeout, TextCode(err))
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
}

func TestTimeoutAppliesToInjectedHTTPClient(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/skills/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(700 * time.Millisecond):
		case <-r.Context().Done():
		}
	})

	c, err := New(Config{BaseURL: api.BaseURL(), Timeout: 100 * time.Millisecond}, nil,
		WithHTTPClient(&http.Client{}))
	require.NoError(t, err)

	start := time.Now()
	err = c.Get(context.Background(), "/skills/", nil, nil)
	require.Error(t, err)
	assert.Equal(t, CodeTimeout, TextCode(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCancelledCallerDoesNotSpoilSharedRefresh(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if testsupport.BearerToken(r) != "a2" {
			testsupport.WriteJSON(w, http.StatusUnauthorized, testsupport.ExpiredTokenBody())
			return
		}
		testsupport.WriteJSON(w, http.StatusOK, testsupport.Envelope(map[string]any{"username": "admin"}))
	})
	api.Handle(http.MethodPost, "/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		testsupport.WriteJSON(w, http.StatusOK, testsupport.Envelope(map[string]any{"access_token": "a2"}))
	})

	var fired atomic.Int32
	c, sess, _ := newClient(t, api, &models.Tokens{AccessToken: "a1", RefreshToken: "r1"},
		session.OnUnauthenticated(func() { fired.Add(1) }))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "/auth/me", nil, nil)
	require.Error(t, err)

	bg := context.Background()
	assert.Eventually(t, func() bool {
		return sess.AccessToken(bg) == "a2"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "r1", sess.RefreshToken(bg))
	assert.Equal(t, int32(0), fired.Load())

	require.NoError(t, c.Get(bg, "/auth/me", nil, nil))
	assert.Equal(t, 1, api.Calls(http.MethodPost, "/auth/refresh"))
}

func TestNetworkError(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second}, nil)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/skills/", nil, nil)
	require.Error(t, err)
	assert.Equal(t, CodeNetwork, TextCode(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestUploadSendsMultipartFile(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodPost, "/upload/image", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		content, _ := io.ReadAll(file)
		assert.Equal(t, "logo.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "PNGDATA", string(content))

		testsupport.WriteJSON(w, http.StatusCreated, map[string]any{
			"filename": "abc_logo.png", "file_url": "/static/uploads/images/abc_logo.png", "file_category": "image",
		})
	})

	c, _, _ := newClient(t, api, &models.Tokens{AccessToken: "a1"})

	var out models.UploadedFile
	require.NoError(t, c.Upload(context.Background(), "/upload/image", "logo.png", "image/png", []byte("PNGDATA"), &out))
	assert.Equal(t, "/static/uploads/images/abc_logo.png", out.FileURL)
}

func TestInvalidJSONResponse(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/skills/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	c, _, _ := newClient(t, api, nil)
	var out models.Response[models.Page[models.Skill]]
	err := c.Get(context.Background(), "/skills/", nil, &out)
	assert.Equal(t, CodeBadResponse, TextCode(err))
}

func TestConfig(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://api.example.com/api/")
	cfg := DefaultConfig()
	assert.Equal(t, "https://api.example.com/api/", cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)

	c, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", c.BaseURL())

	t.Setenv(EnvBaseURL, "")
	assert.Equal(t, DefaultBaseURL, DefaultConfig().BaseURL)

	_, err = New(Config{BaseURL: "::not a url"}, nil)
	assert.Error(t, err)
}
