package di

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/client"
	"github.com/goliatone/go-portfolio-client/config"
	"github.com/goliatone/go-portfolio-client/lazy"
	"github.com/goliatone/go-portfolio-client/localcache"
	"github.com/goliatone/go-portfolio-client/resourcecache"
	"github.com/goliatone/go-portfolio-client/services"
	"github.com/goliatone/go-portfolio-client/session"
	"github.com/goliatone/go-portfolio-client/storage"
)

// Container wires the portfolio client together: the persisted store and
// the session kept in it, the HTTP client, the query cache and the local
// cache, and the cached resource services built over them.
type Container struct {
	config        config.Config
	logger        *zap.Logger
	clock         clock.Clock
	httpClient    *http.Client
	store         storage.Store
	ownsStore     bool
	session       *session.Session
	client        *client.Client
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	local         *localcache.Cache
	services      *resourcecache.Services
	fetcher       lazy.Fetcher
	dashboard     *lazy.Bundle[resourcecache.Dashboard]

	onUnauthenticated []func()
}

type Option func(*Container)

// WithLogger replaces the logger built from the log section.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithStore replaces the store opened from the local_cache section. The
// container does not close a store it was given.
func WithStore(store storage.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

func WithClock(clk clock.Clock) Option {
	return func(c *Container) {
		c.clock = clk
	}
}

// WithHTTPClient sets the transport shared by the API client and the
// image fetcher.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Container) {
		c.httpClient = hc
	}
}

// WithUnauthenticated registers fn to run when the session is cleared after
// an irrecoverable refresh failure.
func WithUnauthenticated(fn func()) Option {
	return func(c *Container) {
		c.onUnauthenticated = append(c.onUnauthenticated, fn)
	}
}

// NewContainer builds every component described by cfg.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		logger, err := cfg.Logger()
		if err != nil {
			return nil, err
		}
		c.logger = logger
	}
	if c.clock == nil {
		c.clock = clock.New()
	}

	if c.store == nil {
		store, err := cfg.OpenStore(ctx, c.logger.Named("storage"))
		if err != nil {
			return nil, err
		}
		c.store = store
		c.ownsStore = true
	}

	c.session = session.New(c.store,
		session.WithLogger(c.logger.Named("session")),
		session.WithClock(c.clock),
	)
	for _, fn := range c.onUnauthenticated {
		c.session.OnUnauthenticated(fn)
	}

	clientOpts := []client.Option{client.WithLogger(c.logger.Named("client"))}
	if c.httpClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(c.httpClient))
	}
	api, err := client.New(cfg.ClientConfig(), c.session, clientOpts...)
	if err != nil {
		return nil, c.closeOnError(err)
	}
	c.client = api

	c.cacheService, err = cache.NewCacheService(cfg.QueryCacheConfig())
	if err != nil {
		return nil, c.closeOnError(err)
	}
	c.keySerializer = cache.NewDefaultKeySerializer()

	c.local, err = cfg.NewLocalCache(c.store, c.logger.Named("localcache"), c.clock)
	if err != nil {
		return nil, c.closeOnError(err)
	}

	set := services.NewSet(api, c.session, cfg.UploadPolicy())
	c.services = resourcecache.Wrap(set, c.cacheService, resourcecache.Options{
		Local:  c.local,
		Logger: c.logger,
		Keys:   c.keySerializer,
	})

	c.fetcher = lazy.NewHTTPFetcher(c.httpClient)
	c.dashboard = lazy.NewBundle("dashboard", resourcecache.Dashboard{}, c.services.Dashboard,
		lazy.WithLogger(c.logger.Named("lazy")),
		lazy.WithClock(c.clock),
	)

	return c, nil
}

// NewContainerWithDefaults builds a container from config.Load, which reads
// PORTFOLIO_CONFIG and the environment.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return NewContainer(ctx, *cfg, opts...)
}

func (c *Container) Config() config.Config { return c.config }

func (c *Container) Logger() *zap.Logger { return c.logger }

func (c *Container) Store() storage.Store { return c.store }

func (c *Container) Session() *session.Session { return c.session }

func (c *Container) Client() *client.Client { return c.client }

// CacheService returns the query cache shared by every resource service.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

func (c *Container) LocalCache() *localcache.Cache { return c.local }

// Services returns the cached resource services.
func (c *Container) Services() *resourcecache.Services { return c.services }

// Dashboard returns the lazily loaded admin statistics.
func (c *Container) Dashboard() *lazy.Bundle[resourcecache.Dashboard] { return c.dashboard }

// Preload starts loading what the next screen will likely need: the
// critical query families, and the dashboard when a session exists. It
// returns immediately.
func (c *Container) Preload(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := c.services.Warm(ctx); err != nil {
			c.logger.Debug("preload warm failed", zap.Error(err))
		}
	}()
	if c.session.Authenticated(ctx) {
		c.dashboard.Preload(ctx)
	}
}

// Image returns a lazily loaded image for src. Relative sources, such as
// the file_url of an upload, resolve against the API origin. Load results
// are remembered in the local cache.
func (c *Container) Image(src string, params lazy.ImageParams) *lazy.Image {
	return lazy.NewImage(c.ResolveURL(src), c.fetcher, lazy.ImageOptions{
		Params: params,
		Cache:  c.local,
	}, lazy.WithLogger(c.logger.Named("lazy")), lazy.WithClock(c.clock))
}

// ResolveURL makes a server-relative path absolute using the scheme and
// host of the API base URL.
func (c *Container) ResolveURL(src string) string {
	if !strings.HasPrefix(src, "/") || strings.HasPrefix(src, "//") {
		return src
	}
	base, err := url.Parse(c.client.BaseURL())
	if err != nil || base.Host == "" {
		return src
	}
	return base.Scheme + "://" + base.Host + src
}

// Close releases the store opened by the container.
func (c *Container) Close() error {
	var err error
	if c.ownsStore && c.store != nil {
		err = c.store.Close()
	}
	_ = c.logger.Sync()
	return err
}

func (c *Container) closeOnError(err error) error {
	if c.ownsStore && c.store != nil {
		return errors.Join(err, c.store.Close())
	}
	return err
}
