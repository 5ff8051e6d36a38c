package lazy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-portfolio-client/localcache"
)

type ImageState int

const (
	ImageUnobserved ImageState = iota
	ImageObservedPending
	ImageLoaded
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImageUnobserved:
		return "unobserved"
	case ImageObservedPending:
		return "pending"
	case ImageLoaded:
		return "loaded"
	case ImageFailed:
		return "failed"
	}
	return "unknown"
}

const (
	DefaultThreshold   = 0.1
	PlaceholderText    = "Loading..."
	FallbackText       = "Failed to load"
	DefaultImageTTL    = 30 * time.Minute
	imageCachePrefix   = "image_"
	sniffLimit         = 3072
	TextCodeNotAnImage = "NOT_AN_IMAGE"
)

// ImageResult describes a fetched image.
type ImageResult struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Fetcher retrieves an image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (ImageResult, error)
}

type FetcherFunc func(ctx context.Context, url string) (ImageResult, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (ImageResult, error) {
	return f(ctx, url)
}

// HTTPFetcher downloads images over HTTP and checks that the body sniffs
// as an image.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(hc *http.Client) *HTTPFetcher {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{Client: hc}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (ImageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ImageResult{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid image url").
			WithMetadata(map[string]any{"url": url})
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return ImageResult{}, goerrors.Wrap(err, goerrors.CategoryExternal, "image request failed").
			WithMetadata(map[string]any{"url": url})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ImageResult{}, goerrors.New(fmt.Sprintf("image request returned %d", resp.StatusCode),
			goerrors.HTTPStatusToCategory(resp.StatusCode)).
			WithCode(resp.StatusCode).
			WithMetadata(map[string]any{"url": url})
	}

	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ImageResult{}, goerrors.Wrap(err, goerrors.CategoryExternal, "read image body").
			WithMetadata(map[string]any{"url": url})
	}
	head = head[:n]

	rest, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return ImageResult{}, goerrors.Wrap(err, goerrors.CategoryExternal, "read image body").
			WithMetadata(map[string]any{"url": url})
	}

	mtype := mimetype.Detect(head)
	if !isImage(mtype) {
		return ImageResult{}, goerrors.New("response is not an image", goerrors.CategoryBadInput).
			WithTextCode(TextCodeNotAnImage).
			WithMetadata(map[string]any{"url": url, "content_type": mtype.String()})
	}

	return ImageResult{
		URL:         url,
		ContentType: mtype.String(),
		Size:        int64(n) + rest,
	}, nil
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// ImageOptions configures an Image.
type ImageOptions struct {
	Params    ImageParams
	Threshold float64
	// Cache remembers successful loads so the same source resolves
	// without fetching again.
	Cache    *localcache.Cache
	CacheTTL time.Duration
	OnLoad   func(ImageResult)
	OnError  func(error)
}

// Image defers fetching its source until it first becomes visible.
//
// Visibility is reported with Intersect. The first report at or above the
// threshold moves the image from Unobserved to ObservedPending, detaches
// the observer and starts the fetch; every later report is ignored. The
// fetch settles the image in Loaded or Failed.
type Image struct {
	src     string
	fetcher Fetcher
	cfg     ImageOptions
	opts    options

	mu       sync.RWMutex
	state    ImageState
	observed bool
	result   ImageResult
	err      error
	done     chan struct{}
}

func NewImage(src string, fetcher Fetcher, cfg ImageOptions, opts ...Option) *Image {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultImageTTL
	}
	if cfg.Params == (ImageParams{}) {
		cfg.Params = DefaultImageParams()
	}
	return &Image{
		src:     OptimizeURL(src, cfg.Params),
		fetcher: fetcher,
		cfg:     cfg,
		opts:    buildOptions(opts),
		done:    make(chan struct{}),
	}
}

// Src is the optimized source URL.
func (i *Image) Src() string { return i.src }

func (i *Image) State() ImageState {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// Observing reports whether the image still listens for visibility.
func (i *Image) Observing() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return !i.observed
}

// Intersect reports the visible ratio of the image. It returns true when
// this call triggered the load.
func (i *Image) Intersect(ctx context.Context, ratio float64) bool {
	if ratio < i.cfg.Threshold {
		return false
	}

	i.mu.Lock()
	if i.observed {
		i.mu.Unlock()
		return false
	}
	i.observed = true
	i.state = ImageObservedPending
	i.mu.Unlock()

	if i.src == "" {
		i.settle(ImageResult{}, goerrors.New("image has no source", goerrors.CategoryBadInput))
		return true
	}

	if cached, ok := i.cached(ctx); ok {
		i.settle(cached, nil)
		return true
	}

	go func() {
		result, err := i.fetcher.Fetch(context.WithoutCancel(ctx), i.src)
		if err == nil {
			if result.URL == "" {
				result.URL = i.src
			}
			result.LoadedAt = i.opts.clock.Now()
			i.remember(ctx, result)
		}
		i.settle(result, err)
	}()
	return true
}

// Wait blocks until the image settles or ctx is done.
func (i *Image) Wait(ctx context.Context) (ImageResult, error) {
	select {
	case <-i.done:
		i.mu.RLock()
		defer i.mu.RUnlock()
		return i.result, i.err
	case <-ctx.Done():
		return ImageResult{}, ctx.Err()
	}
}

// Display returns what should be shown for the current state: the
// placeholder text, the source URL, or the fallback text.
func (i *Image) Display() string {
	switch i.State() {
	case ImageLoaded:
		return i.src
	case ImageFailed:
		return FallbackText
	default:
		return PlaceholderText
	}
}

func (i *Image) settle(result ImageResult, err error) {
	i.mu.Lock()
	if err != nil {
		i.state = ImageFailed
		i.err = err
	} else {
		i.state = ImageLoaded
		i.result = result
	}
	i.mu.Unlock()
	defer close(i.done)

	if err != nil {
		i.opts.logger.Debug("image load failed", zap.String("src", i.src), zap.Error(err))
		if i.cfg.OnError != nil {
			i.cfg.OnError(err)
		}
		return
	}
	if i.cfg.OnLoad != nil {
		i.cfg.OnLoad(result)
	}
}

func (i *Image) cached(ctx context.Context) (ImageResult, bool) {
	if i.cfg.Cache == nil {
		return ImageResult{}, false
	}
	return localcache.GetAs[ImageResult](ctx, i.cfg.Cache, imageCachePrefix+i.src)
}

func (i *Image) remember(ctx context.Context, result ImageResult) {
	if i.cfg.Cache == nil {
		return
	}
	if err := i.cfg.Cache.Set(ctx, imageCachePrefix+i.src, result, i.cfg.CacheTTL); err != nil {
		i.opts.logger.Debug("image result not cached", zap.String("src", i.src), zap.Error(err))
	}
}
