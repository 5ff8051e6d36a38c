package lazy

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type BundleState int

const (
	BundleIdle BundleState = iota
	BundleLoading
	BundleReady
	BundleFailed
)

func (s BundleState) String() string {
	switch s {
	case BundleIdle:
		return "idle"
	case BundleLoading:
		return "loading"
	case BundleReady:
		return "ready"
	case BundleFailed:
		return "failed"
	}
	return "unknown"
}

// LoadFunc produces the value of a Bundle.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Bundle is a value loaded on first use. Concurrent first calls share one
// load. A successful load is kept for the life of the Bundle; a failed one
// is retried by the next Get.
type Bundle[T any] struct {
	name        string
	load        LoadFunc[T]
	placeholder T
	opts        options

	group singleflight.Group

	mu       sync.RWMutex
	state    BundleState
	value    T
	err      error
	loadedAt time.Time
}

func NewBundle[T any](name string, placeholder T, load LoadFunc[T], opts ...Option) *Bundle[T] {
	return &Bundle[T]{
		name:        name,
		load:        load,
		placeholder: placeholder,
		opts:        buildOptions(opts),
	}
}

func (b *Bundle[T]) Name() string { return b.name }

// Get returns the loaded value, loading it first if needed. The load runs
// detached from ctx cancellation, since other callers may be waiting on it;
// ctx only bounds how long this caller waits.
func (b *Bundle[T]) Get(ctx context.Context) (T, error) {
	b.mu.RLock()
	if b.state == BundleReady {
		v := b.value
		b.mu.RUnlock()
		return v, nil
	}
	b.mu.RUnlock()

	ch := b.group.DoChan(b.name, func() (any, error) {
		return b.run(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return b.placeholder, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return b.placeholder, ctx.Err()
	}
}

// Preload starts the load in the background without waiting for it.
func (b *Bundle[T]) Preload(ctx context.Context) {
	if state, _ := b.State(); state == BundleReady {
		return
	}
	go func() {
		_, _ = b.Get(context.WithoutCancel(ctx))
	}()
}

// Current returns the loaded value, or the placeholder while the Bundle is
// not ready. It never blocks.
func (b *Bundle[T]) Current() (T, BundleState) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.state == BundleReady {
		return b.value, b.state
	}
	return b.placeholder, b.state
}

// State returns the current state and the error of the last failed load.
func (b *Bundle[T]) State() (BundleState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state, b.err
}

func (b *Bundle[T]) LoadedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadedAt
}

func (b *Bundle[T]) run(ctx context.Context) (any, error) {
	// a load may have finished between the fast path and joining the flight
	b.mu.Lock()
	if b.state == BundleReady {
		v := b.value
		b.mu.Unlock()
		return v, nil
	}
	b.state = BundleLoading
	b.err = nil
	b.mu.Unlock()

	start := b.opts.clock.Now()
	value, err := b.load(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.state = BundleFailed
		b.err = err
		b.opts.logger.Warn("bundle load failed", zap.String("bundle", b.name), zap.Error(err))
		return nil, err
	}

	b.state = BundleReady
	b.value = value
	b.loadedAt = b.opts.clock.Now()
	b.opts.logger.Debug("bundle loaded",
		zap.String("bundle", b.name),
		zap.Duration("took", b.loadedAt.Sub(start)),
	)
	return value, nil
}
