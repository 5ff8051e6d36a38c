// Package lazy defers expensive work until it is first needed.
//
// A Bundle runs its loader on the first Get and hands out a placeholder
// until the load completes. An Image starts fetching its source only after
// it is first reported visible, then settles in Loaded or Failed.
package lazy

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

type options struct {
	logger *zap.Logger
	clock  clock.Clock
}

// Option configures a Bundle or an Image.
type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
