package browserfx

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
)

// options holds configuration shared by Scheduler and Program.
type options struct {
	logger        *logiface.Logger[logiface.Event]
	frameFallback time.Duration
}

// Option configures a [Scheduler] or a [Program].
type Option interface {
	applyOption(*options) error
}

// optionImpl implements [Option] via a closure.
type optionImpl struct {
	fn func(*options) error
}

func (o *optionImpl) applyOption(opts *options) error {
	return o.fn(opts)
}

// WithLogger configures the logger. A nil logger (the default) disables
// logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{fn: func(opts *options) error {
		opts.logger = logger
		return nil
	}}
}

// WithFrameFallback sets the timer interval used in place of animation
// frames, for hosts that do not implement [AnimationFrameRequester].
// Defaults to 1/60th of a second.
func WithFrameFallback(interval time.Duration) Option {
	return &optionImpl{fn: func(opts *options) error {
		if interval <= 0 {
			return errors.New(`browserfx: frame fallback interval must be positive`)
		}
		opts.frameFallback = interval
		return nil
	}}
}

// resolveOptions applies Option instances to options.
func resolveOptions(opts []Option) (*options, error) {
	cfg := &options{
		frameFallback: DefaultFrameInterval,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
