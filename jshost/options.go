//go:build js && wasm

package jshost

import (
	"github.com/joeycumines/logiface"
)

// hostOptions holds configuration for a [Host] instance.
type hostOptions struct {
	logger *logiface.Logger[logiface.Event]
	// passive overrides feature detection when non-nil.
	passive *bool
}

// Option configures a [Host] instance.
type Option interface {
	applyOption(*hostOptions) error
}

// hostOptionImpl implements [Option] via a closure.
type hostOptionImpl struct {
	fn func(*hostOptions) error
}

func (o *hostOptionImpl) applyOption(opts *hostOptions) error {
	return o.fn(opts)
}

// WithLogger configures the logger. A nil logger (the default) disables
// logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithPassiveSupport skips detection of passive listener support.
func WithPassiveSupport(supported bool) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.passive = &supported
		return nil
	}}
}

func resolveHostOptions(opts []Option) (*hostOptions, error) {
	cfg := &hostOptions{}
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
