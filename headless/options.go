package headless

import (
	"errors"
	"net/url"
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// DefaultURL is the initial location of a Host.
	DefaultURL = `http://localhost/`

	// DefaultHTML is the initial document of a Host.
	DefaultHTML = `<!DOCTYPE html><html><head><title></title></head><body></body></html>`
)

// hostOptions holds configuration for a [Host] instance.
type hostOptions struct {
	logger          *logiface.Logger[logiface.Event]
	onNavigate      func(Navigation)
	html            string
	url             string
	frameInterval   time.Duration
	passive         bool
	manualFrames    bool
	strictURLs      bool
	strictListeners bool
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

// WithHTML sets the initial document. Elements may declare scroll geometry
// with the data-scroll-width, data-scroll-height, data-client-width and
// data-client-height attributes.
func WithHTML(src string) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.html = src
		return nil
	}}
}

// WithURL sets the initial location, which must be absolute.
func WithURL(rawURL string) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return err
		}
		if !u.IsAbs() {
			return errors.New(`headless: initial url must be absolute`)
		}
		opts.url = rawURL
		return nil
	}}
}

// WithPassiveSupport sets whether the host honours passive listeners.
// Defaults to true.
func WithPassiveSupport(enabled bool) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.passive = enabled
		return nil
	}}
}

// WithManualFrames disables the frame clock: animation frames only run
// when [Host.Frame] is called.
func WithManualFrames() Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.manualFrames = true
		return nil
	}}
}

// WithFrameInterval sets the period of the frame clock. Defaults to
// 1/60th of a second.
func WithFrameInterval(interval time.Duration) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		if interval <= 0 {
			return errors.New(`headless: frame interval must be positive`)
		}
		opts.frameInterval = interval
		return nil
	}}
}

// WithStrictURLs makes Location.Assign fail on URLs that do not parse,
// like some browsers do. Otherwise such URLs are navigated to verbatim.
func WithStrictURLs(enabled bool) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.strictURLs = enabled
		return nil
	}}
}

// WithStrictListeners makes listener removal match on every option
// (capture and passive), rather than capture alone, modelling hosts where
// a mismatched removal silently does nothing. Defaults to true.
func WithStrictListeners(enabled bool) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.strictListeners = enabled
		return nil
	}}
}

// WithNavigationHandler is called whenever the page would be unloaded, by
// Location.Assign or Location.Reload.
func WithNavigationHandler(fn func(Navigation)) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.onNavigate = fn
		return nil
	}}
}

// WithLogger configures the logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &hostOptionImpl{fn: func(opts *hostOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveHostOptions applies Option instances to hostOptions.
func resolveHostOptions(opts []Option) (*hostOptions, error) {
	cfg := &hostOptions{
		html:            DefaultHTML,
		url:             DefaultURL,
		frameInterval:   time.Second / 60,
		passive:         true,
		strictListeners: true,
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
