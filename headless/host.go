package headless

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
	"github.com/petermattis/goid"
)

type (
	// Host is a [browserfx.Host] without a browser: an eventloop.Loop drives
	// timers and tasks, and the document is an in-memory HTML tree.
	//
	// Only Submit, Dispatch, Exec, Frame, Run and Shutdown may be called from
	// outside the loop. Everything else MUST be called on the loop, e.g. via
	// Exec.
	Host struct {
		loop        *eventloop.Loop
		js          *eventloop.JS
		logger      *logiface.Logger[logiface.Event]
		opts        *hostOptions
		window      *Window
		doc         *Document
		history     *History
		location    *Location
		clock       func()
		frames      []*frameRequest
		navigations []Navigation
		frameCount  uint64
		loopGID     atomic.Int64
	}

	// Window is the global event target, which receives popstate.
	Window struct {
		eventTarget
	}

	// Target is any headless object events can be dispatched to.
	Target interface {
		browserfx.EventTarget
		dispatchEvent(event *Event) bool
	}

	frameRequest struct {
		fn        func()
		cancelled bool
	}

	// timerHost hides [Host.RequestAnimationFrame].
	timerHost struct {
		host *Host
	}
)

var (
	_ browserfx.Host                    = (*Host)(nil)
	_ browserfx.AnimationFrameRequester = (*Host)(nil)
	_ browserfx.Host                    = timerHost{}
	_ Target                            = (*Window)(nil)
	_ Target                            = (*Document)(nil)
	_ Target                            = (*Element)(nil)
)

// New creates a host. It does nothing until Run is called.
func New(opts ...Option) (*Host, error) {
	cfg, err := resolveHostOptions(opts)
	if err != nil {
		return nil, err
	}
	initial, err := url.Parse(cfg.url)
	if err != nil {
		return nil, err
	}

	loop, err := eventloop.New()
	if err != nil {
		return nil, err
	}
	js, err := eventloop.NewJS(loop)
	if err != nil {
		return nil, err
	}

	h := &Host{
		loop:   loop,
		js:     js,
		logger: cfg.logger,
		opts:   cfg,
	}
	h.loopGID.Store(-1)
	h.window = &Window{eventTarget: newEventTarget(h, `window`)}
	h.history = newHistory(h, initial)
	h.location = &Location{host: h}
	if h.doc, err = newDocument(h, cfg.html); err != nil {
		return nil, err
	}
	return h, nil
}

// Run runs the loop until ctx is done or Shutdown is called.
func (h *Host) Run(ctx context.Context) error {
	return h.loop.Run(ctx)
}

// Shutdown stops the loop, after draining queued work.
func (h *Host) Shutdown(ctx context.Context) error {
	return h.loop.Shutdown(ctx)
}

// Submit queues fn to run on a later loop turn.
func (h *Host) Submit(fn func()) error {
	if fn == nil {
		return errors.New(`headless: nil function`)
	}
	return h.loop.Submit(func() {
		h.enter()
		fn()
	})
}

// SetTimeout runs fn on the loop after delay, rounded up to whole
// milliseconds. The returned cancel func must be called on the loop.
func (h *Host) SetTimeout(fn func(), delay time.Duration) func() {
	ms := int((max(delay, 0) + time.Millisecond - 1) / time.Millisecond)
	// JS.ClearTimeout blocks on the loop, so cancel only disarms fn and the
	// timer fires as a no-op.
	var cancelled bool
	_, err := h.js.SetTimeout(func() {
		if cancelled {
			return
		}
		cancelled = true
		h.enter()
		fn()
	}, ms)
	if err != nil {
		h.logger.Warning().
			Err(err).
			Log(`timer rejected`)
		return func() {}
	}
	return func() { cancelled = true }
}

// RequestAnimationFrame queues fn for the next frame. Frames run every frame
// interval, or on Frame with manual frames. Callbacks requested during a
// frame run on the following one.
func (h *Host) RequestAnimationFrame(fn func()) func() {
	req := &frameRequest{fn: fn}
	h.frames = append(h.frames, req)
	if !h.opts.manualFrames && h.clock == nil {
		h.clock = h.SetTimeout(h.runFrame, h.opts.frameInterval)
	}
	return func() {
		if req.cancelled {
			return
		}
		req.cancelled = true
		for i, r := range h.frames {
			if r == req {
				h.frames = append(h.frames[:i:i], h.frames[i+1:]...)
				break
			}
		}
		if len(h.frames) == 0 && h.clock != nil {
			h.clock()
			h.clock = nil
		}
	}
}

func (h *Host) runFrame() {
	// a manual frame disarms the clock, a clocked frame finds it spent
	if h.clock != nil {
		h.clock()
		h.clock = nil
	}
	batch := h.frames
	h.frames = nil
	h.frameCount++
	h.logger.Trace().
		Uint64(`frame`, h.frameCount).
		Int(`callbacks`, len(batch)).
		Log(`animation frame`)
	for _, req := range batch {
		if req.cancelled {
			continue
		}
		req.cancelled = true
		req.fn()
	}
}

// Frame runs one animation frame on the loop and waits for it. It is meant
// for hosts created with WithManualFrames.
func (h *Host) Frame(ctx context.Context) error {
	return h.Exec(ctx, h.runFrame)
}

// PendingFrames returns the number of queued frame callbacks.
func (h *Host) PendingFrames() int { return len(h.frames) }

// FrameCount returns the number of frames run so far.
func (h *Host) FrameCount() uint64 { return h.frameCount }

// Exec runs fn on the loop and waits for it to return. Called on the loop,
// fn runs inline.
func (h *Host) Exec(ctx context.Context, fn func()) error {
	if h.InLoop() {
		fn()
		return nil
	}
	done := make(chan struct{})
	if err := h.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch queues the dispatch of event to target, on its own loop turn.
func (h *Host) Dispatch(target Target, event *Event) error {
	return h.Submit(func() { target.dispatchEvent(event) })
}

// InLoop reports whether the caller is running on the loop goroutine.
func (h *Host) InLoop() bool {
	return h.loopGID.Load() == goid.Get()
}

func (h *Host) enter() {
	h.loopGID.Store(goid.Get())
}

func (h *Host) Window() browserfx.EventTarget { return h.window }

// WindowTarget is Window returning the concrete type.
func (h *Host) WindowTarget() *Window { return h.window }

func (h *Host) Document() browserfx.Document { return h.doc }

// DOM is Document returning the concrete type.
func (h *Host) DOM() *Document { return h.doc }

func (h *Host) History() browserfx.History { return h.history }

// SessionHistory is History returning the concrete type.
func (h *Host) SessionHistory() *History { return h.history }

func (h *Host) Location() browserfx.Location { return h.location }

func (h *Host) SupportsPassive() bool { return h.opts.passive }

// Navigations returns every page load requested so far.
func (h *Host) Navigations() []Navigation {
	return append([]Navigation(nil), h.navigations...)
}

func (h *Host) navigate(nav Navigation) {
	h.navigations = append(h.navigations, nav)
	h.logger.Info().
		Str(`kind`, nav.Kind.String()).
		Str(`url`, nav.URL).
		Bool(`skip_cache`, nav.SkipCache).
		Log(`navigation`)
	if h.opts.onNavigate != nil {
		h.opts.onNavigate(nav)
	}
}

// WithoutAnimationFrames returns a view of h that lacks a native animation
// clock, so frame requests fall back to timers.
func (h *Host) WithoutAnimationFrames() browserfx.Host { return timerHost{host: h} }

func (x timerHost) Submit(fn func()) error { return x.host.Submit(fn) }

func (x timerHost) SetTimeout(fn func(), delay time.Duration) func() {
	return x.host.SetTimeout(fn, delay)
}

func (x timerHost) Window() browserfx.EventTarget { return x.host.Window() }

func (x timerHost) Document() browserfx.Document { return x.host.Document() }

func (x timerHost) History() browserfx.History { return x.host.History() }

func (x timerHost) Location() browserfx.Location { return x.host.Location() }

func (x timerHost) SupportsPassive() bool { return x.host.SupportsPassive() }
