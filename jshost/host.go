//go:build js && wasm

package jshost

import (
	"errors"
	"fmt"
	"syscall/js"
	"time"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/logiface"
)

type (
	// Host is a [browserfx.Host] backed by the global window of the page.
	Host struct {
		logger   *logiface.Logger[logiface.Event]
		window   *Target
		doc      *Document
		history  *History
		location *Location
		global   js.Value
		passive  bool
		raf      bool
	}

	// History wraps window.history.
	History struct {
		value js.Value
	}

	// Location wraps window.location.
	Location struct {
		value js.Value
	}
)

var (
	_ browserfx.Host                    = (*Host)(nil)
	_ browserfx.AnimationFrameRequester = (*Host)(nil)
)

// New binds to the global window. It fails if there is no document, e.g.
// when running under node.
func New(opts ...Option) (*Host, error) {
	cfg, err := resolveHostOptions(opts)
	if err != nil {
		return nil, err
	}
	global := js.Global()
	document := global.Get(`document`)
	if document.IsUndefined() || document.IsNull() {
		return nil, errors.New(`jshost: no document`)
	}

	h := &Host{
		logger:   cfg.logger,
		global:   global,
		history:  &History{value: global.Get(`history`)},
		location: &Location{value: global.Get(`location`)},
		raf:      global.Get(`requestAnimationFrame`).Type() == js.TypeFunction,
	}
	if cfg.passive != nil {
		h.passive = *cfg.passive
	} else {
		h.passive = detectPassive(global)
	}
	h.window = newTarget(h, global)
	h.doc = &Document{Target: newTarget(h, document)}

	h.logger.Debug().
		Bool(`passive`, h.passive).
		Bool(`raf`, h.raf).
		Log(`host bound`)
	return h, nil
}

// detectPassive registers a throwaway listener with an options object whose
// passive property records being read. Browsers that understand the options
// bag read it.
func detectPassive(global js.Value) (supported bool) {
	getter := js.FuncOf(func(js.Value, []js.Value) any {
		supported = true
		return false
	})
	defer getter.Release()
	noop := js.FuncOf(func(js.Value, []js.Value) any { return nil })
	defer noop.Release()

	options := global.Get(`Object`).New()
	descriptor := global.Get(`Object`).New()
	descriptor.Set(`get`, getter)
	global.Get(`Object`).Call(`defineProperty`, options, `passive`, descriptor)

	if err := try(func() {
		global.Call(`addEventListener`, `browserfx-passive-test`, noop, options)
		global.Call(`removeEventListener`, `browserfx-passive-test`, noop, options)
	}); err != nil {
		return false
	}
	return supported
}

// Submit runs fn on a later JS task. Unlike the other methods it may be
// called from any goroutine.
func (h *Host) Submit(fn func()) error {
	if fn == nil {
		return errors.New(`jshost: nil function`)
	}
	h.SetTimeout(fn, 0)
	return nil
}

// SetTimeout wraps window.setTimeout, rounding delay up to whole
// milliseconds.
func (h *Host) SetTimeout(fn func(), delay time.Duration) func() {
	var cb js.Func
	done := false
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		done = true
		cb.Release()
		fn()
		return nil
	})
	id := h.global.Call(`setTimeout`, cb, milliseconds(delay))
	return func() {
		if done {
			return
		}
		done = true
		h.global.Call(`clearTimeout`, id)
		cb.Release()
	}
}

// RequestAnimationFrame wraps window.requestAnimationFrame, or a timer of
// [browserfx.DefaultFrameInterval] where the page has none.
func (h *Host) RequestAnimationFrame(fn func()) func() {
	if !h.raf {
		return h.SetTimeout(fn, browserfx.DefaultFrameInterval)
	}
	var cb js.Func
	done := false
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		done = true
		cb.Release()
		fn()
		return nil
	})
	id := h.global.Call(`requestAnimationFrame`, cb)
	return func() {
		if done {
			return
		}
		done = true
		h.global.Call(`cancelAnimationFrame`, id)
		cb.Release()
	}
}

func (h *Host) Window() browserfx.EventTarget { return h.window }

func (h *Host) Document() browserfx.Document { return h.doc }

func (h *Host) History() browserfx.History { return h.history }

func (h *Host) Location() browserfx.Location { return h.location }

func (h *Host) SupportsPassive() bool { return h.passive }

// PushState calls history.pushState. Browsers throw on cross-origin or
// unparseable URLs; the exception is returned.
func (x *History) PushState(url string) error {
	return try(func() { x.value.Call(`pushState`, js.Null(), ``, url) })
}

// ReplaceState calls history.replaceState.
func (x *History) ReplaceState(url string) error {
	return try(func() { x.value.Call(`replaceState`, js.Null(), ``, url) })
}

func (x *History) Go(n int) { x.value.Call(`go`, n) }

func (x *Location) Href() string { return x.value.Get(`href`).String() }

// Assign calls location.assign. A thrown exception (some browsers throw
// SyntaxError on malformed URLs) is returned as a *browserfx.URLError.
func (x *Location) Assign(url string) error {
	if err := try(func() { x.value.Call(`assign`, url) }); err != nil {
		return &browserfx.URLError{URL: url, Cause: fmt.Errorf(`%w: %w`, browserfx.ErrMalformedURL, err)}
	}
	return nil
}

// Reload calls location.reload. The skipCache argument is only honoured by
// browsers that still accept it.
func (x *Location) Reload(skipCache bool) { x.value.Call(`reload`, skipCache) }

// try runs fn, converting a thrown JS exception into an error.
func try(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(js.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

func milliseconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}
