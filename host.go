package browserfx

import (
	"time"
)

type (
	// Host is the surrounding execution environment: one event loop plus the
	// DOM, history and location APIs. Implementations are provided by the
	// headless and jshost packages.
	//
	// Every callback a Host invokes (listeners, timers, frames, the functions
	// passed to Submit) MUST run on the host's single loop, one per turn.
	Host interface {
		// Submit queues fn to run on a later turn of the host loop. It is the
		// only method that may be called from outside the loop.
		Submit(fn func()) error

		// SetTimeout runs fn on the loop after delay, returning a function
		// that cancels the timer if it has not yet fired.
		SetTimeout(fn func(), delay time.Duration) (cancel func())

		Window() EventTarget
		Document() Document
		History() History
		Location() Location

		// SupportsPassive reports whether the host honours the passive
		// listener option.
		SupportsPassive() bool
	}

	// AnimationFrameRequester may be implemented by a Host that has a native
	// animation clock. Hosts without it fall back to a timer, see
	// RequestAnimationFrame.
	AnimationFrameRequester interface {
		RequestAnimationFrame(fn func()) (cancel func())
	}

	// EventTarget is any host object that accepts event listeners.
	//
	// RemoveEventListener MUST be called with the same listener pointer and
	// the same options as the matching AddEventListener, or it has no effect.
	EventTarget interface {
		AddEventListener(eventType string, listener *Listener, options ListenerOptions)
		RemoveEventListener(eventType string, listener *Listener, options ListenerOptions)
	}

	// Element is a host node located by identifier.
	Element interface {
		EventTarget

		ID() string

		// Call invokes a zero-argument method of the node, e.g. "focus".
		Call(method string) error

		ScrollOffset(axis Axis) float64
		SetScrollOffset(axis Axis, offset float64)
		// ScrollMax is the largest valid offset on axis (scroll size minus
		// client size).
		ScrollMax(axis Axis) float64

		// Viewport reports the node's scrollable scene and visible area.
		Viewport() Viewport
	}

	Document interface {
		EventTarget

		GetElementByID(id string) (Element, bool)
		Body() Element
		Title() string
		SetTitle(title string)
	}

	History interface {
		PushState(url string) error
		ReplaceState(url string) error
		// Go moves n entries through the session history. Moving past either
		// end is a no-op.
		Go(n int)
	}

	Location interface {
		Href() string
		// Assign performs a full navigation. Some hosts fail on malformed
		// URLs, returning an error wrapping ErrMalformedURL.
		Assign(url string) error
		Reload(skipCache bool)
	}

	// Event is a single host event delivery.
	Event interface {
		Type() string
		// Data is the raw payload decoders inspect.
		Data() any
		PreventDefault()
		DefaultPrevented() bool
	}

	// ListenerOptions mirrors the options bag of addEventListener.
	ListenerOptions struct {
		Capture bool
		Passive bool
	}

	// Listener wraps a handler so it has an identity; hosts match
	// registrations by pointer.
	Listener struct {
		handle func(Event)
	}

	// Axis selects one of the two scroll axes of an Element.
	Axis int

	// Scroll is a pair of scroll offsets.
	Scroll struct {
		X float64
		Y float64
	}

	// Viewport describes the scrollable scene of a node and the visible
	// window into it.
	Viewport struct {
		Scene struct {
			Width  float64
			Height float64
		}
		Viewport struct {
			X      float64
			Y      float64
			Width  float64
			Height float64
		}
	}
)

const (
	Horizontal Axis = iota
	Vertical
)

// NewListener returns a listener calling fn for every event. A nil fn yields
// a nil listener.
func NewListener(fn func(event Event)) *Listener {
	if fn == nil {
		return nil
	}
	return &Listener{handle: fn}
}

// HandleEvent is called by hosts to deliver an event.
func (x *Listener) HandleEvent(event Event) {
	if x != nil && x.handle != nil {
		x.handle(event)
	}
}

func (x Axis) String() string {
	switch x {
	case Horizontal:
		return `horizontal`
	case Vertical:
		return `vertical`
	default:
		return `unknown`
	}
}
