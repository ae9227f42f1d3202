package headless

import (
	"github.com/joeycumines/go-browserfx"
)

// Event is an event dispatched by a headless [Host].
//
// Event is NOT safe for concurrent access. It should only be used from the
// loop goroutine, during dispatch.
type Event struct {
	data             any
	typ              string
	cancelable       bool
	defaultPrevented bool
	inPassive        bool
}

// listenerEntry pairs a listener with the options it was added with.
type listenerEntry struct {
	listener *browserfx.Listener
	options  browserfx.ListenerOptions
	removed  *bool
}

// eventTarget provides DOM-style event dispatching. It MUST only be used on
// the loop goroutine.
type eventTarget struct {
	host      *Host
	listeners map[string][]listenerEntry
	name      string
}

var _ browserfx.Event = (*Event)(nil)

// NewEvent returns a cancelable event carrying data, which decoders see via
// Data.
func NewEvent(eventType string, data any) *Event {
	return &Event{typ: eventType, data: data, cancelable: true}
}

// NewUncancelableEvent returns an event on which PreventDefault has no effect.
func NewUncancelableEvent(eventType string, data any) *Event {
	return &Event{typ: eventType, data: data}
}

func (e *Event) Type() string { return e.typ }

func (e *Event) Data() any { return e.data }

// PreventDefault marks the event as canceled. It is ignored for events that
// are not cancelable, and while a passive listener is running.
func (e *Event) PreventDefault() {
	if e.cancelable && !e.inPassive {
		e.defaultPrevented = true
	}
}

func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

func newEventTarget(host *Host, name string) eventTarget {
	return eventTarget{
		host:      host,
		listeners: make(map[string][]listenerEntry),
		name:      name,
	}
}

// AddEventListener registers listener for eventType. Registering the same
// listener twice, with the same capture flag, is a no-op.
func (et *eventTarget) AddEventListener(eventType string, listener *browserfx.Listener, options browserfx.ListenerOptions) {
	if listener == nil {
		return
	}
	if !et.host.opts.passive {
		options.Passive = false
	}
	for _, entry := range et.listeners[eventType] {
		if entry.listener == listener && entry.options.Capture == options.Capture {
			return
		}
	}
	et.listeners[eventType] = append(et.listeners[eventType], listenerEntry{
		listener: listener,
		options:  options,
		removed:  new(bool),
	})
	et.host.logger.Trace().
		Str(`target`, et.name).
		Str(`event`, eventType).
		Bool(`passive`, options.Passive).
		Log(`listener added`)
}

// RemoveEventListener removes the listener registered with matching options.
// A mismatch is silently ignored.
func (et *eventTarget) RemoveEventListener(eventType string, listener *browserfx.Listener, options browserfx.ListenerOptions) {
	if listener == nil {
		return
	}
	if !et.host.opts.passive {
		options.Passive = false
	}
	entries := et.listeners[eventType]
	for i, entry := range entries {
		if entry.listener != listener || !et.matches(entry.options, options) {
			continue
		}
		*entry.removed = true
		et.listeners[eventType] = append(entries[:i:i], entries[i+1:]...)
		if len(et.listeners[eventType]) == 0 {
			delete(et.listeners, eventType)
		}
		et.host.logger.Trace().
			Str(`target`, et.name).
			Str(`event`, eventType).
			Log(`listener removed`)
		return
	}
	et.host.logger.Debug().
		Str(`target`, et.name).
		Str(`event`, eventType).
		Log(`listener removal did not match`)
}

func (et *eventTarget) matches(registered, requested browserfx.ListenerOptions) bool {
	if et.host.opts.strictListeners {
		return registered == requested
	}
	return registered.Capture == requested.Capture
}

// DispatchEvent delivers event to every listener registered for its type,
// in registration order. Listeners removed during dispatch are skipped.
// It returns false if the event was canceled.
//
// DispatchEvent must be called on the loop, see [Host.Dispatch] otherwise.
func (et *eventTarget) DispatchEvent(event *Event) bool {
	if event == nil {
		return true
	}
	entries := append([]listenerEntry(nil), et.listeners[event.typ]...)
	for _, entry := range entries {
		if *entry.removed {
			continue
		}
		event.inPassive = entry.options.Passive
		entry.listener.HandleEvent(event)
	}
	event.inPassive = false
	return !event.defaultPrevented
}

// ListenerCount returns the number of listeners for eventType.
func (et *eventTarget) ListenerCount(eventType string) int {
	return len(et.listeners[eventType])
}

// Listeners returns the options of every listener for eventType, in
// registration order.
func (et *eventTarget) Listeners(eventType string) []browserfx.ListenerOptions {
	entries := et.listeners[eventType]
	if len(entries) == 0 {
		return nil
	}
	out := make([]browserfx.ListenerOptions, len(entries))
	for i, entry := range entries {
		out[i] = entry.options
	}
	return out
}

func (et *eventTarget) dispatchEvent(event *Event) bool {
	return et.DispatchEvent(event)
}
