//go:build js && wasm

package jshost

import (
	"fmt"
	"syscall/js"

	"github.com/joeycumines/go-browserfx"
)

type (
	// Target wraps any JS EventTarget.
	Target struct {
		host      *Host
		value     js.Value
		listeners map[listenerKey]js.Func
	}

	listenerKey struct {
		listener  *browserfx.Listener
		eventType string
		capture   bool
	}

	// Document wraps window.document.
	Document struct {
		*Target
	}

	// Element wraps a DOM element.
	Element struct {
		*Target
	}

	// Event wraps a JS event. Data returns the underlying js.Value.
	Event struct {
		value js.Value
	}
)

var (
	_ browserfx.Document = (*Document)(nil)
	_ browserfx.Element  = (*Element)(nil)
	_ browserfx.Event    = Event{}
)

func newTarget(h *Host, value js.Value) *Target {
	return &Target{
		host:      h,
		value:     value,
		listeners: make(map[listenerKey]js.Func),
	}
}

// Value returns the wrapped JS object.
func (x *Target) Value() js.Value { return x.value }

// AddEventListener registers listener. Registering the same listener for
// the same type and capture phase twice is a no-op, as in the browser.
func (x *Target) AddEventListener(eventType string, listener *browserfx.Listener, options browserfx.ListenerOptions) {
	if listener == nil {
		return
	}
	k := listenerKey{listener: listener, eventType: eventType, capture: options.Capture}
	if _, ok := x.listeners[k]; ok {
		return
	}
	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) != 0 {
			listener.HandleEvent(Event{value: args[0]})
		}
		return nil
	})
	x.listeners[k] = fn
	x.value.Call(`addEventListener`, eventType, fn, x.options(options))
	x.host.logger.Trace().
		Str(`event`, eventType).
		Bool(`passive`, options.Passive).
		Log(`listener added`)
}

// RemoveEventListener removes a listener registered with the same type and
// capture phase.
func (x *Target) RemoveEventListener(eventType string, listener *browserfx.Listener, options browserfx.ListenerOptions) {
	k := listenerKey{listener: listener, eventType: eventType, capture: options.Capture}
	fn, ok := x.listeners[k]
	if !ok {
		return
	}
	delete(x.listeners, k)
	x.value.Call(`removeEventListener`, eventType, fn, x.options(options))
	fn.Release()
}

// options builds the third argument of add/removeEventListener. Hosts
// without the options bag take the capture flag instead.
func (x *Target) options(options browserfx.ListenerOptions) any {
	if !x.host.passive {
		return options.Capture
	}
	return map[string]any{
		`capture`: options.Capture,
		`passive`: options.Passive,
	}
}

func (x *Document) GetElementByID(id string) (browserfx.Element, bool) {
	v := x.value.Call(`getElementById`, id)
	if v.IsNull() || v.IsUndefined() {
		return nil, false
	}
	return &Element{Target: newTarget(x.host, v)}, true
}

func (x *Document) Body() browserfx.Element {
	return &Element{Target: newTarget(x.host, x.value.Get(`body`))}
}

func (x *Document) Title() string { return x.value.Get(`title`).String() }

func (x *Document) SetTitle(title string) { x.value.Set(`title`, title) }

func (x *Element) ID() string { return x.value.Get(`id`).String() }

// Call invokes a zero-argument method of the element. Names that are not
// functions fail with [browserfx.ErrUnsupportedMethod].
func (x *Element) Call(method string) error {
	if x.value.Get(method).Type() != js.TypeFunction {
		return fmt.Errorf(`%w: %s`, browserfx.ErrUnsupportedMethod, method)
	}
	return try(func() { x.value.Call(method) })
}

func (x *Element) ScrollOffset(axis browserfx.Axis) float64 {
	switch axis {
	case browserfx.Horizontal:
		return x.value.Get(`scrollLeft`).Float()
	case browserfx.Vertical:
		return x.value.Get(`scrollTop`).Float()
	default:
		return 0
	}
}

func (x *Element) SetScrollOffset(axis browserfx.Axis, offset float64) {
	switch axis {
	case browserfx.Horizontal:
		x.value.Set(`scrollLeft`, offset)
	case browserfx.Vertical:
		x.value.Set(`scrollTop`, offset)
	}
}

func (x *Element) ScrollMax(axis browserfx.Axis) float64 {
	switch axis {
	case browserfx.Horizontal:
		return x.value.Get(`scrollWidth`).Float() - x.value.Get(`clientWidth`).Float()
	case browserfx.Vertical:
		return x.value.Get(`scrollHeight`).Float() - x.value.Get(`clientHeight`).Float()
	default:
		return 0
	}
}

func (x *Element) Viewport() browserfx.Viewport {
	var v browserfx.Viewport
	v.Scene.Width = x.value.Get(`scrollWidth`).Float()
	v.Scene.Height = x.value.Get(`scrollHeight`).Float()
	v.Viewport.X = x.value.Get(`scrollLeft`).Float()
	v.Viewport.Y = x.value.Get(`scrollTop`).Float()
	v.Viewport.Width = x.value.Get(`clientWidth`).Float()
	v.Viewport.Height = x.value.Get(`clientHeight`).Float()
	return v
}

func (x Event) Type() string { return x.value.Get(`type`).String() }

func (x Event) Data() any { return x.value }

func (x Event) PreventDefault() { x.value.Call(`preventDefault`) }

func (x Event) DefaultPrevented() bool { return x.value.Get(`defaultPrevented`).Bool() }
