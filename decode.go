package browserfx

import (
	"fmt"
)

type (
	// Decoded is a successful decoder result. PreventDefault requests that
	// the host's default behaviour for the event be suppressed.
	Decoded[T any] struct {
		Value          T
		PreventDefault bool
	}

	// Decoder turns a raw host event into a value, or fails if the event is
	// not one it handles.
	Decoder[T any] func(event Event) (Decoded[T], error)
)

// Decode runs decoder against event exactly once. On success it calls
// event.PreventDefault if the decoder asked for it, then returns the value.
// On failure the event is dropped: the result is (zero, false) and the
// event is not touched.
func Decode[T any](decoder Decoder[T], event Event) (T, bool) {
	var zero T
	if decoder == nil {
		return zero, false
	}
	result, err := decoder(event)
	if err != nil {
		return zero, false
	}
	if result.PreventDefault {
		event.PreventDefault()
	}
	return result.Value, true
}

// Always is a decoder that accepts every event.
func Always[T any](value T) Decoder[T] {
	return func(Event) (Decoded[T], error) {
		return Decoded[T]{Value: value}, nil
	}
}

// Data decodes the event payload by type assertion.
func Data[T any]() Decoder[T] {
	return func(event Event) (Decoded[T], error) {
		v, ok := event.Data().(T)
		if !ok {
			return Decoded[T]{}, fmt.Errorf(`browserfx: %s event data is %T, not %T`, event.Type(), event.Data(), v)
		}
		return Decoded[T]{Value: v}, nil
	}
}

// Field decodes a single key of a map[string]any payload.
func Field[T any](key string) Decoder[T] {
	return func(event Event) (Decoded[T], error) {
		m, ok := event.Data().(map[string]any)
		if !ok {
			return Decoded[T]{}, fmt.Errorf(`browserfx: %s event data is %T, not an object`, event.Type(), event.Data())
		}
		raw, ok := m[key]
		if !ok {
			return Decoded[T]{}, fmt.Errorf(`browserfx: %s event has no field %q`, event.Type(), key)
		}
		v, ok := raw.(T)
		if !ok {
			return Decoded[T]{}, fmt.Errorf(`browserfx: %s event field %q is %T, not %T`, event.Type(), key, raw, v)
		}
		return Decoded[T]{Value: v}, nil
	}
}

// MapDecoder transforms the value of a successful decode.
func MapDecoder[A, B any](decoder Decoder[A], fn func(A) B) Decoder[B] {
	return func(event Event) (Decoded[B], error) {
		a, err := decoder(event)
		if err != nil {
			return Decoded[B]{}, err
		}
		return Decoded[B]{Value: fn(a.Value), PreventDefault: a.PreventDefault}, nil
	}
}

// PreventDefault flags every successful decode of decoder as suppressing the
// host default.
func PreventDefault[T any](decoder Decoder[T]) Decoder[T] {
	return func(event Event) (Decoded[T], error) {
		v, err := decoder(event)
		if err != nil {
			return v, err
		}
		v.PreventDefault = true
		return v, nil
	}
}
