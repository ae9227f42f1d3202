package browserfx

// WithNode looks up the node with the given id on the next animation frame,
// so that it observes the result of any render already in flight, then
// succeeds with action's result. A missing node fails the task with a
// *NotFoundError.
func WithNode[T any](id string, action func(node Element) (T, error)) Task[T] {
	return Binding(func(s *Scheduler, r *Resolver[T]) func() {
		return s.RequestAnimationFrame(func() {
			defer func() {
				if v := recover(); v != nil {
					r.Fail(PanicError{Value: v})
				}
			}()
			node, ok := s.host.Document().GetElementByID(id)
			if !ok {
				r.Fail(&NotFoundError{ID: id})
				return
			}
			value, err := action(node)
			if err != nil {
				r.Fail(err)
				return
			}
			r.Succeed(value)
		})
	})
}

// Call invokes the zero-argument method of the node with the given id,
// discarding its result.
func Call(method, id string) Task[Unit] {
	return WithNode(id, func(node Element) (Unit, error) {
		if err := node.Call(method); err != nil {
			return Unit{}, &MethodError{ID: id, Method: method, Cause: err}
		}
		return Unit{}, nil
	})
}

// Focus is Call("focus", id).
func Focus(id string) Task[Unit] { return Call(`focus`, id) }

// Blur is Call("blur", id).
func Blur(id string) Task[Unit] { return Call(`blur`, id) }

// GetScroll reads both scroll offsets of a node.
func GetScroll(id string) Task[Scroll] {
	return WithNode(id, func(node Element) (Scroll, error) {
		return Scroll{
			X: node.ScrollOffset(Horizontal),
			Y: node.ScrollOffset(Vertical),
		}, nil
	})
}

// SetPositiveScroll sets the scroll offset of a node on axis, measured from
// the start of the axis.
func SetPositiveScroll(axis Axis, id string, offset float64) Task[Unit] {
	return WithNode(id, func(node Element) (Unit, error) {
		node.SetScrollOffset(axis, offset)
		return Unit{}, nil
	})
}

// SetNegativeScroll sets the scroll offset of a node on axis, measured back
// from the far end of the axis.
func SetNegativeScroll(axis Axis, id string, offset float64) Task[Unit] {
	return WithNode(id, func(node Element) (Unit, error) {
		node.SetScrollOffset(axis, node.ScrollMax(axis)-offset)
		return Unit{}, nil
	})
}

// GetViewportOf reports the scene and visible viewport of a scrollable node.
func GetViewportOf(id string) Task[Viewport] {
	return WithNode(id, func(node Element) (Viewport, error) {
		return node.Viewport(), nil
	})
}

// SetViewportOf scrolls a node to x, y.
func SetViewportOf(id string, x, y float64) Task[Unit] {
	return WithNode(id, func(node Element) (Unit, error) {
		node.SetScrollOffset(Horizontal, x)
		node.SetScrollOffset(Vertical, y)
		return Unit{}, nil
	})
}
