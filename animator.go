package browserfx

// animatorState tracks the animation frame requested by an animator.
type animatorState int

const (
	// noRequest: no frame callback is outstanding.
	noRequest animatorState = iota
	// pendingRequest: one frame callback is outstanding and will draw.
	pendingRequest
	// extraRequest: a synchronous draw happened while a frame was
	// outstanding; the frame draws and requests one more.
	extraRequest
)

func (x animatorState) String() string {
	switch x {
	case noRequest:
		return `no_request`
	case pendingRequest:
		return `pending_request`
	case extraRequest:
		return `extra_request`
	default:
		return `unknown`
	}
}

// animator coalesces model updates into at most one draw per animation
// frame. It is owned by one program and only used on the host loop.
type animator[M any] struct {
	draw    func(model M)
	request func(fn func()) (cancel func())
	cancel  func()
	model   M
	state   animatorState
}

// newAnimator draws model immediately, then waits in noRequest.
func newAnimator[M any](model M, draw func(M), request func(fn func()) (cancel func())) *animator[M] {
	a := &animator[M]{
		draw:    draw,
		request: request,
		model:   model,
		state:   noRequest,
	}
	draw(model)
	return a
}

// notify stores model as the next to draw. A synchronous notify draws
// immediately; otherwise a frame is requested unless one already is.
func (x *animator[M]) notify(model M, sync bool) {
	x.model = model
	if sync {
		x.draw(x.model)
		if x.state == pendingRequest {
			x.state = extraRequest
		}
		return
	}
	if x.state == noRequest {
		x.requestFrame()
		x.state = pendingRequest
	}
}

// frame is the animation frame callback.
func (x *animator[M]) frame() {
	x.cancel = nil
	if x.state == extraRequest {
		x.requestFrame()
		x.draw(x.model)
		x.state = pendingRequest
		return
	}
	x.draw(x.model)
	x.state = noRequest
}

// stop cancels any outstanding frame.
func (x *animator[M]) stop() {
	if x.cancel != nil {
		x.cancel()
		x.cancel = nil
	}
	x.state = noRequest
}

func (x *animator[M]) requestFrame() {
	x.cancel = x.request(x.frame)
}
