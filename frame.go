package browserfx

import (
	"time"
)

// DefaultFrameInterval is the timer fallback used when the host has no
// animation clock, approximately 60Hz.
const DefaultFrameInterval = time.Second / 60

// RequestAnimationFrame schedules fn for the host's next animation frame,
// falling back to a timer of interval when the host does not implement
// [AnimationFrameRequester].
func RequestAnimationFrame(host Host, interval time.Duration, fn func()) (cancel func()) {
	if r, ok := host.(AnimationFrameRequester); ok {
		return r.RequestAnimationFrame(fn)
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return host.SetTimeout(fn, interval)
}
