package headless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startHost creates a host and runs its loop until the test ends.
func startHost(t *testing.T, opts ...Option) (*Host, context.Context) {
	t.Helper()
	h, err := New(opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	runDone := make(chan error, 1)
	go func() { runDone <- h.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-runDone:
		case <-time.After(5 * time.Second):
			t.Error("loop didn't stop")
		}
	})
	return h, ctx
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithURL(`/relative`))
	assert.Error(t, err)

	_, err = New(WithFrameInterval(0))
	assert.Error(t, err)

	_, err = New(WithHTML(`<!DOCTYPE html><html><body></body></html>`), nil)
	assert.NoError(t, err)
}

func TestHost_SubmitRunsOnLoop(t *testing.T) {
	h, ctx := startHost(t)
	assert.False(t, h.InLoop())

	var inLoop bool
	require.NoError(t, h.Exec(ctx, func() { inLoop = h.InLoop() }))
	assert.True(t, inLoop)
	assert.False(t, h.InLoop())
}

func TestHost_ExecNested(t *testing.T) {
	h, ctx := startHost(t)
	var order []int
	require.NoError(t, h.Exec(ctx, func() {
		order = append(order, 1)
		require.NoError(t, h.Exec(ctx, func() { order = append(order, 2) }))
		order = append(order, 3)
	}))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestHost_SubmitNil(t *testing.T) {
	h, err := New()
	require.NoError(t, err)
	assert.Error(t, h.Submit(nil))
}

func TestHost_SetTimeout(t *testing.T) {
	h, ctx := startHost(t)
	fired := make(chan bool, 1)
	require.NoError(t, h.Exec(ctx, func() {
		h.SetTimeout(func() { fired <- h.InLoop() }, time.Millisecond)
	}))
	select {
	case inLoop := <-fired:
		assert.True(t, inLoop)
	case <-time.After(5 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestHost_SetTimeoutCancel(t *testing.T) {
	h, ctx := startHost(t)
	ctx, stop := context.WithTimeout(ctx, 2*time.Second)
	defer stop()
	fired := make(chan struct{}, 1)
	require.NoError(t, h.Exec(ctx, func() {
		cancel := h.SetTimeout(func() { fired <- struct{}{} }, 5*time.Millisecond)
		cancel()
		cancel()
	}))
	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHost_ManualFrames(t *testing.T) {
	h, ctx := startHost(t, WithManualFrames())

	var calls []string
	require.NoError(t, h.Exec(ctx, func() {
		h.RequestAnimationFrame(func() {
			calls = append(calls, `a`)
			h.RequestAnimationFrame(func() { calls = append(calls, `c`) })
		})
		cancel := h.RequestAnimationFrame(func() { calls = append(calls, `cancelled`) })
		h.RequestAnimationFrame(func() { calls = append(calls, `b`) })
		cancel()
		assert.Equal(t, 2, h.PendingFrames())
	}))
	assert.Empty(t, calls)

	require.NoError(t, h.Frame(ctx))
	assert.Equal(t, []string{`a`, `b`}, calls)

	require.NoError(t, h.Frame(ctx))
	assert.Equal(t, []string{`a`, `b`, `c`}, calls)

	var count uint64
	require.NoError(t, h.Exec(ctx, func() { count = h.FrameCount() }))
	assert.Equal(t, uint64(2), count)
}

func TestHost_FrameClock(t *testing.T) {
	h, ctx := startHost(t, WithFrameInterval(time.Millisecond))
	drawn := make(chan int, 1)
	require.NoError(t, h.Exec(ctx, func() {
		n := 0
		h.RequestAnimationFrame(func() { n++ })
		h.RequestAnimationFrame(func() {
			n++
			drawn <- n
		})
	}))
	select {
	case n := <-drawn:
		assert.Equal(t, 2, n)
	case <-time.After(5 * time.Second):
		t.Fatal("frame never ran")
	}
}

func TestHost_WithoutAnimationFrames(t *testing.T) {
	h, err := New()
	require.NoError(t, err)
	view := h.WithoutAnimationFrames()
	_, ok := view.(interface{ RequestAnimationFrame(func()) func() })
	assert.False(t, ok)
	assert.Same(t, h.DOM(), view.Document())
	assert.True(t, view.SupportsPassive())
}

func TestHost_Dispatch(t *testing.T) {
	h, ctx := startHost(t)
	var got []*Event
	require.NoError(t, h.Exec(ctx, func() {
		h.WindowTarget().AddEventListener(`resize`, listenerFunc(func(e *Event) { got = append(got, e) }), optsNone)
	}))
	ev := NewEvent(`resize`, nil)
	require.NoError(t, h.Dispatch(h.WindowTarget(), ev))
	require.NoError(t, h.Exec(ctx, func() {}))
	require.Len(t, got, 1)
	assert.Same(t, ev, got[0])
}

func TestHost_FrameWithClockArmed(t *testing.T) {
	h, ctx := startHost(t, WithFrameInterval(30*time.Millisecond))

	var calls int
	require.NoError(t, h.Exec(ctx, func() {
		h.RequestAnimationFrame(func() { calls++ })
	}))

	frameCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, h.Frame(frameCtx))

	// the disarmed clock must not run a second frame
	time.Sleep(100 * time.Millisecond)
	var count uint64
	require.NoError(t, h.Exec(frameCtx, func() { count = h.FrameCount() }))
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), count)
}

func TestHost_CancelFrameWithClockArmed(t *testing.T) {
	h, ctx := startHost(t, WithFrameInterval(30*time.Millisecond))

	var cancelFrame func()
	ran := false
	require.NoError(t, h.Exec(ctx, func() {
		cancelFrame = h.RequestAnimationFrame(func() { ran = true })
	}))

	cancelCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, h.Exec(cancelCtx, func() {
		cancelFrame()
		assert.Zero(t, h.PendingFrames())
	}))

	time.Sleep(100 * time.Millisecond)
	var count uint64
	require.NoError(t, h.Exec(cancelCtx, func() { count = h.FrameCount() }))
	assert.False(t, ran)
	assert.Zero(t, count)

	// the clock re-arms for later requests
	drawn := make(chan struct{})
	require.NoError(t, h.Exec(cancelCtx, func() {
		h.RequestAnimationFrame(func() { close(drawn) })
	}))
	select {
	case <-drawn:
	case <-cancelCtx.Done():
		t.Fatal("frame never ran")
	}
}
