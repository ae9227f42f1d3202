package browserfx_test

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/go-browserfx/headless"
	"github.com/stretchr/testify/require"
)

type result[T any] struct {
	value T
	err   error
}

// startHost runs a manual-frame headless host until the test ends.
func startHost(t *testing.T, opts ...headless.Option) (*headless.Host, context.Context) {
	t.Helper()
	return startClockedHost(t, append([]headless.Option{headless.WithManualFrames()}, opts...)...)
}

// startClockedHost is startHost, with frames run by the host's clock.
func startClockedHost(t *testing.T, opts ...headless.Option) (*headless.Host, context.Context) {
	t.Helper()
	h, err := headless.New(opts...)
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

func newScheduler(t *testing.T, host browserfx.Host, opts ...browserfx.Option) *browserfx.Scheduler {
	t.Helper()
	s, err := browserfx.NewScheduler(host, opts...)
	require.NoError(t, err)
	return s
}

// spawn starts task, delivering its result to the returned channel.
func spawn[T any](s *browserfx.Scheduler, task browserfx.Task[T]) (*browserfx.Process, <-chan result[T]) {
	ch := make(chan result[T], 1)
	p := browserfx.Spawn(s, task, func(value T, err error) {
		ch <- result[T]{value, err}
	})
	return p, ch
}

func await[T any](t *testing.T, ctx context.Context, ch <-chan result[T]) result[T] {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		t.Fatal("task never settled")
		panic(`unreachable`)
	}
}

// run spawns task and waits for its result.
func run[T any](t *testing.T, ctx context.Context, s *browserfx.Scheduler, task browserfx.Task[T]) result[T] {
	t.Helper()
	_, ch := spawn(s, task)
	return await(t, ctx, ch)
}

// settle runs task to completion, running one frame if it needs one.
func settle[T any](t *testing.T, ctx context.Context, h *headless.Host, s *browserfx.Scheduler, task browserfx.Task[T]) result[T] {
	t.Helper()
	_, ch := spawn(s, task)
	require.NoError(t, h.Exec(ctx, func() {}))
	require.NoError(t, h.Frame(ctx))
	return await(t, ctx, ch)
}

// idle waits for the turns queued so far, and the chains of turns they
// queue, such as spawn then settle then callback.
func idle(t *testing.T, ctx context.Context, h *headless.Host) {
	t.Helper()
	for range 6 {
		require.NoError(t, h.Exec(ctx, func() {}))
	}
}

func assertNoResult[T any](t *testing.T, ch <-chan result[T]) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("unexpected result: %+v", r)
	default:
	}
}
