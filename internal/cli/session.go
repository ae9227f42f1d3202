package cli

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/go-browserfx/headless"
	"golang.org/x/sync/errgroup"
)

// session runs a headless host configured from a.cfg for as long as drive
// runs. The loop and the driver run on their own goroutines.
func (a *app) session(ctx context.Context, drive func(ctx context.Context, h *headless.Host) error, opts ...headless.Option) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	h, err := headless.New(append([]headless.Option{
		headless.WithLogger(a.logger),
		headless.WithURL(a.cfg.URL),
		headless.WithFrameInterval(a.cfg.FrameInterval),
		headless.WithPassiveSupport(a.cfg.Passive),
		headless.WithStrictURLs(a.cfg.StrictURLs),
	}, opts...)...)
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := h.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stop()
		return drive(gctx, h)
	})
	return g.Wait()
}

// printer is a renderer that reports every successful draw.
type printer struct {
	browserfx.Renderer
	onDraw func(root browserfx.Element)
}

func (x *printer) Apply(root browserfx.Element, prev browserfx.VTree, patch browserfx.Patch, dispatch browserfx.Dispatcher) (browserfx.Element, error) {
	node, err := x.Renderer.Apply(root, prev, patch, dispatch)
	if err == nil && x.onDraw != nil {
		x.onDraw(node)
	}
	return node, err
}

// syncWriter serializes writes from the loop and the driver.
type syncWriter struct {
	w  io.Writer
	mu sync.Mutex
}

func (x *syncWriter) println(s string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, _ = io.WriteString(x.w, s+"\n")
}
