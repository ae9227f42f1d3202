package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/go-browserfx/headless"
	"github.com/spf13/cobra"
)

func newCounterCommand(a *app) *cobra.Command {
	var (
		clicks int
		burst  bool
	)
	cmd := &cobra.Command{
		Use:   `counter`,
		Short: `Click a counter button and print every frame it draws`,
		Long: `counter runs an element program with a single button. Each click
increments the count. With --burst every click lands in the same loop turn,
so all of them are drawn by one frame.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clicks < 0 {
				return fmt.Errorf(`clicks must not be negative, got %d`, clicks)
			}
			return a.runCounter(cmd.Context(), &syncWriter{w: cmd.OutOrStdout()}, clicks, burst)
		},
	}
	cmd.Flags().IntVar(&clicks, `clicks`, 3, `number of clicks`)
	cmd.Flags().BoolVar(&burst, `burst`, false, `click in a single loop turn`)
	return cmd
}

func counterView(count int) browserfx.VTree {
	return headless.El(`body`, nil,
		headless.El(`button`, []headless.Attr{
			headless.A(`id`, `inc`),
			headless.On(`click`, browserfx.Always(1)),
		}, headless.Text(`+`)),
		headless.El(`span`, []headless.Attr{headless.A(`id`, `count`)},
			headless.Text(strconv.Itoa(count))),
	)
}

func (a *app) runCounter(ctx context.Context, out *syncWriter, clicks int, burst bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.session(ctx, func(ctx context.Context, h *headless.Host) error {
		// one entry per draw, holding the count that was drawn
		drawn := make(chan int, clicks+2)
		var draws int
		renderer := &printer{
			Renderer: headless.NewRenderer(h),
			onDraw: func(browserfx.Element) {
				draws++
				text := h.DOM().ElementByID(`count`).Text()
				out.println(a.styles.renderFrame(
					fmt.Sprintf(`frame %d`, h.FrameCount()),
					a.styles.field(`count`, text),
				))
				n, _ := strconv.Atoi(text)
				select {
				case drawn <- n:
				default:
				}
			},
		}

		var program *browserfx.Program[int, int]
		if err := h.Exec(ctx, func() {
			var err error
			program, err = browserfx.RunElement(h, h.DOM().BodyElement(), renderer, browserfx.Impl[struct{}, int, int, browserfx.VTree]{
				Init: func(struct{}) (int, browserfx.Cmd[int]) {
					return 0, nil
				},
				Update: func(delta int, count int) (int, browserfx.Cmd[int]) {
					return count + delta, nil
				},
				View: counterView,
			}, struct{}{}, browserfx.WithLogger(a.logger))
			if err != nil {
				a.logger.Err().Err(err).Log(`counter failed to start`)
			}
		}); err != nil {
			return err
		}
		if program == nil {
			return errors.New(`counter failed to start`)
		}
		defer func() { _ = h.Exec(context.Background(), program.Stop) }()

		click := func() {
			if err := h.DOM().ElementByID(`inc`).Call(`click`); err != nil {
				a.logger.Warning().Err(err).Log(`click failed`)
			}
		}
		wait := func(count int) error {
			for {
				select {
				case <-ctx.Done():
					return fmt.Errorf(`waiting for count %d: %w`, count, ctx.Err())
				case n := <-drawn:
					if n >= count {
						return nil
					}
				}
			}
		}

		if err := wait(0); err != nil {
			return err
		}
		if burst {
			if err := h.Exec(ctx, func() {
				for range clicks {
					click()
				}
			}); err != nil {
				return err
			}
			if clicks != 0 {
				if err := wait(clicks); err != nil {
					return err
				}
			}
		} else {
			for i := 1; i <= clicks; i++ {
				if err := h.Exec(ctx, click); err != nil {
					return err
				}
				if err := wait(i); err != nil {
					return err
				}
			}
		}

		var total int
		if err := h.Exec(ctx, func() { total = draws }); err != nil {
			return err
		}
		out.println(a.styles.ok.Render(`done`) + ` ` +
			a.styles.field(`clicks`, clicks) + ` ` +
			a.styles.field(`draws`, total))
		return nil
	})
}
