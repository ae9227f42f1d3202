package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/go-browserfx/headless"
	"github.com/spf13/cobra"
)

type (
	routeModel struct {
		key     browserfx.Key
		path    string
		changes int
	}

	// routeMsg is one of: navigate to a path, go back, or the URL changed.
	routeMsg struct {
		changed  *url.URL
		navigate string
		back     int
	}
)

func newRouteCommand(a *app) *cobra.Command {
	var back int
	cmd := &cobra.Command{
		Use:   `route [path...]`,
		Short: `Push paths onto the session history of an application program`,
		Long: `route runs an application program, which owns the document and the URL.
Each path is pushed in order, then --back steps back through the history.
The resulting history and page title are printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if back < 0 || back > len(args) {
				return fmt.Errorf(`back must be between 0 and %d, got %d`, len(args), back)
			}
			return a.runRoute(cmd.Context(), &syncWriter{w: cmd.OutOrStdout()}, args, back)
		},
	}
	cmd.Flags().IntVar(&back, `back`, 0, `history entries to go back after pushing`)
	return cmd
}

func routeImpl(changed chan<- string) browserfx.ApplicationImpl[struct{}, routeModel, routeMsg] {
	return browserfx.ApplicationImpl[struct{}, routeModel, routeMsg]{
		Init: func(_ struct{}, location *url.URL, key browserfx.Key) (routeModel, browserfx.Cmd[routeMsg]) {
			return routeModel{key: key, path: location.Path}, nil
		},
		Update: func(msg routeMsg, model routeModel) (routeModel, browserfx.Cmd[routeMsg]) {
			switch {
			case msg.changed != nil:
				model.path = msg.changed.Path
				model.changes++
				select {
				case changed <- model.path:
				default:
				}
				return model, nil
			case msg.navigate != ``:
				return model, browserfx.Exec[*url.URL, routeMsg](model.key.PushURL(msg.navigate))
			case msg.back > 0:
				return model, browserfx.Exec[browserfx.Unit, routeMsg](model.key.Back(msg.back))
			default:
				return model, nil
			}
		},
		View: func(model routeModel) browserfx.Page {
			return browserfx.Page{
				Title: `browserfx ` + model.path,
				Body: []browserfx.VTree{
					headless.El(`h1`, nil, headless.Text(model.path)),
					headless.El(`p`, nil, headless.Text(`changes: `+strconv.Itoa(model.changes))),
				},
			}
		},
		OnURLChange: func(location *url.URL) routeMsg {
			return routeMsg{changed: location}
		},
	}
}

func (a *app) runRoute(ctx context.Context, out *syncWriter, paths []string, back int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.session(ctx, func(ctx context.Context, h *headless.Host) error {
		changed := make(chan string, len(paths)+2)
		renderer := headless.NewRenderer(h)

		var program *browserfx.Program[routeModel, routeMsg]
		if err := h.Exec(ctx, func() {
			var err error
			program, err = browserfx.RunApplication(h, renderer, routeImpl(changed), struct{}{}, browserfx.WithLogger(a.logger))
			if err != nil {
				a.logger.Err().Err(err).Log(`route failed to start`)
			}
		}); err != nil {
			return err
		}
		if program == nil {
			return errors.New(`route failed to start`)
		}
		defer func() { _ = h.Exec(context.Background(), program.Stop) }()

		step := func(msg routeMsg) error {
			if err := program.Dispatch(msg); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf(`waiting for url change: %w`, ctx.Err())
			case path := <-changed:
				out.println(a.styles.field(`url`, path))
				return nil
			}
		}
		for _, path := range paths {
			if err := step(routeMsg{navigate: path}); err != nil {
				return err
			}
		}
		if back > 0 {
			if err := step(routeMsg{back: back}); err != nil {
				return err
			}
		}

		// draw the last change before reading the title
		if err := h.Frame(ctx); err != nil {
			return err
		}

		var (
			entries []string
			index   int
			title   string
		)
		if err := h.Exec(ctx, func() {
			entries = h.SessionHistory().Entries()
			index = h.SessionHistory().Index()
			title = h.DOM().Title()
		}); err != nil {
			return err
		}
		lines := make([]string, 0, len(entries)+1)
		for i, entry := range entries {
			marker := `  `
			if i == index {
				marker = `> `
			}
			lines = append(lines, marker+entry)
		}
		lines = append(lines, a.styles.field(`title`, title))
		out.println(a.styles.renderFrame(`history`, lines...))
		return nil
	})
}
