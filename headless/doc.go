// Package headless implements [browserfx.Host] without a browser.
//
// A [Host] runs an eventloop.Loop from github.com/joeycumines/go-eventloop,
// and holds an HTML document parsed by golang.org/x/net/html, a session
// history, and a location that records page loads instead of performing
// them. Animation frames run on a clock, or on demand with
// [WithManualFrames], which is what most tests want:
//
//	h, _ := headless.New(headless.WithManualFrames())
//	go h.Run(ctx)
//	_ = h.Exec(ctx, func() { /* start a program */ })
//	_ = h.Frame(ctx) // draws
//
// The [Renderer] draws [VNode] trees by replacing the subtree under the
// root on every patch.
package headless
