// Package jshost implements [browserfx.Host] on top of syscall/js, for
// programs compiled with GOOS=js GOARCH=wasm and run in a browser.
//
// The host loop is the browser's own. Callbacks registered through the host
// run as JS tasks, and JS exceptions raised by host calls are returned as
// errors rather than propagated as panics.
//
//	h, err := jshost.New(jshost.WithLogger(logger))
//	if err != nil {
//		panic(err)
//	}
//	_, _ = browserfx.RunDocument(h, renderer, impl, flags)
//	select {}
package jshost
