// Package browserfx adapts a callback-driven browser-like host (DOM events,
// history, location, timers, animation frames) to a task and message model.
//
// # Tasks
//
// A [Task] is an inert description of a host action that settles exactly
// once, with a value or an error. Tasks are started by a [Scheduler], via
// [Spawn] or [RawSpawn], and may be cancelled through the returned
// [Process]. Host effects are provided as tasks: navigation ([Go],
// [PushState], [ReplaceState], [Reload], [Load]), DOM queries ([WithNode],
// [Call], [GetScroll], [SetPositiveScroll], [SetNegativeScroll]) and event
// subscriptions ([Subscribe]).
//
// [Reload] and [Load] never settle: the host replaces the running program.
//
// # Programs
//
// [RunElement], [RunDocument] and [RunApplication] start a program from an
// init/update/subscriptions/view bundle. Model updates are drawn through a
// [Renderer], coalesced so that at most one draw is pending per animation
// frame, and always with the most recent model.
//
// # Execution model
//
// Everything runs on the host's single event loop. Only [Host.Submit],
// [Program.Dispatch] and [Program.DispatchSync] may be called from other
// goroutines. The headless package provides a Host backed by
// github.com/joeycumines/go-eventloop, and the jshost package one backed by
// syscall/js.
package browserfx
