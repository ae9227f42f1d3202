package browserfx

import (
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

type (
	// Impl is the implementation bundle of an element or document program.
	Impl[Flags, Model, Msg, View any] struct {
		Init          func(flags Flags) (Model, Cmd[Msg])
		Update        func(msg Msg, model Model) (Model, Cmd[Msg])
		Subscriptions func(model Model) Sub[Msg]
		View          func(model Model) View
	}

	// ApplicationImpl is the implementation bundle of an application
	// program, which owns the whole document and the URL.
	ApplicationImpl[Flags, Model, Msg any] struct {
		Init          func(flags Flags, location *url.URL, key Key) (Model, Cmd[Msg])
		Update        func(msg Msg, model Model) (Model, Cmd[Msg])
		Subscriptions func(model Model) Sub[Msg]
		View          func(model Model) Page
		OnURLChange   func(location *url.URL) Msg
	}

	// Key grants an application program's update function the ability to
	// change the URL while being told about it.
	Key struct {
		changed func()
	}

	// Program is a running application instance.
	//
	// Dispatch, DispatchSync and Stopped may be called from any goroutine.
	// Everything else, including the constructors, must run on the host
	// loop.
	Program[Model, Msg any] struct {
		sched         *Scheduler
		logger        *logiface.Logger[logiface.Event]
		update        func(Msg, Model) (Model, Cmd[Msg])
		subscriptions func(Model) Sub[Msg]
		animator      *animator[Model]
		subs          map[subKey]*activeSub[Msg]
		onStop        []func()
		model         Model
		stopped       atomic.Bool
	}

	activeSub[Msg any] struct {
		process  *Process
		decoders []Decoder[Msg]
	}
)

// RunElement starts a program that renders into root.
func RunElement[Flags, Model, Msg any](
	host Host,
	root Element,
	renderer Renderer,
	impl Impl[Flags, Model, Msg, VTree],
	flags Flags,
	opts ...Option,
) (*Program[Model, Msg], error) {
	if root == nil || renderer == nil {
		return nil, errors.New(`browserfx: element program requires a root and a renderer`)
	}
	if err := validateImpl(impl.Init != nil, impl.Update, impl.View != nil); err != nil {
		return nil, err
	}
	p, err := newProgram(host, impl.Update, impl.Subscriptions, opts)
	if err != nil {
		return nil, err
	}
	model, cmd := impl.Init(flags)
	current := renderer.Virtualize(root)
	p.start(model, cmd, func(model Model) {
		next := impl.View(model)
		node, err := renderer.Apply(root, current, renderer.Diff(current, next), p.dispatchAny)
		if err != nil {
			p.logger.Warning().
				Limit().
				Err(err).
				Log(`render failed`)
			return
		}
		root, current = node, next
	})
	return p, nil
}

// RunDocument starts a program that owns the document body and title.
func RunDocument[Flags, Model, Msg any](
	host Host,
	renderer Renderer,
	impl Impl[Flags, Model, Msg, Page],
	flags Flags,
	opts ...Option,
) (*Program[Model, Msg], error) {
	if renderer == nil {
		return nil, errors.New(`browserfx: document program requires a renderer`)
	}
	if err := validateImpl(impl.Init != nil, impl.Update, impl.View != nil); err != nil {
		return nil, err
	}
	p, err := newProgram(host, impl.Update, impl.Subscriptions, opts)
	if err != nil {
		return nil, err
	}
	model, cmd := impl.Init(flags)
	p.start(model, cmd, documentDraw(p, renderer, impl.View))
	return p, nil
}

// RunApplication starts a document program that also tracks the URL. The
// initial location must parse: a host that reports an unusable location is
// broken, and RunApplication panics with a *URLError.
func RunApplication[Flags, Model, Msg any](
	host Host,
	renderer Renderer,
	impl ApplicationImpl[Flags, Model, Msg],
	flags Flags,
	opts ...Option,
) (*Program[Model, Msg], error) {
	if renderer == nil {
		return nil, errors.New(`browserfx: application program requires a renderer`)
	}
	if err := validateImpl(impl.Init != nil && impl.OnURLChange != nil, impl.Update, impl.View != nil); err != nil {
		return nil, err
	}
	p, err := newProgram(host, impl.Update, impl.Subscriptions, opts)
	if err != nil {
		return nil, err
	}

	location, err := GetURL(host)
	if err != nil {
		panic(err)
	}

	changed := func() {
		u, err := GetURL(host)
		if err != nil {
			p.logger.Err().
				Err(err).
				Log(`url change ignored`)
			return
		}
		p.send(impl.OnURLChange(u), false)
	}
	popstate := Spawn(p.sched, Subscribe(host.Window(), false, `popstate`, func(Event) Task[Unit] {
		return Binding(func(_ *Scheduler, r *Resolver[Unit]) func() {
			changed()
			r.Succeed(Unit{})
			return nil
		})
	}), nil)
	p.onStop = append(p.onStop, popstate.Kill)

	key := Key{changed: func() { p.sched.submit(changed) }}
	model, cmd := impl.Init(flags, location, key)
	p.start(model, cmd, documentDraw(p, renderer, impl.View))
	return p, nil
}

// PushURL is PushState, followed by a URL change message.
func (x Key) PushURL(rawURL string) Task[*url.URL] {
	return x.notifying(PushState(rawURL))
}

// ReplaceURL is ReplaceState, followed by a URL change message.
func (x Key) ReplaceURL(rawURL string) Task[*url.URL] {
	return x.notifying(ReplaceState(rawURL))
}

// Back is Go(-n). Unlike PushURL, the URL change message comes from the
// host's popstate event.
func (x Key) Back(n int) Task[Unit] { return Back(n) }

// Forward is Go(n).
func (x Key) Forward(n int) Task[Unit] { return Forward(n) }

func (x Key) notifying(task Task[*url.URL]) Task[*url.URL] {
	return Map(task, func(u *url.URL) *url.URL {
		if x.changed != nil {
			x.changed()
		}
		return u
	})
}

func documentDraw[Model, Msg any](p *Program[Model, Msg], renderer Renderer, view func(Model) Page) func(Model) {
	doc := p.sched.host.Document()
	body := doc.Body()
	current := renderer.Virtualize(body)
	title := doc.Title()
	return func(model Model) {
		page := view(model)
		next := renderer.Node(`body`, nil, page.Body)
		node, err := renderer.Apply(body, current, renderer.Diff(current, next), p.dispatchAny)
		if err != nil {
			p.logger.Warning().
				Limit().
				Err(err).
				Log(`render failed`)
		} else {
			body, current = node, next
		}
		if page.Title != title {
			doc.SetTitle(page.Title)
			title = page.Title
		}
	}
}

func validateImpl[Msg, Model any](init bool, update func(Msg, Model) (Model, Cmd[Msg]), view bool) error {
	if !init || update == nil || !view {
		return errors.New(`browserfx: incomplete implementation`)
	}
	return nil
}

func newProgram[Model, Msg any](
	host Host,
	update func(Msg, Model) (Model, Cmd[Msg]),
	subscriptions func(Model) Sub[Msg],
	opts []Option,
) (*Program[Model, Msg], error) {
	sched, err := NewScheduler(host, opts...)
	if err != nil {
		return nil, err
	}
	if subscriptions == nil {
		subscriptions = func(Model) Sub[Msg] { return nil }
	}
	return &Program[Model, Msg]{
		sched:         sched,
		logger:        sched.logger,
		update:        update,
		subscriptions: subscriptions,
		subs:          make(map[subKey]*activeSub[Msg]),
	}, nil
}

func (x *Program[Model, Msg]) start(model Model, cmd Cmd[Msg], draw func(Model)) {
	x.model = model
	x.animator = newAnimator(model, draw, x.sched.RequestAnimationFrame)
	x.enqueueEffects(cmd, x.subscriptions(model))
	x.logger.Debug().
		Int(`cmds`, len(cmd)).
		Int(`subs`, len(x.subs)).
		Log(`program started`)
}

// Scheduler returns the scheduler the program runs its tasks on.
func (x *Program[Model, Msg]) Scheduler() *Scheduler {
	return x.sched
}

// Model returns the current model.
func (x *Program[Model, Msg]) Model() Model {
	return x.model
}

// Dispatch queues msg for update on a later loop turn. The resulting model
// is drawn on the next animation frame.
func (x *Program[Model, Msg]) Dispatch(msg Msg) error {
	return x.submit(msg, false)
}

// DispatchSync is Dispatch, except that the resulting model is drawn
// immediately after update instead of on the next frame.
func (x *Program[Model, Msg]) DispatchSync(msg Msg) error {
	return x.submit(msg, true)
}

// Stopped reports whether Stop has been called.
func (x *Program[Model, Msg]) Stopped() bool {
	return x.stopped.Load()
}

// Stop tears the program down: every subscription is cancelled, the
// outstanding frame (if any) is cancelled, and later messages are dropped.
func (x *Program[Model, Msg]) Stop() {
	if !x.stopped.CompareAndSwap(false, true) {
		return
	}
	for k, s := range x.subs {
		s.process.Kill()
		delete(x.subs, k)
	}
	for _, fn := range x.onStop {
		fn()
	}
	x.onStop = nil
	if x.animator != nil {
		x.animator.stop()
	}
	x.logger.Debug().Log(`program stopped`)
}

func (x *Program[Model, Msg]) submit(msg Msg, sync bool) error {
	if x.stopped.Load() {
		return ErrStopped
	}
	return x.sched.host.Submit(func() { x.send(msg, sync) })
}

// send runs one update cycle. It must be called on the loop.
func (x *Program[Model, Msg]) send(msg Msg, sync bool) {
	if x.stopped.Load() {
		return
	}
	model, cmd := x.update(msg, x.model)
	x.model = model
	x.animator.notify(model, sync)
	x.enqueueEffects(cmd, x.subscriptions(model))
}

func (x *Program[Model, Msg]) dispatchAny(msg any, sync bool) {
	m, ok := msg.(Msg)
	if !ok {
		x.logger.Warning().
			Limit().
			Str(`type`, fmt.Sprintf(`%T`, msg)).
			Log(`dropped message of unexpected type`)
		return
	}
	x.send(m, sync)
}

func (x *Program[Model, Msg]) enqueueEffects(cmd Cmd[Msg], sub Sub[Msg]) {
	for _, task := range cmd {
		Spawn(x.sched, task, func(msg Msg, err error) {
			if err != nil {
				x.logger.Err().
					Err(err).
					Log(`command failed`)
				return
			}
			x.send(msg, false)
		})
	}
	x.updateSubs(sub)
}

// updateSubs reconciles the live listeners with sub. Keys that stay keep
// their listener and pick up the new decoders; others are added or removed.
func (x *Program[Model, Msg]) updateSubs(sub Sub[Msg]) {
	next := make(map[subKey][]Decoder[Msg], len(sub))
	var added []subscription[Msg]
	for _, s := range sub {
		k := s.subKey()
		if _, ok := next[k]; !ok {
			if _, live := x.subs[k]; !live {
				added = append(added, s)
			}
		}
		next[k] = append(next[k], s.decoder)
	}

	for k, active := range x.subs {
		if decoders, ok := next[k]; ok {
			active.decoders = decoders
			continue
		}
		active.process.Kill()
		delete(x.subs, k)
	}

	for _, s := range added {
		k := s.subKey()
		active := &activeSub[Msg]{decoders: next[k]}
		target := s.target(x.sched.host)
		active.process = Spawn(x.sched, Subscribe(target, k.passive, k.event, func(event Event) Task[Unit] {
			return x.onEvent(active, event)
		}), nil)
		x.subs[k] = active
	}
}

// onEvent decodes event once per decoder, during dispatch, and returns the
// task that delivers the resulting messages.
func (x *Program[Model, Msg]) onEvent(active *activeSub[Msg], event Event) Task[Unit] {
	var msgs []Msg
	for _, decoder := range active.decoders {
		if msg, ok := Decode(decoder, event); ok {
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return Task[Unit]{}
	}
	return Binding(func(_ *Scheduler, r *Resolver[Unit]) func() {
		for _, msg := range msgs {
			x.send(msg, false)
		}
		r.Succeed(Unit{})
		return nil
	})
}
