package browserfx

type (
	// Cmd is a batch of tasks whose results are fed back to a program as
	// messages.
	Cmd[Msg any] []Task[Msg]

	// Sub is a set of event subscriptions a program keeps alive for as long
	// as its Subscriptions function keeps returning them.
	Sub[Msg any] []subscription[Msg]

	subscription[Msg any] struct {
		target  func(host Host) EventTarget
		key     any
		decoder Decoder[Msg]
		event   string
		passive bool
	}

	// subKey identifies one listener registration. Subscriptions that share
	// a key share the listener.
	subKey struct {
		target  any
		event   string
		passive bool
	}

	// namedTarget keys the host-global targets.
	namedTarget string
)

const (
	documentTarget namedTarget = `document`
	windowTarget   namedTarget = `window`
)

// None is the empty command.
func None[Msg any]() Cmd[Msg] { return nil }

// Batch merges commands.
func Batch[Msg any](cmds ...Cmd[Msg]) Cmd[Msg] {
	var n int
	for _, c := range cmds {
		n += len(c)
	}
	if n == 0 {
		return nil
	}
	out := make(Cmd[Msg], 0, n)
	for _, c := range cmds {
		out = append(out, c...)
	}
	return out
}

// Perform runs task, converting its value to a message. Failures are
// logged and produce no message; use Attempt to observe them.
func Perform[T, Msg any](task Task[T], toMsg func(T) Msg) Cmd[Msg] {
	return Cmd[Msg]{Map(task, toMsg)}
}

// Attempt runs task, converting its outcome (value or error) to a message.
func Attempt[T, Msg any](task Task[T], toMsg func(T, error) Msg) Cmd[Msg] {
	return Cmd[Msg]{chain(task, func(v T, err error) Task[Msg] {
		return Succeed(toMsg(v, err))
	})}
}

// Exec runs a task that is never expected to produce a message, such as
// Load or Reload.
func Exec[T, Msg any](task Task[T]) Cmd[Msg] {
	return Cmd[Msg]{chain(task, func(_ T, err error) Task[Msg] {
		if err != nil {
			return Fail[Msg](err)
		}
		return Task[Msg]{}
	})}
}

// On subscribes to eventName on target, which must be comparable (hosts
// hand out pointers).
func On[Msg any](target EventTarget, eventName string, decoder Decoder[Msg]) Sub[Msg] {
	return Sub[Msg]{{
		target:  func(Host) EventTarget { return target },
		key:     target,
		event:   eventName,
		decoder: decoder,
	}}
}

// OnDocument subscribes to eventName on the host document.
func OnDocument[Msg any](eventName string, decoder Decoder[Msg]) Sub[Msg] {
	return Sub[Msg]{{
		target:  func(h Host) EventTarget { return h.Document() },
		key:     documentTarget,
		event:   eventName,
		decoder: decoder,
	}}
}

// OnWindow subscribes to eventName on the host window.
func OnWindow[Msg any](eventName string, decoder Decoder[Msg]) Sub[Msg] {
	return Sub[Msg]{{
		target:  func(h Host) EventTarget { return h.Window() },
		key:     windowTarget,
		event:   eventName,
		decoder: decoder,
	}}
}

// Passive marks every subscription in sub as passive.
func Passive[Msg any](sub Sub[Msg]) Sub[Msg] {
	out := make(Sub[Msg], len(sub))
	for i, s := range sub {
		s.passive = true
		out[i] = s
	}
	return out
}

// BatchSubs merges subscription sets.
func BatchSubs[Msg any](subs ...Sub[Msg]) Sub[Msg] {
	var out Sub[Msg]
	for _, s := range subs {
		out = append(out, s...)
	}
	return out
}

func (x subscription[Msg]) subKey() subKey {
	return subKey{target: x.key, event: x.event, passive: x.passive}
}
