package browserfx

import (
	"errors"
	"sync/atomic"
)

type (
	// Unit is the result of tasks that succeed without a value.
	Unit struct{}

	// Never is the result type of tasks that never resolve, because the host
	// tears the program down (see Reload and Load). No value of it is ever
	// produced by this package.
	Never struct{ _ [0]func() }

	// Task is a deferred host operation: a value describing an action that,
	// once spawned, settles exactly once with either a T or an error.
	//
	// Tasks are inert. Building one performs nothing; each Spawn runs it
	// anew. The zero Task never settles.
	Task[T any] struct {
		bind func(s *Scheduler, r *Resolver[T]) (cancel func())
	}

	// Resolver is the one-shot resolution handle passed to a binding. Only
	// the first call to Succeed or Fail has any effect.
	Resolver[T any] struct {
		settle func(value T, err error)
		done   atomic.Bool
	}
)

var errNilFailure = errors.New(`browserfx: task failed with a nil error`)

// Binding builds a task from a function that starts a host action. The
// function receives the scheduler running the task (for access to its Host)
// and the resolver it must settle, and may return a cancel function, which
// is called if the owning process is killed before the task settles.
func Binding[T any](fn func(s *Scheduler, r *Resolver[T]) (cancel func())) Task[T] {
	return Task[T]{bind: fn}
}

// Succeed is a task that immediately succeeds with value.
func Succeed[T any](value T) Task[T] {
	return Binding(func(_ *Scheduler, r *Resolver[T]) func() {
		r.Succeed(value)
		return nil
	})
}

// Fail is a task that immediately fails with err.
func Fail[T any](err error) Task[T] {
	return Binding(func(_ *Scheduler, r *Resolver[T]) func() {
		r.Fail(err)
		return nil
	})
}

// AndThen sequences fn after task, failing early if task fails.
func AndThen[A, B any](task Task[A], fn func(A) Task[B]) Task[B] {
	return chain(task, func(a A, err error) Task[B] {
		if err != nil {
			return Fail[B](err)
		}
		return fn(a)
	})
}

// Map transforms the successful result of task.
func Map[A, B any](task Task[A], fn func(A) B) Task[B] {
	return AndThen(task, func(a A) Task[B] { return Succeed(fn(a)) })
}

// OnError recovers from a failure of task by running the task fn returns.
func OnError[T any](task Task[T], fn func(error) Task[T]) Task[T] {
	return chain(task, func(v T, err error) Task[T] {
		if err != nil {
			return fn(err)
		}
		return Succeed(v)
	})
}

func chain[A, B any](task Task[A], next func(A, error) Task[B]) Task[B] {
	return Binding(func(s *Scheduler, r *Resolver[B]) func() {
		var (
			cancelled bool
			advanced  bool
			cancel    func()
		)
		first := task.run(s, func(a A, err error) {
			if cancelled {
				return
			}
			advanced = true
			then, ok := continuation(r, next, a, err)
			if !ok {
				return
			}
			cancel = then.run(s, func(b B, err error) { r.resolve(b, err) })
		})
		if !advanced {
			cancel = first
		}
		return func() {
			cancelled = true
			if cancel != nil {
				cancel()
			}
		}
	})
}

// continuation calls next, failing r if it panics. It runs inside the
// previous task's settle callback, after that task's resolver has settled.
func continuation[A, B any](r *Resolver[B], next func(A, error) Task[B], a A, err error) (task Task[B], ok bool) {
	defer func() {
		if v := recover(); v != nil {
			r.Fail(PanicError{Value: v})
		}
	}()
	return next(a, err), true
}

// run starts the task, settling into fn. Panics raised by the binding
// itself become failures.
func (x Task[T]) run(s *Scheduler, fn func(T, error)) (cancel func()) {
	if x.bind == nil {
		return nil
	}
	r := &Resolver[T]{settle: fn}
	defer func() {
		if v := recover(); v != nil {
			r.Fail(PanicError{Value: v})
		}
	}()
	return x.bind(s, r)
}

// Succeed settles the task with value. It returns false if the task had
// already settled.
func (x *Resolver[T]) Succeed(value T) bool {
	return x.resolve(value, nil)
}

// Fail settles the task with err. It returns false if the task had already
// settled. A nil err is replaced with a non-nil error.
func (x *Resolver[T]) Fail(err error) bool {
	if err == nil {
		err = errNilFailure
	}
	var zero T
	return x.resolve(zero, err)
}

// Settled reports whether the task has settled.
func (x *Resolver[T]) Settled() bool {
	return x.done.Load()
}

func (x *Resolver[T]) resolve(value T, err error) bool {
	if !x.done.CompareAndSwap(false, true) {
		return false
	}
	if x.settle != nil {
		x.settle(value, err)
	}
	return true
}
