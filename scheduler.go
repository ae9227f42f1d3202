package browserfx

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// Scheduler runs tasks against a Host. It is the minimal execution engine
// the effect adapters need: spawning, settling on a fresh loop turn, and
// killing.
//
// All methods other than Spawn/RawSpawn (which submit) must be called on the
// host loop, as must Process.Kill.
type Scheduler struct {
	host          Host
	logger        *logiface.Logger[logiface.Event]
	frameFallback time.Duration
	nextPID       atomic.Uint64
}

// Process is a spawned task.
type Process struct {
	sched   *Scheduler
	cancel  func()
	id      uint64
	killed  bool
	settled bool
}

// NewScheduler returns a scheduler for host.
func NewScheduler(host Host, opts ...Option) (*Scheduler, error) {
	if host == nil {
		return nil, errors.New(`browserfx: host must not be nil`)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newScheduler(host, cfg), nil
}

func newScheduler(host Host, cfg *options) *Scheduler {
	return &Scheduler{
		host:          host,
		logger:        cfg.logger,
		frameFallback: cfg.frameFallback,
	}
}

// Host returns the host tasks run against.
func (x *Scheduler) Host() Host {
	return x.host
}

// RequestAnimationFrame schedules fn on the next animation frame of the
// host, see the package function of the same name.
func (x *Scheduler) RequestAnimationFrame(fn func()) (cancel func()) {
	return RequestAnimationFrame(x.host, x.frameFallback, fn)
}

// Spawn starts task on the next loop turn. Once the task settles, fn is
// called (on its own turn) with the result, unless the process was killed
// first. A nil fn logs failures.
func Spawn[T any](s *Scheduler, task Task[T], fn func(value T, err error)) *Process {
	p := &Process{
		sched: s,
		id:    s.nextPID.Add(1),
	}
	s.submit(func() {
		if p.killed {
			return
		}
		s.logger.Trace().
			Uint64(`pid`, p.id).
			Log(`process started`)
		cancel := task.run(s, func(value T, err error) {
			s.submit(func() {
				if p.killed || p.settled {
					return
				}
				p.settled = true
				p.cancel = nil
				if fn != nil {
					fn(value, err)
				} else if err != nil {
					s.logger.Err().
						Err(err).
						Uint64(`pid`, p.id).
						Log(`unhandled task failure`)
				}
			})
		})
		if !p.settled {
			p.cancel = cancel
		}
	})
	return p
}

// RawSpawn starts task without observing its result. Failures are logged.
func RawSpawn[T any](s *Scheduler, task Task[T]) {
	Spawn(s, task, nil)
}

// ID identifies the process in logs.
func (x *Process) ID() uint64 {
	return x.id
}

// Kill cancels the process. The running binding's cancel function is called
// at most once and any later result is dropped. Killing a settled or killed
// process does nothing.
func (x *Process) Kill() {
	if x == nil || x.killed || x.settled {
		return
	}
	x.killed = true
	cancel := x.cancel
	x.cancel = nil
	x.sched.logger.Debug().
		Uint64(`pid`, x.id).
		Log(`process killed`)
	if cancel != nil {
		cancel()
	}
}

// Killed reports whether Kill took effect.
func (x *Process) Killed() bool {
	return x.killed
}

func (x *Scheduler) submit(fn func()) {
	if err := x.host.Submit(fn); err != nil {
		x.logger.Warning().
			Err(err).
			Log(`host rejected submission`)
	}
}
