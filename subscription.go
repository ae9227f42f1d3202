package browserfx

// Subscribe listens for eventName on target for as long as the returned task
// runs. Every event is handed to toTask, synchronously, and the task it
// returns is spawned without waiting on it; a zero task is skipped. Killing
// the process removes the listener (with the same options it was added
// with), after which no event produces work.
//
// passive is only passed on when the host supports passive listeners.
func Subscribe(target EventTarget, passive bool, eventName string, toTask func(event Event) Task[Unit]) Task[Never] {
	return Binding(func(s *Scheduler, _ *Resolver[Never]) func() {
		opts := ListenerOptions{Passive: passive && s.host.SupportsPassive()}
		live := true
		listener := NewListener(func(event Event) {
			if !live {
				return
			}
			task := toTask(event)
			if task.bind == nil {
				return
			}
			RawSpawn(s, task)
		})
		target.AddEventListener(eventName, listener, opts)
		s.logger.Debug().
			Str(`event`, eventName).
			Bool(`passive`, opts.Passive).
			Log(`listener added`)
		return func() {
			live = false
			target.RemoveEventListener(eventName, listener, opts)
			s.logger.Debug().
				Str(`event`, eventName).
				Log(`listener removed`)
		}
	})
}
