package browserfx

import (
	"errors"
	"net/url"
)

var errRelativeURL = errors.New(`location is not absolute`)

// Go moves n entries through the session history. It always succeeds, even
// when there is no entry n steps away.
func Go(n int) Task[Unit] {
	return Binding(func(s *Scheduler, r *Resolver[Unit]) func() {
		if n != 0 {
			s.host.History().Go(n)
		}
		r.Succeed(Unit{})
		return nil
	})
}

// Back is Go(-n).
func Back(n int) Task[Unit] { return Go(-n) }

// Forward is Go(n).
func Forward(n int) Task[Unit] { return Go(n) }

// PushState adds a history entry for rawURL without loading it, succeeding
// with the canonical location the host reports afterwards.
func PushState(rawURL string) Task[*url.URL] {
	return historyState(rawURL, History.PushState)
}

// ReplaceState replaces the current history entry, see PushState.
func ReplaceState(rawURL string) Task[*url.URL] {
	return historyState(rawURL, History.ReplaceState)
}

func historyState(rawURL string, mutate func(History, string) error) Task[*url.URL] {
	return Binding(func(s *Scheduler, r *Resolver[*url.URL]) func() {
		if err := mutate(s.host.History(), rawURL); err != nil {
			r.Fail(err)
			return nil
		}
		u, err := GetURL(s.host)
		if err != nil {
			r.Fail(err)
			return nil
		}
		r.Succeed(u)
		return nil
	})
}

// Reload reloads the current page. The task never settles: the host tears
// the running program down.
func Reload(skipCache bool) Task[Never] {
	return Binding(func(s *Scheduler, _ *Resolver[Never]) func() {
		s.logger.Debug().
			Bool(`skip_cache`, skipCache).
			Log(`reload`)
		s.host.Location().Reload(skipCache)
		return nil
	})
}

// Load navigates to rawURL, leaving the program. Hosts differ in how they
// treat a URL they cannot navigate to; any such failure is turned into a
// reload of the current page (with caching), which is what the remaining
// hosts do. The task never settles.
func Load(rawURL string) Task[Never] {
	return Binding(func(s *Scheduler, _ *Resolver[Never]) func() {
		loc := s.host.Location()
		if err := loc.Assign(rawURL); err != nil {
			s.logger.Debug().
				Err(err).
				Str(`url`, rawURL).
				Log(`load failed, reloading`)
			loc.Reload(false)
		}
		return nil
	})
}

// GetURL reads the host's current location.
func GetURL(host Host) (*url.URL, error) {
	href := host.Location().Href()
	u, err := url.Parse(href)
	if err != nil {
		return nil, &URLError{URL: href, Cause: err}
	}
	if !u.IsAbs() {
		return nil, &URLError{URL: href, Cause: errRelativeURL}
	}
	return u, nil
}
