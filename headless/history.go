package headless

import (
	"fmt"
	"net/url"

	"github.com/joeycumines/go-browserfx"
)

type (
	// History is the session history of a headless [Host]. It MUST only be
	// used on the loop goroutine.
	History struct {
		host    *Host
		entries []*url.URL
		index   int
	}

	// Location reports and changes the current entry of the [History].
	Location struct {
		host *Host
	}

	// NavigationKind distinguishes page loads that unload the document.
	NavigationKind int

	// Navigation records a full page load requested through [Location].
	Navigation struct {
		URL       string
		Kind      NavigationKind
		SkipCache bool
	}
)

const (
	NavigationAssign NavigationKind = iota
	NavigationReload
)

var (
	_ browserfx.History  = (*History)(nil)
	_ browserfx.Location = (*Location)(nil)
)

func (x NavigationKind) String() string {
	switch x {
	case NavigationAssign:
		return `assign`
	case NavigationReload:
		return `reload`
	default:
		return `unknown`
	}
}

func newHistory(host *Host, initial *url.URL) *History {
	return &History{host: host, entries: []*url.URL{initial}}
}

// PushState appends a same-origin entry after the current one, discarding
// any forward entries.
func (h *History) PushState(rawURL string) error {
	u, err := h.resolve(rawURL)
	if err != nil {
		return err
	}
	h.entries = append(h.entries[:h.index+1:h.index+1], u)
	h.index++
	h.host.logger.Debug().
		Str(`url`, u.String()).
		Int(`length`, len(h.entries)).
		Log(`history push`)
	return nil
}

// ReplaceState overwrites the current entry.
func (h *History) ReplaceState(rawURL string) error {
	u, err := h.resolve(rawURL)
	if err != nil {
		return err
	}
	h.entries[h.index] = u
	h.host.logger.Debug().
		Str(`url`, u.String()).
		Log(`history replace`)
	return nil
}

// Go traverses n entries on a later turn, dispatching popstate on the window.
// Out of range traversals do nothing.
func (h *History) Go(n int) {
	if n == 0 {
		return
	}
	if err := h.host.Submit(func() {
		target := h.index + n
		if target < 0 || target >= len(h.entries) {
			return
		}
		h.index = target
		h.host.logger.Debug().
			Int(`delta`, n).
			Str(`url`, h.entries[target].String()).
			Log(`history traverse`)
		h.host.window.DispatchEvent(NewUncancelableEvent(`popstate`, nil))
	}); err != nil {
		h.host.logger.Warning().
			Err(err).
			Log(`history traverse dropped`)
	}
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Index returns the position of the current entry.
func (h *History) Index() int { return h.index }

// Entries returns a copy of every entry, as strings.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	for i, u := range h.entries {
		out[i] = u.String()
	}
	return out
}

func (h *History) current() *url.URL { return h.entries[h.index] }

// resolve parses rawURL relative to the current entry, rejecting other
// origins like browsers do.
func (h *History) resolve(rawURL string) (*url.URL, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf(`%w: %w`, browserfx.ErrMalformedURL, err)
	}
	cur := h.current()
	u := cur.ResolveReference(ref)
	if u.Scheme != cur.Scheme || u.Host != cur.Host {
		return nil, fmt.Errorf(`headless: url %q is not same-origin with %q`, u, cur)
	}
	return u, nil
}

func (l *Location) Href() string { return l.host.history.current().String() }

// Assign navigates to rawURL. With strict URLs, a URL that does not parse
// fails with an error wrapping ErrMalformedURL and nothing happens.
func (l *Location) Assign(rawURL string) error {
	target := rawURL
	if ref, err := url.Parse(rawURL); err == nil {
		target = l.host.history.current().ResolveReference(ref).String()
	} else if l.host.opts.strictURLs {
		return &browserfx.URLError{URL: rawURL, Cause: fmt.Errorf(`%w: %w`, browserfx.ErrMalformedURL, err)}
	}
	l.host.navigate(Navigation{Kind: NavigationAssign, URL: target})
	return nil
}

func (l *Location) Reload(skipCache bool) {
	l.host.navigate(Navigation{Kind: NavigationReload, URL: l.Href(), SkipCache: skipCache})
}
