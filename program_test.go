package browserfx_test

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/go-browserfx/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appFixture = `<!DOCTYPE html><html><head><title>boot</title></head><body><div id="app"></div></body></html>`

// counter is an element program: every message is a delta.
type counter struct {
	views int
}

func (x *counter) impl() browserfx.Impl[int, int, int, browserfx.VTree] {
	return browserfx.Impl[int, int, int, browserfx.VTree]{
		Init: func(start int) (int, browserfx.Cmd[int]) {
			return start, browserfx.Perform(browserfx.Succeed(10), func(n int) int { return n })
		},
		Update: func(delta, model int) (int, browserfx.Cmd[int]) {
			return model + delta, nil
		},
		Subscriptions: func(model int) browserfx.Sub[int] {
			if model >= 1000 {
				return nil
			}
			return browserfx.BatchSubs(
				browserfx.OnWindow(`bump`, browserfx.Always(1000)),
				browserfx.OnWindow(`bump`, browserfx.Always(0)),
			)
		},
		View: func(model int) browserfx.VTree {
			x.views++
			return headless.El(`div`, []headless.Attr{headless.A(`id`, `app`)},
				headless.El(`button`, []headless.Attr{headless.A(`id`, `inc`), headless.On(`click`, browserfx.Always(1))}),
				headless.El(`button`, []headless.Attr{headless.A(`id`, `now`), headless.OnSync(`click`, browserfx.Always(100))}),
				headless.El(`button`, []headless.Attr{headless.A(`id`, `bad`), headless.On(`click`, browserfx.Always(`not an int`))}),
				headless.El(`span`, []headless.Attr{headless.A(`id`, `count`)}, headless.Text(strconv.Itoa(model))),
			)
		},
	}
}

func TestRunElement(t *testing.T) {
	h, ctx := startHost(t, headless.WithHTML(appFixture))
	c := new(counter)

	text := func() (v string) {
		require.NoError(t, h.Exec(ctx, func() { v = h.DOM().ElementByID(`count`).Text() }))
		return v
	}
	click := func(id string) {
		require.NoError(t, h.Exec(ctx, func() { require.NoError(t, h.DOM().ElementByID(id).Call(`click`)) }))
	}

	var p *browserfx.Program[int, int]
	require.NoError(t, h.Exec(ctx, func() {
		var err error
		p, err = browserfx.RunElement(h, h.DOM().ElementByID(`app`), headless.NewRenderer(h), c.impl(), 0)
		require.NoError(t, err)
	}))
	assert.Equal(t, `0`, text())

	// the init command lands, and is drawn on the next frame
	idle(t, ctx, h)
	assert.Equal(t, `0`, text())
	require.NoError(t, h.Frame(ctx))
	assert.Equal(t, `10`, text())
	assert.Equal(t, 2, c.views)

	// async updates coalesce into one draw
	click(`inc`)
	click(`inc`)
	require.NoError(t, h.Exec(ctx, func() { assert.Equal(t, 1, h.PendingFrames()) }))
	assert.Equal(t, `10`, text())
	require.NoError(t, h.Frame(ctx))
	assert.Equal(t, `12`, text())
	assert.Equal(t, 3, c.views)

	// sync updates draw immediately
	click(`now`)
	assert.Equal(t, `112`, text())
	assert.Equal(t, 4, c.views)

	// unexpected message types are dropped
	click(`bad`)
	require.NoError(t, h.Frame(ctx))
	require.NoError(t, h.Exec(ctx, func() { assert.Equal(t, 112, p.Model()) }))

	require.NoError(t, p.Dispatch(5))
	idle(t, ctx, h)
	require.NoError(t, h.Frame(ctx))
	assert.Equal(t, `117`, text())

	// both bump subscriptions share one listener
	win := h.WindowTarget()
	require.NoError(t, h.Exec(ctx, func() { assert.Equal(t, 1, win.ListenerCount(`bump`)) }))
	require.NoError(t, h.Dispatch(win, headless.NewEvent(`bump`, nil)))
	idle(t, ctx, h)
	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, 1117, p.Model())
		assert.Equal(t, 0, win.ListenerCount(`bump`))
	}))

	require.NoError(t, p.Dispatch(1))
	idle(t, ctx, h)
	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, 1, h.PendingFrames())
		p.Stop()
		p.Stop()
		assert.Equal(t, 0, h.PendingFrames())
	}))
	assert.True(t, p.Stopped())
	assert.ErrorIs(t, p.Dispatch(1), browserfx.ErrStopped)
	assert.ErrorIs(t, p.DispatchSync(1), browserfx.ErrStopped)
}

func TestRunElement_StopWithClockedFramePending(t *testing.T) {
	h, ctx := startClockedHost(t, headless.WithHTML(appFixture), headless.WithFrameInterval(time.Hour))
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	c := new(counter)

	var p *browserfx.Program[int, int]
	require.NoError(t, h.Exec(ctx, func() {
		var err error
		p, err = browserfx.RunElement(h, h.DOM().ElementByID(`app`), headless.NewRenderer(h), c.impl(), 0)
		require.NoError(t, err)
	}))
	require.NoError(t, p.Dispatch(1))
	idle(t, ctx, h)
	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, 1, h.PendingFrames())
		p.Stop()
		assert.Zero(t, h.PendingFrames())
	}))
	idle(t, ctx, h)
	assert.Equal(t, 1, c.views)
}

func TestRunElement_SubscriptionLifecycle(t *testing.T) {
	h, ctx := startHost(t, headless.WithHTML(appFixture))
	win := h.WindowTarget()

	impl := browserfx.Impl[struct{}, bool, bool, browserfx.VTree]{
		Init: func(struct{}) (bool, browserfx.Cmd[bool]) { return true, nil },
		Update: func(on, _ bool) (bool, browserfx.Cmd[bool]) {
			return on, nil
		},
		Subscriptions: func(on bool) browserfx.Sub[bool] {
			if !on {
				return nil
			}
			return browserfx.Passive(browserfx.On[bool](win, `scroll`, browserfx.Always(true)))
		},
		View: func(bool) browserfx.VTree { return headless.El(`div`, nil) },
	}

	var p *browserfx.Program[bool, bool]
	require.NoError(t, h.Exec(ctx, func() {
		var err error
		p, err = browserfx.RunElement(h, h.DOM().ElementByID(`app`), headless.NewRenderer(h), impl, struct{}{})
		require.NoError(t, err)
	}))
	idle(t, ctx, h)
	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, []browserfx.ListenerOptions{{Passive: true}}, win.Listeners(`scroll`))
	}))

	require.NoError(t, p.Dispatch(false))
	idle(t, ctx, h)
	require.NoError(t, h.Exec(ctx, func() { assert.Empty(t, win.Listeners(`scroll`)) }))

	require.NoError(t, p.Dispatch(true))
	idle(t, ctx, h)
	require.NoError(t, h.Exec(ctx, func() {
		assert.Len(t, win.Listeners(`scroll`), 1)
		p.Stop()
		assert.Empty(t, win.Listeners(`scroll`))
	}))
}

func TestRunElement_Validation(t *testing.T) {
	h, err := headless.New(headless.WithHTML(appFixture))
	require.NoError(t, err)
	r := headless.NewRenderer(h)
	root := h.DOM().ElementByID(`app`)

	_, err = browserfx.RunElement(h, nil, r, new(counter).impl(), 0)
	assert.Error(t, err)
	_, err = browserfx.RunElement(h, root, nil, new(counter).impl(), 0)
	assert.Error(t, err)
	_, err = browserfx.RunElement(h, root, r, browserfx.Impl[int, int, int, browserfx.VTree]{}, 0)
	assert.Error(t, err)
	_, err = browserfx.RunElement(nil, root, r, new(counter).impl(), 0)
	assert.Error(t, err)
}

func TestRunDocument(t *testing.T) {
	h, ctx := startHost(t, headless.WithHTML(appFixture))

	impl := browserfx.Impl[string, int, int, browserfx.Page]{
		Init: func(string) (int, browserfx.Cmd[int]) { return 0, nil },
		Update: func(delta, model int) (int, browserfx.Cmd[int]) {
			return model + delta, nil
		},
		View: func(model int) browserfx.Page {
			return browserfx.Page{
				Title: `count ` + strconv.Itoa(model),
				Body: []browserfx.VTree{
					headless.El(`p`, []headless.Attr{headless.A(`id`, `count`)}, headless.Text(strconv.Itoa(model))),
				},
			}
		},
	}

	var p *browserfx.Program[int, int]
	require.NoError(t, h.Exec(ctx, func() {
		var err error
		p, err = browserfx.RunDocument(h, headless.NewRenderer(h), impl, `flags`)
		require.NoError(t, err)
		assert.Equal(t, `count 0`, h.DOM().Title())
		assert.Equal(t, `<body><p id="count">0</p></body>`, h.DOM().BodyElement().HTML())
	}))

	require.NoError(t, p.Dispatch(3))
	idle(t, ctx, h)
	require.NoError(t, h.Frame(ctx))
	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, `count 3`, h.DOM().Title())
		assert.Equal(t, `3`, h.DOM().ElementByID(`count`).Text())
	}))
}

type (
	route struct {
		paths []string
		key   browserfx.Key
	}

	routeMsg struct {
		push string
		url  string
		back bool
	}
)

func routerImpl() browserfx.ApplicationImpl[struct{}, route, routeMsg] {
	return browserfx.ApplicationImpl[struct{}, route, routeMsg]{
		Init: func(_ struct{}, u *url.URL, key browserfx.Key) (route, browserfx.Cmd[routeMsg]) {
			return route{paths: []string{u.Path}, key: key}, nil
		},
		Update: func(msg routeMsg, m route) (route, browserfx.Cmd[routeMsg]) {
			switch {
			case msg.push != ``:
				return m, browserfx.Exec[*url.URL, routeMsg](m.key.PushURL(msg.push))
			case msg.back:
				return m, browserfx.Exec[browserfx.Unit, routeMsg](m.key.Back(1))
			default:
				m.paths = append(append([]string(nil), m.paths...), msg.url)
				return m, nil
			}
		},
		View: func(m route) browserfx.Page {
			return browserfx.Page{Title: m.paths[len(m.paths)-1]}
		},
		OnURLChange: func(u *url.URL) routeMsg { return routeMsg{url: u.Path} },
	}
}

func TestRunApplication(t *testing.T) {
	h, ctx := startHost(t, headless.WithHTML(appFixture), headless.WithURL(`http://example.com/home`))

	var p *browserfx.Program[route, routeMsg]
	require.NoError(t, h.Exec(ctx, func() {
		var err error
		p, err = browserfx.RunApplication(h, headless.NewRenderer(h), routerImpl(), struct{}{})
		require.NoError(t, err)
		assert.Equal(t, `/home`, h.DOM().Title())
	}))
	idle(t, ctx, h)

	require.NoError(t, p.Dispatch(routeMsg{push: `/a`}))
	idle(t, ctx, h)
	require.NoError(t, h.Frame(ctx))
	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, []string{`/home`, `/a`}, p.Model().paths)
		assert.Equal(t, `/a`, h.DOM().Title())
		assert.Equal(t, `http://example.com/a`, h.Location().Href())
	}))

	// back reports the change through popstate
	require.NoError(t, p.Dispatch(routeMsg{back: true}))
	idle(t, ctx, h)
	require.NoError(t, h.Frame(ctx))
	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, []string{`/home`, `/a`, `/home`}, p.Model().paths)
		assert.Equal(t, `/home`, h.DOM().Title())
	}))

	require.NoError(t, h.Exec(ctx, func() {
		assert.Equal(t, 1, h.WindowTarget().ListenerCount(`popstate`))
		p.Stop()
		assert.Equal(t, 0, h.WindowTarget().ListenerCount(`popstate`))
	}))
}

func TestRunApplication_BadLocationPanics(t *testing.T) {
	h, err := headless.New(headless.WithHTML(appFixture))
	require.NoError(t, err)
	assert.Panics(t, func() {
		_, _ = browserfx.RunApplication(brokenHost{Host: h, href: `not absolute`}, headless.NewRenderer(h), routerImpl(), struct{}{})
	})

	impl := routerImpl()
	impl.OnURLChange = nil
	_, err = browserfx.RunApplication(h, headless.NewRenderer(h), impl, struct{}{})
	assert.Error(t, err)
}
