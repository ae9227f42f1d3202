package browserfx_test

import (
	"testing"

	"github.com/joeycumines/go-browserfx"
	"github.com/joeycumines/go-browserfx/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushState_GetURL(t *testing.T) {
	h, ctx := startHost(t, headless.WithURL(`http://example.com/start?q=1`))
	s := newScheduler(t, h)

	_, ch := spawn(s, browserfx.PushState(`/a`))
	r := await(t, ctx, ch)
	require.NoError(t, r.err)
	assert.Equal(t, `/a`, r.value.Path)
	assert.Equal(t, `example.com`, r.value.Host)

	var u string
	require.NoError(t, h.Exec(ctx, func() {
		got, err := browserfx.GetURL(h)
		require.NoError(t, err)
		u = got.String()
	}))
	assert.Equal(t, `http://example.com/a`, u)
}

func TestReplaceState(t *testing.T) {
	h, ctx := startHost(t, headless.WithURL(`http://example.com/start`))
	s := newScheduler(t, h)

	r := run(t, ctx, s, browserfx.ReplaceState(`/b#x`))
	require.NoError(t, r.err)
	assert.Equal(t, `/b`, r.value.Path)
	assert.Equal(t, `x`, r.value.Fragment)

	var entries []string
	require.NoError(t, h.Exec(ctx, func() { entries = h.SessionHistory().Entries() }))
	assert.Equal(t, []string{`http://example.com/b#x`}, entries)
}

func TestPushState_HostFailure(t *testing.T) {
	h, ctx := startHost(t, headless.WithURL(`http://example.com/`))
	s := newScheduler(t, h)
	r := run(t, ctx, s, browserfx.PushState(`http://other.example/`))
	assert.Error(t, r.err)
}

func TestGo_BackForward(t *testing.T) {
	h, ctx := startHost(t, headless.WithURL(`http://example.com/0`))
	s := newScheduler(t, h)

	for _, p := range []string{`/1`, `/2`} {
		require.NoError(t, run(t, ctx, s, browserfx.PushState(p)).err)
	}

	href := func() (v string) {
		require.NoError(t, h.Exec(ctx, func() { v = h.Location().Href() }))
		return v
	}

	require.NoError(t, run(t, ctx, s, browserfx.Back(2)).err)
	idle(t, ctx, h)
	assert.Equal(t, `http://example.com/0`, href())

	require.NoError(t, run(t, ctx, s, browserfx.Forward(1)).err)
	idle(t, ctx, h)
	assert.Equal(t, `http://example.com/1`, href())

	// out of range and zero moves still succeed
	require.NoError(t, run(t, ctx, s, browserfx.Go(10)).err)
	require.NoError(t, run(t, ctx, s, browserfx.Go(0)).err)
	idle(t, ctx, h)
	assert.Equal(t, `http://example.com/1`, href())
}

func TestLoad(t *testing.T) {
	h, ctx := startHost(t, headless.WithURL(`http://example.com/dir/`))
	s := newScheduler(t, h)

	_, ch := spawn(s, browserfx.Load(`next`))
	idle(t, ctx, h)
	assertNoResult(t, ch)

	var navs []headless.Navigation
	require.NoError(t, h.Exec(ctx, func() { navs = h.Navigations() }))
	assert.Equal(t, []headless.Navigation{{Kind: headless.NavigationAssign, URL: `http://example.com/dir/next`}}, navs)
}

func TestLoad_MalformedReloads(t *testing.T) {
	h, ctx := startHost(t, headless.WithURL(`http://example.com/page`), headless.WithStrictURLs(true))
	s := newScheduler(t, h)

	_, ch := spawn(s, browserfx.Load(`http://%zz`))
	idle(t, ctx, h)
	assertNoResult(t, ch)

	var navs []headless.Navigation
	require.NoError(t, h.Exec(ctx, func() { navs = h.Navigations() }))
	assert.Equal(t, []headless.Navigation{{Kind: headless.NavigationReload, URL: `http://example.com/page`}}, navs)
}

func TestReload(t *testing.T) {
	h, ctx := startHost(t, headless.WithURL(`http://example.com/page`))
	s := newScheduler(t, h)

	_, ch := spawn(s, browserfx.Reload(true))
	idle(t, ctx, h)
	assertNoResult(t, ch)

	var navs []headless.Navigation
	require.NoError(t, h.Exec(ctx, func() { navs = h.Navigations() }))
	assert.Equal(t, []headless.Navigation{{Kind: headless.NavigationReload, URL: `http://example.com/page`, SkipCache: true}}, navs)
}

type brokenLocation struct {
	browserfx.Location
	href string
}

func (x brokenLocation) Href() string { return x.href }

type brokenHost struct {
	browserfx.Host
	href string
}

func (x brokenHost) Location() browserfx.Location { return brokenLocation{href: x.href} }

func TestGetURL_Errors(t *testing.T) {
	h, err := headless.New()
	require.NoError(t, err)

	for _, href := range []string{`http://%zz`, `/relative`} {
		_, err := browserfx.GetURL(brokenHost{Host: h, href: href})
		var urlErr *browserfx.URLError
		require.ErrorAs(t, err, &urlErr)
		assert.Equal(t, href, urlErr.URL)
	}
}
