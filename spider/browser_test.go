package spider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "https://bank.test"

// memFetcher serves pages from memory and records the requests it got.
type memFetcher struct {
	pages    map[string]string
	requests []*Request
}

func (m *memFetcher) Fetch(_ context.Context, req *Request) (*Response, error) {
	m.requests = append(m.requests, req)

	body, ok := m.pages[req.Target()]
	if !ok {
		return &Response{URL: req.Target(), Status: http.StatusNotFound, Body: []byte("not found")}, nil
	}

	return &Response{URL: req.Target(), Status: http.StatusOK, Body: []byte(body), Encoding: "utf-8"}, nil
}

type hookPage struct {
	*HTMLPage
	loads  *int
	leaves *int
}

func (p *hookPage) OnLoad(context.Context) error {
	*p.loads++
	return nil
}

func (p *hookPage) OnLeave(context.Context) {
	*p.leaves++
}

type loginPage struct {
	*HTMLPage
}

func (p *loginPage) OnLoad(context.Context) error {
	return ErrLoginRequired
}

func TestRouter_Match(t *testing.T) {
	r := NewRouter(testBase + "/")
	r.Register("account", nil, `/account/(?P<id>\d+)`)
	r.Register("any", nil, `/account/.*`, `https://other\.test/.*`)

	tests := []struct {
		name   string
		url    string
		route  string
		params map[string]string
		ok     bool
	}{
		{name: "first registered wins", url: testBase + "/account/42", route: "account", params: map[string]string{"id": "42"}, ok: true},
		{name: "second route", url: testBase + "/account/history", route: "any", params: map[string]string{}, ok: true},
		{name: "absolute pattern", url: "https://other.test/x", route: "any", params: map[string]string{}, ok: true},
		{name: "full url only", url: testBase + "/account/42/details", route: "any", params: map[string]string{}, ok: true},
		{name: "other host", url: "https://bank.test.evil/account/42", ok: false},
		{name: "no match", url: testBase + "/login", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, params, ok := r.Match(tt.url)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Nil(t, u)
				return
			}
			assert.Equal(t, tt.route, u.Name)
			assert.Equal(t, tt.params, params)
		})
	}

	u, ok := r.Route("account")
	require.True(t, ok)
	assert.Len(t, u.Patterns, 1)
	assert.Len(t, r.Routes(), 2)
}

func TestBrowser_Location(t *testing.T) {
	var loads, leaves int
	r := NewRouter(testBase)
	r.Register("home", func(h *HTMLPage) Page {
		return &hookPage{HTMLPage: h, loads: &loads, leaves: &leaves}
	}, `/`)
	r.Register("account", nil, `/account/(?P<id>\d+)`)

	f := &memFetcher{pages: map[string]string{
		testBase + "/":           `<html><body><a href="/account/7">7</a></body></html>`,
		testBase + "/account/7":  `<html><body><h1>Account 7</h1></body></html>`,
		testBase + "/unrouted":   `<html></html>`,
		"https://other.test/abs": `<html></html>`,
	}}
	b := NewBrowser(r, WithFetcher(f))
	ctx := context.Background()

	page, resp, err := b.Location(ctx, GET("/"))
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1, loads)
	assert.True(t, b.IsHere("home"))
	assert.False(t, b.Logged())

	page, _, err = b.Location(ctx, GET("account/7"))
	require.NoError(t, err)
	assert.Equal(t, 1, leaves)
	assert.Equal(t, "account", page.HTML().Route)
	assert.Equal(t, "7", page.HTML().Params["id"])
	assert.Equal(t, "Account 7", page.HTML().Doc.Find("h1").Text())
	assert.Equal(t, testBase+"/account/7", b.URL())

	page, resp, err = b.Location(ctx, GET("/unrouted"))
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Nil(t, b.Page())
	assert.Equal(t, resp, b.Response())
	assert.Equal(t, testBase+"/unrouted", resp.URL)
}

func TestBrowser_OpenKeepsCurrentPage(t *testing.T) {
	r := NewRouter(testBase)
	r.Register("home", nil, `/`)
	r.Register("balance", nil, `/balance`)

	f := &memFetcher{pages: map[string]string{
		testBase + "/":        `<p>home</p>`,
		testBase + "/balance": `<p>12,34</p>`,
	}}
	b := NewBrowser(r, WithFetcher(f))
	ctx := context.Background()

	_, _, err := b.Location(ctx, GET("/"))
	require.NoError(t, err)

	page, _, err := b.Open(ctx, GET("/balance"))
	require.NoError(t, err)
	assert.Equal(t, "balance", page.HTML().Route)
	assert.True(t, b.IsHere("home"))
	assert.Equal(t, testBase+"/", b.URL())
}

func TestBrowser_StayOrGo(t *testing.T) {
	r := NewRouter(testBase)
	r.Register("home", nil, `/`)

	f := &memFetcher{pages: map[string]string{testBase + "/": `<p>home</p>`}}
	ctx := context.Background()

	b := NewBrowser(r, WithFetcher(f))
	_, _, err := b.StayOrGo(ctx, "home", GET("/"))
	require.NoError(t, err)
	_, _, err = b.StayOrGo(ctx, "home", GET("/"))
	require.NoError(t, err)
	assert.Len(t, f.requests, 1)

	f.requests = nil
	b = NewBrowser(r, WithFetcher(f), WithReload(true))
	_, _, err = b.StayOrGo(ctx, "home", GET("/"))
	require.NoError(t, err)
	_, _, err = b.StayOrGo(ctx, "home", GET("/"))
	require.NoError(t, err)
	assert.Len(t, f.requests, 2)
}

func TestBrowser_LoginRequired(t *testing.T) {
	r := NewRouter(testBase)
	r.Register("login", func(h *HTMLPage) Page { return &loginPage{h} }, `/login`)

	b := NewBrowser(r, WithFetcher(&memFetcher{pages: map[string]string{
		testBase + "/login": `<form name="login"></form>`,
	}}))

	page, _, err := b.Location(context.Background(), GET("/login"))
	assert.True(t, errors.Is(err, ErrLoginRequired))
	assert.NotNil(t, page)
	assert.True(t, b.IsHere("login"))
}

func TestBrowser_FetchError(t *testing.T) {
	r := NewRouter(testBase)
	wantErr := errors.New("connection refused")
	b := NewBrowser(r, WithFetcher(fetchFunc(func(context.Context, *Request) (*Response, error) {
		return nil, wantErr
	})))

	_, _, err := b.Location(context.Background(), GET("/"))
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, b.Response())
}

type fetchFunc func(context.Context, *Request) (*Response, error)

func (f fetchFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
