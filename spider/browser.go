package spider

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Browser navigates a site: it performs requests, routes the responses to
// pages and tracks the current one. A Browser is not safe for concurrent
// use; two pagers must not share one.
type Browser struct {
	router  *Router
	fetcher Fetcher
	options Options
	logger  *zap.Logger

	page     Page
	response *Response
}

func NewBrowser(router *Router, opts ...Option) *Browser {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.URL == "" {
		options.URL = router.Base()
	}

	fetcher := options.Fetcher
	if fetcher == nil {
		fetcher = &baseFetch{
			client:  &http.Client{Timeout: options.Timeout},
			options: options,
		}
	}

	return &Browser{
		router:  router,
		fetcher: fetcher,
		options: options,
		logger:  options.logger,
	}
}

func (b *Browser) Router() *Router {
	return b.router
}

func (b *Browser) Logger() *zap.Logger {
	return b.logger
}

// Page returns the current page, nil when the last response was not routed.
func (b *Browser) Page() Page {
	return b.page
}

// Response returns the last response received by Location.
func (b *Browser) Response() *Response {
	return b.response
}

// URL returns the address of the last response, or the site base URL.
func (b *Browser) URL() string {
	if b.response != nil {
		return b.response.URL
	}
	return b.options.URL
}

func (b *Browser) Logged() bool {
	return b.page != nil && b.page.Logged()
}

// IsHere reports whether the current page was built for the route name.
func (b *Browser) IsHere(route string) bool {
	return b.page != nil && b.page.HTML().Route == route
}

// AbsURL resolves ref against the current location.
func (b *Browser) AbsURL(ref string) (string, error) {
	base, err := url.Parse(b.URL())
	if err != nil {
		return "", err
	}

	u, err := base.Parse(ref)
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

// Open performs req and routes the response, leaving the current page
// untouched. The page is nil when no route matches.
func (b *Browser) Open(ctx context.Context, req *Request) (Page, *Response, error) {
	resp, err := b.fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	page, err := b.handle(resp)
	if err != nil {
		return nil, resp, err
	}

	return page, resp, nil
}

// Location moves the browser to req. Errors of the OnLoad hook of the new
// page are returned as is, the page still being the current one.
func (b *Browser) Location(ctx context.Context, req *Request) (Page, *Response, error) {
	if b.page != nil {
		b.page.OnLeave(ctx)
	}

	resp, err := b.fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	b.response = resp

	page, err := b.handle(resp)
	b.page = page

	if err != nil {
		return nil, resp, err
	}

	if page == nil {
		return nil, resp, nil
	}

	if err := page.OnLoad(ctx); err != nil {
		return page, resp, err
	}

	return page, resp, nil
}

// StayOrGo returns the current page when it belongs to route, and goes to
// req otherwise. With the Reload option it always goes.
func (b *Browser) StayOrGo(ctx context.Context, route string, req *Request) (Page, *Response, error) {
	if !b.options.Reload && b.IsHere(route) {
		return b.page, b.response, nil
	}

	return b.Location(ctx, req)
}

func (b *Browser) fetch(ctx context.Context, req *Request) (*Response, error) {
	target, err := b.AbsURL(req.URL)
	if err != nil {
		return nil, err
	}

	r := *req
	r.URL = target

	return b.fetcher.Fetch(ctx, &r)
}

func (b *Browser) handle(resp *Response) (Page, error) {
	route, params, ok := b.router.Match(resp.URL)
	if !ok {
		b.logger.Debug("unable to handle url", zap.String("url", resp.URL), zap.Int("status", resp.Status))
		return nil, nil
	}

	b.logger.Debug("handle url",
		zap.String("url", resp.URL),
		zap.String("page", route.Name),
	)

	h, err := newHTMLPage(b, resp, route.Name, params)
	if err != nil {
		return nil, err
	}

	if route.Factory == nil {
		return h, nil
	}

	return route.Factory(h), nil
}
