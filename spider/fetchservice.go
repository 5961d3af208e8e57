package spider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/dreamerjackson/browser/extensions"
	"github.com/dreamerjackson/browser/proxy"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type FetchType int

const (
	BaseFetchType FetchType = iota
	BrowserFetchType
)

// Fetcher performs one request synchronously. A non 2xx status is not an
// error: the response is routed like any other.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

func NewFetchService(typ FetchType, opts ...Option) (Fetcher, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	switch typ {
	case BaseFetchType:
		client := &http.Client{Timeout: options.Timeout}
		if options.Proxy != nil {
			client.Transport = proxyTransport(options.Proxy)
		}
		return &baseFetch{client: client, options: options}, nil
	default:
		return newBrowserFetch(options)
	}
}

func proxyTransport(p proxy.Func) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = p
	return transport
}

// throttle blocks on the rate limits, then sleeps a random part of
// WaitTime seconds.
func throttle(ctx context.Context, options Options) error {
	if options.Limit != nil {
		if err := options.Limit.Wait(ctx); err != nil {
			return err
		}
	}

	if options.WaitTime <= 0 {
		return nil
	}

	// 随机休眠，模拟人类行为
	sleeptime := time.Duration(rand.Int63n(options.WaitTime*1000)) * time.Millisecond
	select {
	case <-time.After(sleeptime):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type baseFetch struct {
	client  *http.Client
	options Options
}

func (b *baseFetch) Fetch(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if data := req.Body(); data != "" {
		body = strings.NewReader(data)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.method(), req.Target(), body)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}

	if body != nil {
		hreq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if len(b.options.Cookie) > 0 {
		hreq.Header.Set("Cookie", b.options.Cookie)
	}

	if err := throttle(ctx, b.options); err != nil {
		return nil, err
	}

	resp, err := b.client.Do(hreq)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body:%w", err)
	}

	return newResponse(resp.Request.URL.String(), resp.StatusCode, resp.Header, raw)
}

// 模拟浏览器访问: one cookie session, a stable user agent, rate limits and
// random waits between requests.
type browserFetch struct {
	client  *resty.Client
	options Options
}

func newBrowserFetch(options Options) (*browserFetch, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(options.Timeout)
	client.SetHeader("User-Agent", extensions.GenerateRandomUA())

	if len(options.Cookie) > 0 {
		client.SetHeader("Cookie", options.Cookie)
	}

	if options.Proxy != nil {
		client.SetTransport(proxyTransport(options.Proxy))
	}

	b := &browserFetch{client: client, options: options}
	client.OnBeforeRequest(b.beforeRequest)

	return b, nil
}

func (b *browserFetch) beforeRequest(_ *resty.Client, req *resty.Request) error {
	return throttle(req.Context(), b.options)
}

func (b *browserFetch) Fetch(ctx context.Context, req *Request) (*Response, error) {
	r := b.client.R().SetContext(ctx)
	if len(req.Header) > 0 {
		r.SetHeaderMultiValues(req.Header)
	}

	if data := req.Body(); data != "" {
		r.SetHeader("Content-Type", "application/x-www-form-urlencoded")
		r.SetBody(data)
	}

	b.options.logger.Debug("fetch",
		zap.String("method", req.method()),
		zap.String("url", req.Target()),
	)

	resp, err := r.Execute(req.method(), req.Target())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Target(), err)
	}

	finalURL := req.Target()
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return newResponse(finalURL, resp.StatusCode(), resp.Header(), resp.Body())
}

func newResponse(u string, status int, header http.Header, raw []byte) (*Response, error) {
	e, name := DeterminEncoding(raw, header.Get("Content-Type"))
	body, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), e.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode %s body:%w", name, err)
	}

	return &Response{
		URL:      u,
		Status:   status,
		Body:     body,
		Encoding: name,
		Header:   header,
	}, nil
}

// DeterminEncoding guesses the charset of a document from its first bytes
// and its content type.
func DeterminEncoding(raw []byte, contentType string) (encoding.Encoding, string) {
	if len(raw) == 0 {
		return unicode.UTF8, "utf-8"
	}

	if len(raw) > 1024 {
		raw = raw[:1024]
	}

	e, name, _ := charset.DetermineEncoding(raw, contentType)

	return e, name
}
