package spider

import (
	"time"

	"github.com/dreamerjackson/browser/limiter"
	"github.com/dreamerjackson/browser/proxy"
	"go.uber.org/zap"
)

// Options are shared by tasks, browsers and fetch services.
type Options struct {
	Name     string `json:"name"` // 任务名称，应保证唯一性
	URL      string `json:"url"`  // 站点根地址，相对路由以它为前缀
	Cookie   string `json:"cookie"`
	WaitTime int64  `json:"wait_time"` // 随机休眠时间，秒
	Reload   bool   `json:"reload"`    // StayOrGo 是否总是重新请求
	Timeout  time.Duration
	Proxy    proxy.Func
	Fetcher  Fetcher
	Storage  DataRepository
	Limit    limiter.RateLimiter
	logger   *zap.Logger
}

var defaultOptions = Options{
	logger:  zap.NewNop(),
	Reload:  false,
	Timeout: 3 * time.Second,
}

type Option func(opts *Options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *Options) {
		opts.logger = logger
	}
}

func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

func WithURL(url string) Option {
	return func(opts *Options) {
		opts.URL = url
	}
}

func WithCookie(cookie string) Option {
	return func(opts *Options) {
		opts.Cookie = cookie
	}
}

func WithWaitTime(waitTime int64) Option {
	return func(opts *Options) {
		opts.WaitTime = waitTime
	}
}

func WithReload(reload bool) Option {
	return func(opts *Options) {
		opts.Reload = reload
	}
}

func WithFetcher(f Fetcher) Option {
	return func(opts *Options) {
		opts.Fetcher = f
	}
}

func WithStorage(s DataRepository) Option {
	return func(opts *Options) {
		opts.Storage = s
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

func WithProxy(proxy proxy.Func) Option {
	return func(opts *Options) {
		opts.Proxy = proxy
	}
}

func WithLimit(limit limiter.RateLimiter) Option {
	return func(opts *Options) {
		opts.Limit = limit
	}
}
