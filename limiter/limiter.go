package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

type RateLimiter interface {
	Wait(context.Context) error
	Limit() rate.Limit
}

// Config is one rate: EventCount events every EventDur seconds, with a
// burst of Bucket.
type Config struct {
	EventCount int
	EventDur   int // 秒
	Bucket     int // 桶大小
}

func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}

// FromConfig combines the configured rates. It returns nil when cfgs holds
// no usable rate.
func FromConfig(cfgs ...Config) RateLimiter {
	var limits []RateLimiter
	for _, cfg := range cfgs {
		if cfg.EventCount <= 0 || cfg.EventDur <= 0 {
			continue
		}

		bucket := cfg.Bucket
		if bucket <= 0 {
			bucket = 1
		}

		l := rate.NewLimiter(Per(cfg.EventCount, time.Duration(cfg.EventDur)*time.Second), bucket)
		limits = append(limits, l)
	}

	if len(limits) == 0 {
		return nil
	}

	return Multi(limits...)
}

// Multi waits on every limiter, the most restrictive first.
func Multi(limiters ...RateLimiter) *MultiLimiter {
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)

	return &MultiLimiter{limiters: limiters}
}

type MultiLimiter struct {
	limiters []RateLimiter
}

func (l *MultiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (l *MultiLimiter) Limit() rate.Limit {
	return l.limiters[0].Limit()
}
