package spider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dreamerjackson/browser/limiter"
	"go.uber.org/zap"
)

// 一个任务实例
type Task struct {
	Rule RuleTree
	Options
}

type TaskConfig struct {
	Name     string
	BaseURL  string
	Cookie   string
	WaitTime int64
	Reload   bool
	Limits   []LimitConfig
}

type LimitConfig = limiter.Config

func NewTask(opts ...Option) *Task {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	d := &Task{}
	d.Options = options

	return d
}

// Logger returns the task logger. Tasks declared as literals log nowhere.
func (t *Task) Logger() *zap.Logger {
	if t.logger == nil {
		return zap.NewNop()
	}
	return t.logger
}

// NewBrowser returns a browser on the task site, sharing the task fetcher.
func (t *Task) NewBrowser() (*Browser, error) {
	if t.Rule.Root == nil {
		return nil, fmt.Errorf("task %s: no root", t.Name)
	}

	if t.URL == "" {
		return nil, fmt.Errorf("task %s: no base url", t.Name)
	}

	return NewBrowser(t.Rule.Root(t.URL),
		WithURL(t.URL),
		WithFetcher(t.Fetcher),
		WithReload(t.Reload),
		WithTimeout(t.Timeout),
		WithLogger(t.Logger().Named("browser")),
	), nil
}

// Run executes the task rules in order on one browser. The first failing
// rule stops the task.
func (t *Task) Run(ctx context.Context) error {
	b, err := t.NewBrowser()
	if err != nil {
		return err
	}

	storage := t.Storage
	if storage == nil {
		storage = &EmptyDataRepository{}
	}

	for _, r := range t.Rule.Rules {
		if r.ParseFunc == nil {
			continue
		}

		start := time.Now()
		c := &Context{
			ctx:     ctx,
			Browser: b,
			Task:    t,
			Rule:    r,
			storage: storage,
		}

		if err := r.ParseFunc(c); err != nil {
			return fmt.Errorf("task %s rule %s: %w", t.Name, r.Name, err)
		}

		t.Logger().Info("rule done",
			zap.String("task", t.Name),
			zap.String("rule", r.Name),
			zap.Int("count", c.count),
			zap.Duration("cost", time.Since(start)),
		)
	}

	return nil
}

// RunAll runs tasks one after the other and joins their errors.
func RunAll(ctx context.Context, tasks ...*Task) error {
	var errs []error
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := t.Run(ctx); err != nil {
			t.Logger().Error("task failed", zap.String("task", t.Name), zap.Error(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
