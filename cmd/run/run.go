package run

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamerjackson/browser/generator"
	"github.com/dreamerjackson/browser/limiter"
	"github.com/dreamerjackson/browser/log"
	"github.com/dreamerjackson/browser/proxy"
	"github.com/dreamerjackson/browser/spider"
	"github.com/dreamerjackson/browser/sqldb"
	"github.com/dreamerjackson/browser/storage/sqlstorage"
	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"github.com/spf13/cobra"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
	"go.uber.org/zap"
)

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "run the configured site tasks.",
	Long:  "run the site tasks listed in the config file, one after the other.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return Run(ctx, configPath, taskNames)
	},
}

var (
	configPath string
	taskNames  []string
)

func init() {
	RunCmd.Flags().StringVar(
		&configPath, "config", "config.toml", "set config file")

	RunCmd.Flags().StringSliceVar(
		&taskNames, "task", nil, "only run the named tasks")
}

type FetcherConfig struct {
	Type    string // base, browser
	Timeout int    // 毫秒
	Proxy   []string
}

type StorageConfig struct {
	Type       string // mysql, sqlite, empty
	SQLURL     string `json:"sqlURL"`
	BatchCount int
	NodeIP     string // 决定 snowflake 节点号
}

func LoadConfig(path string) (config.Config, error) {
	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		return nil, err
	}

	if err := cfg.Load(file.NewSource(
		file.WithPath(path),
		source.WithEncoder(enc),
	)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return cfg, nil
}

func Run(ctx context.Context, path string, only []string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}

	// log
	logger, logCloser, err := log.New(log.Config{
		Level:   cfg.Get("logLevel").String("INFO"),
		File:    cfg.Get("logFile").String(""),
		Console: cfg.Get("logConsole").Bool(false),
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	// fetcher
	var fcfg FetcherConfig
	if err := cfg.Get("fetcher").Scan(&fcfg); err != nil {
		return fmt.Errorf("fetcher config: %w", err)
	}

	var p proxy.Func
	if len(fcfg.Proxy) > 0 {
		if p, err = proxy.RoundRobinProxySwitcher(fcfg.Proxy...); err != nil {
			return err
		}
	}
	logger.Info("fetcher", zap.String("type", fcfg.Type), zap.Strings("proxy", fcfg.Proxy), zap.Int("timeout", fcfg.Timeout))

	// storage
	var scfg StorageConfig
	if err := cfg.Get("storage").Scan(&scfg); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	storage, closer, err := NewStorage(logger, scfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Error("close storage failed", zap.Error(err))
		}
	}()

	// tasks
	var tcfg []spider.TaskConfig
	if err := cfg.Get("Tasks").Scan(&tcfg); err != nil {
		return fmt.Errorf("tasks config: %w", err)
	}

	tasks, err := ParseTaskConfig(logger, p, fcfg, storage, Select(tcfg, only))
	if err != nil {
		return err
	}

	return spider.RunAll(ctx, tasks...)
}

// NewStorage opens the configured data repository. The closer flushes it.
func NewStorage(logger *zap.Logger, cfg StorageConfig) (spider.DataRepository, io.Closer, error) {
	switch cfg.Type {
	case sqldb.MySQL, sqldb.SQLite:
		opts := []sqlstorage.Option{
			sqlstorage.WithDriver(cfg.Type),
			sqlstorage.WithSQLURL(cfg.SQLURL),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
			sqlstorage.WithBatchCount(cfg.BatchCount),
		}
		if cfg.NodeIP != "" {
			opts = append(opts, sqlstorage.WithNodeID(generator.NodeID(cfg.NodeIP)))
		}

		s, err := sqlstorage.New(opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create sqlstorage: %w", err)
		}
		logger.Info("start sql storage", zap.String("driver", cfg.Type))
		return s, s, nil
	case "", "empty":
		logger.Info("start empty storage")
		return &spider.EmptyDataRepository{}, nopCloser{}, nil
	}

	return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Select keeps the configs of the named tasks, every config when names is
// empty.
func Select(cfgs []spider.TaskConfig, names []string) []spider.TaskConfig {
	if len(names) == 0 {
		return cfgs
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []spider.TaskConfig
	for _, c := range cfgs {
		if want[c.Name] {
			out = append(out, c)
		}
	}

	return out
}

// ParseTaskConfig builds the runnable tasks: the rules come from the
// registered task of the same name, the configured values override its
// defaults. Each task gets its own fetcher, hence its own session.
func ParseTaskConfig(logger *zap.Logger, p proxy.Func, fcfg FetcherConfig, s spider.DataRepository, cfgs []spider.TaskConfig) ([]*spider.Task, error) {
	typ := spider.BrowserFetchType
	if fcfg.Type == "base" {
		typ = spider.BaseFetchType
	}

	timeout := 5 * time.Second
	if fcfg.Timeout > 0 {
		timeout = time.Duration(fcfg.Timeout) * time.Millisecond
	}

	tasks := make([]*spider.Task, 0, len(cfgs))
	for _, cfg := range cfgs {
		registered, ok := spider.TaskStore.Hash[cfg.Name]
		if !ok {
			return nil, fmt.Errorf("unknown task %q", cfg.Name)
		}

		url := registered.URL
		if cfg.BaseURL != "" {
			url = cfg.BaseURL
		}

		waitTime := registered.WaitTime
		if cfg.WaitTime > 0 {
			waitTime = cfg.WaitTime
		}

		limit := registered.Limit
		if l := limiter.FromConfig(cfg.Limits...); l != nil {
			limit = l
		}

		taskLogger := logger.With(zap.String("task", cfg.Name))
		opts := []spider.Option{
			spider.WithName(cfg.Name),
			spider.WithURL(url),
			spider.WithCookie(cfg.Cookie),
			spider.WithReload(cfg.Reload),
			spider.WithWaitTime(waitTime),
			spider.WithTimeout(timeout),
			spider.WithProxy(p),
			spider.WithLimit(limit),
		}

		f, err := spider.NewFetchService(typ, append(opts, spider.WithLogger(taskLogger.Named("fetcher")))...)
		if err != nil {
			return nil, err
		}

		t := spider.NewTask(append(opts,
			spider.WithLogger(taskLogger),
			spider.WithStorage(s),
			spider.WithFetcher(f),
		)...)
		t.Rule = registered.Rule

		tasks = append(tasks, t)
	}

	return tasks, nil
}
