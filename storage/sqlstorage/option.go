package sqlstorage

import (
	"github.com/dreamerjackson/browser/sqldb"
	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	driver     string
	sqlURL     string
	nodeID     int64 // snowflake 节点号
	BatchCount int   // 批量数
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	driver:     sqldb.MySQL,
	nodeID:     1,
	BatchCount: 100,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithSQLURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

func WithDriver(driver string) Option {
	return func(opts *options) {
		opts.driver = driver
	}
}

func WithNodeID(id int64) Option {
	return func(opts *options) {
		opts.nodeID = id
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		if batchCount > 0 {
			opts.BatchCount = batchCount
		}
	}
}
