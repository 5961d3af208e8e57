package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// NOTE: 一些option选项是无法覆盖的
func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// Lumberjack logger虽然持有File但没有暴露sync方法，所以没办法利用zap的sync特性
// 所以额外返回一个closer，需要保证在进程退出前close以保证写入的内容可以全部刷到到磁盘
func NewFilePlugin(
	filePath string, enabler zapcore.LevelEnabler, opts ...FileOption) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger(opts...)
	writer.Filename = filePath

	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

// Config selects the level and the outputs of the command line logger.
type Config struct {
	Level   string // DEBUG, INFO, WARN, ERROR
	File    string // 为空时只输出到stderr
	Console bool   // stderr 使用可读格式而不是json
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the logger described by cfg. Records always go to stderr, and
// to the rotated file too when one is configured. The closer must be
// closed before exit.
func New(cfg Config) (*zap.Logger, io.Closer, error) {
	text := cfg.Level
	if text == "" {
		text = "INFO"
	}

	level, err := zapcore.ParseLevel(text)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	plugin := NewStderrPlugin(level)
	if cfg.Console {
		plugin = zapcore.NewCore(ConsoleEncoder(), zapcore.Lock(zapcore.AddSync(os.Stderr)), level)
	}
	if cfg.File == "" {
		return NewLogger(plugin), nopCloser{}, nil
	}

	filePlugin, closer := NewFilePlugin(cfg.File, level)

	return NewLogger(zapcore.NewTee(plugin, filePlugin)), closer, nil
}
