package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func DefaultEncoderConfig() zapcore.EncoderConfig {
	var encoderConfig = zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderConfig
}

// 文件统一用json
func DefaultEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(DefaultEncoderConfig())
}

// ConsoleEncoder writes one readable line per record, for terminals.
func ConsoleEncoder() zapcore.Encoder {
	cfg := DefaultEncoderConfig()
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func DefaultOption() []zap.Option {
	var stackTraceLevel zap.LevelEnablerFunc = func(level zapcore.Level) bool {
		return level >= zapcore.DPanicLevel
	}
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(stackTraceLevel),
	}
}

type FileOption func(*lumberjack.Logger)

// WithMaxSize sets the size in megabytes a file reaches before rotation.
func WithMaxSize(mb int) FileOption {
	return func(l *lumberjack.Logger) {
		l.MaxSize = mb
	}
}

func WithMaxBackups(n int) FileOption {
	return func(l *lumberjack.Logger) {
		l.MaxBackups = n
	}
}

// 1.默认不清理backup
// 2.每200mb压缩一次，不按时间rotate
func DefaultLumberjackLogger(opts ...FileOption) *lumberjack.Logger {
	l := &lumberjack.Logger{
		MaxSize:   200,
		LocalTime: true,
		Compress:  true,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}
