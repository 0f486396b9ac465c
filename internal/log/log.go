// ABOUTME: Process-wide structured logger built on zap
// ABOUTME: Diagnostic logs go to stderr; user-facing messages live in the console package

// Package log wraps a zap logger behind package-level helpers.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger
type Options struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
	OutputPaths       []string
}

// NewOptions returns the defaults used when no debug output was requested
func NewOptions() *Options {
	return &Options{
		Level:             "warn",
		Encoding:          "console",
		DisableCaller:     true,
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
	}
}

var (
	mu     sync.Mutex
	logger = zap.NewNop()
)

// Init replaces the package logger. Until it is called every helper is a no-op.
func Init(opts *Options) error {
	z, err := build(opts)
	if err != nil {
		return err
	}

	mu.Lock()
	logger = z
	mu.Unlock()
	return nil
}

// Set installs an already built logger.
func Set(z *zap.Logger) {
	mu.Lock()
	logger = z
	mu.Unlock()
}

// L returns the current logger
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func build(opts *Options) (*zap.Logger, error) {
	if opts == nil {
		opts = NewOptions()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.WarnLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "message"
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Encoding == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	outputs := opts.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	cfg := &zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		DisableCaller:     opts.DisableCaller,
		DisableStacktrace: opts.DisableStacktrace,
		Encoding:          opts.Encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	return cfg.Build(zap.AddCallerSkip(1))
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	_ = L().Sync()
}

// Debugw logs at debug level with structured key/value pairs
func Debugw(msg string, keysAndValues ...interface{}) {
	L().Sugar().Debugw(msg, keysAndValues...)
}

// Infow logs at info level
func Infow(msg string, keysAndValues ...interface{}) {
	L().Sugar().Infow(msg, keysAndValues...)
}

// Warnw logs at warn level
func Warnw(msg string, keysAndValues ...interface{}) {
	L().Sugar().Warnw(msg, keysAndValues...)
}

// Errorw logs at error level
func Errorw(msg string, keysAndValues ...interface{}) {
	L().Sugar().Errorw(msg, keysAndValues...)
}
