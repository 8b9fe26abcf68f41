// Package logging builds the process logger. Logs go to stderr by default so
// the stdio MCP transport keeps stdout clean for protocol frames; a file path
// switches to JSON output with size-based rotation.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log destination and verbosity.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Path, when set, sends JSON logs to a rotating file instead of stderr.
	Path string

	// MaxSizeMB and MaxBackups tune file rotation; zero values use the
	// lumberjack defaults.
	MaxSizeMB  int
	MaxBackups int
}

// New creates the configured zap logger.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	if opts.Path == "" {
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
		return zap.New(core), nil
	}

	writer := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), level)
	return zap.New(core), nil
}
