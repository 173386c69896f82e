// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the process logger. It is built once from command-line
// flags and handed to New; nothing else in the tree touches zap globals.
type Options struct {
	// Verbosity counts -v flags: 0=error, 1=warn, 2=info, 3 or more=debug.
	Verbosity int
	// Writer receives log lines. Defaults to stderr.
	Writer io.Writer
}

// DefaultVerbosity is used when neither -v nor -q is given.
const DefaultVerbosity = 1

// Level maps a verbosity count to a zap level.
func Level(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.ErrorLevel
	case verbosity == 1:
		return zapcore.WarnLevel
	case verbosity == 2:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a console logger. At low verbosity only the message is printed;
// from info upwards each line carries a timestamp, level and caller.
func New(opts Options) *zap.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	if opts.Verbosity <= DefaultVerbosity {
		encCfg.TimeKey = ""
		encCfg.LevelKey = ""
		encCfg.CallerKey = ""
		encCfg.NameKey = ""
		encCfg.StacktraceKey = ""
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(Level(opts.Verbosity)),
	)

	zopts := []zap.Option{zap.ErrorOutput(zapcore.AddSync(w))}
	if opts.Verbosity > DefaultVerbosity {
		zopts = append(zopts, zap.AddCaller())
	}
	return zap.New(core, zopts...)
}
