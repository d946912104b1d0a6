// Copyright 2026 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides the structured logger used by the IPTV applications.
//
// Log messages are short, capitalized sentences. Context is passed as
// alternating key/value pairs:
//
//	log.Info("Sent frame", "seq", seq, "group", group)
//
// The package-level functions log through the root logger, which is
// replaced by Setup. Before Setup is called the root logger discards
// everything.
package log

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scionproto/mcastlab/pkg/metrics"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

// Level is the log level.
type Level zapcore.Level

// The supported log levels.
const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// ParseLevel parses the textual representation of a log level.
func ParseLevel(lvl string) (Level, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, serrors.New("unknown log level", "level", lvl)
	}
}

func (l Level) String() string {
	return zapcore.Level(l).String()
}

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// ConsoleLevel is the level of the console logger. It can be changed at
// runtime, and it implements http.Handler to query and set the level over
// HTTP (GET and PUT with a JSON body like {"level":"debug"}).
var ConsoleLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// EntriesCounter counts the emitted log entries per level.
type EntriesCounter struct {
	Debug metrics.Counter
	Info  metrics.Counter
	Error metrics.Counter
}

type options struct {
	entriesCounter EntriesCounter
}

// Option is an option for Setup.
type Option func(*options)

// WithEntriesCounter makes the logger count every emitted entry.
func WithEntriesCounter(ec EntriesCounter) Option {
	return func(o *options) {
		o.entriesCounter = ec
	}
}

// Setup configures the root logger according to cfg. The previous root
// logger is flushed and replaced.
func Setup(cfg Config, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, err := ParseLevel(cfg.Console.Level)
	if err != nil {
		return err
	}
	stackLvl, err := ParseLevel(cfg.Console.StacktraceLevel)
	if err != nil {
		return err
	}
	ConsoleLevel.SetLevel(zapcore.Level(lvl))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Console.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	zapOpts := []zap.Option{
		zap.AddStacktrace(zapcore.Level(stackLvl)),
		zap.Hooks(o.entriesCounter.count),
	}
	if !cfg.Console.DisableCaller {
		zapOpts = append(zapOpts, zap.AddCaller())
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), ConsoleLevel)
	Flush()
	zap.ReplaceGlobals(zap.New(core, zapOpts...))
	return nil
}

func (ec EntriesCounter) count(e zapcore.Entry) error {
	switch e.Level {
	case zapcore.DebugLevel:
		metrics.CounterInc(ec.Debug)
	case zapcore.InfoLevel:
		metrics.CounterInc(ec.Info)
	default:
		metrics.CounterInc(ec.Error)
	}
	return nil
}

// Flush writes the logs to the underlying buffer.
func Flush() {
	// Sync on stderr fails on some terminals, nothing useful can be done
	// about it here.
	_ = zap.L().Sync()
}

// HandlePanic catches panics and logs them. It must be deferred at the top
// of every goroutine.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.Stack("stack"))
		zap.L().Error("=====================> Service panicked!")
		Flush()
		fmt.Fprintf(os.Stderr, "panic: %v\n", msg)
		os.Exit(255)
	}
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// Debug logs at debug level.
func Debug(msg string, ctx ...any) {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, convertCtx(ctx)...)
}

// Info logs at info level.
func Info(msg string, ctx ...any) {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Info(msg, convertCtx(ctx)...)
}

// Error logs at error level.
func Error(msg string, ctx ...any) {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Error(msg, convertCtx(ctx)...)
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}
