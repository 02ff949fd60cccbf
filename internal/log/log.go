// Package log provides context-aware logging for abt.
//
// Human-facing diagnostics go to the writer given to [New] (stderr in the
// CLI). Structured events are additionally sent to a zap logger, which is a
// no-op unless --log-file is set. The dashboard owns the terminal, so it
// runs with a [Logger.Silent] copy that only writes to zap.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// Logger provides output and verbose request logging.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
	zl      *zap.SugaredLogger
}

// New creates a new logger.
func New(out io.Writer, verbose, quiet bool) *Logger {
	return &Logger{out: out, verbose: verbose, quiet: quiet, zl: zap.NewNop().Sugar()}
}

// NewFileSink builds a JSON zap logger appending to path.
func NewFileSink(path string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return z, nil
}

// WithZap returns a copy of l that also sends structured events to z.
func (l *Logger) WithZap(z *zap.Logger) *Logger {
	c := *l
	c.zl = z.Sugar()
	return &c
}

// Silent returns a copy of l that never writes to its writer.
func (l *Logger) Silent() *Logger {
	c := *l
	c.out = io.Discard
	c.quiet = true
	return &c
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return New(io.Discard, false, true)
}

// Printf writes formatted output unless quiet.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output unless quiet.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Request logs an outgoing HTTP request and returns a func that logs its
// outcome. Printed only in verbose mode; always sent to the zap sink.
func (l *Logger) Request(method, url string) func(status int, d time.Duration) {
	return func(status int, d time.Duration) {
		l.zl.Debugw("http request", "method", method, "url", url, "status", status, "duration", d)
		if !l.IsVerbose() {
			return
		}
		fmt.Fprintf(l.out, "%s %s -> %d (%s)\n", method, url, status, d.Round(time.Millisecond))
	}
}

// Debug logs a message with key-value pairs in verbose mode.
// A trailing key without value is dropped.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if len(keyvals)%2 == 1 {
		keyvals = keyvals[:len(keyvals)-1]
	}
	l.zl.Debugw(msg, keyvals...)
	if !l.IsVerbose() {
		return
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	fmt.Fprintln(l.out, b.String())
}

// Warn records a non-fatal problem. Printed unless quiet.
func (l *Logger) Warn(msg string, keyvals ...any) {
	if len(keyvals)%2 == 1 {
		keyvals = keyvals[:len(keyvals)-1]
	}
	l.zl.Warnw(msg, keyvals...)
	if l.quiet {
		return
	}
	var b strings.Builder
	b.WriteString("warning: ")
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	fmt.Fprintln(l.out, b.String())
}

// Zap returns the structured logger.
func (l *Logger) Zap() *zap.SugaredLogger {
	return l.zl
}

// Sync flushes the structured logger.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

// IsVerbose returns true if verbose output is enabled (and not quiet).
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}
