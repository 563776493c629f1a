package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog handler, wrapped so that errors logged via
// ErrAttr get their cockroachdb/errors stack trace attached, as the process
// default logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel converts a level name to a slog.Level. Panics on an unknown
// name; the level is operator-supplied configuration and has no sane default.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogAdapter adapts the process-default slog.Logger to the Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

// GetLogger returns a Logger backed by the process-default slog logger.
func GetLogger() Logger {
	return &slogAdapter{logger: slog.Default()}
}

// GetLoggerWithName returns a Logger pre-populated with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

func (s *slogAdapter) Debug(msg string, fields ...any) { s.logger.Debug(msg, fields...) }
func (s *slogAdapter) Info(msg string, fields ...any)  { s.logger.Info(msg, fields...) }
func (s *slogAdapter) Warn(msg string, fields ...any)  { s.logger.Warn(msg, fields...) }
func (s *slogAdapter) Error(msg string, fields ...any) { s.logger.Error(msg, fields...) }

func (s *slogAdapter) With(fields ...any) Logger {
	return &slogAdapter{logger: s.logger.With(fields...)}
}

func (s *slogAdapter) Enabled(ctx context.Context, level Level) bool {
	return s.logger.Enabled(ctx, slog.Level(level))
}
