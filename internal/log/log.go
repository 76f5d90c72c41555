package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LevelTrace is a custom trace level below debug
const LevelTrace = slog.Level(-8)

var (
	currentLevel atomic.Value // stores slog.Level

	mu     sync.Mutex
	format  = strings.ToLower(os.Getenv("LOG_FORMAT"))
	output  io.Writer = os.Stderr
	service string
)

func init() {
	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = slog.LevelInfo
	}
	currentLevel.Store(level)
	rebuild()
}

// ParseLevel maps a level name to its slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "ERROR":
		return slog.LevelError, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "TRACE":
		return LevelTrace, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
}

// Configure applies a level and a format ("text" or "json"). Empty values
// keep what the environment selected at startup.
func Configure(level, logFormat string) error {
	if level != "" {
		parsed, err := ParseLevel(level)
		if err != nil {
			return err
		}
		currentLevel.Store(parsed)
	}

	switch strings.ToLower(logFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", logFormat)
	}

	mu.Lock()
	if logFormat != "" {
		format = strings.ToLower(logFormat)
	}
	mu.Unlock()

	rebuild()
	return nil
}

// SetService tags every record with a service attribute. Empty removes it.
func SetService(name string) {
	mu.Lock()
	service = name
	mu.Unlock()
	rebuild()
}

// SetOutput redirects log output. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	output = w
	mu.Unlock()
	rebuild()
}

func replaceAttr(timeKey string, timeFormat func(time.Time) string) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{Key: timeKey, Value: slog.StringValue(timeFormat(a.Value.Time()))}
		}
		if a.Key == slog.LevelKey {
			if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
				return slog.Attr{Key: slog.LevelKey, Value: slog.StringValue("TRACE")}
			}
		}
		return a
	}
}

// rebuild recreates the default handler from the current level, format and output
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	level := currentLevel.Load().(slog.Level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: replaceAttr("timestamp", func(t time.Time) string {
				return t.UTC().Format(time.RFC3339Nano)
			}),
		})
	} else {
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: replaceAttr(slog.TimeKey, func(t time.Time) string {
				return t.Format("2006-01-02 15:04:05.000-07:00")
			}),
		})
	}

	logger := slog.New(handler)
	if service != "" {
		logger = logger.With("service", service)
	}
	slog.SetDefault(logger)
}

// GetLogLevel returns the current log level as a string
func GetLogLevel() string {
	switch currentLevel.Load().(slog.Level) {
	case slog.LevelError:
		return "error"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelInfo:
		return "info"
	case slog.LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

func Logf(format string, args ...any) {
	slog.Default().Info(fmt.Sprintf(format, args...))
}

func LogError(format string, args ...any) {
	slog.Default().Error(fmt.Sprintf(format, args...))
}

func LogWarn(format string, args ...any) {
	slog.Default().Warn(fmt.Sprintf(format, args...))
}

func LogDebug(format string, args ...any) {
	slog.Default().Debug(fmt.Sprintf(format, args...))
}

func LogTrace(format string, args ...any) {
	if currentLevel.Load().(slog.Level) <= LevelTrace {
		slog.Default().Log(context.Background(), LevelTrace, fmt.Sprintf(format, args...))
	}
}

func buildArgs(component string, fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2+2)
	args = append(args, "component", component)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

func LogInfoWithFields(component, message string, fields map[string]any) {
	slog.Default().Info(message, buildArgs(component, fields)...)
}

func LogDebugWithFields(component, message string, fields map[string]any) {
	slog.Default().Debug(message, buildArgs(component, fields)...)
}

func LogErrorWithFields(component, message string, fields map[string]any) {
	slog.Default().Error(message, buildArgs(component, fields)...)
}

func LogWarnWithFields(component, message string, fields map[string]any) {
	slog.Default().Warn(message, buildArgs(component, fields)...)
}

func LogTraceWithFields(component, message string, fields map[string]any) {
	if currentLevel.Load().(slog.Level) <= LevelTrace {
		slog.Default().Log(context.Background(), LevelTrace, message, buildArgs(component, fields)...)
	}
}
