// Package logger builds the slog.Logger used by the CLI from config.LoggerSettings.
package logger

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/lumberjack"

	"github.com/anchorageoss/p256/internal/config"
)

// New returns a console logger writing text to w, or a JSON logger writing
// to a rotating file, depending on s.LogType. The returned closer releases
// the log file and is a no-op for console loggers.
func New(s config.LoggerSettings, w io.Writer) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(s.LogLevel)}

	switch s.LogType {
	case config.LogTypeConsole, "":
		return slog.New(slog.NewTextHandler(w, opts)), nopCloser{}, nil
	case config.LogTypeFile:
		if s.FilePath == "" {
			return nil, nil, fmt.Errorf("file path required for file logger")
		}
		writer := &lumberjack.Logger{
			Filename:   s.FilePath,
			MaxSize:    s.MaxSize,
			MaxBackups: s.MaxBackups,
			MaxAge:     s.MaxAge,
			Compress:   true,
		}
		return slog.New(slog.NewJSONHandler(writer, opts)), writer, nil
	default:
		return nil, nil, fmt.Errorf("unsupported log type: %s", s.LogType)
	}
}

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarning:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
