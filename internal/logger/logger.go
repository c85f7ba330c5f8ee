// Package logger configures the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to info and report ok=false.
func ParseLevel(name string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup builds the application logger, installs it as the slog default and
// returns it. Production gets JSON on stdout; every other environment gets
// the text handler.
func Setup(levelName, environment string) *slog.Logger {
	return setup(os.Stdout, levelName, environment)
}

func setup(w io.Writer, levelName, environment string) *slog.Logger {
	level, ok := ParseLevel(levelName)

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler).With("service", "todo-api")
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", levelName,
			"default_level", "info")
	}

	return logger
}

// Gorm returns a gorm logger that writes through the given slog logger.
// SQL statements are only traced at debug level.
func Gorm(logger *slog.Logger, levelName string) gormlogger.Interface {
	level, _ := ParseLevel(levelName)

	gormLevel := gormlogger.Warn
	switch {
	case level <= slog.LevelDebug:
		gormLevel = gormlogger.Info
	case level >= slog.LevelError:
		gormLevel = gormlogger.Error
	}

	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
