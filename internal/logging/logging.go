// Package logging provides the process-wide structured logger. It wraps
// log/slog behind a small singleton so call sites don't thread a *slog.Logger
// through every function signature.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// Initialize configures the global logger from the environment.
// SCHLUSSEL_DEBUG=1 lowers the level to Debug; UNSTRUCTURED_LOGS=1 switches
// from JSON to a human-readable text handler, useful at a terminal.
func Initialize() {
	level := slog.LevelInfo
	if os.Getenv("SCHLUSSEL_DEBUG") != "" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("UNSTRUCTURED_LOGS") != "" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	current.Store(slog.New(handler))
}

func logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Initialize()
	return current.Load()
}

func Debugf(format string, args ...any) { logger().Debug(sprintf(format, args...)) }
func Infof(format string, args ...any)  { logger().Info(sprintf(format, args...)) }
func Warnf(format string, args ...any)  { logger().Warn(sprintf(format, args...)) }
func Errorf(format string, args ...any) { logger().Error(sprintf(format, args...)) }

// Debugw, Infow, Warnw and Errorw log msg with structured key/value pairs,
// for call sites that want fields rather than a formatted string.
func Debugw(msg string, kv ...any) { logger().Debug(msg, kv...) }
func Infow(msg string, kv ...any)  { logger().Info(msg, kv...) }
func Warnw(msg string, kv ...any)  { logger().Warn(msg, kv...) }
func Errorw(msg string, kv ...any) { logger().Error(msg, kv...) }

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
