package slogadapter

import (
	"log/slog"
	"strings"
)

// Adapter implements axlog.Logger on top of a *slog.Logger.
type Adapter struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// With returns an adapter that prefixes every record with the given attributes.
func (a *Adapter) With(keyValues ...any) *Adapter {
	return &Adapter{logger: a.logger.With(keyValues...)}
}

func (a *Adapter) Info(msg string, keyValues ...any) {
	a.logger.Info(msg, keyValues...)
}

func (a *Adapter) Error(msg string, keyValues ...any) {
	a.logger.Error(msg, keyValues...)
}

func (a *Adapter) Debug(msg string, keyValues ...any) {
	a.logger.Debug(msg, keyValues...)
}

func (a *Adapter) Warn(msg string, keyValues ...any) {
	a.logger.Warn(msg, keyValues...)
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
