// Package logger builds application zap loggers from the node configuration.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prm groups Logger's parameters.
type Prm struct {
	level    zapcore.Level
	encoding string
}

// SetLevelString sets minimum logging level from its text form
// ("debug", "info", "warn", "error", "dpanic", "panic", "fatal").
func (p *Prm) SetLevelString(s string) error {
	return p.level.UnmarshalText([]byte(s))
}

// SetEncoding sets log records encoding: "console" (default) or "json".
func (p *Prm) SetEncoding(s string) error {
	switch s {
	case "", "console", "json":
		p.encoding = s
		return nil
	default:
		return fmt.Errorf("unsupported log encoding %q", s)
	}
}

// Logger is a zap.Logger whose level can be changed at runtime.
type Logger struct {
	*zap.Logger

	lvl zap.AtomicLevel
}

// NewLogger constructs Logger according to the parameters. Zero Prm gives
// console logger writing records of info and higher levels to stderr.
//
// Time is encoded in ISO8601 format, stack traces are attached to fatal
// records only.
func NewLogger(prm Prm) (*Logger, error) {
	lvl := zap.NewAtomicLevelAt(prm.level)

	c := zap.NewProductionConfig()
	c.Level = lvl
	c.Encoding = prm.encoding
	if c.Encoding == "" {
		c.Encoding = "console"
	}
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &Logger{Logger: l, lvl: lvl}, nil
}

// Reload applies new minimum level to all records written after the call.
func (l *Logger) Reload(prm Prm) {
	l.lvl.SetLevel(prm.level)
}
