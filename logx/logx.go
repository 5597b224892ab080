// SPDX-License-Identifier: MIT
// Package logx provides the pluggable progress/debug logger used across the
// coreset engine. Public algorithms never write to stdout directly; every
// package accepts a logx.Logger (or falls back to logx.Discard()) and emits
// structured events through it instead.
//
// The default logger discards everything, matching spec §6: "the core
// returns result values; it never writes to standard output. Progress/debug
// messages are emitted through a pluggable logger that defaults to discard."
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level mirrors the handful of severities the engine actually emits.
type Level int

const (
	// LevelDebug is used for per-iteration diagnostics (swap counts, cost deltas).
	LevelDebug Level = iota
	// LevelInfo is used for phase transitions (seeding done, coreset built).
	LevelInfo
	// LevelWarn is used for recoverable degeneracies (empty cluster reseeded).
	LevelWarn
)

// Config configures a Logger. The zero value is a valid, fully-discarding
// configuration.
type Config struct {
	// Level is the minimum severity that reaches Output. The zero value is
	// LevelDebug.
	Level Level
	// Output receives encoded log records. Defaults to io.Discard.
	Output io.Writer
}

// Logger is the narrow logging surface the engine depends on. Keeping it an
// interface (rather than exposing zerolog.Logger directly) lets callers plug
// in their own sink without pulling zerolog into their own import graph.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// zlog adapts a zerolog.Logger to the Logger interface.
type zlog struct {
	l zerolog.Logger
}

// New builds a Logger from cfg. A zero Config yields a fully discarding
// logger, so callers that don't care about progress output can pass
// logx.Config{} safely.
func New(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = io.Discard
	}
	level := toZerolog(cfg.Level)
	return &zlog{l: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// Discard returns the default, silent Logger. Packages use this when the
// caller passes a nil Logger, so no public entry point ever panics on a
// missing logger.
func Discard() Logger {
	return &zlog{l: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

// Stderr returns a convenience logger writing zerolog's JSON records to
// stderr, for local debugging;
// not used by library code, only by callers wiring up their own binaries.
func Stderr(level Level) Logger {
	return New(Config{Level: level, Output: os.Stderr})
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func (z *zlog) Debugf(format string, args ...interface{}) { z.l.Debug().Msgf(format, args...) }
func (z *zlog) Infof(format string, args ...interface{})  { z.l.Info().Msgf(format, args...) }
func (z *zlog) Warnf(format string, args ...interface{})  { z.l.Warn().Msgf(format, args...) }

// Or returns logger if non-nil, otherwise the discarding default. Every
// public entry point that accepts an optional Logger should route it
// through this helper instead of special-casing nil at each call site.
func Or(logger Logger) Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
