// SPDX-License-Identifier: MIT

// Package logging builds the zerolog loggers used by the amr tools.
//
// Console output (RFC3339 timestamps, colored on terminals) is the default;
// JSON output is selected by Options.JSON. Environment variables override
// the options:
//
//	AMR_LOG_LEVEL      trace|debug|info|warn|error|disabled
//	AMR_LOG_JSON       bool
//	AMR_LOG_NOCOLOR    bool
//	AMR_LOG_TIMESTAMP  bool
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Environment variable names.
const (
	EnvLevel     = "AMR_LOG_LEVEL"
	EnvJSON      = "AMR_LOG_JSON"
	EnvNoColor   = "AMR_LOG_NOCOLOR"
	EnvTimestamp = "AMR_LOG_TIMESTAMP"
)

// ErrBadEnv indicates an unparsable environment override.
var ErrBadEnv = errors.New("logging: invalid environment override")

// Options configure New.
type Options struct {
	App       string        // value of the "app" field, omitted when empty
	Level     zerolog.Level // minimum level
	Out       io.Writer     // destination, os.Stderr when nil
	JSON      bool          // raw JSON lines instead of console output
	NoColor   bool          // disable ANSI colors in console output
	Timestamp bool          // add a "time" field
}

// DefaultOptions logs at info level to stderr with timestamps.
func DefaultOptions(app string) Options {
	return Options{App: app, Level: zerolog.InfoLevel, Timestamp: true}
}

// ParseLevel accepts zerolog level names, case-insensitive.
func ParseLevel(s string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.NoLevel, fmt.Errorf("level %q: %w", s, ErrBadEnv)
	}
	return lvl, nil
}

// ApplyEnv returns o with the AMR_LOG_* overrides applied.
func ApplyEnv(o Options) (Options, error) {
	if v, ok := os.LookupEnv(EnvLevel); ok {
		lvl, err := ParseLevel(v)
		if err != nil {
			return o, fmt.Errorf("%s: %w", EnvLevel, err)
		}
		o.Level = lvl
	}
	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{EnvJSON, &o.JSON},
		{EnvNoColor, &o.NoColor},
		{EnvTimestamp, &o.Timestamp},
	} {
		v, ok := os.LookupEnv(b.name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return o, fmt.Errorf("%s=%q: %w", b.name, v, ErrBadEnv)
		}
		*b.dst = parsed
	}
	return o, nil
}

// New builds a logger from o.
func New(o Options) zerolog.Logger {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	if !o.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    o.NoColor || !isTerminal(out),
		}
	}
	ctx := zerolog.New(out).Level(o.Level).With()
	if o.Timestamp {
		ctx = ctx.Timestamp()
	}
	if o.App != "" {
		ctx = ctx.Str("app", o.App)
	}
	return ctx.Logger()
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
