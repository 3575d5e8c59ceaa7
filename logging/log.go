// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algojig
//
// go-algojig is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algojig is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algojig.  If not, see <https://www.gnu.org/licenses/>.

// Package logging is the harness logger: logrus entries annotated with the
// caller's file, line and function.
package logging

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level refers to the log logging level
type Level uint32

const (
	// Error Level level. Used for errors that should definitely be noted.
	Error = Level(logrus.ErrorLevel)
	// Warn Level level. Non-critical entries that deserve eyes.
	Warn = Level(logrus.WarnLevel)
	// Info Level level. Engine failures and other outcomes of a run.
	Info = Level(logrus.InfoLevel)
	// Debug Level level. Every encode, engine call and merge.
	Debug = Level(logrus.DebugLevel)
)

const stackPrefix = "[Stack]"

// Fields maps logrus fields
type Fields = logrus.Fields

// Logger is the interface for loggers.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	// Errorf logs at level Error, preceded by the current stack.
	Errorf(string, ...interface{})

	// With adds one key-value to every entry of the returned logger.
	With(key string, value interface{}) Logger
	// WithFields adds several key-values to every entry of the returned logger.
	WithFields(Fields) Logger

	SetLevel(Level)
	SetOutput(io.Writer)
	SetJSONFormatter()
}

type logger struct {
	entry *logrus.Entry
}

var baseLogger = newBaseLogger()

// newBaseLogger logs to stderr, warnings and above.
func newBaseLogger() Logger {
	l := NewLogger()
	l.SetLevel(Warn)
	return l
}

// Base returns the logger shared by the harness and the CLI.
func Base() Logger {
	return baseLogger
}

// NewLogger returns a new Logger logging to stderr with microsecond
// timestamps.
func NewLogger() Logger {
	l := logrus.New()
	if tf, ok := l.Formatter.(*logrus.TextFormatter); ok {
		tf.TimestampFormat = "2006-01-02T15:04:05.000000 -0700"
	}
	return logger{logrus.NewEntry(l)}
}

func (l logger) With(key string, value interface{}) Logger {
	return logger{l.entry.WithField(key, value)}
}

func (l logger) WithFields(fields Fields) Logger {
	return logger{l.entry.WithFields(fields)}
}

func (l logger) Debugf(format string, args ...interface{}) {
	l.caller().Debugf(format, args...)
}

func (l logger) Infof(format string, args ...interface{}) {
	l.caller().Infof(format, args...)
}

func (l logger) Warnf(format string, args ...interface{}) {
	l.caller().Warnf(format, args...)
}

func (l logger) Errorf(format string, args ...interface{}) {
	event := l.caller()
	event.Errorln(stackPrefix, string(debug.Stack()))
	event.Errorf(format, args...)
}

func (l logger) SetLevel(lvl Level) {
	l.entry.Logger.SetLevel(logrus.Level(lvl))
}

func (l logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

func (l logger) SetJSONFormatter() {
	l.entry.Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000000Z07:00"})
}

// caller annotates the entry with the file, line and function of the code
// that called the logging method.
func (l logger) caller() *logrus.Entry {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return l.entry
	}
	event := l.entry.WithFields(logrus.Fields{
		"file": file[strings.LastIndex(file, "/")+1:],
		"line": line,
	})
	if function := runtime.FuncForPC(pc); function != nil {
		event = event.WithField("function", function.Name())
	}
	return event
}

// ParseLevel converts a level name ("debug", "info", ...) into a Level.
// Levels past debug collapse to Debug.
func ParseLevel(name string) (Level, error) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return Warn, fmt.Errorf("unknown log level %q: %w", name, err)
	}
	if lvl > logrus.DebugLevel {
		lvl = logrus.DebugLevel
	}
	return Level(lvl), nil
}
