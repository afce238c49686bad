// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package logging defines the logging capability every other package in
// this module consumes, plus a default implementation wrapping the
// standard library's log.Logger.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/cockroachdb/redact"
)

// Logger is the capability every other package logs through. Messages
// may interpolate redact.RedactableString/SafeString arguments so a
// deployment that forwards logs somewhere shared can later redact raw
// key/value bytes without touching call sites.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// stdLogger adapts the standard library's log.Logger to Logger.
type stdLogger struct {
	*log.Logger
}

// New returns a Logger writing to w with the given prefix, e.g.
// logging.New(os.Stderr, "arisdb: ").
func New(w io.Writer, prefix string) Logger {
	return &stdLogger{Logger: log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)}
}

// Default is a ready-to-use Logger writing to stderr, for callers (and
// tests) that don't need a custom destination.
var Default Logger = New(os.Stderr, "arisdb: ")

func (l *stdLogger) Infof(format string, args ...interface{})  { l.Printf("INFO  "+format, args...) }
func (l *stdLogger) Errorf(format string, args ...interface{}) { l.Printf("ERROR "+format, args...) }
func (l *stdLogger) Fatalf(format string, args ...interface{}) { l.Logger.Fatalf("FATAL "+format, args...) }

// Corruption logs a redact-safe corruption report: component identifies
// the subsystem ("wal", "vlog", "sstable"); detail is free-form context
// that must not itself contain raw user key/value bytes.
func Corruption(l Logger, component redact.SafeString, detail string) {
	l.Errorf("%s: corruption detected: %s", component, detail)
}
