//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"fmt"
	"io"
	"sync"
)

// Logger implements the diagnostics facility. It is safe for
// concurrent use; workers report progress through the same Logger.
type Logger struct {
	Verbose bool
	m       sync.Mutex
	out     io.Writer
}

// NewLogger creates a new logger outputting to the argument io.Writer.
func NewLogger(out io.Writer) *Logger {
	return &Logger{
		out: out,
	}
}

func (l *Logger) write(prefix, msg string) {
	if len(msg) > 0 && msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	l.m.Lock()
	fmt.Fprintf(l.out, "%s%s", prefix, msg)
	l.m.Unlock()
}

// Printf logs an informational message.
func (l *Logger) Printf(format string, a ...interface{}) {
	l.write("", fmt.Sprintf(format, a...))
}

// Debugf logs a message if Verbose debugging is enabled.
func (l *Logger) Debugf(format string, a ...interface{}) {
	if !l.Verbose {
		return
	}
	l.write("", fmt.Sprintf(format, a...))
}

// Warningf logs a warning message.
func (l *Logger) Warningf(format string, a ...interface{}) {
	l.write("warning: ", fmt.Sprintf(format, a...))
}
