// This file is part of pp5021sim.
//
// pp5021sim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pp5021sim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with pp5021sim.  If not, see <https://www.gnu.org/licenses/>.

// Package logger implements a small, capacity-bounded, central log used by
// every component of the simulator. Entries are kept in insertion order and
// the oldest entry is dropped once capacity is reached.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Permission is implemented by anything that can decide, at log time,
// whether logging should actually happen. This allows a caller to silence
// noisy components without the logger itself knowing about them.
type Permission interface {
	AllowLogging() bool
}

// Allow is the zero-overhead Permission that always allows logging.
var Allow = allowPermission{}

type allowPermission struct{}

func (allowPermission) AllowLogging() bool { return true }

// entry is a single log record.
type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s", e.tag, e.detail)
}

// Logger is a capacity-bounded, append-only ring of log entries.
type Logger struct {
	mu       sync.Mutex
	capacity int
	entries  []entry
}

// NewLogger is the preferred method of initialisation for the Logger type.
func NewLogger(capacity int) *Logger {
	return &Logger{
		capacity: capacity,
		entries:  make([]entry, 0, capacity),
	}
}

// Log adds an entry to the log, formatting detail according to its type:
// errors and fmt.Stringer use their natural string form, everything else
// falls back to the "%v" verb. The entry is dropped entirely if perm
// disallows logging.
func (l *Logger) Log(perm Permission, tag string, detail interface{}) {
	if !perm.AllowLogging() {
		return
	}
	l.append(tag, formatDetail(detail))
}

// Logf is equivalent to Log but accepts a format string and arguments.
func (l *Logger) Logf(perm Permission, tag string, format string, args ...interface{}) {
	if !perm.AllowLogging() {
		return
	}
	l.append(tag, fmt.Sprintf(format, args...))
}

func formatDetail(detail interface{}) string {
	switch v := detail.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (l *Logger) append(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, entry{tag: tag, detail: detail})
}

// Write writes every entry currently held, oldest first, to w.
func (l *Logger) Write(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := strings.Builder{}
	for _, e := range l.entries {
		s.WriteString(e.String())
		s.WriteRune('\n')
	}
	io.WriteString(w, s.String())
}

// Tail writes the last n entries to w, oldest first. Asking for more
// entries than are held is not an error.
func (l *Logger) Tail(w io.Writer, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}

	s := strings.Builder{}
	for _, e := range l.entries[len(l.entries)-n:] {
		s.WriteString(e.String())
		s.WriteRune('\n')
	}
	io.WriteString(w, s.String())
}

// Clear empties the log.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// central is the package-level logger used by the convenience Log/Logf
// functions, sized generously for a full simulator run between inspections.
var central = NewLogger(4096)

// Log appends to the package-level central logger.
func Log(tag string, detail interface{}) {
	central.Log(Allow, tag, detail)
}

// Logf appends a formatted entry to the package-level central logger.
func Logf(tag string, format string, args ...interface{}) {
	central.Logf(Allow, tag, format, args...)
}

// Write writes the central logger's contents to w.
func Write(w io.Writer) {
	central.Write(w)
}

// Tail writes the central logger's last n entries to w.
func Tail(w io.Writer, n int) {
	central.Tail(w, n)
}

// Clear empties the central logger.
func Clear() {
	central.Clear()
}
