// Package oplog records mutating registry operations in an append-only,
// human-readable file. Each entry is a single "timestamp - message" line.
package oplog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/users333/faculty-registry/internal/pkg/filestorage"
	"github.com/users333/faculty-registry/internal/pkg/helpers"
)

// ErrClosed is returned when writing to or closing a sink that was already closed.
var ErrClosed = errors.New("operation log is closed")

// Sink accepts operation messages.
type Sink interface {
	Record(message string) error
	Close() error
}

// FormatEntry renders one log line without the trailing newline.
func FormatEntry(at time.Time, message string) string {
	return helpers.FormatTimestamp(at) + " - " + message
}

// Option configures a FileSink.
type Option func(*FileSink)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *FileSink) { s.now = now }
}

// FileSink appends entries to a file it keeps open until Close.
type FileSink struct {
	mu     sync.Mutex
	closer io.Closer
	w      *bufio.Writer
	path   string
	now    func() time.Time
}

// Open opens (or creates) the log file name inside storage in append mode.
func Open(storage *filestorage.LocalStorage, name string, opts ...Option) (*FileSink, error) {
	file, err := storage.OpenAppend(name)
	if err != nil {
		return nil, fmt.Errorf("open operation log: %w", err)
	}

	s := &FileSink{
		closer: file,
		w:      bufio.NewWriter(file),
		path:   file.Name(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the file backing the sink.
func (s *FileSink) Path() string {
	return s.path
}

// Record writes one entry and flushes it to the OS immediately.
func (s *FileSink) Record(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return ErrClosed
	}
	if _, err := s.w.WriteString(FormatEntry(s.now(), message) + "\n"); err != nil {
		return fmt.Errorf("write operation log: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush operation log: %w", err)
	}
	return nil
}

// Close flushes and releases the file. Only the first call does any work.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return ErrClosed
	}
	flushErr := s.w.Flush()
	closeErr := s.closer.Close()
	s.w = nil
	return errors.Join(flushErr, closeErr)
}

// MemorySink keeps entries in memory.
type MemorySink struct {
	mu      sync.Mutex
	entries []string
	closed  bool
	Fail    error
}

// Record stores message, or returns Fail when set.
func (m *MemorySink) Record(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.Fail != nil {
		return m.Fail
	}
	m.entries = append(m.entries, message)
	return nil
}

// Close marks the sink closed.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}

// Entries returns the recorded messages in order.
func (m *MemorySink) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.entries...)
}

// Closed reports whether Close was called.
func (m *MemorySink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// String joins the entries, one per line.
func (m *MemorySink) String() string {
	return strings.Join(m.Entries(), "\n")
}
