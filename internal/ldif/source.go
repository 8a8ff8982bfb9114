package ldif

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/KilimcininKorOglu/obasdk/internal/logging"
)

// RecordReader produces entries for an EntrySource. ReadEntry returns a nil
// entry and nil error at the end of input. Errors that can be read past
// implement MayContinueReading() bool and report true.
type RecordReader interface {
	ReadEntry() (*Entry, error)
	Close() error
}

// SourceErrorKind classifies a SourceError.
type SourceErrorKind int

const (
	// Recoverable errors leave the source open; the next call reads the
	// following record.
	Recoverable SourceErrorKind = iota
	// Fatal errors close the source.
	Fatal
)

// String returns the name of the kind.
func (k SourceErrorKind) String() string {
	switch k {
	case Recoverable:
		return "recoverable"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// SourceError is returned by EntrySource.NextEntry.
type SourceError struct {
	Kind SourceErrorKind
	Err  error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("ldif: %s error reading entry: %v", e.Kind, e.Err)
}

// Unwrap returns the reader error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// MayContinueReading reports whether NextEntry may be called again.
func (e *SourceError) MayContinueReading() bool {
	return e.Kind == Recoverable
}

type continuable interface {
	MayContinueReading() bool
}

// SourceOption configures an EntrySource.
type SourceOption func(*EntrySource)

// WithLogger sets the logger used for skipped records and close failures.
func WithLogger(l logging.Logger) SourceOption {
	return func(s *EntrySource) {
		if l != nil {
			s.logger = l
		}
	}
}

// EntrySource reads entries from a RecordReader it owns until the reader is
// exhausted, fails, or the source is closed. NextEntry must be called from a
// single goroutine; Close may be called from any goroutine.
type EntrySource struct {
	reader RecordReader
	closed atomic.Bool
	logger logging.Logger
}

// NewEntrySource creates an open source over reader.
func NewEntrySource(reader RecordReader, opts ...SourceOption) *EntrySource {
	s := &EntrySource{reader: reader, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextEntry returns the next entry, or nil once the source is closed or the
// reader is exhausted. Errors are *SourceError values.
func (s *EntrySource) NextEntry() (*Entry, error) {
	if s.closed.Load() {
		return nil, nil
	}

	entry, err := s.reader.ReadEntry()
	if err != nil {
		var c continuable
		if errors.As(err, &c) && c.MayContinueReading() {
			s.logger.Debug("skipping unreadable entry", "error", err)
			return nil, &SourceError{Kind: Recoverable, Err: err}
		}
		s.Close()
		return nil, &SourceError{Kind: Fatal, Err: err}
	}

	if entry == nil {
		s.Close()
		return nil, nil
	}
	return entry, nil
}

// Close releases the reader. Only the first call has an effect; errors from
// the reader are logged and discarded.
func (s *EntrySource) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if err := s.reader.Close(); err != nil {
		s.logger.Debug("error closing entry reader", "error", err)
	}
}

// Closed reports whether the source has been closed.
func (s *EntrySource) Closed() bool {
	return s.closed.Load()
}
