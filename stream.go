package bufpool

import (
	"github.com/google/uuid"

	"github.com/holmberd/go-bufpool/internal/stream"
)

// Stream is a pooled, growable byte stream. See [Manager.NewStream].
//
// A Stream is not safe for concurrent use by multiple goroutines: its
// block chain and position state are unsynchronized and assume one
// logical writer/reader at a time. This is a documented contract; the
// shared state behind it, the [Manager], is fully concurrent-safe.
type Stream struct {
	inner *stream.Stream[*Manager]
}

// View is a zero-copy, generation-checked handle to a stream's
// consolidated content.
type View = stream.View[*Manager]

// Reader reads stream content; see [Stream.Reader].
type Reader = stream.Reader[*Manager]

// NewStream creates an empty stream drawing from the manager's pools.
// The tag is attached to every pool interaction for diagnostics.
func (m *Manager) NewStream(tag string) (*Stream, error) {
	inner, err := stream.New(m, m.logger, m.streamConfig(), tag)
	if err != nil {
		return nil, err
	}
	return &Stream{inner: inner}, nil
}

// NewStreamWithCapacity creates a stream with enough blocks pre-acquired
// to hold capacity bytes without further pool round-trips.
func (m *Manager) NewStreamWithCapacity(tag string, capacity int64) (*Stream, error) {
	s, err := m.NewStream(tag)
	if err != nil {
		return nil, err
	}
	if err := s.inner.Reserve(capacity); err != nil {
		s.inner.Dispose()
		return nil, err
	}
	return s, nil
}

func (m *Manager) streamConfig() stream.Config {
	return stream.Config{
		BlockSize:        m.config.BlockSize,
		MaxCapacity:      m.config.MaxStreamCapacity,
		MaxPooledBuffer:  m.config.MaximumBufferSize,
		AggressiveReturn: m.config.AggressiveBufferReturn,
		DisableToArray:   m.config.DisableToArray,
		CaptureStacks:    m.config.GenerateCallStacks,
	}
}

// ID returns the stream's unique diagnostic identity.
func (s *Stream) ID() uuid.UUID { return s.inner.ID() }

// Tag returns the diagnostic tag the stream was created with.
func (s *Stream) Tag() string { return s.inner.Tag() }

// Len returns the stream's content length in bytes.
func (s *Stream) Len() int64 { return s.inner.Len() }

// Consolidated reports whether the content lives in one contiguous buffer.
func (s *Stream) Consolidated() bool { return s.inner.Consolidated() }

// Disposed reports whether the stream has been disposed.
func (s *Stream) Disposed() bool { return s.inner.Disposed() }

// Write appends p to the stream, acquiring pool blocks as needed.
// It implements the [io.Writer] interface.
func (s *Stream) Write(p []byte) (int, error) { return s.inner.Write(p) }

// WriteByte appends a single byte to the stream.
func (s *Stream) WriteByte(c byte) error { return s.inner.WriteByte(c) }

// Consolidate copies the stream's block chain into one contiguous pooled
// buffer and returns a zero-copy view of the content. With aggressive
// buffer return configured, previously issued views and readers become
// invalid and fail with [ErrUseAfterRelease].
func (s *Stream) Consolidate() (View, error) { return s.inner.Consolidate() }

// ToArray returns an independently owned copy of the stream content, or
// [ErrToArrayDisabled] when the pool's diagnostic guard is configured.
func (s *Stream) ToArray() ([]byte, error) { return s.inner.ToArray() }

// Reader returns a pooled reader positioned at the start of the content.
// Close the reader to return it to the pool.
func (s *Stream) Reader() (*Reader, error) { return s.inner.Reader() }

// Dispose returns every buffer the stream owns to the pool exactly once.
// Disposing an already disposed stream is a no-op; any other operation
// on a disposed stream fails with [ErrStreamDisposed].
func (s *Stream) Dispose() error { return s.inner.Dispose() }
