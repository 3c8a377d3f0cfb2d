package stream

import (
	"errors"
	"io"
)

// Reader reads a stream's content from either the block chain or the
// consolidated buffer. It implements the [io.Reader], [io.ByteReader],
// [io.Seeker] and [io.Closer] interfaces.
//
// A reader carries the generation of the buffers it was issued against;
// if those buffers are released (aggressive consolidation, buffer growth
// or disposal) every subsequent operation fails with [ErrUseAfterRelease]
// rather than reading released memory.
type Reader[P BlockPooler] struct {
	s      *Stream[P]
	gen    uint64
	offset int64
	closed bool
}

// Reader returns a pooled reader positioned at the start of the content.
// Close returns it to the pool.
func (s *Stream[P]) Reader() (*Reader[P], error) {
	if s.state == stateDisposed {
		return nil, ErrDisposed
	}
	r := s.readers.Get()
	r.init(s.gen, 0)
	return r, nil
}

// init is used to set up or reset the initial state of a Reader instance.
func (r *Reader[P]) init(gen uint64, offset int64) {
	r.gen = gen
	r.offset = offset
	r.closed = false
}

// Offset returns the reader's current position.
func (r *Reader[P]) Offset() int64 {
	return r.offset
}

func (r *Reader[P]) check() error {
	if r.s.state == stateDisposed {
		return ErrDisposed
	}
	if r.gen != r.s.gen {
		return ErrUseAfterRelease
	}
	return nil
}

// Read reads content into p and returns the number of bytes read.
// The error is [io.EOF] when fewer than len(p) bytes were available.
func (r *Reader[P]) Read(p []byte) (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil // No-op.
	}
	n, err := r.s.readAt(p, r.offset)
	r.offset += int64(n)
	return n, err
}

// ReadByte reads a single byte of content.
func (r *Reader[P]) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Seek sets the offset for the next read.
// It implements the [io.Seeker] interface.
//
// Seeking before the start of the content is an error. Seeking past the
// end is allowed; subsequent reads return [io.EOF].
func (r *Reader[P]) Seek(offset int64, whence int) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = r.offset + offset
	case io.SeekEnd:
		newOffset = r.s.length + offset // Offset is expected to be negative.
	default:
		return 0, errors.New("invalid whence")
	}
	if newOffset < 0 {
		return 0, errors.New("invalid offset: cannot be negative")
	}
	r.offset = newOffset
	return newOffset, nil
}

// Close returns the reader to its stream's reader pool. The reader
// must not be read after Close; closing an already closed reader is a
// no-op, so it is never pooled twice.
func (r *Reader[P]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.s.readers.Put(r)
	return nil
}
