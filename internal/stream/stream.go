// Package stream implements a pooled, growable byte stream backed by a
// chain of fixed-size blocks that can be consolidated into one
// contiguous large buffer.
//
// A Stream is not safe for concurrent use: its block chain and position
// state are unsynchronized and assume one logical writer/reader at a
// time. The pool behind it is shared, concurrent-safe state.
package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/holmberd/go-bufpool/internal/stacktrace"
)

var (
	ErrDisposed         = errors.New("stream is disposed")
	ErrCapacityExceeded = errors.New("stream capacity exceeded")
	ErrToArrayDisabled  = errors.New("ToArray is disabled on this pool")
	ErrUseAfterRelease  = errors.New("view is invalid: backing buffers were released")
)

// BlockPooler defines the contract for the dual-tier pool manager a
// stream acquires its buffers from.
type BlockPooler interface {
	AcquireBlock() []byte
	ReleaseBlocks(blocks [][]byte, streamID uuid.UUID, tag string) error
	AcquireLargeBuffer(requiredSize int) ([]byte, error)
	ReleaseLargeBuffer(buf []byte, streamID uuid.UUID, tag string) error
}

type streamState int

const (
	stateWritable     streamState = iota // Content lives in the block chain.
	stateConsolidated                    // Content lives in one contiguous large buffer.
	stateDisposed                        // Terminal; all buffers returned to the pool.
)

func (s streamState) String() string {
	switch s {
	case stateWritable:
		return "writable"
	case stateConsolidated:
		return "consolidated"
	case stateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("streamState(%d)", int(s))
	}
}

// Stream is a growable byte stream whose storage is owned by a pool.
//
// While writable, content is stored in a chain of fixed-size blocks and
// grows one block at a time. Consolidation copies the chain into a
// single pooled large buffer. Disposal returns whatever the stream
// currently owns to the pool exactly once.
type Stream[P BlockPooler] struct {
	logger *slog.Logger
	pool   P
	config Config
	id     uuid.UUID
	tag    string

	state  streamState
	blocks [][]byte // Block chain; may include reserved, unwritten blocks.
	large  []byte   // Contiguous buffer; non-nil once consolidated.
	length int64    // Total content length.

	// Write head within the chain. writePos can equal BlockSize when the
	// current block is full; the next write advances to a new block.
	writeIdx int
	writePos int

	// gen invalidates views and readers when their backing buffers are
	// released or replaced.
	gen uint64

	readers *readerPool[P]

	allocStack   string
	disposeStack string
}

// New creates an empty writable stream drawing from pool.
// The tag is carried on every pool interaction for diagnostics.
func New[P BlockPooler](pool P, logger *slog.Logger, config Config, tag string) (*Stream[P], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stream[P]{
		logger: logger,
		pool:   pool,
		config: config,
		id:     uuid.New(),
		tag:    tag,
	}
	s.readers = newReaderPool(s)
	if config.CaptureStacks {
		s.allocStack = stacktrace.Capture(2)
	}
	return s, nil
}

// ID returns the stream's unique identity. It is diagnostic only and
// carries no pool authority.
func (s *Stream[P]) ID() uuid.UUID { return s.id }

// Tag returns the diagnostic tag the stream was created with.
func (s *Stream[P]) Tag() string { return s.tag }

// Len returns the stream's content length in bytes.
func (s *Stream[P]) Len() int64 { return s.length }

// Consolidated reports whether the content has been consolidated into a
// single contiguous buffer.
func (s *Stream[P]) Consolidated() bool { return s.state == stateConsolidated }

// Disposed reports whether the stream has been disposed.
func (s *Stream[P]) Disposed() bool { return s.state == stateDisposed }

// AllocStack returns the creation call stack when stack capture is
// enabled, and "" otherwise.
func (s *Stream[P]) AllocStack() string { return s.allocStack }

// Write appends p to the stream, acquiring blocks from the pool as the
// trailing block fills. After consolidation, writes grow the contiguous
// buffer through the pool's size classes instead.
func (s *Stream[P]) Write(p []byte) (int, error) {
	if s.state == stateDisposed {
		return 0, ErrDisposed
	}
	if len(p) == 0 {
		return 0, nil // No-op; empty bytes.
	}
	newLength := s.length + int64(len(p))
	if s.config.MaxCapacity > 0 && newLength > s.config.MaxCapacity {
		return 0, fmt.Errorf("%w: %d bytes would exceed the %d byte capacity",
			ErrCapacityExceeded, newLength, s.config.MaxCapacity)
	}

	if s.state == stateConsolidated {
		if err := s.growLarge(newLength); err != nil {
			return 0, err
		}
		copy(s.large[s.length:], p)
		s.length = newLength
		return len(p), nil
	}

	blockSize := s.config.BlockSize
	remaining := p
	for len(remaining) > 0 {
		if s.writePos == blockSize {
			s.writeIdx++
			s.writePos = 0
		}
		if s.writeIdx == len(s.blocks) {
			s.blocks = append(s.blocks, s.pool.AcquireBlock())
		}
		n := min(len(remaining), blockSize-s.writePos)
		copy(s.blocks[s.writeIdx][s.writePos:], remaining[:n])
		s.writePos += n
		remaining = remaining[n:]
	}
	s.length = newLength
	return len(p), nil
}

// WriteByte appends a single byte to the stream.
// It implements the [io.ByteWriter] interface.
func (s *Stream[P]) WriteByte(c byte) error {
	_, err := s.Write([]byte{c})
	return err
}

// growLarge replaces the contiguous buffer with one large enough to hold
// needed bytes, copying existing content and releasing the old buffer.
// Outstanding views and readers are invalidated.
func (s *Stream[P]) growLarge(needed int64) error {
	cur := len(s.large)
	if needed <= int64(cur) {
		return nil
	}
	request := needed
	// Past the largest pooled class the pool serves exact lengths, so
	// doubling headroom keeps repeated appends amortized instead of
	// copying the whole buffer on every write.
	if cur >= s.config.MaxPooledBuffer && cur <= math.MaxInt/2 {
		if h := int64(cur * 2); h > request {
			request = h
		}
	}
	buf, err := s.pool.AcquireLargeBuffer(int(request))
	if err != nil {
		return err
	}
	copy(buf, s.large[:s.length])
	old := s.large
	s.large = buf
	s.gen++
	return s.pool.ReleaseLargeBuffer(old, s.id, s.tag)
}

// Reserve pre-acquires enough blocks to hold capacity bytes without
// further pool round-trips. It does not change the content length.
func (s *Stream[P]) Reserve(capacity int64) error {
	if s.state == stateDisposed {
		return ErrDisposed
	}
	if s.state == stateConsolidated || capacity <= 0 {
		return nil // No-op; the contiguous buffer grows on demand.
	}
	if s.config.MaxCapacity > 0 && capacity > s.config.MaxCapacity {
		return fmt.Errorf("%w: reserving %d bytes would exceed the %d byte capacity",
			ErrCapacityExceeded, capacity, s.config.MaxCapacity)
	}
	blockSize := int64(s.config.BlockSize)
	numBlocks := int((capacity + blockSize - 1) / blockSize)
	for len(s.blocks) < numBlocks {
		s.blocks = append(s.blocks, s.pool.AcquireBlock())
	}
	return nil
}

// Consolidate copies the block chain into one contiguous pooled buffer
// and returns a zero-copy view of the content. Calling it on an already
// consolidated stream returns a view of the existing buffer.
//
// When the pool is configured for aggressive buffer return, the chain is
// released immediately and any previously issued view or reader becomes
// invalid; otherwise the blocks are retained until disposal.
func (s *Stream[P]) Consolidate() (View[P], error) {
	if s.state == stateDisposed {
		return View[P]{}, ErrDisposed
	}
	if s.state == stateConsolidated {
		return View[P]{s: s, gen: s.gen}, nil
	}

	// A zero-length stream still owns a contiguous buffer afterwards;
	// requesting one byte yields the smallest size class.
	required := s.length
	if required == 0 {
		required = 1
	}
	buf, err := s.pool.AcquireLargeBuffer(int(required))
	if err != nil {
		return View[P]{}, err
	}

	remaining := s.length
	off := 0
	for i := 0; remaining > 0; i++ {
		n := min(int64(s.config.BlockSize), remaining)
		copy(buf[off:], s.blocks[i][:n])
		off += int(n)
		remaining -= n
	}
	s.large = buf
	s.state = stateConsolidated

	if s.config.AggressiveReturn && len(s.blocks) > 0 {
		blocks := s.blocks
		s.blocks = nil
		s.writeIdx, s.writePos = 0, 0
		s.gen++ // Invalidate chain-backed views and readers.
		if err := s.pool.ReleaseBlocks(blocks, s.id, s.tag); err != nil {
			return View[P]{}, err
		}
	}
	return View[P]{s: s, gen: s.gen}, nil
}

// ToArray returns an independently owned copy of the stream content.
// It fails when the pool's DisableToArray diagnostic guard is set.
func (s *Stream[P]) ToArray() ([]byte, error) {
	if s.state == stateDisposed {
		return nil, ErrDisposed
	}
	if s.config.DisableToArray {
		return nil, ErrToArrayDisabled
	}
	out := make([]byte, s.length)
	if _, err := s.readAt(out, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

// Dispose returns every buffer the stream currently owns to the pool.
// It is idempotent: disposing an already disposed stream is a no-op.
// All other operations fail with [ErrDisposed] afterwards.
func (s *Stream[P]) Dispose() error {
	if s.state == stateDisposed {
		if s.config.CaptureStacks {
			s.logger.Warn("stream disposed more than once",
				"id", s.id,
				"tag", s.tag,
				"allocStack", s.allocStack,
				"disposeStack", s.disposeStack,
			)
		}
		return nil
	}

	var errs []error
	if len(s.blocks) > 0 {
		if err := s.pool.ReleaseBlocks(s.blocks, s.id, s.tag); err != nil {
			errs = append(errs, err)
		}
		s.blocks = nil
	}
	if s.large != nil {
		if err := s.pool.ReleaseLargeBuffer(s.large, s.id, s.tag); err != nil {
			errs = append(errs, err)
		}
		s.large = nil
	}
	s.state = stateDisposed
	s.gen++
	if s.config.CaptureStacks {
		s.disposeStack = stacktrace.Capture(2)
	}
	return errors.Join(errs...)
}

// readAt copies content starting at off into p and returns the number of
// bytes copied. The error is [io.EOF] when fewer than len(p) bytes were
// available from off.
func (s *Stream[P]) readAt(p []byte, off int64) (int, error) {
	if off >= s.length {
		return 0, io.EOF
	}
	if s.large != nil {
		n := copy(p, s.large[off:s.length])
		if n < len(p) {
			return n, io.EOF
		}
		return n, nil
	}

	blockSize := int64(s.config.BlockSize)
	read := 0
	for read < len(p) && off < s.length {
		idx := int(off / blockSize)
		pos := off % blockSize
		avail := min(blockSize-pos, s.length-off)
		n := copy(p[read:], s.blocks[idx][pos:pos+avail])
		read += n
		off += int64(n)
	}
	if read < len(p) {
		return read, io.EOF
	}
	return read, nil
}
