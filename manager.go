// Package bufpool implements a dual-tier pooling allocator for growable
// byte streams: a pool of fixed-size blocks backing stream growth, and
// size-classed pools of large buffers backing stream consolidation.
//
// The pools exist to eliminate allocation and garbage-collection
// pressure in workloads that repeatedly create and discard variably
// sized byte buffers. A [Manager] is safe for concurrent use from any
// number of goroutines; the [Stream] instances it creates are not.
package bufpool

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/holmberd/go-bufpool/internal/stream"
)

// Manager owns the small-block pool and the array of size-classed
// large-buffer pools. It is constructed once with immutable
// configuration and shared by every stream drawing from it; multiple
// isolated managers can coexist.
//
// Free-lists use lock-free compare-and-swap push/pop and the usage
// counters are independent atomics. An acquire adjusts the in-use
// counter first and the free counter separately on a pool hit, so the
// two can be momentarily inconsistent with each other; they are
// diagnostic, not a correctness gate, and the split avoids any coarse
// lock across concurrently-live streams. Free counters are raised
// before a buffer is published to its free-list and lowered only after
// a successful pop, so neither reads negative.
type Manager struct {
	logger   *slog.Logger
	config   Config
	alloc    Allocator
	reporter Reporter

	smallFree       freeList
	smallFreeBytes  atomic.Int64
	smallInUseBytes atomic.Int64

	// classSizes[i] is the buffer length of large size class i.
	classSizes      []int
	largeFree       []freeList
	largeFreeBytes  []atomic.Int64
	largeInUseBytes []atomic.Int64

	// Buffers above MaximumBufferSize are never pooled and are tracked
	// only in this aggregate.
	oversizedInUseBytes atomic.Int64
}

// NewManager creates a pool manager from config.
// It fails if the configuration is invalid; see [Config.Validate].
func NewManager(config Config) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Allocator == nil {
		config.Allocator = HeapAllocator{}
	}
	if config.Reporter == nil {
		config.Reporter = NopReporter{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	numClasses := config.Strategy.classCount(config.LargeBufferBase, config.MaximumBufferSize)
	m := &Manager{
		logger:          config.Logger,
		config:          config,
		alloc:           config.Allocator,
		reporter:        config.Reporter,
		classSizes:      make([]int, numClasses),
		largeFree:       make([]freeList, numClasses),
		largeFreeBytes:  make([]atomic.Int64, numClasses),
		largeInUseBytes: make([]atomic.Int64, numClasses),
	}
	for i := range m.classSizes {
		m.classSizes[i] = config.Strategy.classSize(i, config.LargeBufferBase)
	}

	m.reporter.ManagerCreated(config)
	m.logger.Debug("buffer pool manager created",
		"blockSize", config.BlockSize,
		"largeBufferBase", config.LargeBufferBase,
		"maximumBufferSize", config.MaximumBufferSize,
		"strategy", config.Strategy.String(),
		"sizeClasses", numClasses,
	)
	return m, nil
}

// BlockSize returns the fixed length of every pooled block.
func (m *Manager) BlockSize() int {
	return m.config.BlockSize
}

// AcquireBlock returns a block of exactly BlockSize bytes, popped from
// the free-list or freshly allocated when the pool is empty. The caller
// owns the block exclusively until it is released.
func (m *Manager) AcquireBlock() []byte {
	blockSize := int64(m.config.BlockSize)
	m.smallInUseBytes.Add(blockSize)
	if buf, ok := m.smallFree.pop(); ok {
		m.smallFreeBytes.Add(-blockSize)
		return buf
	}
	return m.alloc.Alloc(m.config.BlockSize)
}

// ReleaseBlocks returns a batch of blocks to the small pool.
//
// The entire batch is validated before any counter or free-list
// mutation: a nil list, or any nil or mis-sized block, fails with
// [ErrInvalidArgument] and leaves the pool untouched. Blocks are pooled
// while the free-byte count is below MaxFreeSmallPoolBytes; once the
// ceiling is reached the remainder of the batch is discarded through the
// allocator. The usage reporter is invoked with the resulting in-use
// byte count.
func (m *Manager) ReleaseBlocks(blocks [][]byte, streamID uuid.UUID, tag string) error {
	if blocks == nil {
		return fmt.Errorf("%w: block list is nil", ErrInvalidArgument)
	}
	blockSize := m.config.BlockSize
	for i, b := range blocks {
		if b == nil {
			return fmt.Errorf("%w: block %d is nil", ErrInvalidArgument, i)
		}
		if len(b) != blockSize {
			return fmt.Errorf("%w: block %d has length %d, expected %d",
				ErrInvalidArgument, i, len(b), blockSize)
		}
	}

	m.smallInUseBytes.Add(-int64(blockSize) * int64(len(blocks)))

	maxFree := m.config.MaxFreeSmallPoolBytes
	pooled := 0
	for ; pooled < len(blocks); pooled++ {
		if maxFree != 0 && m.smallFreeBytes.Load() >= maxFree {
			break
		}
		// Raise the free counter before the block is visible on the
		// list: a concurrent pop decrements only after this push, so
		// the counter can never be observed negative.
		m.smallFreeBytes.Add(int64(blockSize))
		m.smallFree.push(blocks[pooled])
	}
	for _, b := range blocks[pooled:] {
		m.alloc.Free(b)
	}
	if pooled < len(blocks) {
		m.logger.Debug("discarded blocks over the free-byte ceiling",
			"discarded", len(blocks)-pooled,
			"ceiling", maxFree,
			"streamID", streamID,
			"tag", tag,
		)
	}

	m.reporter.UsageReport(m.smallInUseBytes.Load())
	return nil
}

// AcquireLargeBuffer returns a buffer of at least requiredSize bytes.
//
// Sizes up to MaximumBufferSize are rounded up to the growth strategy's
// next size-class boundary and served from that class's pool. Larger
// sizes are served with an unpooled buffer of exactly requiredSize,
// tracked only in the oversized in-use aggregate.
func (m *Manager) AcquireLargeBuffer(requiredSize int) ([]byte, error) {
	if requiredSize <= 0 {
		return nil, fmt.Errorf("%w: requested size %d must be positive", ErrInvalidArgument, requiredSize)
	}
	if requiredSize > m.config.MaximumBufferSize {
		m.oversizedInUseBytes.Add(int64(requiredSize))
		m.logger.Debug("allocating unpooled oversized buffer",
			"size", requiredSize,
			"maximumBufferSize", m.config.MaximumBufferSize,
		)
		return m.alloc.Alloc(requiredSize), nil
	}

	size, ok := m.config.Strategy.Round(requiredSize, m.config.LargeBufferBase)
	if !ok {
		return nil, fmt.Errorf("%w: requested size %d cannot be rounded", ErrInvalidArgument, requiredSize)
	}
	ci := m.config.Strategy.classIndex(size, m.config.LargeBufferBase)

	m.largeInUseBytes[ci].Add(int64(size))
	if buf, ok := m.largeFree[ci].pop(); ok {
		m.largeFreeBytes[ci].Add(-int64(size))
		return buf, nil
	}
	return m.alloc.Alloc(size), nil
}

// ReleaseLargeBuffer returns a buffer acquired with [Manager.AcquireLargeBuffer].
//
// The buffer is classified by its exact length: oversized buffers are
// freed through the allocator, size-class-aligned buffers are pooled up
// to MaxFreeLargePoolBytes, and any other length fails with
// [ErrInvalidArgument] without mutating the pool.
func (m *Manager) ReleaseLargeBuffer(buf []byte, streamID uuid.UUID, tag string) error {
	if buf == nil {
		return fmt.Errorf("%w: buffer is nil", ErrInvalidArgument)
	}
	size := len(buf)
	if size > m.config.MaximumBufferSize {
		m.oversizedInUseBytes.Add(-int64(size))
		m.alloc.Free(buf)
		return nil
	}
	if !m.config.Strategy.Aligned(size, m.config.LargeBufferBase) {
		return fmt.Errorf(
			"%w: buffer length %d is not a %s size class of base %d",
			ErrInvalidArgument, size, m.config.Strategy, m.config.LargeBufferBase,
		)
	}
	ci := m.config.Strategy.classIndex(size, m.config.LargeBufferBase)

	m.largeInUseBytes[ci].Add(-int64(size))

	maxFree := m.config.MaxFreeLargePoolBytes
	if maxFree != 0 && m.LargePoolFreeSize() >= maxFree {
		m.alloc.Free(buf)
		m.logger.Debug("discarded large buffer over the free-byte ceiling",
			"size", size,
			"ceiling", maxFree,
			"streamID", streamID,
			"tag", tag,
		)
		return nil
	}
	// Counter before push, as in ReleaseBlocks.
	m.largeFreeBytes[ci].Add(int64(size))
	m.largeFree[ci].push(buf)
	return nil
}

// SmallPoolFreeSize returns the bytes held on the small pool's free-list.
func (m *Manager) SmallPoolFreeSize() int64 {
	return m.smallFreeBytes.Load()
}

// SmallPoolInUseSize returns the bytes of blocks currently owned by streams.
func (m *Manager) SmallPoolInUseSize() int64 {
	return m.smallInUseBytes.Load()
}

// SmallBlocksFree returns the number of blocks on the small pool's free-list.
func (m *Manager) SmallBlocksFree() int64 {
	return m.smallFree.len()
}

// LargePoolFreeSize returns the bytes held across all size-class free-lists.
func (m *Manager) LargePoolFreeSize() int64 {
	var total int64
	for i := range m.largeFreeBytes {
		total += m.largeFreeBytes[i].Load()
	}
	return total
}

// LargePoolInUseSize returns the bytes of large buffers currently owned
// by streams, including unpooled oversized buffers.
func (m *Manager) LargePoolInUseSize() int64 {
	total := m.oversizedInUseBytes.Load()
	for i := range m.largeInUseBytes {
		total += m.largeInUseBytes[i].Load()
	}
	return total
}

// LargeBuffersFree returns the number of buffers across all size-class
// free-lists.
func (m *Manager) LargeBuffersFree() int64 {
	var total int64
	for i := range m.largeFree {
		total += m.largeFree[i].len()
	}
	return total
}

// Ensure compile-time compliance with the stream contract.
var _ stream.BlockPooler = (*Manager)(nil)
