package testutils

import (
	"sync/atomic"

	"github.com/google/uuid"
)

const MockBlockSize = 128

// MockBlockPool is a minimal BlockPooler that allocates every buffer
// fresh and counts acquire/release calls.
type MockBlockPool struct {
	acquireBlockCalls  atomic.Int64
	releaseBlockCalls  atomic.Int64
	acquireLargeCalls  atomic.Int64
	releaseLargeCalls  atomic.Int64
	blocksReleased     atomic.Int64
	lastLargeRequested atomic.Int64
}

func (p *MockBlockPool) AcquireBlock() []byte {
	p.acquireBlockCalls.Add(1)
	return make([]byte, MockBlockSize)
}

func (p *MockBlockPool) ReleaseBlocks(blocks [][]byte, streamID uuid.UUID, tag string) error {
	p.releaseBlockCalls.Add(1)
	p.blocksReleased.Add(int64(len(blocks)))
	return nil
}

func (p *MockBlockPool) AcquireLargeBuffer(requiredSize int) ([]byte, error) {
	p.acquireLargeCalls.Add(1)
	p.lastLargeRequested.Store(int64(requiredSize))
	return make([]byte, requiredSize), nil
}

func (p *MockBlockPool) ReleaseLargeBuffer(buf []byte, streamID uuid.UUID, tag string) error {
	p.releaseLargeCalls.Add(1)
	return nil
}

func (p *MockBlockPool) AcquireBlockCalls() int64 {
	return p.acquireBlockCalls.Load()
}

func (p *MockBlockPool) ReleaseBlockCalls() int64 {
	return p.releaseBlockCalls.Load()
}

func (p *MockBlockPool) AcquireLargeCalls() int64 {
	return p.acquireLargeCalls.Load()
}

func (p *MockBlockPool) ReleaseLargeCalls() int64 {
	return p.releaseLargeCalls.Load()
}

func (p *MockBlockPool) BlocksReleased() int64 {
	return p.blocksReleased.Load()
}

func (p *MockBlockPool) LastLargeRequested() int64 {
	return p.lastLargeRequested.Load()
}

func (p *MockBlockPool) Reset() {
	p.acquireBlockCalls.Store(0)
	p.releaseBlockCalls.Store(0)
	p.acquireLargeCalls.Store(0)
	p.releaseLargeCalls.Store(0)
	p.blocksReleased.Store(0)
	p.lastLargeRequested.Store(0)
}
