package bufpool

// Allocator is the source of the raw buffers backing both pool tiers.
//
// Alloc returns a zeroed buffer with len == cap == size. Free releases a
// buffer the pool will not retain, either because a free-byte ceiling was
// reached or because it was never poolable (oversized). Implementations
// must be safe for concurrent use.
type Allocator interface {
	Alloc(size int) []byte
	Free(buf []byte)
}

// HeapAllocator allocates buffers on the Go heap. Freed buffers are
// simply unreferenced and left to the garbage collector.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(size int) []byte {
	return make([]byte, size)
}

func (HeapAllocator) Free(_ []byte) {}

var _ Allocator = HeapAllocator{}
