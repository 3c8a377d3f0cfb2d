//go:build unix

package bufpool

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"
)

// MmapAllocator allocates buffers with anonymous mmap, keeping pooled
// memory off the Go heap so the garbage collector never scans it.
// Freed buffers are returned to the operating system with munmap.
type MmapAllocator struct {
	// Logger defaults to [slog.Default].
	Logger *slog.Logger
}

func (a MmapAllocator) Alloc(size int) []byte {
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		panic(fmt.Errorf("cannot allocate %d bytes via mmap: %w", size, err))
	}
	return data
}

func (a MmapAllocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	if err := unix.Munmap(buf); err != nil {
		logger := a.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("failed to unmap buffer", "size", len(buf), "error", err)
	}
}

var _ Allocator = MmapAllocator{}
