//go:build unix

package bufpool

import (
	"testing"

	"github.com/google/uuid"
)

func TestMmapAllocator(t *testing.T) {
	t.Run("alloc and free round-trip", func(t *testing.T) {
		a := MmapAllocator{}
		buf := a.Alloc(64 * KiB)
		if len(buf) != 64*KiB {
			t.Fatalf("expected a %d byte buffer, got %d", 64*KiB, len(buf))
		}

		// The mapping must be writable and readable.
		buf[0], buf[len(buf)-1] = 0xAB, 0xCD
		if buf[0] != 0xAB || buf[len(buf)-1] != 0xCD {
			t.Error("mapped buffer did not retain writes")
		}

		a.Free(buf)
		a.Free(nil) // No-op.
	})

	t.Run("backs a manager", func(t *testing.T) {
		m, err := NewManager(Config{
			BlockSize:         4 * KiB,
			LargeBufferBase:   64 * KiB,
			MaximumBufferSize: 1 * MiB,
			Strategy:          Exponential,
			Allocator:         MmapAllocator{},
			// A ceiling forces the discard path through Munmap.
			MaxFreeSmallPoolBytes: 4 * KiB,
		})
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		blocks := [][]byte{m.AcquireBlock(), m.AcquireBlock()}
		if err := m.ReleaseBlocks(blocks, uuid.Nil, "test"); err != nil {
			t.Fatalf("ReleaseBlocks failed: %v", err)
		}
		if got := m.SmallBlocksFree(); got != 1 {
			t.Errorf("expected 1 pooled block with 1 unmapped, got %d", got)
		}
	})
}
