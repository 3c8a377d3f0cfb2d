package bufpool

import (
	"errors"
	"fmt"
	"log/slog"
)

// GrowthStrategy selects how requested large-buffer lengths are rounded
// up to a size-class boundary.
type GrowthStrategy int

const (
	// Linear rounds up to the next multiple of the base size.
	Linear GrowthStrategy = iota

	// Exponential rounds up to the next power-of-two multiple of the base size.
	Exponential
)

func (s GrowthStrategy) String() string {
	switch s {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	default:
		return fmt.Sprintf("GrowthStrategy(%d)", int(s))
	}
}

func (s GrowthStrategy) valid() bool {
	return s == Linear || s == Exponential
}

// Config holds the immutable configuration for a [Manager].
type Config struct {
	// BlockSize is the length in bytes of every pooled block (small tier).
	BlockSize int

	// LargeBufferBase is the base size in bytes for the large-buffer size classes.
	LargeBufferBase int

	// MaximumBufferSize is the largest buffer length the large tier will pool.
	// It must be at least BlockSize and aligned to the growth strategy;
	// requests above it are served with unpooled exact-length buffers.
	MaximumBufferSize int

	// Strategy determines the large-buffer size-class boundaries.
	Strategy GrowthStrategy

	// MaxFreeSmallPoolBytes caps the bytes the small tier retains on its
	// free-list; blocks released past the cap are discarded. 0 is unbounded.
	MaxFreeSmallPoolBytes int64

	// MaxFreeLargePoolBytes caps the bytes the large tier retains across
	// all size-class free-lists. 0 is unbounded.
	MaxFreeLargePoolBytes int64

	// MaxStreamCapacity caps the total length of a single stream.
	// 0 is unbounded.
	MaxStreamCapacity int64

	// GenerateCallStacks records the call stack of stream creation and
	// disposal for leak diagnostics. It is expensive; intended for debugging.
	GenerateCallStacks bool

	// AggressiveBufferReturn releases a stream's blocks to the pool
	// immediately upon consolidation instead of waiting for disposal.
	// Outstanding views and readers are invalidated.
	AggressiveBufferReturn bool

	// DisableToArray makes Stream.ToArray fail, as a diagnostic guard
	// against callers copying content out and bypassing the pool.
	DisableToArray bool

	// Allocator provides the raw buffers backing both tiers.
	// Defaults to [HeapAllocator].
	Allocator Allocator

	// Reporter observes manager construction and usage events.
	// Defaults to [NopReporter].
	Reporter Reporter

	// Logger defaults to [slog.Default].
	Logger *slog.Logger
}

// Validate reports every configuration rule the config violates.
func (c Config) Validate() error {
	var errs []error
	if c.BlockSize <= 0 {
		errs = append(errs, errors.New("invalid config: BlockSize must be a positive number of bytes"))
	}
	if c.LargeBufferBase <= 0 {
		errs = append(errs, errors.New("invalid config: LargeBufferBase must be a positive number of bytes"))
	}
	if !c.Strategy.valid() {
		errs = append(errs, fmt.Errorf("invalid config: unknown growth strategy %d", int(c.Strategy)))
	}
	if c.BlockSize > 0 && c.MaximumBufferSize < c.BlockSize {
		errs = append(errs, fmt.Errorf(
			"invalid config: MaximumBufferSize %d must be at least BlockSize %d",
			c.MaximumBufferSize, c.BlockSize,
		))
	}
	if c.LargeBufferBase > 0 && c.Strategy.valid() && !c.Strategy.Aligned(c.MaximumBufferSize, c.LargeBufferBase) {
		errs = append(errs, fmt.Errorf(
			"invalid config: MaximumBufferSize %d is not aligned to the %s growth strategy with base %d",
			c.MaximumBufferSize, c.Strategy, c.LargeBufferBase,
		))
	}
	if c.MaxFreeSmallPoolBytes < 0 {
		errs = append(errs, errors.New("invalid config: MaxFreeSmallPoolBytes cannot be negative"))
	}
	if c.MaxFreeLargePoolBytes < 0 {
		errs = append(errs, errors.New("invalid config: MaxFreeLargePoolBytes cannot be negative"))
	}
	if c.MaxStreamCapacity < 0 {
		errs = append(errs, errors.New("invalid config: MaxStreamCapacity cannot be negative"))
	}
	return errors.Join(errs...)
}

// DefaultConfig returns a configuration suitable for general-purpose use:
// 128KiB blocks and exponential 1MiB size classes up to 128MiB.
func DefaultConfig() Config {
	return Config{
		BlockSize:         128 * KiB,
		LargeBufferBase:   1 * MiB,
		MaximumBufferSize: 128 * MiB,
		Strategy:          Exponential,
	}
}
