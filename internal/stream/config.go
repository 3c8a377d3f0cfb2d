package stream

import (
	"errors"
	"fmt"
)

// Config holds the per-stream configuration derived from the pool
// manager's configuration. It is immutable after construction.
type Config struct {
	// BlockSize is the length in bytes of every block acquired from the pool.
	BlockSize int

	// MaxCapacity caps the stream's total content length. 0 is unbounded.
	MaxCapacity int64

	// MaxPooledBuffer is the largest buffer length the pool serves from
	// a size class. Appends that grow the consolidated buffer past it
	// request doubling headroom, since the pool's own rounding no longer
	// provides any.
	MaxPooledBuffer int

	// AggressiveReturn releases the block chain to the pool immediately
	// upon consolidation, invalidating outstanding views and readers.
	AggressiveReturn bool

	// DisableToArray makes ToArray fail as a diagnostic guard.
	DisableToArray bool

	// CaptureStacks records creation and disposal call stacks.
	CaptureStacks bool
}

func (c Config) Validate() error {
	var errs []error
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("invalid config: BlockSize %d must be positive", c.BlockSize))
	}
	if c.MaxCapacity < 0 {
		errs = append(errs, errors.New("invalid config: MaxCapacity cannot be negative"))
	}
	return errors.Join(errs...)
}
