package bufpool

import (
	"errors"

	"github.com/holmberd/go-bufpool/internal/stream"
)

var (
	// ErrInvalidArgument reports a rejected acquire or release: a nil or
	// mis-sized buffer, or a non-positive requested size. The pool is
	// left entirely unmodified.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStreamDisposed reports an operation on a disposed stream.
	ErrStreamDisposed = stream.ErrDisposed

	// ErrCapacityExceeded reports a write that would grow a stream past
	// the configured MaxStreamCapacity.
	ErrCapacityExceeded = stream.ErrCapacityExceeded

	// ErrToArrayDisabled reports a ToArray call while the DisableToArray
	// diagnostic guard is configured.
	ErrToArrayDisabled = stream.ErrToArrayDisabled

	// ErrUseAfterRelease reports a read through a view or reader whose
	// backing buffers were returned to the pool.
	ErrUseAfterRelease = stream.ErrUseAfterRelease
)
