package direrrors

import "errors"

var (
	// ErrNotFound reports that a point lookup, update or delete target is absent.
	ErrNotFound = errors.New("userdir: not found")

	// ErrResolution reports a transient failure to resolve partition topology;
	// the whole operation may be retried by the caller.
	ErrResolution = errors.New("userdir: partition resolution failed")

	// ErrUnsupportedPartitionKind reports a partition that is not range-partitioned.
	// This is a configuration error, retrying cannot help.
	ErrUnsupportedPartitionKind = errors.New("userdir: unsupported partition kind")

	// ErrRemote wraps any remote-side error surfaced by a partition.
	ErrRemote = errors.New("userdir: remote operation failed")

	// ErrCanceled reports caller-initiated cancellation, not a fault.
	ErrCanceled = errors.New("userdir: operation canceled")
)
