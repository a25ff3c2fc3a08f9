package storage

import "github.com/pkg/errors"

var (
	// ErrUnknownBlock is returned when a block referenced by hash or
	// number is not in the store.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrUnknownParent is returned when an imported header does not
	// extend the current best header.
	ErrUnknownParent = errors.New("unknown parent")

	// ErrNonSequential is returned when an imported header's number is
	// not best number + 1.
	ErrNonSequential = errors.New("Did not finalize blocks in sequential order")

	// ErrNonSequentialFinalization is returned when the finalization
	// target is neither the genesis (first call) nor a direct child of
	// the last finalized block.
	ErrNonSequentialFinalization = errors.New("finalized target must be the genesis or a child of the last finalized block")

	// ErrNotInFinalizedChain is returned when a finalization target is at or
	// below the last finalized block.
	ErrNotInFinalizedChain = errors.New("block is not in the finalized chain")

	// ErrTooManyNonFinalized is returned when importing one more header
	// would exceed the configured non-finalized cap.
	ErrTooManyNonFinalized = errors.New("cannot import any more blocks before finalizing previous blocks")

	// ErrUnavailableMeta is returned when an operation that needs chain
	// metadata runs against an uninitialized store.
	ErrUnavailableMeta = errors.New("unable to get metadata about blockchain")
)
