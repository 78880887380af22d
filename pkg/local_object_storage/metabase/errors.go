package meta

import (
	"errors"

	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

var (
	// ErrDegradedMode is returned when metabase is in a degraded mode.
	ErrDegradedMode = logicerr.New("metabase is in a degraded mode")

	// ErrReadOnlyMode is returned when metabase is in a read-only mode.
	ErrReadOnlyMode = logicerr.New("metabase is in a read-only mode")

	// ErrOutdatedVersion is returned on initializing
	// an existing metabase that is not compatible with
	// the current code version.
	ErrOutdatedVersion = errors.New("invalid version, resynchronization is required")

	// ErrEndOfListing is returned from object listing with cursor
	// when storage can't return any more objects after provided
	// cursor. Use nil cursor object to start listing again.
	ErrEndOfListing = logicerr.New("end of object listing")

	// ErrInterruptIterator is returned by iteration handlers
	// as a "break" keyword.
	ErrInterruptIterator = logicerr.New("iterator is interrupted")
)

// IsErrRemoved checks if error returned by Shard Exists/Get/Put method
// corresponds to removed object.
func IsErrRemoved(err error) bool {
	return errors.Is(err, apistatus.ErrObjectAlreadyRemoved)
}
