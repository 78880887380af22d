package shard

import (
	"errors"

	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

var (
	// ErrReadOnlyMode is returned when it is impossible to apply operation
	// that changes shard's memory due to the "read-only" shard's mode.
	ErrReadOnlyMode = logicerr.New("shard is in read-only mode")

	// ErrDegradedMode is returned when operation requiring metabase is executed in degraded mode.
	ErrDegradedMode = logicerr.New("shard is in degraded mode")
)

// IsErrNotFound checks if error returned by Shard Get/Head/GetRange method
// corresponds to missing object.
func IsErrNotFound(err error) bool {
	return errors.Is(err, apistatus.ErrObjectNotFound)
}

// IsErrRemoved checks if error returned by Shard Exists/Get/Head/GetRange method
// corresponds to removed object.
func IsErrRemoved(err error) bool {
	return errors.Is(err, apistatus.ErrObjectAlreadyRemoved)
}

// IsErrOutOfRange checks if an error returned by Shard GetRange method
// corresponds to exceeding the object bounds.
func IsErrOutOfRange(err error) bool {
	return errors.Is(err, apistatus.ErrObjectOutOfRange)
}
