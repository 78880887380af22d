package blobovnicza

import (
	"errors"
)

// ErrFull is returned when trying to save an
// object to a filled blobovnicza.
var ErrFull = errors.New("blobovnicza is full")

// ErrTooLarge is returned when trying to save an object larger than the
// object size limit.
var ErrTooLarge = errors.New("object is too large for blobovnicza")
