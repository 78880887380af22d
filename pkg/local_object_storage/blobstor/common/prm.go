package common

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// GetPrm groups the parameters of Get operation.
type GetPrm struct {
	Address   oid.Address
	StorageID []byte
	Raw       bool
}

// GetRes groups the resulting values of Get operation.
type GetRes struct {
	Object  *object.Object
	RawData []byte
}

// GetRangePrm groups the parameters of GetRange operation.
type GetRangePrm struct {
	Address   oid.Address
	Offset    uint64
	Length    uint64
	StorageID []byte
}

// GetRangeRes groups the resulting values of GetRange operation.
type GetRangeRes struct {
	Data []byte
}

// PutPrm groups the parameters of Put operation.
type PutPrm struct {
	Address oid.Address
	Object  *object.Object
	// RawData is the encoded object. If DontCompress is set, it is stored as is.
	RawData      []byte
	DontCompress bool
}

// PutRes groups the resulting values of Put operation.
type PutRes struct {
	StorageID []byte
}

// DeletePrm groups the parameters of Delete operation.
type DeletePrm struct {
	Address   oid.Address
	StorageID []byte
}

// DeleteRes groups the resulting values of Delete operation.
type DeleteRes struct{}

// ExistsPrm groups the parameters of Exists operation.
type ExistsPrm struct {
	Address   oid.Address
	StorageID []byte
}

// ExistsRes groups the resulting values of Exists operation.
type ExistsRes struct {
	Exists bool
}

// IterationElement represents a unit of elements through which Iterate operation passes.
type IterationElement struct {
	ObjectData []byte
	Address    oid.Address
	StorageID  []byte
}

// IterationHandler is a generic processor of IterationElement.
type IterationHandler func(IterationElement) error

// IteratePrm groups the parameters of Iterate operation.
type IteratePrm struct {
	Handler      IterationHandler
	IgnoreErrors bool
	ErrorHandler func(oid.Address, error) error
}

// IterateRes groups the resulting values of Iterate operation.
type IterateRes struct{}
