// Package protoobject contains wire messages and gRPC bindings of the
// object service.
package protoobject

import (
	"fmt"

	iprotobuf "github.com/kestrelfs/kestrel-node/internal/protobuf"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"google.golang.org/protobuf/encoding/protowire"
)

// Status is a result of the operation execution carried by every response.
type Status struct {
	Code    apistatus.Code
	Message string
}

// StatusFromError builds Status of the error. Nil error is OK.
func StatusFromError(err error) Status {
	if err == nil {
		return Status{}
	}

	return Status{
		Code:    apistatus.ErrorToCode(err),
		Message: err.Error(),
	}
}

// Err returns error corresponding to the status, nil if status is OK.
func (s Status) Err() error {
	return apistatus.ErrorFromCode(s.Code, s.Message)
}

const (
	fieldStatusCode    = 1
	fieldStatusMessage = 2
)

func (s Status) marshal() []byte {
	b := iprotobuf.AppendUint64Field(nil, fieldStatusCode, uint64(s.Code))
	return iprotobuf.AppendStringField(b, fieldStatusMessage, s.Message)
}

func (s *Status) unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		switch f.Num {
		case fieldStatusCode:
			v, err := f.Uint32Value()
			s.Code = apistatus.Code(v)
			return err
		case fieldStatusMessage:
			v, err := f.BytesValue()
			s.Message = string(v)
			return err
		}
		return nil
	})
}

// response fields shared by all responses.
const fieldResponseStatus = 15

func appendStatus(b []byte, s Status) []byte {
	return iprotobuf.AppendBytesField(b, fieldResponseStatus, s.marshal())
}

func decodeAddress(f iprotobuf.Field, dst *oid.Address) error {
	v, err := f.BytesValue()
	if err != nil {
		return err
	}

	if err := dst.Unmarshal(v); err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	return nil
}

func decodeObject(f iprotobuf.Field) (*object.Object, error) {
	v, err := f.BytesValue()
	if err != nil {
		return nil, err
	}

	obj := object.New()
	if err := obj.Unmarshal(v); err != nil {
		return nil, fmt.Errorf("invalid object: %w", err)
	}

	return obj, nil
}

// PutRequest carries the object to be stored.
type PutRequest struct {
	Object *object.Object

	// LocalOnly prohibits the receiver from the object distribution.
	LocalOnly bool
}

const (
	fieldPutObject    = 1
	fieldPutLocalOnly = 2
)

// Marshal encodes the request.
func (x *PutRequest) Marshal() []byte {
	var b []byte
	if x.Object != nil {
		b = iprotobuf.AppendBytesField(b, fieldPutObject, x.Object.Marshal())
	}

	return iprotobuf.AppendBoolField(b, fieldPutLocalOnly, x.LocalOnly)
}

// Unmarshal decodes the request.
func (x *PutRequest) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		var err error

		switch f.Num {
		case fieldPutObject:
			x.Object, err = decodeObject(f)
		case fieldPutLocalOnly:
			x.LocalOnly, err = f.BoolValue()
		}

		return err
	})
}

// PutResponse returns the identifier of the stored object.
type PutResponse struct {
	ID     oid.ID
	Status Status
}

const fieldPutResponseID = 1

// Marshal encodes the response.
func (x *PutResponse) Marshal() []byte {
	var b []byte
	if !x.ID.IsZero() {
		id := make([]byte, oid.Size)
		x.ID.Encode(id)
		b = iprotobuf.AppendBytesField(b, fieldPutResponseID, id)
	}

	return appendStatus(b, x.Status)
}

// Unmarshal decodes the response.
func (x *PutResponse) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		switch f.Num {
		case fieldPutResponseID:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}
			return x.ID.Decode(v)
		case fieldResponseStatus:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}
			return x.Status.unmarshal(v)
		}
		return nil
	})
}

// AddressRequest is a request addressing single object: Get, Head and
// Delete.
type AddressRequest struct {
	Address oid.Address

	// Raw requests split info instead of the virtual object assembly.
	Raw bool
}

const (
	fieldAddressRequestAddress = 1
	fieldAddressRequestRaw     = 2
)

// Marshal encodes the request.
func (x *AddressRequest) Marshal() []byte {
	b := iprotobuf.AppendBytesField(nil, fieldAddressRequestAddress, x.Address.Marshal())
	return iprotobuf.AppendBoolField(b, fieldAddressRequestRaw, x.Raw)
}

// Unmarshal decodes the request.
func (x *AddressRequest) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		switch f.Num {
		case fieldAddressRequestAddress:
			return decodeAddress(f, &x.Address)
		case fieldAddressRequestRaw:
			var err error
			x.Raw, err = f.BoolValue()
			return err
		}
		return nil
	})
}

// ObjectResponse returns the object (Get) or its header (Head). If the
// requested object is virtual and the request is raw, SplitInfo is set
// instead.
type ObjectResponse struct {
	Object    *object.Object
	SplitInfo *object.SplitInfo
	Status    Status
}

const (
	fieldObjectResponseObject    = 1
	fieldObjectResponseSplitInfo = 2
)

// Marshal encodes the response.
func (x *ObjectResponse) Marshal() []byte {
	var b []byte
	if x.Object != nil {
		b = iprotobuf.AppendBytesField(b, fieldObjectResponseObject, x.Object.Marshal())
	}

	if x.SplitInfo != nil {
		b = iprotobuf.AppendBytesField(b, fieldObjectResponseSplitInfo, x.SplitInfo.Marshal())
	}

	return appendStatus(b, x.Status)
}

// Unmarshal decodes the response.
func (x *ObjectResponse) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		var err error

		switch f.Num {
		case fieldObjectResponseObject:
			x.Object, err = decodeObject(f)
		case fieldObjectResponseSplitInfo:
			var v []byte
			if v, err = f.BytesValue(); err == nil {
				x.SplitInfo = object.NewSplitInfo()
				err = x.SplitInfo.Unmarshal(v)
			}
		case fieldResponseStatus:
			var v []byte
			if v, err = f.BytesValue(); err == nil {
				err = x.Status.unmarshal(v)
			}
		}

		return err
	})
}

// RangeRequest requests payload range of the object.
type RangeRequest struct {
	Address oid.Address
	Offset  uint64
	Length  uint64
}

const (
	fieldRangeAddress = 1
	fieldRangeOffset  = 2
	fieldRangeLength  = 3
)

// Marshal encodes the request.
func (x *RangeRequest) Marshal() []byte {
	b := iprotobuf.AppendBytesField(nil, fieldRangeAddress, x.Address.Marshal())
	b = iprotobuf.AppendUint64Field(b, fieldRangeOffset, x.Offset)
	return iprotobuf.AppendUint64Field(b, fieldRangeLength, x.Length)
}

// Unmarshal decodes the request.
func (x *RangeRequest) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		var err error

		switch f.Num {
		case fieldRangeAddress:
			err = decodeAddress(f, &x.Address)
		case fieldRangeOffset:
			x.Offset, err = f.Uint64Value()
		case fieldRangeLength:
			x.Length, err = f.Uint64Value()
		}

		return err
	})
}

// RangeResponse returns requested payload bytes.
type RangeResponse struct {
	Payload []byte
	Status  Status
}

const fieldRangeResponsePayload = 1

// Marshal encodes the response.
func (x *RangeResponse) Marshal() []byte {
	b := iprotobuf.AppendBytesField(nil, fieldRangeResponsePayload, x.Payload)
	return appendStatus(b, x.Status)
}

// Unmarshal decodes the response.
func (x *RangeResponse) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		switch f.Num {
		case fieldRangeResponsePayload:
			v, err := f.BytesValue()
			x.Payload = append([]byte(nil), v...)
			return err
		case fieldResponseStatus:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}
			return x.Status.unmarshal(v)
		}
		return nil
	})
}

// StatusResponse carries only the operation status: Delete.
type StatusResponse struct {
	Status Status
}

// Marshal encodes the response.
func (x *StatusResponse) Marshal() []byte {
	return appendStatus(nil, x.Status)
}

// Unmarshal decodes the response.
func (x *StatusResponse) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		if f.Num != fieldResponseStatus {
			return nil
		}

		v, err := f.BytesValue()
		if err != nil {
			return err
		}

		return x.Status.unmarshal(v)
	})
}

// SearchRequest selects objects of the container matching all filters.
type SearchRequest struct {
	Container []byte
	Filters   object.SearchFilters
}

const (
	fieldSearchContainer = 1
	fieldSearchFilter    = 2

	fieldFilterKey   = 1
	fieldFilterValue = 2
	fieldFilterOp    = 3
)

// Marshal encodes the request.
func (x *SearchRequest) Marshal() []byte {
	b := iprotobuf.AppendBytesField(nil, fieldSearchContainer, x.Container)

	for i := range x.Filters {
		var fb []byte
		fb = iprotobuf.AppendStringField(fb, fieldFilterKey, x.Filters[i].Key)
		fb = iprotobuf.AppendStringField(fb, fieldFilterValue, x.Filters[i].Value)
		fb = iprotobuf.AppendUint64Field(fb, fieldFilterOp, uint64(x.Filters[i].Op))

		b = protowire.AppendTag(b, fieldSearchFilter, protowire.BytesType)
		b = protowire.AppendBytes(b, fb)
	}

	return b
}

// Unmarshal decodes the request.
func (x *SearchRequest) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		switch f.Num {
		case fieldSearchContainer:
			v, err := f.BytesValue()
			x.Container = append([]byte(nil), v...)
			return err
		case fieldSearchFilter:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}

			var sf object.SearchFilter

			err = iprotobuf.IterateFields(v, func(ff iprotobuf.Field) error {
				switch ff.Num {
				case fieldFilterKey:
					s, err := ff.BytesValue()
					sf.Key = string(s)
					return err
				case fieldFilterValue:
					s, err := ff.BytesValue()
					sf.Value = string(s)
					return err
				case fieldFilterOp:
					op, err := ff.Uint32Value()
					sf.Op = object.SearchMatchType(op)
					return err
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("invalid search filter: %w", err)
			}

			x.Filters = append(x.Filters, sf)
		}
		return nil
	})
}

// SearchResponse lists identifiers of the matched objects.
type SearchResponse struct {
	IDs    []oid.ID
	Status Status
}

const fieldSearchResponseID = 1

// Marshal encodes the response.
func (x *SearchResponse) Marshal() []byte {
	var b []byte

	id := make([]byte, oid.Size)
	for i := range x.IDs {
		x.IDs[i].Encode(id)
		b = iprotobuf.AppendBytesField(b, fieldSearchResponseID, id)
	}

	return appendStatus(b, x.Status)
}

// Unmarshal decodes the response.
func (x *SearchResponse) Unmarshal(data []byte) error {
	return iprotobuf.IterateFields(data, func(f iprotobuf.Field) error {
		switch f.Num {
		case fieldSearchResponseID:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}

			var id oid.ID
			if err := id.Decode(v); err != nil {
				return err
			}

			x.IDs = append(x.IDs, id)
		case fieldResponseStatus:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}
			return x.Status.unmarshal(v)
		}
		return nil
	})
}
