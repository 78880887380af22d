package object

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/internal/protobuf"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// Object fields.
const (
	_ = iota
	fieldObjectID
	fieldObjectHeader
	fieldObjectPayload
)

// Header fields.
const (
	_ = iota
	fieldHeaderContainer
	fieldHeaderOwner
	fieldHeaderEpoch
	fieldHeaderType
	fieldHeaderPayloadLen
	fieldHeaderChecksum
	fieldHeaderHomoHash
	fieldHeaderAttribute
	fieldHeaderSplit
)

// Split header fields.
const (
	_ = iota
	fieldSplitParentID
	fieldSplitParentHeader
	fieldSplitPrevious
	fieldSplitChildren
	fieldSplitID
)

// Attribute fields.
const (
	_ = iota
	fieldAttributeKey
	fieldAttributeValue
)

// Marshal encodes object into a binary form.
func (o *Object) Marshal() []byte {
	var b []byte

	if !o.id.IsZero() {
		b = protobuf.AppendBytesField(b, fieldObjectID, o.id[:])
	}

	b = protobuf.AppendBytesField(b, fieldObjectHeader, o.marshalHeader())
	b = protobuf.AppendBytesField(b, fieldObjectPayload, o.payload)

	return b
}

// MarshalHeader encodes object without payload.
func (o *Object) MarshalHeader() []byte {
	return o.CutPayload().Marshal()
}

func (o *Object) marshalHeader() []byte {
	var b []byte

	if !o.cnr.IsZero() {
		b = protobuf.AppendBytesField(b, fieldHeaderContainer, o.cnr[:])
	}

	b = protobuf.AppendBytesField(b, fieldHeaderOwner, o.owner)
	b = protobuf.AppendUint64Field(b, fieldHeaderEpoch, o.epoch)
	b = protobuf.AppendUint64Field(b, fieldHeaderType, uint64(o.typ))
	b = protobuf.AppendUint64Field(b, fieldHeaderPayloadLen, o.payloadLen)
	b = protobuf.AppendBytesField(b, fieldHeaderChecksum, o.checksum)
	b = protobuf.AppendBytesField(b, fieldHeaderHomoHash, o.homoHash)

	for i := range o.attrs {
		var a []byte
		a = protobuf.AppendStringField(a, fieldAttributeKey, o.attrs[i].Key)
		a = protobuf.AppendStringField(a, fieldAttributeValue, o.attrs[i].Value)

		b = protobuf.AppendBytesField(b, fieldHeaderAttribute, a)
	}

	if o.HasParent() || len(o.split.children) > 0 || !o.split.previous.IsZero() {
		b = protobuf.AppendBytesField(b, fieldHeaderSplit, o.split.marshal())
	}

	return b
}

func (s *splitHeader) marshal() []byte {
	var b []byte

	if !s.parentID.IsZero() {
		b = protobuf.AppendBytesField(b, fieldSplitParentID, s.parentID[:])
	}

	if s.parent != nil {
		b = protobuf.AppendBytesField(b, fieldSplitParentHeader, s.parent.marshalHeader())
	}

	if !s.previous.IsZero() {
		b = protobuf.AppendBytesField(b, fieldSplitPrevious, s.previous[:])
	}

	for i := range s.children {
		b = protobuf.AppendBytesField(b, fieldSplitChildren, s.children[i][:])
	}

	if s.splitID != nil {
		b = protobuf.AppendBytesField(b, fieldSplitID, s.splitID.ToBytes())
	}

	return b
}

// Unmarshal decodes object from its binary form.
func (o *Object) Unmarshal(data []byte) error {
	*o = Object{}

	return protobuf.IterateFields(data, func(f protobuf.Field) error {
		switch f.Num {
		case fieldObjectID:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}

			if err = o.id.Decode(v); err != nil {
				return fmt.Errorf("invalid object ID: %w", err)
			}
		case fieldObjectHeader:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}

			if err = o.unmarshalHeader(v); err != nil {
				return fmt.Errorf("invalid header: %w", err)
			}
		case fieldObjectPayload:
			v, err := f.BytesValue()
			if err != nil {
				return err
			}

			o.payload = v
		}

		return nil
	})
}

func (o *Object) unmarshalHeader(data []byte) error {
	return protobuf.IterateFields(data, func(f protobuf.Field) error {
		var err error

		switch f.Num {
		case fieldHeaderContainer:
			var v []byte
			if v, err = f.BytesValue(); err == nil {
				err = o.cnr.Decode(v)
			}
		case fieldHeaderOwner:
			o.owner, err = f.BytesValue()
		case fieldHeaderEpoch:
			o.epoch, err = f.Uint64Value()
		case fieldHeaderType:
			var v uint32
			v, err = f.Uint32Value()
			o.typ = Type(v)
		case fieldHeaderPayloadLen:
			o.payloadLen, err = f.Uint64Value()
		case fieldHeaderChecksum:
			o.checksum, err = f.BytesValue()
		case fieldHeaderHomoHash:
			o.homoHash, err = f.BytesValue()
		case fieldHeaderAttribute:
			var v []byte
			if v, err = f.BytesValue(); err == nil {
				var a Attribute
				if err = a.unmarshal(v); err == nil {
					o.attrs = append(o.attrs, a)
				}
			}
		case fieldHeaderSplit:
			var v []byte
			if v, err = f.BytesValue(); err == nil {
				err = o.split.unmarshal(v)
			}
		}

		return err
	})
}

func (a *Attribute) unmarshal(data []byte) error {
	return protobuf.IterateFields(data, func(f protobuf.Field) error {
		v, err := f.BytesValue()
		if err != nil {
			return err
		}

		switch f.Num {
		case fieldAttributeKey:
			a.Key = string(v)
		case fieldAttributeValue:
			a.Value = string(v)
		}

		return nil
	})
}

func (s *splitHeader) unmarshal(data []byte) error {
	return protobuf.IterateFields(data, func(f protobuf.Field) error {
		v, err := f.BytesValue()
		if err != nil {
			return err
		}

		switch f.Num {
		case fieldSplitParentID:
			return s.parentID.Decode(v)
		case fieldSplitParentHeader:
			par := New()
			if err = par.unmarshalHeader(v); err != nil {
				return fmt.Errorf("invalid parent header: %w", err)
			}

			s.parent = par
		case fieldSplitPrevious:
			return s.previous.Decode(v)
		case fieldSplitChildren:
			var id oid.ID
			if err = id.Decode(v); err != nil {
				return err
			}

			s.children = append(s.children, id)
		case fieldSplitID:
			s.splitID, err = NewSplitIDFromBytes(v)
		}

		return err
	})
}
