package protobuf

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrStop may be returned from IterateFields handler to break the
// iteration without an error.
var ErrStop = errors.New("stop iteration")

// Field is a single decoded protobuf field. Depending on the wire type
// either Varint or Bytes is set.
type Field struct {
	Num protowire.Number
	Typ protowire.Type

	Varint uint64
	Bytes  []byte
}

// BytesValue returns VARLEN value of the field or an error if the field has
// another type.
func (f Field) BytesValue() ([]byte, error) {
	if err := checkFieldType(f.Num, protowire.BytesType, f.Typ); err != nil {
		return nil, err
	}

	return f.Bytes, nil
}

// Uint64Value returns varint value of the field or an error if the field has
// another type.
func (f Field) Uint64Value() (uint64, error) {
	if err := checkFieldType(f.Num, protowire.VarintType, f.Typ); err != nil {
		return 0, err
	}

	return f.Varint, nil
}

// Uint32Value is the same as Uint64Value but also checks uint32 overflow.
func (f Field) Uint32Value() (uint32, error) {
	u, err := f.Uint64Value()
	if err != nil {
		return 0, err
	}

	if u > math.MaxUint32 {
		return 0, wrapParseFieldError(f.Num, f.Typ, fmt.Errorf("value %d overflows uint32", u))
	}

	return uint32(u), nil
}

// BoolValue returns bool value of varint field.
func (f Field) BoolValue() (bool, error) {
	u, err := f.Uint64Value()
	if err != nil {
		return false, err
	}

	return protowire.DecodeBool(u), nil
}

// IterateFields parses buf field by field and passes each of them to f.
// Varint and VARLEN fields are decoded, fields of other types are skipped.
// Bytes values are slices of buf, not copies.
//
// Returning ErrStop from f breaks the iteration, IterateFields returns nil
// in this case. Any other error is returned as is.
func IterateFields(buf []byte, f func(Field) error) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("parse field tag: %w", protowire.ParseError(n))
		}

		buf = buf[n:]

		fld := Field{Num: num, Typ: typ}

		switch typ {
		case protowire.VarintType:
			fld.Varint, n = protowire.ConsumeVarint(buf)
		case protowire.BytesType:
			fld.Bytes, n = protowire.ConsumeBytes(buf)
		default:
			n = protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return wrapParseFieldError(num, typ, protowire.ParseError(n))
			}

			buf = buf[n:]

			continue
		}

		if n < 0 {
			return wrapParseFieldError(num, typ, protowire.ParseError(n))
		}

		buf = buf[n:]

		if err := f(fld); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}

			return err
		}
	}

	return nil
}

func checkFieldType(num protowire.Number, exp, got protowire.Type) error {
	if exp == got {
		return nil
	}
	return fmt.Errorf("wrong type of field #%d: expected %v, got %v", num, exp, got)
}
