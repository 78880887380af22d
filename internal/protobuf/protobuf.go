package protobuf

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// AppendBytesField appends VARLEN field with the given number to b. Empty
// values are omitted.
func AppendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, v)
}

// AppendStringField appends string field with the given number to b. Empty
// strings are omitted.
func AppendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendString(b, v)
}

// AppendUint64Field appends varint field with the given number to b. Zero
// values are omitted.
func AppendUint64Field(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, v)
}

// AppendBoolField appends bool field with the given number to b. False is
// omitted.
func AppendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// GetFirstBytesField gets VARLEN field with number = 1 from b.
//
// GetFirstBytesField returns slice of b, not copy.
func GetFirstBytesField(b []byte) ([]byte, error) {
	var res []byte

	err := IterateFields(b, func(f Field) error {
		if f.Num != 1 {
			return nil
		}

		v, err := f.BytesValue()
		if err != nil {
			return err
		}

		res = v

		return ErrStop
	})

	return res, err
}
