package protobuf

import (
	"fmt"
)

// Marshaler is a message that can encode itself into the protobuf binary
// form.
type Marshaler interface {
	Marshal() []byte
}

// Unmarshaler is a message that can decode itself from the protobuf binary
// form.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Codec is a gRPC codec for messages encoded by hand via protowire. All
// messages passed through it must implement Marshaler and Unmarshaler.
type Codec struct{}

// CodecName is the content-subtype of Codec.
const CodecName = "kestrel"

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Marshaler)
	if !ok {
		return nil, fmt.Errorf("message %T does not implement protobuf.Marshaler", v)
	}

	return m.Marshal(), nil
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Unmarshaler)
	if !ok {
		return fmt.Errorf("message %T does not implement protobuf.Unmarshaler", v)
	}

	return m.Unmarshal(data)
}

// Name implements encoding.Codec.
func (Codec) Name() string {
	return CodecName
}
