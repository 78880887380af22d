package cid

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the length of the binary container identifier.
const Size = sha256.Size

// ID represents container identifier: SHA-256 checksum of the
// container structure.
type ID [Size]byte

// ErrZero is returned when decoded identifier is zero.
var ErrZero = errors.New("zero container ID")

// FromBinary computes container identifier from its binary representation.
func FromBinary(data []byte) ID {
	return sha256.Sum256(data)
}

// Decode decodes identifier from its binary form.
func (id *ID) Decode(src []byte) error {
	if len(src) != Size {
		return fmt.Errorf("invalid length %d", len(src))
	}

	copy(id[:], src)

	return nil
}

// Encode writes binary form of the identifier to dst. dst must be at
// least Size bytes long.
func (id ID) Encode(dst []byte) {
	copy(dst, id[:])
}

// EncodeToString returns base58 text form of the identifier.
func (id ID) EncodeToString() string {
	return base58.Encode(id[:])
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return id.EncodeToString()
}

// DecodeString restores identifier from its base58 text form.
func (id *ID) DecodeString(s string) error {
	data, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode base58: %w", err)
	}

	return id.Decode(data)
}

// IsZero checks whether all bytes of the identifier are zero.
func (id ID) IsZero() bool {
	return id == ID{}
}
