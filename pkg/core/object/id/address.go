package oid

import (
	"errors"
	"fmt"
	"strings"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
)

// Address represents global object identifier: a pair of container and
// object identifiers.
type Address struct {
	cnr cid.ID
	obj ID
}

const addressSeparator = "/"

// NewAddress constructs address from container and object identifiers.
func NewAddress(cnr cid.ID, obj ID) Address {
	return Address{cnr: cnr, obj: obj}
}

// Container returns container identifier.
func (x Address) Container() cid.ID {
	return x.cnr
}

// SetContainer sets container identifier.
func (x *Address) SetContainer(id cid.ID) {
	x.cnr = id
}

// Object returns object identifier.
func (x Address) Object() ID {
	return x.obj
}

// SetObject sets object identifier.
func (x *Address) SetObject(id ID) {
	x.obj = id
}

// EncodeToString encodes Address into a string of the form
// "<container>/<object>" with base58 encoded identifiers.
func (x Address) EncodeToString() string {
	return x.cnr.EncodeToString() + addressSeparator + x.obj.EncodeToString()
}

// String implements fmt.Stringer.
func (x Address) String() string {
	return x.EncodeToString()
}

// DecodeString decodes string into Address according to EncodeToString
// format.
func (x *Address) DecodeString(s string) error {
	i := strings.Index(s, addressSeparator)
	if i < 0 {
		return errors.New("missing separator")
	}

	err := x.cnr.DecodeString(s[:i])
	if err != nil {
		return fmt.Errorf("decode container ID: %w", err)
	}

	err = x.obj.DecodeString(s[i+1:])
	if err != nil {
		return fmt.Errorf("decode object ID: %w", err)
	}

	return nil
}

// Marshal encodes Address into a binary form: container ID followed
// by object ID.
func (x Address) Marshal() []byte {
	b := make([]byte, 2*Size)
	x.cnr.Encode(b)
	x.obj.Encode(b[Size:])

	return b
}

// Unmarshal decodes Address from its binary form.
func (x *Address) Unmarshal(data []byte) error {
	if len(data) != 2*Size {
		return fmt.Errorf("invalid address length %d", len(data))
	}

	if err := x.cnr.Decode(data[:Size]); err != nil {
		return err
	}

	return x.obj.Decode(data[Size:])
}
