package blobovnicza

// ID represents Blobovnicza identifier: a path of the Blobovnicza in the
// tree of Blobovniczas.
type ID []byte

// NewIDFromBytes constructs an ID from a byte slice.
func NewIDFromBytes(v []byte) *ID {
	return (*ID)(&v)
}

func (id ID) String() string {
	return string(id)
}

// Bytes returns binary form of the identifier.
func (id ID) Bytes() []byte {
	return id
}
