package protobuf

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// NewRepeatedFieldError returns common error for field #n repeated more than
// once.
func NewRepeatedFieldError(n protowire.Number) error {
	return fmt.Errorf("repeated field #%d", n)
}

func wrapParseFieldError(n protowire.Number, t protowire.Type, cause error) error {
	return fmt.Errorf("parse field (#%d,type=%v): %w", n, t, cause)
}
