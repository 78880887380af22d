package object

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/nspcc-dev/tzhash/tz"
)

// FormatValidator represents an object format validator.
type FormatValidator struct {
	*cfg
}

// FormatValidatorOption represents a FormatValidator constructor option.
type FormatValidatorOption func(*cfg)

type cfg struct {
	maxPayloadSize uint64
	skipHomoHash   bool
}

// ContentMeta describes the content of a special object.
type ContentMeta struct {
	typ Type

	objs []oid.ID
}

// Type returns object's type.
func (i ContentMeta) Type() Type {
	return i.typ
}

// Objects returns objects that the original object's payload affects:
// removed members for tombstones.
func (i ContentMeta) Objects() []oid.ID {
	return i.objs
}

var (
	errNilObject = errors.New("object is nil")
	errNilID     = errors.New("missing identifier")
	errNilCID    = errors.New("missing container identifier")

	// ErrInvalidChecksum is returned when one of the payload checksums does
	// not match the payload.
	ErrInvalidChecksum = errors.New("payload checksum mismatch")

	// ErrInvalidID is returned when object identifier does not match its
	// header.
	ErrInvalidID = errors.New("object ID mismatch")

	// ErrPayloadTooBig is returned when payload exceeds the configured limit.
	ErrPayloadTooBig = errors.New("payload size is greater than the limit")
)

func defaultCfg() *cfg {
	return new(cfg)
}

// NewFormatValidator creates, initializes and returns FormatValidator instance.
func NewFormatValidator(opts ...FormatValidatorOption) *FormatValidator {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	return &FormatValidator{cfg: c}
}

// Validate checks object format: header consistency, identifier and
// payload checksums.
//
// If unprepared is true, only fields set by the client are checked:
// identifier and checksums are expected to be calculated by the node.
func (v *FormatValidator) Validate(obj *Object, unprepared bool) error {
	if obj == nil {
		return errNilObject
	}

	if _, ok := obj.Container(); !ok {
		return errNilCID
	}

	if v.maxPayloadSize > 0 && uint64(len(obj.Payload())) > v.maxPayloadSize {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooBig, len(obj.Payload()), v.maxPayloadSize)
	}

	if unprepared {
		return nil
	}

	id, ok := obj.ID()
	if !ok {
		return errNilID
	}

	if obj.CalculateID() != id {
		return ErrInvalidID
	}

	if par := obj.Parent(); par != nil {
		if parID, ok := par.ID(); ok && par.CalculateID() != parID {
			return fmt.Errorf("parent: %w", ErrInvalidID)
		}
	}

	return v.validatePayload(obj)
}

func (v *FormatValidator) validatePayload(obj *Object) error {
	payload := obj.Payload()
	if payload == nil && obj.PayloadSize() > 0 {
		// header-only object
		return nil
	}

	if obj.PayloadSize() != uint64(len(payload)) {
		return fmt.Errorf("%w: declared length %d, actual %d", ErrInvalidChecksum, obj.PayloadSize(), len(payload))
	}

	cs, ok := obj.PayloadChecksum()
	if !ok {
		return fmt.Errorf("%w: missing SHA-256 checksum", ErrInvalidChecksum)
	}

	if h := sha256.Sum256(payload); !bytes.Equal(cs[:], h[:]) {
		return fmt.Errorf("%w: SHA-256", ErrInvalidChecksum)
	}

	if v.skipHomoHash {
		return nil
	}

	if hh, ok := obj.PayloadHomomorphicHash(); ok {
		if h := tz.Sum(payload); !bytes.Equal(hh[:], h[:]) {
			return fmt.Errorf("%w: homomorphic hash", ErrInvalidChecksum)
		}
	}

	return nil
}

// ValidateContent validates payload content according to the object type.
func (v *FormatValidator) ValidateContent(o *Object) (ContentMeta, error) {
	meta := ContentMeta{
		typ: o.Type(),
	}

	switch o.Type() {
	case TypeRegular:
	case TypeTombstone:
		if len(o.Payload()) == 0 {
			return ContentMeta{}, errors.New("empty payload in tombstone")
		}

		tombstone := NewTombstone()

		if err := tombstone.Unmarshal(o.Payload()); err != nil {
			return ContentMeta{}, fmt.Errorf("could not unmarshal tombstone content: %w", err)
		}

		if tombstone.SplitID() == nil && len(tombstone.Members()) == 0 {
			return ContentMeta{}, errors.New("tombstone has no members")
		}

		meta.objs = tombstone.Members()
	default:
		return ContentMeta{}, fmt.Errorf("unsupported object type %d", o.Type())
	}

	return meta, nil
}

// WithMaxPayloadSize returns option to limit the payload size of the
// validated objects.
func WithMaxPayloadSize(sz uint64) FormatValidatorOption {
	return func(c *cfg) {
		c.maxPayloadSize = sz
	}
}

// WithoutHomomorphicHash returns option to skip homomorphic hash
// verification.
func WithoutHomomorphicHash() FormatValidatorOption {
	return func(c *cfg) {
		c.skipHomoHash = true
	}
}
