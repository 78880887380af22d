package object_test

import (
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/stretchr/testify/require"
)

func TestObject_Marshal(t *testing.T) {
	cnr := cidtest.ID()

	parent := objecttest.ObjectWithCID(cnr)
	objecttest.AddAttribute(parent, object.AttributeFileName, "cat.jpg")

	child := objecttest.ObjectWithCID(cnr)
	child.SetPreviousID(oidtest.ID())
	objecttest.SetParent(child, parent, object.NewSplitID())

	var restored object.Object
	require.NoError(t, restored.Unmarshal(child.Marshal()))

	require.Equal(t, child.Address(), restored.Address())
	require.Equal(t, child.Payload(), restored.Payload())
	require.Equal(t, child.Attributes(), restored.Attributes())
	require.True(t, child.SplitID().Equals(restored.SplitID()))

	prev, ok := restored.PreviousID()
	require.True(t, ok)
	expPrev, _ := child.PreviousID()
	require.Equal(t, expPrev, prev)

	par := restored.Parent()
	require.NotNil(t, par)
	require.Equal(t, parent.Address(), par.Address())
	require.Equal(t, "cat.jpg", par.Attribute(object.AttributeFileName))
	require.Empty(t, par.Payload())

	// identifiers survive encoding
	require.Equal(t, child.CalculateID(), restored.CalculateID())
	require.Equal(t, parent.CalculateID(), par.CalculateID())
}

func TestObject_MarshalHeader(t *testing.T) {
	obj := objecttest.Object()

	var hdr object.Object
	require.NoError(t, hdr.Unmarshal(obj.MarshalHeader()))
	require.Empty(t, hdr.Payload())
	require.Equal(t, obj.PayloadSize(), hdr.PayloadSize())
	require.Equal(t, obj.Address(), hdr.Address())
}

func TestFormatValidator_Validate(t *testing.T) {
	v := object.NewFormatValidator(object.WithMaxPayloadSize(1024))

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.Validate(objecttest.Object(), false))
	})

	t.Run("nil", func(t *testing.T) {
		require.Error(t, v.Validate(nil, false))
	})

	t.Run("without container", func(t *testing.T) {
		obj := object.New()
		require.Error(t, v.Validate(obj, true))
	})

	t.Run("wrong ID", func(t *testing.T) {
		obj := objecttest.Object()
		obj.SetID(oidtest.ID())
		require.ErrorIs(t, v.Validate(obj, false), object.ErrInvalidID)
	})

	t.Run("wrong payload", func(t *testing.T) {
		obj := objecttest.Object()
		obj.Payload()[0]++
		require.ErrorIs(t, v.Validate(obj, false), object.ErrInvalidChecksum)
	})

	t.Run("too big", func(t *testing.T) {
		obj := objecttest.ObjectWithPayload(cidtest.ID(), make([]byte, 1025))
		require.ErrorIs(t, v.Validate(obj, true), object.ErrPayloadTooBig)
	})
}

func TestFormatValidator_ValidateContent(t *testing.T) {
	v := object.NewFormatValidator()
	cnr := cidtest.ID()
	members := []oid.ID{oidtest.ID(), oidtest.ID()}

	meta, err := v.ValidateContent(objecttest.Tombstone(cnr, 10, members...))
	require.NoError(t, err)
	require.Equal(t, object.TypeTombstone, meta.Type())
	require.Equal(t, members, meta.Objects())

	empty := objecttest.ObjectWithCID(cnr)
	empty.SetType(object.TypeTombstone)
	empty.SetPayload(nil)
	_, err = v.ValidateContent(empty)
	require.Error(t, err)
}

func TestSplitInfo_Marshal(t *testing.T) {
	si := object.NewSplitInfo()
	si.SetSplitID(object.NewSplitID())
	si.SetLink(oidtest.ID())

	var restored object.SplitInfo
	require.NoError(t, restored.Unmarshal(si.Marshal()))
	require.True(t, si.SplitID().Equals(restored.SplitID()))

	_, ok := restored.LastPart()
	require.False(t, ok)

	link, ok := restored.Link()
	require.True(t, ok)
	exp, _ := si.Link()
	require.Equal(t, exp, link)

	var siErr error = object.NewSplitInfoError(si)
	require.Equal(t, si, siErr.(*object.SplitInfoError).SplitInfo())
}
