package blobovnicza

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

// GetRangePrm groups the parameters of GetRange operation.
type GetRangePrm struct {
	addr oid.Address
	off  uint64
	ln   uint64
}

// GetRangeRes groups the resulting values of GetRange operation.
type GetRangeRes struct {
	rangeData []byte
}

// SetAddress sets the address of the requested object.
func (p *GetRangePrm) SetAddress(addr oid.Address) {
	p.addr = addr
}

// SetRange sets the range of the requested payload data.
func (p *GetRangePrm) SetRange(off, ln uint64) {
	p.off, p.ln = off, ln
}

// RangeData returns the data of the requested payload range.
func (p GetRangeRes) RangeData() []byte {
	return p.rangeData
}

// GetRange reads the payload range of the object from Blobovnicza by address.
//
// Returns an error of type apistatus.ErrObjectNotFound if the requested object is
// missing in Blobovnicza, apistatus.ErrObjectOutOfRange if the range is out of
// payload bounds.
func (b *Blobovnicza) GetRange(prm GetRangePrm) (GetRangeRes, error) {
	var gPrm GetPrm
	gPrm.SetAddress(prm.addr)

	res, err := b.Get(gPrm)
	if err != nil {
		return GetRangeRes{}, err
	}

	obj := object.New()
	if err := obj.Unmarshal(res.Object()); err != nil {
		return GetRangeRes{}, fmt.Errorf("could not unmarshal the object: %w", err)
	}

	payload, err := cutRange(obj.Payload(), prm.off, prm.ln)
	if err != nil {
		return GetRangeRes{}, err
	}

	return GetRangeRes{
		rangeData: payload,
	}, nil
}

func cutRange(payload []byte, off, ln uint64) ([]byte, error) {
	if to := off + ln; to < off || uint64(len(payload)) < to {
		return nil, logicerr.Wrap(apistatus.ErrObjectOutOfRange)
	}

	return payload[off : off+ln], nil
}
