package blobovniczatree

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"go.uber.org/zap"
)

// Get reads object from blobovnicza tree.
//
// If blobovnicza ID is specified, only this blobovnicza is processed.
// Otherwise, all blobovniczas are processed descending weight.
func (b *Blobovniczas) Get(prm common.GetPrm) (common.GetRes, error) {
	var data []byte

	err := b.probe(prm.Address, prm.StorageID, func(blz *blobovnicza.Blobovnicza) error {
		var gPrm blobovnicza.GetPrm
		gPrm.SetAddress(prm.Address)

		res, err := blz.Get(gPrm)
		if err != nil {
			return err
		}

		data = res.Object()

		return nil
	})
	if err != nil {
		return common.GetRes{}, err
	}

	if prm.Raw {
		return common.GetRes{RawData: data}, nil
	}

	obj := object.New()
	if err := obj.Unmarshal(data); err != nil {
		return common.GetRes{}, fmt.Errorf("could not unmarshal the object: %w", err)
	}

	return common.GetRes{Object: obj, RawData: data}, nil
}

// GetRange reads range of object payload data from blobovnicza tree.
//
// If blobovnicza ID is specified, only this blobovnicza is processed.
// Otherwise, all blobovniczas are processed descending weight.
func (b *Blobovniczas) GetRange(prm common.GetRangePrm) (common.GetRangeRes, error) {
	var data []byte

	err := b.probe(prm.Address, prm.StorageID, func(blz *blobovnicza.Blobovnicza) error {
		var rPrm blobovnicza.GetRangePrm
		rPrm.SetAddress(prm.Address)
		rPrm.SetRange(prm.Offset, prm.Length)

		res, err := blz.GetRange(rPrm)
		if err != nil {
			return err
		}

		data = res.RangeData()

		return nil
	})

	return common.GetRangeRes{Data: data}, err
}

// probe executes f on the blobovnicza with the given ID or, if ID is
// missing, on all created blobovniczas in descending weight order until f
// returns anything except the not found error.
func (b *Blobovniczas) probe(addr oid.Address, id []byte, f func(*blobovnicza.Blobovnicza) error) error {
	if id != nil {
		err := b.withLeaf(blobovnicza.ID(id).String(), f)
		if errors.Is(err, errLeafMissing) {
			return logicerr.Wrap(apistatus.ErrObjectNotFound)
		}

		return err
	}

	var res error = logicerr.Wrap(apistatus.ErrObjectNotFound)

	err := b.iterateSortedLeaves(addr, func(p string) (bool, error) {
		err := b.withLeaf(p, f)
		switch {
		case err == nil:
			res = nil
			return true, nil
		case errors.Is(err, errLeafMissing), errors.Is(err, apistatus.ErrObjectNotFound):
			return false, nil
		case errors.Is(err, apistatus.ErrObjectOutOfRange):
			res = err
			return true, nil
		default:
			b.log.Debug("could not get object from blobovnicza",
				zap.String("path", p),
				zap.Error(err),
			)

			return false, nil
		}
	})
	if err != nil {
		return err
	}

	return res
}
