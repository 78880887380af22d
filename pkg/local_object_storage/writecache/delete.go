package writecache

import (
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

// Delete removes object from write-cache.
//
// Returns an error of type apistatus.ErrObjectNotFound if object is missing in write-cache.
func (c *cache) Delete(addr oid.Address) error {
	c.modeMtx.RLock()
	defer c.modeMtx.RUnlock()
	if c.readOnly() {
		return ErrReadOnly
	}

	saddr := addr.EncodeToString()

	c.mtx.Lock()
	oi, inMem := c.mem[saddr]
	if inMem {
		delete(c.mem, saddr)
		c.curMemSize -= uint64(len(oi.data))
	}
	c.mtx.Unlock()

	if inMem {
		storagelog.Write(c.log,
			storagelog.AddressField(addr),
			storagelog.StorageTypeField(wcStorageType),
			storagelog.OpField("in-mem DELETE"),
		)
	}

	inDB := c.deleteFromDB(saddr)
	inFS := c.deleteFromDisk(addr)

	c.flushed.Remove(saddr)

	if !inMem && !inDB && !inFS {
		return logicerr.Wrap(apistatus.ErrObjectNotFound)
	}

	return nil
}
