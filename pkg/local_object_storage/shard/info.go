package shard

import (
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
)

// Info groups the information about Shard.
type Info struct {
	// Identifier of the shard.
	ID *ID

	// Shard mode.
	Mode mode.Mode

	// Information about the metabase.
	MetaBaseInfo meta.Info

	// Information about the BLOB storage.
	BlobStorInfo blobstor.Info

	// Information about the Write Cache.
	WriteCacheInfo writecache.Info

	// ErrorCount contains amount of errors occurred in shard operations.
	ErrorCount uint32
}

// DumpInfo returns information about the Shard.
func (s *Shard) DumpInfo() Info {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.info
}
