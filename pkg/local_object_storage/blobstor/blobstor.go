package blobstor

import (
	"sync"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/compression"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"go.uber.org/zap"
)

// SubStorage represents single storage component with some storage policy.
type SubStorage struct {
	Storage common.Storage

	// Policy decides whether the object with the given encoded (and
	// possibly compressed) data goes to the Storage. Nil policy accepts
	// everything.
	Policy func(*object.Object, []byte) bool
}

// BlobStor represents local BLOB storage: an ordered list of sub-storages,
// the first one whose policy accepts an object stores it.
type BlobStor struct {
	cfg

	modeMtx sync.RWMutex
	mode    mode.Mode
}

// Info contains information about blobstor.
type Info struct {
	SubStorages []SubStorageInfo
}

// SubStorageInfo contains information about blobstor storage component.
type SubStorageInfo struct {
	Type string
	Path string
}

// Option represents BlobStor's constructor option.
type Option func(*cfg)

type cfg struct {
	compression.Config
	log     *zap.Logger
	storage []SubStorage
}

func initConfig(c *cfg) {
	*c = cfg{
		log: zap.L(),
	}
}

// New creates, initializes and returns new BlobStor instance.
func New(opts ...Option) *BlobStor {
	bs := new(BlobStor)
	bs.mode = mode.ReadOnly
	initConfig(&bs.cfg)

	for i := range opts {
		opts[i](&bs.cfg)
	}

	for i := range bs.storage {
		bs.storage[i].Storage.SetCompressor(&bs.Config)
	}

	return bs
}

// SetLogger sets logger. It is used after the shard ID was generated to use it in logs.
func (b *BlobStor) SetLogger(l *zap.Logger) {
	b.log = l
}

// WithStorages provides sub-blobstors.
func WithStorages(st []SubStorage) Option {
	return func(c *cfg) {
		c.storage = st
	}
}

// WithLogger returns option to specify BlobStor's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithCompressObjects returns option to toggle
// compression of the stored objects.
//
// If true, Zstandard algorithm is used for data compression.
func WithCompressObjects(comp bool) Option {
	return func(c *cfg) {
		c.Enabled = comp
	}
}

// WithUncompressableContentTypes returns option to disable decompression
// for specific content types as seen by object.AttributeContentType attribute.
func WithUncompressableContentTypes(values []string) Option {
	return func(c *cfg) {
		c.UncompressableContentTypes = values
	}
}

// SmallObjectPolicy returns sub-storage policy accepting objects whose
// stored size is less than limit.
func SmallObjectPolicy(limit uint64) func(*object.Object, []byte) bool {
	return func(_ *object.Object, data []byte) bool {
		return uint64(len(data)) < limit
	}
}

// Compressor returns compressor used by the storage.
func (b *BlobStor) Compressor() *compression.Config {
	return &b.Config
}
