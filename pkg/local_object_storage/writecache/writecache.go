package writecache

import (
	"fmt"
	"sync"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Info groups the information about write-cache.
type Info struct {
	// Full path to the write-cache.
	Path string
}

// Cache represents write-cache for objects.
type Cache interface {
	Get(oid.Address) (*object.Object, error)
	Head(oid.Address) (*object.Object, error)
	// Delete removes object referenced by the given oid.Address from the
	// Cache. Returns any error encountered that prevented the object to be
	// removed.
	//
	// Returns apistatus.ErrObjectNotFound if object is missing in the Cache.
	// Returns ErrReadOnly if the Cache is currently in the read-only mode.
	Delete(oid.Address) error
	Iterate(IterationPrm) error
	Put(addr oid.Address, obj *object.Object, data []byte) error
	SetMode(mode.Mode) error
	SetLogger(*zap.Logger)
	DumpInfo() Info
	Flush(ignoreErrors bool) error

	Init() error
	Open(readOnly bool) error
	Close() error
}

type cache struct {
	options

	// mtx protects mem field and curMemSize.
	mtx        sync.RWMutex
	mem        map[string]objectInfo
	curMemSize uint64

	// persistMtx serializes moving memory entries to disk.
	persistMtx sync.Mutex

	mode    mode.Mode
	modeMtx sync.RWMutex

	// flushCh is a channel with objects to flush.
	flushCh chan flushTask
	// processing contains keys of objects queued for flushing.
	processing sync.Map
	// closeCh is close channel.
	closeCh chan struct{}
	// wg is a wait group for flush workers.
	wg sync.WaitGroup

	store

	objCounters counters
}

// wcStorageType is used for write-cache operations logging.
const wcStorageType = "write-cache"

type objectInfo struct {
	addr string
	data []byte
	obj  *object.Object
}

const (
	maxInMemorySizeBytes = 1024 * 1024 * 1024 // 1 GiB
	maxObjectSize        = 64 * 1024 * 1024   // 64 MiB
	smallObjectSize      = 32 * 1024          // 32 KiB
	maxCacheSizeBytes    = 1 << 30            // 1 GiB
)

var (
	defaultBucket = []byte{0}
)

// New creates new writecache instance.
func New(opts ...Option) Cache {
	c := &cache{
		flushCh: make(chan flushTask),
		mem:     make(map[string]objectInfo),
		mode:    mode.ReadWrite,

		options: options{
			log:             zap.NewNop(),
			metrics:         nopMetrics{},
			maxMemSize:      maxInMemorySizeBytes,
			maxObjectSize:   maxObjectSize,
			smallObjectSize: smallObjectSize,
			workersCount:    defaultFlushWorkersCount,
			maxCacheSize:    maxCacheSizeBytes,
			maxBatchSize:    bbolt.DefaultMaxBatchSize,
			maxBatchDelay:   bbolt.DefaultMaxBatchDelay,
			flushedCapacity: defaultFlushedCapacity,
		},
	}

	for i := range opts {
		opts[i](&c.options)
	}

	return c
}

// SetLogger sets logger. It is used after the shard ID was generated to use it in logs.
func (c *cache) SetLogger(l *zap.Logger) {
	c.log = l
}

func (c *cache) DumpInfo() Info {
	return Info{
		Path: c.path,
	}
}

// Open opens and initializes database. Reads object counters from the database and FSTree.
func (c *cache) Open(readOnly bool) error {
	err := c.openStore(readOnly)
	if err != nil {
		return err
	}

	// Opening after Close is done during maintenance mode,
	// thus we need to create a channel here.
	c.closeCh = make(chan struct{})

	c.modeMtx.Lock()
	if readOnly {
		c.mode = mode.ReadOnly
	} else {
		c.mode = mode.ReadWrite
	}
	c.modeMtx.Unlock()

	return c.initCounters()
}

// Init runs necessary services.
func (c *cache) Init() error {
	if err := c.fsTree.Init(); err != nil {
		return fmt.Errorf("init FSTree: %w", err)
	}

	c.modeMtx.RLock()
	defer c.modeMtx.RUnlock()

	if c.readOnly() {
		c.log.Warn("write-cache is opened in read-only mode, objects are not flushed")
		return nil
	}

	c.initFlushMarks()
	c.runFlushLoop()

	return nil
}

// Close closes db connection and stops services. In-memory objects are
// persisted to disk before.
func (c *cache) Close() error {
	// Finish all in-progress operations.
	if err := c.SetMode(mode.ReadOnly); err != nil {
		return err
	}

	if c.closeCh != nil {
		close(c.closeCh)
	}
	c.wg.Wait()
	c.closeCh = nil

	var err error
	if c.db != nil {
		err = c.db.Close()
		c.db = nil
	}

	if fErr := c.fsTree.Close(); fErr != nil && err == nil {
		err = fErr
	}

	return err
}

// storage is a main object storage the write-cache flushes to.
type storage interface {
	Put(common.PutPrm) (common.PutRes, error)
	Exists(common.ExistsPrm) (common.ExistsRes, error)
}

// metabase is an index the write-cache reports flushed objects to.
type metabase interface {
	Exists(oid.Address) (bool, error)
	StorageID(oid.Address) ([]byte, error)
	UpdateStorageID(oid.Address, []byte) error
}
