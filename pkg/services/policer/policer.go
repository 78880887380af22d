package policer

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kestrelfs/kestrel-node/pkg/core/container"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/engine"
	"github.com/kestrelfs/kestrel-node/pkg/services/object_manager/placement"
	"github.com/kestrelfs/kestrel-node/pkg/services/replicator"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// LocalStorage is the local object storage walked by Policer.
type LocalStorage interface {
	ListWithCursor(count uint32, cursor *engine.Cursor) ([]oid.Address, *engine.Cursor, error)
}

// RemoteHeader requests object headers from the remote nodes.
type RemoteHeader interface {
	Head(ctx context.Context, node netmap.NodeInfo, addr oid.Address) (*object.Object, error)
}

// Replicator handles replication tasks of the objects lacking copies.
type Replicator interface {
	HandleTask(ctx context.Context, task replicator.Task, res replicator.TaskResult)
}

// RedundantCopyCallback is a callback to pass
// the redundant local copy of the object.
type RedundantCopyCallback func(oid.Address)

type objectsInWork struct {
	m    sync.RWMutex
	objs map[oid.Address]struct{}
}

func (oiw *objectsInWork) inWork(addr oid.Address) bool {
	oiw.m.RLock()
	_, ok := oiw.objs[addr]
	oiw.m.RUnlock()

	return ok
}

func (oiw *objectsInWork) remove(addr oid.Address) {
	oiw.m.Lock()
	delete(oiw.objs, addr)
	oiw.m.Unlock()
}

func (oiw *objectsInWork) add(addr oid.Address) {
	oiw.m.Lock()
	oiw.objs[addr] = struct{}{}
	oiw.m.Unlock()
}

// Policer represents the utility that verifies
// compliance with the object storage policy.
type Policer struct {
	*cfg

	cache *lru.Cache[oid.Address, time.Time]

	objsInWork *objectsInWork
}

// Option is an option for Policer constructor.
type Option func(*cfg)

type cfg struct {
	sync.RWMutex
	// protects the reloadable fields below
	headTimeout time.Duration
	batchSize   uint32

	log *zap.Logger

	localStorage LocalStorage

	cnrSrc container.Source

	placementBuilder placement.Builder

	remoteHeader RemoteHeader

	netmapKeys netmap.AnnouncedKeys

	replicator Replicator

	cbRedundantCopy RedundantCopyCallback

	taskPool *ants.Pool

	cacheSize uint32

	sleepDuration, evictDuration time.Duration
}

func defaultCfg() *cfg {
	return &cfg{
		log:           zap.L(),
		headTimeout:   5 * time.Second,
		batchSize:     10,
		cacheSize:     1024,
		sleepDuration: time.Second,
		evictDuration: 30 * time.Second,
	}
}

// New creates, initializes and returns Policer instance.
func New(opts ...Option) *Policer {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	c.log = c.log.With(zap.String("component", "Object Policer"))

	cache, err := lru.New[oid.Address, time.Time](int(c.cacheSize))
	if err != nil {
		panic(err)
	}

	return &Policer{
		cfg:   c,
		cache: cache,
		objsInWork: &objectsInWork{
			objs: make(map[oid.Address]struct{}),
		},
	}
}

// Reload allows runtime reconfiguration of the head timeout and the
// batch size.
func (p *Policer) Reload(opts ...Option) {
	c := defaultCfg()
	for _, o := range opts {
		o(c)
	}

	p.cfg.Lock()
	defer p.cfg.Unlock()

	p.headTimeout = c.headTimeout
	p.batchSize = c.batchSize
}

// WithHeadTimeout returns option to set Head timeout of Policer.
func WithHeadTimeout(v time.Duration) Option {
	return func(c *cfg) {
		c.headTimeout = v
	}
}

// WithLogger returns option to set Logger of Policer.
func WithLogger(v *zap.Logger) Option {
	return func(c *cfg) {
		c.log = v
	}
}

// WithLocalStorage returns option to set local object storage of Policer.
func WithLocalStorage(v LocalStorage) Option {
	return func(c *cfg) {
		c.localStorage = v
	}
}

// WithContainerSource returns option to set container source of Policer.
func WithContainerSource(v container.Source) Option {
	return func(c *cfg) {
		c.cnrSrc = v
	}
}

// WithPlacementBuilder returns option to set object placement builder of Policer.
func WithPlacementBuilder(v placement.Builder) Option {
	return func(c *cfg) {
		c.placementBuilder = v
	}
}

// WithRemoteHeader returns option to set object header receiver of Policer.
func WithRemoteHeader(v RemoteHeader) Option {
	return func(c *cfg) {
		c.remoteHeader = v
	}
}

// WithNetmapKeys returns option to set tool to work with announced public keys.
func WithNetmapKeys(v netmap.AnnouncedKeys) Option {
	return func(c *cfg) {
		c.netmapKeys = v
	}
}

// WithReplicator returns option to set object replicator of Policer.
func WithReplicator(v Replicator) Option {
	return func(c *cfg) {
		c.replicator = v
	}
}

// WithRedundantCopyCallback returns option to set
// callback to pass redundant local object copies
// detected by Policer.
func WithRedundantCopyCallback(cb RedundantCopyCallback) Option {
	return func(c *cfg) {
		c.cbRedundantCopy = cb
	}
}

// WithPool returns option to set pool for
// policy and replication operations.
func WithPool(p *ants.Pool) Option {
	return func(c *cfg) {
		c.taskPool = p
	}
}

// WithObjectBatchSize returns option to set maximum objects amount
// selected from the local storage at once.
func WithObjectBatchSize(v uint32) Option {
	return func(c *cfg) {
		c.batchSize = v
	}
}

// WithObjectCacheSize returns option to set the size of the recently
// checked objects cache.
func WithObjectCacheSize(v uint32) Option {
	return func(c *cfg) {
		c.cacheSize = v
	}
}

// WithObjectCacheTime returns option to set the period an object is not
// checked again after the last check.
func WithObjectCacheTime(v time.Duration) Option {
	return func(c *cfg) {
		c.evictDuration = v
	}
}

// WithSleepDuration returns option to set the pause between full walks
// over the local storage.
func WithSleepDuration(v time.Duration) Option {
	return func(c *cfg) {
		c.sleepDuration = v
	}
}
