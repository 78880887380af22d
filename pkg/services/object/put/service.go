package putsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/container"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/util"
	"github.com/kestrelfs/kestrel-node/pkg/services/object_manager/placement"
	pkgutil "github.com/kestrelfs/kestrel-node/pkg/util"
	"go.uber.org/zap"
)

// Notifier is notified about every object stored by the service.
type Notifier interface {
	Notify(obj *object.Object)
}

type cfg struct {
	localStore ObjectStorage

	cnrSrc container.Source

	netMapSrc netmap.Source

	netmapKeys util.NodeKeys

	remotePool, localPool pkgutil.WorkerPool

	clientConstructor ClientConstructor

	maxPayloadSize uint64

	fmtValidatorOpts []object.FormatValidatorOption

	fmtValidator *object.FormatValidator

	notifier Notifier

	log *zap.Logger
}

// Service stores objects locally and distributes them between container
// nodes according to the storage policy.
type Service struct {
	*cfg
}

// Option is a Service's constructor option.
type Option func(*cfg)

var (
	// ErrWrongPayloadSize is returned when declared payload size differs
	// from the actual one.
	ErrWrongPayloadSize = errors.New("wrong payload size")

	// ErrExceedingMaxSize is returned when payload is bigger than the limit.
	ErrExceedingMaxSize = errors.New("payload size is greater than the limit")
)

func defaultCfg() *cfg {
	return &cfg{
		remotePool: pkgutil.NewPseudoWorkerPool(),
		localPool:  pkgutil.NewPseudoWorkerPool(),
		netmapKeys: util.LocalKey(nil),
		log:        zap.L(),
	}
}

// NewService creates, initializes and returns Service instance.
func NewService(opts ...Option) *Service {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	if c.maxPayloadSize > 0 {
		c.fmtValidatorOpts = append(c.fmtValidatorOpts, object.WithMaxPayloadSize(c.maxPayloadSize))
	}

	c.fmtValidator = object.NewFormatValidator(c.fmtValidatorOpts...)

	return &Service{
		cfg: c,
	}
}

// Put validates the object and saves it in the container. Object is
// stored on the local node only if localOnly is set, otherwise it is
// distributed between container nodes until every replica group of the
// storage policy is satisfied.
func (p *Service) Put(ctx context.Context, obj *object.Object, localOnly bool) (oid.ID, error) {
	if err := p.validate(obj); err != nil {
		return oid.ID{}, err
	}

	meta, err := p.fmtValidator.ValidateContent(obj)
	if err != nil {
		return oid.ID{}, fmt.Errorf("could not validate payload content: %w", err)
	}

	opts, err := p.traverseOpts(obj, localOnly)
	if err != nil {
		return oid.ID{}, err
	}

	t := &distributedTarget{
		ctx:        ctx,
		obj:        obj,
		objMeta:    meta,
		remotePool: p.remotePool,
		localPool:  p.localPool,
		isLocalKey: p.netmapKeys.IsLocalKey,
		log:        p.log,
		traversalState: traversal{
			opts: opts,
		},
		nodeTargetInitializer: p.nodeTarget,
	}

	// tombstones are broadcast to all container nodes
	if !localOnly && obj.Type() == object.TypeTombstone {
		t.traversalState.extraBroadcastEnabled = true
	}

	id, err := t.iteratePlacement()
	if err != nil {
		return oid.ID{}, err
	}

	if p.notifier != nil {
		p.notifier.Notify(obj)
	}

	return id, nil
}

func (p *Service) validate(obj *object.Object) error {
	if obj == nil {
		return errors.New("missing object")
	}

	if ln := uint64(len(obj.Payload())); ln != obj.PayloadSize() {
		return fmt.Errorf("%w: declared %d, actual %d", ErrWrongPayloadSize, obj.PayloadSize(), ln)
	}

	if p.maxPayloadSize > 0 && obj.PayloadSize() > p.maxPayloadSize {
		return fmt.Errorf("%w: %d > %d", ErrExceedingMaxSize, obj.PayloadSize(), p.maxPayloadSize)
	}

	if err := p.fmtValidator.Validate(obj, false); err != nil {
		return fmt.Errorf("invalid object format: %w", err)
	}

	return nil
}

func (p *Service) traverseOpts(obj *object.Object, localOnly bool) ([]placement.Option, error) {
	nm, err := netmap.GetLatestNetworkMap(p.netMapSrc)
	if err != nil {
		return nil, fmt.Errorf("could not get latest network map: %w", err)
	}

	idCnr, _ := obj.Container()

	cnr, err := p.cnrSrc.Get(idCnr)
	if err != nil {
		return nil, fmt.Errorf("could not get container by ID: %w", err)
	}

	id, _ := obj.ID()

	opts := []placement.Option{
		placement.ForContainer(*cnr),
		placement.ForObject(id),
	}

	builder := placement.NewNetworkMapBuilder(nm)

	if localOnly {
		// restrict success count to 1 stored copy (to local storage)
		opts = append(opts, placement.SuccessAfter(1))

		// use local-only placement builder
		builder = util.NewLocalPlacement(builder, p.netmapKeys)
	}

	return append(opts, placement.UseBuilder(builder)), nil
}

func (p *Service) nodeTarget(node nodeDesc) objectTarget {
	if node.local {
		return &localTarget{
			storage: p.localStore,
		}
	}

	return &remoteTarget{
		ctx:               node.ctx,
		clientConstructor: p.clientConstructor,
		node:              node.info,
	}
}

// WithObjectStorage returns option to set the local object storage.
func WithObjectStorage(v ObjectStorage) Option {
	return func(c *cfg) {
		c.localStore = v
	}
}

// WithContainerSource returns option to set the container source.
func WithContainerSource(v container.Source) Option {
	return func(c *cfg) {
		c.cnrSrc = v
	}
}

// WithNetworkMapSource returns option to set the network map source.
func WithNetworkMapSource(v netmap.Source) Option {
	return func(c *cfg) {
		c.netMapSrc = v
	}
}

// WithNetmapKeys returns option to set the local node identity checker.
func WithNetmapKeys(v util.NodeKeys) Option {
	return func(c *cfg) {
		c.netmapKeys = v
	}
}

// WithWorkerPools returns option to set worker pools of the remote and
// local writes.
func WithWorkerPools(remote, local pkgutil.WorkerPool) Option {
	return func(c *cfg) {
		c.remotePool, c.localPool = remote, local
	}
}

// WithClientConstructor returns option to set the constructor of remote
// node clients.
func WithClientConstructor(v ClientConstructor) Option {
	return func(c *cfg) {
		c.clientConstructor = v
	}
}

// WithMaxPayloadSize returns option to limit the payload size of the
// stored objects. Zero means no limit.
func WithMaxPayloadSize(v uint64) Option {
	return func(c *cfg) {
		c.maxPayloadSize = v
	}
}

// WithoutHomomorphicHash returns option to skip homomorphic hash checks.
func WithoutHomomorphicHash() Option {
	return func(c *cfg) {
		c.fmtValidatorOpts = append(c.fmtValidatorOpts, object.WithoutHomomorphicHash())
	}
}

// WithNotifier returns option to set the stored object notifier.
func WithNotifier(v Notifier) Option {
	return func(c *cfg) {
		c.notifier = v
	}
}

// WithLogger returns option to specify Put service's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}
