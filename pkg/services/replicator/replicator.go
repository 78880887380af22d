package replicator

import (
	"context"
	"time"

	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.uber.org/zap"
)

// LocalStorage is the local object storage replicated objects are read from.
type LocalStorage interface {
	Get(oid.Address) (*object.Object, error)
}

// RemoteSender sends objects to the remote nodes.
type RemoteSender interface {
	PutObject(ctx context.Context, node netmap.NodeInfo, obj *object.Object) error
}

// Metrics accounts replication attempts.
type Metrics interface {
	AddReplicated(success bool)
}

// Replicator represents the utility that replicates
// local objects to remote nodes.
type Replicator struct {
	*cfg
}

// Option is an option for Replicator constructor.
type Option func(*cfg)

type cfg struct {
	putTimeout time.Duration

	log *zap.Logger

	remoteSender RemoteSender

	localStorage LocalStorage

	metrics Metrics
}

type noopMetrics struct{}

func (noopMetrics) AddReplicated(bool) {}

func defaultCfg() *cfg {
	return &cfg{
		putTimeout: 5 * time.Second,
		log:        zap.L(),
		metrics:    noopMetrics{},
	}
}

// New creates, initializes and returns Replicator instance.
func New(opts ...Option) *Replicator {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	c.log = c.log.With(zap.String("component", "Object Replicator"))

	return &Replicator{
		cfg: c,
	}
}

// WithPutTimeout returns option to set Put timeout of Replicator.
func WithPutTimeout(v time.Duration) Option {
	return func(c *cfg) {
		c.putTimeout = v
	}
}

// WithLogger returns option to set Logger of Replicator.
func WithLogger(v *zap.Logger) Option {
	return func(c *cfg) {
		c.log = v
	}
}

// WithRemoteSender returns option to set remote object sender of Replicator.
func WithRemoteSender(v RemoteSender) Option {
	return func(c *cfg) {
		c.remoteSender = v
	}
}

// WithLocalStorage returns option to set local object storage of Replicator.
func WithLocalStorage(v LocalStorage) Option {
	return func(c *cfg) {
		c.localStorage = v
	}
}

// WithMetrics returns option to set replication metrics.
func WithMetrics(v Metrics) Option {
	return func(c *cfg) {
		c.metrics = v
	}
}
