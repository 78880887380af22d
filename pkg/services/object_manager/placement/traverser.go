package placement

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/kestrelfs/kestrel-node/pkg/core/container"
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/network"
	"go.uber.org/zap"
)

// Builder is an interface of the
// object placement vector builder.
type Builder interface {
	// BuildPlacement returns the list of placement vectors
	// for object according to the placement policy.
	//
	// Must return all container nodes if object identifier
	// is nil.
	BuildPlacement(cid.ID, *oid.ID, netmap.PlacementPolicy) ([]netmap.Nodes, error)
}

// Option represents placement traverser option.
type Option func(*cfg)

// Traverser represents utility for controlling
// traversal of object placement vectors.
type Traverser struct {
	mtx sync.RWMutex

	log *zap.Logger

	vectors []netmap.Nodes

	rem []int
}

type cfg struct {
	trackCopies bool

	flatSuccess *uint32

	cnr cid.ID

	obj *oid.ID

	policySet bool
	policy    netmap.PlacementPolicy

	builder Builder

	log *zap.Logger
}

var (
	errNilBuilder   = errors.New("placement builder is nil")
	errNilPolicy    = errors.New("placement policy is nil")
	errCopiesNumber = errors.New("wrong number of object copies")
)

func defaultCfg() *cfg {
	return &cfg{
		trackCopies: true,
		log:         zap.NewNop(),
	}
}

// NewTraverser creates, initializes with options and returns Traverser instance.
func NewTraverser(opts ...Option) (*Traverser, error) {
	cfg := defaultCfg()

	for i := range opts {
		if opts[i] != nil {
			opts[i](cfg)
		}
	}

	if cfg.builder == nil {
		return nil, fmt.Errorf("incomplete traverser options: %w", errNilBuilder)
	} else if !cfg.policySet {
		return nil, fmt.Errorf("incomplete traverser options: %w", errNilPolicy)
	}

	ns, err := cfg.builder.BuildPlacement(cfg.cnr, cfg.obj, cfg.policy)
	if err != nil {
		return nil, fmt.Errorf("could not build placement: %w", err)
	}

	var rem []int
	if cfg.flatSuccess != nil {
		ns = []netmap.Nodes{FlattenNodes(ns)}
		rem = []int{int(*cfg.flatSuccess)}
	} else {
		replNum := cfg.policy.NumberOfReplicas()
		if replNum != len(ns) {
			return nil, fmt.Errorf("%w: %d placement vectors for %d replicas", errCopiesNumber, len(ns), replNum)
		}

		rem = make([]int, 0, replNum)

		for i := 0; i < replNum; i++ {
			if cfg.trackCopies {
				rem = append(rem, int(cfg.policy.ReplicaNumberByIndex(i)))
			} else {
				rem = append(rem, -1)
			}
		}
	}

	return &Traverser{
		log:     cfg.log,
		rem:     rem,
		vectors: ns,
	}, nil
}

// Node is a descriptor of storage node with information required for intra-container communication.
type Node struct {
	addresses network.AddressGroup

	key []byte
}

// Addresses returns group of network addresses.
func (x Node) Addresses() network.AddressGroup {
	return x.addresses
}

// PublicKey returns public key in a binary format. Should not be mutated.
func (x Node) PublicKey() []byte {
	return x.key
}

// Next returns next unprocessed address of the object placement.
//
// Returns nil if no nodes left or traversal operation succeeded.
func (t *Traverser) Next() []Node {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.skipEmptyVectors()

	if len(t.vectors) == 0 {
		return nil
	} else if len(t.vectors[0]) < t.rem[0] {
		return nil
	}

	count := t.rem[0]
	if count < 0 {
		count = len(t.vectors[0])
	}

	nodes := make([]Node, 0, count)

	for i := 0; i < count; i++ {
		var n Node

		err := n.addresses.FromIterator(t.vectors[0][i])
		if err != nil {
			t.log.Warn("skip placement node with invalid network endpoints",
				zap.String("public key", hex.EncodeToString(t.vectors[0][i].PublicKey())),
				zap.Error(err))
			continue
		}

		n.key = t.vectors[0][i].PublicKey()

		nodes = append(nodes, n)
	}

	t.vectors[0] = t.vectors[0][count:]

	return nodes
}

func (t *Traverser) skipEmptyVectors() {
	for i := 0; i < len(t.vectors); i++ { // don't use range, slice changes in body
		if len(t.vectors[i]) == 0 && t.rem[i] <= 0 || t.rem[0] == 0 {
			t.vectors = append(t.vectors[:i], t.vectors[i+1:]...)
			t.rem = append(t.rem[:i], t.rem[i+1:]...)
			i--
		} else {
			break
		}
	}
}

// SubmitSuccess writes single succeeded node operation.
func (t *Traverser) SubmitSuccess() {
	t.mtx.Lock()
	if len(t.rem) > 0 {
		t.rem[0]--
	}
	t.mtx.Unlock()
}

// Success returns true if traversal operation succeeded.
func (t *Traverser) Success() bool {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	for i := range t.rem {
		if t.rem[i] > 0 {
			return false
		}
	}

	return true
}

// UseBuilder is a placement builder setting option.
//
// Overlaps UseNetworkMap option.
func UseBuilder(b Builder) Option {
	return func(c *cfg) {
		c.builder = b
	}
}

// UseNetworkMap is a placement builder based on network
// map setting option.
//
// Overlaps UseBuilder option.
func UseNetworkMap(nm *netmap.NetMap) Option {
	return func(c *cfg) {
		c.builder = NewNetworkMapBuilder(nm)
	}
}

// ForContainer is a traversal container setting option.
func ForContainer(cnr container.Container) Option {
	return func(c *cfg) {
		c.policy = cnr.PlacementPolicy()
		c.policySet = true
		c.cnr = container.CalculateID(cnr)
	}
}

// ForObject is a processing object setting option.
func ForObject(id oid.ID) Option {
	return func(c *cfg) {
		c.obj = &id
	}
}

// SuccessAfter is a flat success number setting option.
//
// Option has no effect if the number is not positive.
func SuccessAfter(v uint32) Option {
	return func(c *cfg) {
		if v > 0 {
			c.flatSuccess = &v
		}
	}
}

// WithoutSuccessTracking disables success tracking in traversal.
func WithoutSuccessTracking() Option {
	return func(c *cfg) {
		c.trackCopies = false
	}
}

// WithLogger sets logger for nodes skipped during the traversal.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		if l != nil {
			c.log = l
		}
	}
}
