package putsvc

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	clientcore "github.com/kestrelfs/kestrel-node/pkg/core/client"
	"github.com/kestrelfs/kestrel-node/pkg/core/container"
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/util"
	pkgutil "github.com/kestrelfs/kestrel-node/pkg/util"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testStorage struct {
	mtx  sync.Mutex
	objs map[oid.Address]*object.Object
	err  error
}

func (s *testStorage) Put(obj *object.Object, _ []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.err != nil {
		return s.err
	}

	if s.objs == nil {
		s.objs = make(map[oid.Address]*object.Object)
	}

	s.objs[obj.Address()] = obj

	return nil
}

func (s *testStorage) has(addr oid.Address) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	_, ok := s.objs[addr]
	return ok
}

// testNetwork maps node public keys to their storages.
type testNetwork struct {
	mtx   sync.Mutex
	nodes map[string]*testStorage
	calls int
}

type testClient struct {
	clientcore.MultiAddressClient

	net *testNetwork
	key string
}

func (c testClient) PutObject(_ context.Context, obj *object.Object) error {
	c.net.mtx.Lock()
	c.net.calls++
	st := c.net.nodes[c.key]
	c.net.mtx.Unlock()

	if st == nil {
		return errors.New("node is unreachable")
	}

	return st.Put(obj, nil)
}

func (n *testNetwork) Get(info clientcore.NodeInfo) (clientcore.MultiAddressClient, error) {
	return testClient{net: n, key: string(info.PublicKey())}, nil
}

type testNetmapSource struct {
	nm *netmap.NetMap
}

func (s testNetmapSource) GetNetMap(uint64) (*netmap.NetMap, error) { return s.nm, nil }

func (s testNetmapSource) GetNetMapByEpoch(uint64) (*netmap.NetMap, error) { return s.nm, nil }

func (s testNetmapSource) Epoch() (uint64, error) { return s.nm.Epoch(), nil }

type testContainerSource map[cid.ID]container.Container

func (s testContainerSource) Get(id cid.ID) (*container.Container, error) {
	cnr, ok := s[id]
	if !ok {
		return nil, container.ErrNotFound
	}

	return &cnr, nil
}

type testNotifier struct {
	objs []oid.Address
}

func (n *testNotifier) Notify(obj *object.Object) {
	n.objs = append(n.objs, obj.Address())
}

type testEnv struct {
	svc      *Service
	local    *testStorage
	net      *testNetwork
	nodes    netmap.Nodes
	cnrID    cid.ID
	notifier *testNotifier
}

func newTestEnv(t *testing.T, nodesNum int, policy netmap.PlacementPolicy) *testEnv {
	nodes := make(netmap.Nodes, nodesNum)
	net := &testNetwork{nodes: make(map[string]*testStorage)}

	for i := range nodes {
		nodes[i] = netmap.NodeInfo{
			PublicKeyBytes: []byte("node" + strconv.Itoa(i)),
			Endpoints:      []string{"/ip4/127.0.0.1/tcp/" + strconv.Itoa(8080+i)},
		}

		net.nodes[string(nodes[i].PublicKeyBytes)] = new(testStorage)
	}

	cnr := container.Container{Owner: []byte("owner"), Policy: policy}
	cnrID := container.CalculateID(cnr)

	local := net.nodes[string(nodes[0].PublicKeyBytes)]

	remotePool, err := ants.NewPool(4)
	require.NoError(t, err)
	t.Cleanup(remotePool.Release)

	notifier := new(testNotifier)

	svc := NewService(
		WithLogger(zaptest.NewLogger(t)),
		WithObjectStorage(local),
		WithContainerSource(testContainerSource{cnrID: cnr}),
		WithNetworkMapSource(testNetmapSource{nm: netmap.NewNetMap(10, nodes)}),
		WithNetmapKeys(util.LocalKey(nodes[0].PublicKeyBytes)),
		WithClientConstructor(net),
		WithWorkerPools(remotePool, pkgutil.NewPseudoWorkerPool()),
		WithMaxPayloadSize(1024),
		WithNotifier(notifier),
	)

	return &testEnv{
		svc:      svc,
		local:    local,
		net:      net,
		nodes:    nodes,
		cnrID:    cnrID,
		notifier: notifier,
	}
}

func (e *testEnv) copies(addr oid.Address) int {
	var n int
	for _, st := range e.net.nodes {
		if st.has(addr) {
			n++
		}
	}
	return n
}

func TestService_Put(t *testing.T) {
	policy := netmap.PlacementPolicy{
		Replicas: []netmap.ReplicaDescriptor{{Count: 3}},
	}

	t.Run("distributed", func(t *testing.T) {
		e := newTestEnv(t, 5, policy)
		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(100))

		id, err := e.svc.Put(context.Background(), obj, false)
		require.NoError(t, err)

		exp, _ := obj.ID()
		require.Equal(t, exp, id)
		require.Equal(t, 3, e.copies(obj.Address()))
		require.Equal(t, []oid.Address{obj.Address()}, e.notifier.objs)
	})

	t.Run("failed nodes are replaced", func(t *testing.T) {
		e := newTestEnv(t, 5, netmap.PlacementPolicy{
			Replicas:     []netmap.ReplicaDescriptor{{Count: 3}},
			BackupFactor: 2,
		})

		// 2 of 5 nodes are down, 3 copies are still possible
		delete(e.net.nodes, string(e.nodes[3].PublicKeyBytes))
		delete(e.net.nodes, string(e.nodes[4].PublicKeyBytes))

		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(100))

		_, err := e.svc.Put(context.Background(), obj, false)
		require.NoError(t, err)
		require.Equal(t, 3, e.copies(obj.Address()))
	})

	t.Run("incomplete", func(t *testing.T) {
		e := newTestEnv(t, 5, policy)

		for i := 2; i < 5; i++ {
			delete(e.net.nodes, string(e.nodes[i].PublicKeyBytes))
		}

		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(100))

		_, err := e.svc.Put(context.Background(), obj, false)
		require.ErrorAs(t, err, new(errIncompletePut))
		require.Empty(t, e.notifier.objs)
	})

	t.Run("local only", func(t *testing.T) {
		e := newTestEnv(t, 3, policy)
		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(100))

		_, err := e.svc.Put(context.Background(), obj, true)
		require.NoError(t, err)
		require.True(t, e.local.has(obj.Address()))
		require.Equal(t, 1, e.copies(obj.Address()))
		require.Zero(t, e.net.calls)
	})

	t.Run("local storage failure", func(t *testing.T) {
		e := newTestEnv(t, 3, policy)
		e.local.err = errors.New("disk failure")

		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(100))

		_, err := e.svc.Put(context.Background(), obj, true)
		require.ErrorIs(t, err, e.local.err)
	})

	t.Run("cancelled", func(t *testing.T) {
		e := newTestEnv(t, 5, policy)
		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(100))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := e.svc.Put(ctx, obj, false)
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, e.copies(obj.Address()))
	})
}

func TestService_PutValidation(t *testing.T) {
	e := newTestEnv(t, 3, netmap.PlacementPolicy{
		Replicas: []netmap.ReplicaDescriptor{{Count: 1}},
	})

	t.Run("too big", func(t *testing.T) {
		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(2048))

		_, err := e.svc.Put(context.Background(), obj, false)
		require.ErrorIs(t, err, ErrExceedingMaxSize)
	})

	t.Run("wrong payload size", func(t *testing.T) {
		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(10))
		obj.SetPayloadSize(11)

		_, err := e.svc.Put(context.Background(), obj, false)
		require.ErrorIs(t, err, ErrWrongPayloadSize)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(10))
		obj.Payload()[0]++

		_, err := e.svc.Put(context.Background(), obj, false)
		require.ErrorIs(t, err, object.ErrInvalidChecksum)
	})

	t.Run("wrong ID", func(t *testing.T) {
		obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(10))
		obj.SetCreationEpoch(obj.CreationEpoch() + 1)

		_, err := e.svc.Put(context.Background(), obj, false)
		require.ErrorIs(t, err, object.ErrInvalidID)
	})

	t.Run("unknown container", func(t *testing.T) {
		obj := objecttest.Object()

		_, err := e.svc.Put(context.Background(), obj, false)
		require.ErrorIs(t, err, container.ErrNotFound)
	})
}

func TestService_PutTombstoneBroadcast(t *testing.T) {
	// 1 copy is required, 3 container nodes are available
	e := newTestEnv(t, 4, netmap.PlacementPolicy{
		Replicas:     []netmap.ReplicaDescriptor{{Count: 1}},
		BackupFactor: 3,
	})

	ts := objecttest.Tombstone(e.cnrID, 100, oid.ID{1})

	_, err := e.svc.Put(context.Background(), ts, false)
	require.NoError(t, err)
	require.Equal(t, 3, e.copies(ts.Address()))

	obj := objecttest.ObjectWithPayload(e.cnrID, objecttest.RandomPayload(10))

	_, err = e.svc.Put(context.Background(), obj, false)
	require.NoError(t, err)
	require.Equal(t, 1, e.copies(obj.Address()))
}
