package policer

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/kestrelfs/kestrel-node/pkg/core/container"
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/engine"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/util"
	"github.com/kestrelfs/kestrel-node/pkg/services/replicator"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testPlacement returns fixed vector for any object.
type testPlacement []netmap.Nodes

func (p testPlacement) BuildPlacement(cid.ID, *oid.ID, netmap.PlacementPolicy) ([]netmap.Nodes, error) {
	res := make([]netmap.Nodes, len(p))
	for i := range p {
		res[i] = append(netmap.Nodes(nil), p[i]...)
	}
	return res, nil
}

type testContainers map[cid.ID]container.Container

func (s testContainers) Get(id cid.ID) (*container.Container, error) {
	cnr, ok := s[id]
	if !ok {
		return nil, container.ErrNotFound
	}
	return &cnr, nil
}

// testHeader answers with errors by node key, nil error means the node
// stores the object.
type testHeader map[string]error

func (h testHeader) Head(_ context.Context, node netmap.NodeInfo, _ oid.Address) (*object.Object, error) {
	err, ok := h[string(node.PublicKey())]
	if !ok {
		return nil, apistatus.ErrObjectNotFound
	}
	return object.New(), err
}

type testReplicator struct {
	mtx   sync.Mutex
	tasks []replicator.Task
}

func (r *testReplicator) HandleTask(_ context.Context, task replicator.Task, _ replicator.TaskResult) {
	r.mtx.Lock()
	r.tasks = append(r.tasks, task)
	r.mtx.Unlock()
}

func testNodes(n int) netmap.Nodes {
	res := make(netmap.Nodes, n)
	for i := range res {
		res[i] = netmap.NodeInfo{
			PublicKeyBytes: []byte("node" + strconv.Itoa(i)),
			Endpoints:      []string{"/ip4/127.0.0.1/tcp/" + strconv.Itoa(9000+i)},
		}
	}
	return res
}

type testEnv struct {
	p         *Policer
	rep       *testReplicator
	redundant []oid.Address
	addr      oid.Address
}

func newTestEnv(t *testing.T, localKey string, vector netmap.Nodes, rep uint32, h testHeader) *testEnv {
	cnr := container.Container{
		Owner:  []byte("owner"),
		Policy: netmap.PlacementPolicy{Replicas: []netmap.ReplicaDescriptor{{Count: rep}}},
	}
	cnrID := container.CalculateID(cnr)

	e := &testEnv{
		rep:  new(testReplicator),
		addr: oidtest.AddressWithContainer(cnrID),
	}

	e.p = New(
		WithLogger(zaptest.NewLogger(t)),
		WithContainerSource(testContainers{cnrID: cnr}),
		WithPlacementBuilder(testPlacement{vector}),
		WithRemoteHeader(h),
		WithNetmapKeys(util.LocalKey(localKey)),
		WithReplicator(e.rep),
		WithRedundantCopyCallback(func(addr oid.Address) {
			e.redundant = append(e.redundant, addr)
		}),
	)

	return e
}

func TestPolicer_ProcessObject(t *testing.T) {
	nodes := testNodes(4)

	t.Run("enough copies", func(t *testing.T) {
		e := newTestEnv(t, "node0", nodes, 2, testHeader{"node1": nil})
		e.p.processObject(context.Background(), e.addr)

		require.Empty(t, e.rep.tasks)
		require.Empty(t, e.redundant)
	})

	t.Run("shortage", func(t *testing.T) {
		e := newTestEnv(t, "node0", nodes, 3, testHeader{"node2": nil})
		e.p.processObject(context.Background(), e.addr)

		require.Len(t, e.rep.tasks, 1)
		task := e.rep.tasks[0]
		require.EqualValues(t, 1, task.CopiesNumber())
		require.Equal(t, e.addr, task.ObjectAddress())
		require.Equal(t, netmap.Nodes{nodes[1], nodes[3]}, task.Nodes())
		require.Empty(t, e.redundant)
	})

	t.Run("failed head is not a copy", func(t *testing.T) {
		e := newTestEnv(t, "node0", nodes, 2, testHeader{"node1": errors.New("timeout")})
		e.p.processObject(context.Background(), e.addr)

		require.Len(t, e.rep.tasks, 1)
		require.EqualValues(t, 1, e.rep.tasks[0].CopiesNumber())
		require.Equal(t, netmap.Nodes{nodes[2], nodes[3]}, e.rep.tasks[0].Nodes())
	})

	t.Run("redundant local copy", func(t *testing.T) {
		e := newTestEnv(t, "node3", nodes, 2, testHeader{"node0": nil, "node1": nil})
		e.p.processObject(context.Background(), e.addr)

		require.Empty(t, e.rep.tasks)
		require.Equal(t, []oid.Address{e.addr}, e.redundant)
	})

	t.Run("outside the container", func(t *testing.T) {
		e := newTestEnv(t, "node10", nodes, 2, testHeader{"node0": nil, "node1": nil})
		e.p.processObject(context.Background(), e.addr)

		require.Empty(t, e.rep.tasks)
		require.Equal(t, []oid.Address{e.addr}, e.redundant)
	})

	t.Run("outside the container with shortage", func(t *testing.T) {
		e := newTestEnv(t, "node10", nodes, 2, testHeader{"node0": nil})
		e.p.processObject(context.Background(), e.addr)

		require.Len(t, e.rep.tasks, 1)
		require.Empty(t, e.redundant)
	})

	t.Run("unknown container", func(t *testing.T) {
		e := newTestEnv(t, "node0", nodes, 2, nil)
		e.p.processObject(context.Background(), oidtest.Address())

		require.Empty(t, e.rep.tasks)
		require.Empty(t, e.redundant)
	})
}

type testStorage struct {
	addrs []oid.Address
}

func (s *testStorage) ListWithCursor(count uint32, cursor *engine.Cursor) ([]oid.Address, *engine.Cursor, error) {
	if cursor != nil || len(s.addrs) == 0 {
		return nil, nil, engine.ErrEndOfListing
	}

	n := int(count)
	if n > len(s.addrs) {
		n = len(s.addrs)
	}

	return s.addrs[:n], new(engine.Cursor), nil
}

func TestPolicer_Run(t *testing.T) {
	nodes := testNodes(3)
	e := newTestEnv(t, "node0", nodes, 2, nil)

	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	e.p.taskPool = pool
	e.p.localStorage = &testStorage{addrs: []oid.Address{e.addr}}
	e.p.sleepDuration = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		e.p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		e.rep.mtx.Lock()
		defer e.rep.mtx.Unlock()
		return len(e.rep.tasks) > 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	// the object is cached as recently checked
	e.rep.mtx.Lock()
	require.Len(t, e.rep.tasks, 1)
	e.rep.mtx.Unlock()
}
