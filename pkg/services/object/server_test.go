package object

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	iprotobuf "github.com/kestrelfs/kestrel-node/internal/protobuf"
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/protoobject"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

type testStorage struct {
	mtx     sync.Mutex
	objs    map[oid.Address]*object.Object
	garbage map[oid.Address]struct{}
	virtual map[oid.Address]*object.SplitInfo
}

func newTestStorage() *testStorage {
	return &testStorage{
		objs:    make(map[oid.Address]*object.Object),
		garbage: make(map[oid.Address]struct{}),
		virtual: make(map[oid.Address]*object.SplitInfo),
	}
}

func (s *testStorage) Put(_ context.Context, obj *object.Object, _ bool) (oid.ID, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.objs[obj.Address()] = obj
	id, _ := obj.ID()

	return id, nil
}

func (s *testStorage) Get(addr oid.Address) (*object.Object, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if si, ok := s.virtual[addr]; ok {
		return nil, object.NewSplitInfoError(si)
	}

	if _, ok := s.garbage[addr]; ok {
		return nil, apistatus.ErrObjectNotFound
	}

	obj, ok := s.objs[addr]
	if !ok {
		return nil, apistatus.ErrObjectNotFound
	}

	return obj, nil
}

func (s *testStorage) Head(addr oid.Address, _ bool) (*object.Object, error) {
	obj, err := s.Get(addr)
	if err != nil {
		return nil, err
	}

	return obj.CutPayload(), nil
}

func (s *testStorage) GetRange(addr oid.Address, offset, length uint64) ([]byte, error) {
	obj, err := s.Get(addr)
	if err != nil {
		return nil, err
	}

	if offset+length > uint64(len(obj.Payload())) {
		return nil, apistatus.ErrObjectOutOfRange
	}

	return obj.Payload()[offset : offset+length], nil
}

func (s *testStorage) Select(cnr cid.ID, _ object.SearchFilters) ([]oid.Address, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var res []oid.Address
	for addr := range s.objs {
		if addr.Container() == cnr {
			res = append(res, addr)
		}
	}

	return res, nil
}

func (s *testStorage) MarkGarbage(addrs ...oid.Address) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for i := range addrs {
		s.garbage[addrs[i]] = struct{}{}
	}

	return nil
}

type testMetrics struct {
	mtx     sync.Mutex
	results map[string][]bool
	put     int
	get     int
}

func (m *testMetrics) HandleOpExecResult(method string, success bool, _ time.Duration) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.results == nil {
		m.results = make(map[string][]bool)
	}

	m.results[method] = append(m.results[method], success)
}

func (m *testMetrics) AddPutPayload(n int) { m.put += n }

func (m *testMetrics) AddGetPayload(n int) { m.get += n }

func newTestClient(t *testing.T, st *testStorage, m *testMetrics) *protoobject.ObjectServiceClient {
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer(grpc.ForceServerCodec(iprotobuf.Codec{}))
	protoobject.RegisterObjectServiceServer(srv, New(st, st, m, zaptest.NewLogger(t)))

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return protoobject.NewObjectServiceClient(conn)
}

func TestServer(t *testing.T) {
	st := newTestStorage()
	m := new(testMetrics)
	c := newTestClient(t, st, m)
	ctx := context.Background()

	cnr := cidtest.ID()
	obj := objecttest.ObjectWithPayload(cnr, []byte("Hello, world!"))
	id, _ := obj.ID()

	t.Run("put", func(t *testing.T) {
		resp, err := c.Put(ctx, &protoobject.PutRequest{Object: obj})
		require.NoError(t, err)
		require.NoError(t, resp.Status.Err())
		require.Equal(t, id, resp.ID)
		require.Equal(t, len(obj.Payload()), m.put)

		resp, err = c.Put(ctx, &protoobject.PutRequest{})
		require.NoError(t, err)
		require.Equal(t, apistatus.CodeInternal, resp.Status.Code)
	})

	t.Run("get", func(t *testing.T) {
		resp, err := c.Get(ctx, &protoobject.AddressRequest{Address: obj.Address()})
		require.NoError(t, err)
		require.NoError(t, resp.Status.Err())
		require.Equal(t, obj.Marshal(), resp.Object.Marshal())

		resp, err = c.Get(ctx, &protoobject.AddressRequest{Address: oidtest.Address()})
		require.NoError(t, err)
		require.ErrorIs(t, resp.Status.Err(), apistatus.ErrObjectNotFound)
	})

	t.Run("head", func(t *testing.T) {
		resp, err := c.Head(ctx, &protoobject.AddressRequest{Address: obj.Address()})
		require.NoError(t, err)
		require.NoError(t, resp.Status.Err())
		require.Empty(t, resp.Object.Payload())
		require.Equal(t, obj.CutPayload().Marshal(), resp.Object.Marshal())
	})

	t.Run("split info", func(t *testing.T) {
		addr := oidtest.AddressWithContainer(cnr)

		si := object.NewSplitInfo()
		si.SetLastPart(oidtest.ID())

		st.mtx.Lock()
		st.virtual[addr] = si
		st.mtx.Unlock()

		resp, err := c.Head(ctx, &protoobject.AddressRequest{Address: addr, Raw: true})
		require.NoError(t, err)
		require.NoError(t, resp.Status.Err())
		require.Nil(t, resp.Object)
		require.NotNil(t, resp.SplitInfo)
		require.Equal(t, si.Marshal(), resp.SplitInfo.Marshal())
	})

	t.Run("range", func(t *testing.T) {
		resp, err := c.GetRange(ctx, &protoobject.RangeRequest{Address: obj.Address(), Offset: 7, Length: 5})
		require.NoError(t, err)
		require.NoError(t, resp.Status.Err())
		require.Equal(t, []byte("world"), resp.Payload)

		resp, err = c.GetRange(ctx, &protoobject.RangeRequest{Address: obj.Address(), Offset: 7, Length: 100})
		require.NoError(t, err)
		require.ErrorIs(t, resp.Status.Err(), apistatus.ErrObjectOutOfRange)
	})

	t.Run("search", func(t *testing.T) {
		bin := make([]byte, cid.Size)
		cnr.Encode(bin)

		resp, err := c.Search(ctx, &protoobject.SearchRequest{Container: bin})
		require.NoError(t, err)
		require.NoError(t, resp.Status.Err())
		require.Equal(t, []oid.ID{id}, resp.IDs)

		resp, err = c.Search(ctx, &protoobject.SearchRequest{Container: []byte{1, 2, 3}})
		require.NoError(t, err)
		require.Error(t, resp.Status.Err())
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := c.Delete(ctx, &protoobject.AddressRequest{Address: obj.Address()})
		require.NoError(t, err)
		require.NoError(t, resp.Status.Err())

		getResp, err := c.Get(ctx, &protoobject.AddressRequest{Address: obj.Address()})
		require.NoError(t, err)
		require.True(t, errors.Is(getResp.Status.Err(), apistatus.ErrObjectNotFound))
	})

	m.mtx.Lock()
	defer m.mtx.Unlock()

	require.Equal(t, []bool{true, false}, m.results[MethodPut])
	require.Equal(t, []bool{true}, m.results[MethodDelete])
	require.Equal(t, []bool{true, false}, m.results[MethodGetRange])
}
