package object

import (
	"context"
	"errors"
	"fmt"
	"time"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/protoobject"
	"go.uber.org/zap"
)

// Names of the served methods used in metrics.
const (
	MethodPut      = "Put"
	MethodGet      = "Get"
	MethodHead     = "Head"
	MethodGetRange = "GetRange"
	MethodDelete   = "Delete"
	MethodSearch   = "Search"
)

// MetricCollector tracks exec statistics of the served methods.
type MetricCollector interface {
	// HandleOpExecResult handles measured execution results of the given op.
	HandleOpExecResult(method string, success bool, d time.Duration)

	AddPutPayload(int)
	AddGetPayload(int)
}

// Storage groups read ops of the node's local object storage required to
// serve Object service.
type Storage interface {
	Get(oid.Address) (*object.Object, error)
	Head(addr oid.Address, raw bool) (*object.Object, error)
	GetRange(addr oid.Address, offset, length uint64) ([]byte, error)
	Select(cid.ID, object.SearchFilters) ([]oid.Address, error)

	// MarkGarbage marks objects to be physically removed by GC.
	MarkGarbage(...oid.Address) error
}

// PutService saves objects in the container.
type PutService interface {
	Put(ctx context.Context, obj *object.Object, localOnly bool) (oid.ID, error)
}

type server struct {
	storage Storage
	putSvc  PutService
	metrics MetricCollector
	log     *zap.Logger
}

// New provides protoobject.ObjectServiceServer serving requests from the
// local storage. Objects are saved through the put service.
func New(st Storage, put PutService, m MetricCollector, l *zap.Logger) protoobject.ObjectServiceServer {
	return &server{
		storage: st,
		putSvc:  put,
		metrics: m,
		log:     l,
	}
}

func (s *server) pushOpExecResult(method string, err error, startedAt time.Time) {
	s.metrics.HandleOpExecResult(method, err == nil, time.Since(startedAt))
}

// Put saves the object from the request.
func (s *server) Put(ctx context.Context, req *protoobject.PutRequest) (*protoobject.PutResponse, error) {
	var err error

	t := time.Now()
	defer func() { s.pushOpExecResult(MethodPut, err, t) }()

	if req.Object == nil {
		err = errors.New("missing object")
		return &protoobject.PutResponse{Status: protoobject.StatusFromError(err)}, nil
	}

	id, err := s.putSvc.Put(ctx, req.Object, req.LocalOnly)
	if err != nil {
		s.log.Debug("could not save object",
			zap.Stringer("address", req.Object.Address()),
			zap.Bool("local", req.LocalOnly),
			zap.Error(err))

		return &protoobject.PutResponse{Status: protoobject.StatusFromError(err)}, nil
	}

	s.metrics.AddPutPayload(len(req.Object.Payload()))

	return &protoobject.PutResponse{ID: id}, nil
}

func objectResponse(obj *object.Object, err error) *protoobject.ObjectResponse {
	var siErr *object.SplitInfoError
	if errors.As(err, &siErr) {
		return &protoobject.ObjectResponse{SplitInfo: siErr.SplitInfo()}
	}

	if err != nil {
		return &protoobject.ObjectResponse{Status: protoobject.StatusFromError(err)}
	}

	return &protoobject.ObjectResponse{Object: obj}
}

// Get reads the object from the local storage.
func (s *server) Get(_ context.Context, req *protoobject.AddressRequest) (*protoobject.ObjectResponse, error) {
	var (
		obj *object.Object
		err error
	)

	t := time.Now()
	defer func() { s.pushOpExecResult(MethodGet, err, t) }()

	if req.Raw {
		// split info is returned for the virtual objects instead of
		// the assembly
		if _, err = s.storage.Head(req.Address, true); err != nil {
			return objectResponse(nil, err), nil
		}
	}

	obj, err = s.storage.Get(req.Address)
	if err == nil {
		s.metrics.AddGetPayload(len(obj.Payload()))
	}

	return objectResponse(obj, err), nil
}

// Head reads the object header from the local storage.
func (s *server) Head(_ context.Context, req *protoobject.AddressRequest) (*protoobject.ObjectResponse, error) {
	var (
		hdr *object.Object
		err error
	)

	t := time.Now()
	defer func() { s.pushOpExecResult(MethodHead, err, t) }()

	hdr, err = s.storage.Head(req.Address, req.Raw)

	return objectResponse(hdr, err), nil
}

// GetRange reads the payload range of the object from the local storage.
func (s *server) GetRange(_ context.Context, req *protoobject.RangeRequest) (*protoobject.RangeResponse, error) {
	var (
		payload []byte
		err     error
	)

	t := time.Now()
	defer func() { s.pushOpExecResult(MethodGetRange, err, t) }()

	payload, err = s.storage.GetRange(req.Address, req.Offset, req.Length)
	if err != nil {
		return &protoobject.RangeResponse{Status: protoobject.StatusFromError(err)}, nil
	}

	s.metrics.AddGetPayload(len(payload))

	return &protoobject.RangeResponse{Payload: payload}, nil
}

// Delete marks the object as garbage in the local storage.
func (s *server) Delete(_ context.Context, req *protoobject.AddressRequest) (*protoobject.StatusResponse, error) {
	var err error

	t := time.Now()
	defer func() { s.pushOpExecResult(MethodDelete, err, t) }()

	err = s.storage.MarkGarbage(req.Address)

	return &protoobject.StatusResponse{Status: protoobject.StatusFromError(err)}, nil
}

// Search selects objects of the container in the local storage.
func (s *server) Search(_ context.Context, req *protoobject.SearchRequest) (*protoobject.SearchResponse, error) {
	var err error

	t := time.Now()
	defer func() { s.pushOpExecResult(MethodSearch, err, t) }()

	var cnr cid.ID
	if err = cnr.Decode(req.Container); err != nil {
		err = fmt.Errorf("invalid container ID: %w", err)
		return &protoobject.SearchResponse{Status: protoobject.StatusFromError(err)}, nil
	}

	addrs, err := s.storage.Select(cnr, req.Filters)
	if err != nil {
		return &protoobject.SearchResponse{Status: protoobject.StatusFromError(err)}, nil
	}

	ids := make([]oid.ID, len(addrs))
	for i := range addrs {
		ids[i] = addrs[i].Object()
	}

	return &protoobject.SearchResponse{IDs: ids}, nil
}
