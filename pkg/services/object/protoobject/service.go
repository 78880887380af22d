package protoobject

import (
	"context"

	iprotobuf "github.com/kestrelfs/kestrel-node/internal/protobuf"
	"google.golang.org/grpc"
)

// ServiceName is the full gRPC name of the object service.
const ServiceName = "kestrel.object.ObjectService"

// ObjectServiceServer is the server API of the object service.
type ObjectServiceServer interface {
	Put(context.Context, *PutRequest) (*PutResponse, error)
	Get(context.Context, *AddressRequest) (*ObjectResponse, error)
	Head(context.Context, *AddressRequest) (*ObjectResponse, error)
	GetRange(context.Context, *RangeRequest) (*RangeResponse, error)
	Delete(context.Context, *AddressRequest) (*StatusResponse, error)
	Search(context.Context, *SearchRequest) (*SearchResponse, error)
}

func unaryHandler[Req any, Resp any](
	call func(ObjectServiceServer, context.Context, *Req) (*Resp, error), method string,
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(ObjectServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}

		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(ObjectServiceServer), ctx, req.(*Req))
		})
	}
}

// ServiceDesc describes the object service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ObjectServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Put", Handler: unaryHandler(ObjectServiceServer.Put, "Put")},
		{MethodName: "Get", Handler: unaryHandler(ObjectServiceServer.Get, "Get")},
		{MethodName: "Head", Handler: unaryHandler(ObjectServiceServer.Head, "Head")},
		{MethodName: "GetRange", Handler: unaryHandler(ObjectServiceServer.GetRange, "GetRange")},
		{MethodName: "Delete", Handler: unaryHandler(ObjectServiceServer.Delete, "Delete")},
		{MethodName: "Search", Handler: unaryHandler(ObjectServiceServer.Search, "Search")},
	},
	Metadata: "object/service.proto",
}

// RegisterObjectServiceServer registers srv in the gRPC server.
func RegisterObjectServiceServer(s grpc.ServiceRegistrar, srv ObjectServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ObjectServiceClient is the client API of the object service.
type ObjectServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewObjectServiceClient returns client of the object service working
// through the given connection.
func NewObjectServiceClient(cc grpc.ClientConnInterface) *ObjectServiceClient {
	return &ObjectServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *ObjectServiceClient, method string, req any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)

	opts = append([]grpc.CallOption{grpc.ForceCodec(iprotobuf.Codec{})}, opts...)

	err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Put sends PutRequest.
func (c *ObjectServiceClient) Put(ctx context.Context, req *PutRequest, opts ...grpc.CallOption) (*PutResponse, error) {
	return invoke[PutResponse](ctx, c, "Put", req, opts)
}

// Get sends Get request.
func (c *ObjectServiceClient) Get(ctx context.Context, req *AddressRequest, opts ...grpc.CallOption) (*ObjectResponse, error) {
	return invoke[ObjectResponse](ctx, c, "Get", req, opts)
}

// Head sends Head request.
func (c *ObjectServiceClient) Head(ctx context.Context, req *AddressRequest, opts ...grpc.CallOption) (*ObjectResponse, error) {
	return invoke[ObjectResponse](ctx, c, "Head", req, opts)
}

// GetRange sends RangeRequest.
func (c *ObjectServiceClient) GetRange(ctx context.Context, req *RangeRequest, opts ...grpc.CallOption) (*RangeResponse, error) {
	return invoke[RangeResponse](ctx, c, "GetRange", req, opts)
}

// Delete sends Delete request.
func (c *ObjectServiceClient) Delete(ctx context.Context, req *AddressRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c, "Delete", req, opts)
}

// Search sends SearchRequest.
func (c *ObjectServiceClient) Search(ctx context.Context, req *SearchRequest, opts ...grpc.CallOption) (*SearchResponse, error) {
	return invoke[SearchResponse](ctx, c, "Search", req, opts)
}
