package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	iprotobuf "github.com/kestrelfs/kestrel-node/internal/protobuf"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/network"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/protoobject"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcClient is a client of the object service of the single address.
type grpcClient struct {
	conn *grpc.ClientConn
	cli  *protoobject.ObjectServiceClient

	streamTimeout time.Duration
}

func dialAddress(addr network.Address, opts ClientCacheOpts) (*grpcClient, error) {
	creds := insecure.NewCredentials()
	if addr.TLSEnabled() {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(iprotobuf.Codec{})),
	}

	ctx := context.Background()
	if opts.DialTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()

		dialOpts = append(dialOpts, grpc.WithBlock())
	}

	conn, err := grpc.DialContext(ctx, addr.HostAddr(), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &grpcClient{
		conn:          conn,
		cli:           protoobject.NewObjectServiceClient(conn),
		streamTimeout: opts.StreamTimeout,
	}, nil
}

func (c *grpcClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.streamTimeout > 0 {
		return context.WithTimeout(ctx, c.streamTimeout)
	}

	return ctx, func() {}
}

func (c *grpcClient) PutObject(ctx context.Context, obj *object.Object) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.cli.Put(ctx, &protoobject.PutRequest{Object: obj, LocalOnly: true})
	if err != nil {
		return err
	}

	return resp.Status.Err()
}

func (c *grpcClient) GetObject(ctx context.Context, addr oid.Address) (*object.Object, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.cli.Get(ctx, &protoobject.AddressRequest{Address: addr})
	if err != nil {
		return nil, err
	}

	return objectFromResponse(resp)
}

func (c *grpcClient) HeadObject(ctx context.Context, addr oid.Address, raw bool) (*object.Object, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.cli.Head(ctx, &protoobject.AddressRequest{Address: addr, Raw: raw})
	if err != nil {
		return nil, err
	}

	return objectFromResponse(resp)
}

func objectFromResponse(resp *protoobject.ObjectResponse) (*object.Object, error) {
	if err := resp.Status.Err(); err != nil {
		return nil, err
	}

	if resp.SplitInfo != nil {
		return nil, object.NewSplitInfoError(resp.SplitInfo)
	}

	if resp.Object == nil {
		return nil, fmt.Errorf("missing object in response")
	}

	return resp.Object, nil
}

func (c *grpcClient) GetRange(ctx context.Context, addr oid.Address, off, ln uint64) ([]byte, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.cli.GetRange(ctx, &protoobject.RangeRequest{Address: addr, Offset: off, Length: ln})
	if err != nil {
		return nil, err
	}

	if err := resp.Status.Err(); err != nil {
		return nil, err
	}

	return resp.Payload, nil
}

func (c *grpcClient) DeleteObject(ctx context.Context, addr oid.Address) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.cli.Delete(ctx, &protoobject.AddressRequest{Address: addr})
	if err != nil {
		return err
	}

	return resp.Status.Err()
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}
