package cache

import (
	"context"
	"errors"
	"sync"

	clientcore "github.com/kestrelfs/kestrel-node/pkg/core/client"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/network"
	"go.uber.org/zap"
)

type multiClient struct {
	mtx sync.RWMutex

	clients map[string]*grpcClient

	addr network.AddressGroup

	opts ClientCacheOpts
}

func newMultiClient(addr network.AddressGroup, opts ClientCacheOpts) *multiClient {
	return &multiClient{
		clients: make(map[string]*grpcClient),
		addr:    addr,
		opts:    opts,
	}
}

// updateGroup replaces current multiClient addresses with a new group.
// Old addresses not present in group are removed.
func (x *multiClient) updateGroup(group network.AddressGroup) {
	// Firstly, remove old clients.
	cache := make([]string, 0, group.Len())
	group.IterateAddresses(func(a network.Address) bool {
		cache = append(cache, a.String())
		return false
	})

	x.mtx.Lock()
	defer x.mtx.Unlock()
loop:
	for a, c := range x.clients {
		for i := range cache {
			if cache[i] == a {
				continue loop
			}
		}

		_ = c.Close()
		delete(x.clients, a)
	}

	// Then add new clients.
	x.addr = group
}

// isFinalError checks whether the error is returned by the remote node
// itself. There is no point in trying other addresses of the node then.
func isFinalError(err error) bool {
	var siErr *object.SplitInfoError

	return errors.Is(err, context.Canceled) ||
		errors.Is(err, apistatus.ErrObjectNotFound) ||
		errors.Is(err, apistatus.ErrObjectAlreadyRemoved) ||
		errors.Is(err, apistatus.ErrObjectOutOfRange) ||
		errors.As(err, &siErr)
}

func (x *multiClient) iterateClients(ctx context.Context, f func(clientcore.Client) error) error {
	var firstErr error

	x.mtx.RLock()
	group := x.addr
	x.mtx.RUnlock()

	group.IterateAddresses(func(addr network.Address) bool {
		select {
		case <-ctx.Done():
			firstErr = context.Canceled
			return true
		default:
		}

		var err error

		c, err := x.client(addr)
		if err == nil {
			err = f(c)
		}

		success := err == nil || isFinalError(err)

		if success || firstErr == nil {
			firstErr = err
		}

		if !success {
			x.opts.Logger.Debug("object request to the node address failed",
				zap.Stringer("address", addr),
				zap.Error(err))
		}

		return success
	})

	return firstErr
}

func (x *multiClient) PutObject(ctx context.Context, obj *object.Object) error {
	return x.iterateClients(ctx, func(c clientcore.Client) error {
		return c.PutObject(ctx, obj)
	})
}

func (x *multiClient) GetObject(ctx context.Context, addr oid.Address) (res *object.Object, err error) {
	err = x.iterateClients(ctx, func(c clientcore.Client) error {
		res, err = c.GetObject(ctx, addr)
		return err
	})

	return
}

func (x *multiClient) HeadObject(ctx context.Context, addr oid.Address, raw bool) (res *object.Object, err error) {
	err = x.iterateClients(ctx, func(c clientcore.Client) error {
		res, err = c.HeadObject(ctx, addr, raw)
		return err
	})

	return
}

func (x *multiClient) GetRange(ctx context.Context, addr oid.Address, off, ln uint64) (res []byte, err error) {
	err = x.iterateClients(ctx, func(c clientcore.Client) error {
		res, err = c.GetRange(ctx, addr, off, ln)
		return err
	})

	return
}

func (x *multiClient) DeleteObject(ctx context.Context, addr oid.Address) error {
	return x.iterateClients(ctx, func(c clientcore.Client) error {
		return c.DeleteObject(ctx, addr)
	})
}

func (x *multiClient) Close() error {
	x.mtx.RLock()

	{
		for _, c := range x.clients {
			_ = c.Close()
		}
	}

	x.mtx.RUnlock()

	return nil
}

func (x *multiClient) RawForAddress(addr network.Address, f func(clientcore.Client) error) error {
	c, err := x.client(addr)
	if err != nil {
		return err
	}

	return f(c)
}

func (x *multiClient) client(addr network.Address) (*grpcClient, error) {
	strAddr := addr.String()

	x.mtx.RLock()
	c, cached := x.clients[strAddr]
	x.mtx.RUnlock()

	if cached {
		return c, nil
	}

	x.mtx.Lock()
	defer x.mtx.Unlock()

	c, cached = x.clients[strAddr]
	if !cached {
		var err error

		c, err = dialAddress(addr, x.opts)
		if err != nil {
			return nil, err
		}

		x.clients[strAddr] = c
	}

	return c, nil
}
