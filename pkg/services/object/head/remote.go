package headsvc

import (
	"context"
	"fmt"

	clientcore "github.com/kestrelfs/kestrel-node/pkg/core/client"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
)

// ClientConstructor is an interface of the remote node clients factory.
type ClientConstructor interface {
	Get(clientcore.NodeInfo) (clientcore.MultiAddressClient, error)
}

// RemoteHeader represents utility for getting
// the object header from a remote host.
type RemoteHeader struct {
	clientCache ClientConstructor
}

// NewRemoteHeader creates, initializes and returns new RemoteHeader instance.
func NewRemoteHeader(cache ClientConstructor) *RemoteHeader {
	return &RemoteHeader{
		clientCache: cache,
	}
}

// Head requests object header from the remote node.
//
// Returns apistatus.ErrObjectNotFound if the node doesn't store the object.
func (h *RemoteHeader) Head(ctx context.Context, node netmap.NodeInfo, addr oid.Address) (*object.Object, error) {
	var info clientcore.NodeInfo

	err := clientcore.NodeInfoFromRawNetmapElement(&info, node)
	if err != nil {
		return nil, fmt.Errorf("(%T) could not parse node info: %w", h, err)
	}

	c, err := h.clientCache.Get(info)
	if err != nil {
		return nil, fmt.Errorf("(%T) could not create client %s: %w", h, info, err)
	}

	hdr, err := c.HeadObject(ctx, addr, false)
	if err != nil {
		return nil, fmt.Errorf("(%T) could not head object in %s: %w", h, info, err)
	}

	return hdr, nil
}
