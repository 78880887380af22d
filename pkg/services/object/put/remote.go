package putsvc

import (
	"context"
	"fmt"

	clientcore "github.com/kestrelfs/kestrel-node/pkg/core/client"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/kestrelfs/kestrel-node/pkg/services/object_manager/placement"
)

// ClientConstructor is an interface of the remote node clients factory.
type ClientConstructor interface {
	Get(clientcore.NodeInfo) (clientcore.MultiAddressClient, error)
}

type remoteTarget struct {
	ctx context.Context

	clientConstructor ClientConstructor

	node placement.Node
}

// RemoteSender represents utility for
// sending an object to a remote host.
type RemoteSender struct {
	clientConstructor ClientConstructor
}

// NewRemoteSender creates, initializes and returns new RemoteSender instance.
func NewRemoteSender(cc ClientConstructor) *RemoteSender {
	return &RemoteSender{
		clientConstructor: cc,
	}
}

func (t *remoteTarget) WriteObject(obj *object.Object, _ object.ContentMeta) error {
	var info clientcore.NodeInfo

	clientcore.NodeInfoFromNetmapElement(&info, t.node)

	return putObjectToNode(t.ctx, info, obj, t.clientConstructor)
}

func putObjectToNode(ctx context.Context, info clientcore.NodeInfo, obj *object.Object, cc ClientConstructor) error {
	c, err := cc.Get(info)
	if err != nil {
		return fmt.Errorf("could not create client %s: %w", info, err)
	}

	if err := c.PutObject(ctx, obj); err != nil {
		return fmt.Errorf("could not put object to %s: %w", info, err)
	}

	return nil
}

// PutObject sends object to the remote node. The node stores the object
// without further distribution.
func (s *RemoteSender) PutObject(ctx context.Context, node netmap.NodeInfo, obj *object.Object) error {
	var info clientcore.NodeInfo

	if err := clientcore.NodeInfoFromRawNetmapElement(&info, node); err != nil {
		return fmt.Errorf("could not parse node info: %w", err)
	}

	return putObjectToNode(ctx, info, obj, s.clientConstructor)
}
