package policer

import (
	"context"
	"errors"

	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/services/replicator"
	"go.uber.org/zap"
)

type processPlacementContext struct {
	// local node is among the object holders
	localInPlacement bool

	// local copy is needed by at least one replica group
	localNeeded bool

	// at least one replica group lacks copies
	shortage bool
}

func (p *Policer) processObject(ctx context.Context, addr oid.Address) {
	idCnr := addr.Container()
	idObj := addr.Object()

	cnr, err := p.cnrSrc.Get(idCnr)
	if err != nil {
		p.log.Error("could not get container",
			zap.Stringer("cid", idCnr),
			zap.Error(err),
		)

		return
	}

	policy := cnr.PlacementPolicy()

	nn, err := p.placementBuilder.BuildPlacement(idCnr, &idObj, policy)
	if err != nil {
		p.log.Error("could not build placement vector for object",
			zap.Stringer("cid", idCnr),
			zap.Error(err),
		)

		return
	}

	var c processPlacementContext

	for i := range nn {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p.processNodes(ctx, &c, addr, nn[i], policy.ReplicaNumberByIndex(i))
	}

	if !c.localNeeded && !c.shortage {
		if c.localInPlacement {
			p.log.Info("redundant local object copy detected",
				zap.Stringer("object", addr),
			)
		} else {
			p.log.Info("node outside the container, removing the replica so as not to violate the storage policy...",
				zap.Stringer("object", addr),
			)
		}

		if p.cbRedundantCopy != nil {
			p.cbRedundantCopy(addr)
		}
	}
}

type replicationResult struct {
	log *zap.Logger
}

func (r replicationResult) SubmitSuccessfulReplication(n netmap.NodeInfo) {
	r.log.Debug("object replicated",
		zap.String("node", netmap.StringifyPublicKey(n)),
	)
}

func (p *Policer) processNodes(ctx context.Context, c *processPlacementContext, addr oid.Address, nodes netmap.Nodes, shortage uint32) {
	p.cfg.RLock()
	headTimeout := p.headTimeout
	p.cfg.RUnlock()

	// candidates are copied since the vector is modified
	nodes = append(netmap.Nodes(nil), nodes...)

	for i := 0; i < len(nodes); i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if p.netmapKeys.IsLocalKey(nodes[i].PublicKey()) {
			c.localInPlacement = true

			if shortage > 0 {
				c.localNeeded = true
				shortage--
			}
		} else if shortage > 0 {
			callCtx, cancel := context.WithTimeout(ctx, headTimeout)

			_, err := p.remoteHeader.Head(callCtx, nodes[i], addr)

			cancel()

			switch {
			case errors.Is(err, apistatus.ErrObjectNotFound):
				// the node is a candidate for the replication
				continue
			case err != nil:
				// unavailable node is neither a holder nor a candidate
				p.log.Error("could not receive object header",
					zap.String("node", netmap.StringifyPublicKey(nodes[i])),
					zap.Error(err),
				)
			default:
				shortage--
			}
		}

		nodes = append(nodes[:i], nodes[i+1:]...)
		i--
	}

	if shortage > 0 {
		c.shortage = true

		p.log.Debug("shortage of object copies detected",
			zap.Stringer("object", addr),
			zap.Uint32("shortage", shortage),
		)

		var task replicator.Task
		task.SetObjectAddress(addr)
		task.SetNodes(nodes)
		task.SetCopiesNumber(shortage)

		p.replicator.HandleTask(ctx, task, replicationResult{log: p.log})
	}
}
