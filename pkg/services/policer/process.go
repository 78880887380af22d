package policer

import (
	"context"
	"errors"
	"time"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/engine"
	"go.uber.org/zap"
)

// Run walks over the local objects and checks their placement until ctx
// is done.
func (p *Policer) Run(ctx context.Context) {
	defer func() {
		p.log.Info("routine stopped")
	}()

	p.shardPolicyWorker(ctx)
}

func (p *Policer) shardPolicyWorker(ctx context.Context) {
	var (
		addrs  []oid.Address
		cursor *engine.Cursor
		err    error
	)

	for {
		p.cfg.RLock()
		batchSize := p.batchSize
		p.cfg.RUnlock()

		addrs, cursor, err = p.localStorage.ListWithCursor(batchSize, cursor)
		if err != nil {
			if !errors.Is(err, engine.ErrEndOfListing) {
				p.log.Warn("failure at object select for replication", zap.Error(err))
			}

			// finished the whole cycle, sleep a bit
			cursor = nil

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.sleepDuration):
			}

			continue
		}

		for i := range addrs {
			select {
			case <-ctx.Done():
				return
			default:
			}

			addr := addrs[i]
			if p.objsInWork.inWork(addr) {
				// do not process an object
				// that is in work
				continue
			}

			err = p.taskPool.Submit(func() {
				v, ok := p.cache.Get(addr)
				if ok && time.Since(v) < p.evictDuration {
					return
				}

				p.objsInWork.add(addr)

				p.processObject(ctx, addr)

				p.cache.Add(addr, time.Now())
				p.objsInWork.remove(addr)
			})
			if err != nil {
				p.log.Warn("pool submission", zap.Error(err))
			}
		}
	}
}
