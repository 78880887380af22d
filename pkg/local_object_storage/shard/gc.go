package shard

import (
	"context"
	"sync"
	"time"

	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"go.uber.org/zap"
)

// Event represents class of external events.
type Event interface {
	typ() eventType
}

type eventType int

const (
	_ eventType = iota
	eventNewEpoch
)

type newEpoch struct {
	epoch uint64
}

func (e newEpoch) typ() eventType {
	return eventNewEpoch
}

// EventNewEpoch returns new epoch event.
func EventNewEpoch(e uint64) Event {
	return newEpoch{
		epoch: e,
	}
}

type eventHandler func(context.Context, Event)

type eventHandlers struct {
	prevGroup sync.WaitGroup

	cancelFunc context.CancelFunc

	handlers []eventHandler
}

type gc struct {
	*gcCfg

	onceStop    sync.Once
	stopChannel chan struct{}
	wg          sync.WaitGroup

	workerPool util.WorkerPool

	remover func()

	eventChan     chan Event
	mEventHandler map[eventType]*eventHandlers
}

type gcCfg struct {
	removerInterval time.Duration

	log *zap.Logger

	workerPoolInit func(int) util.WorkerPool
}

func defaultGCCfg() gcCfg {
	return gcCfg{
		removerInterval: 10 * time.Second,
		log:             zap.L(),
		workerPoolInit:  defaultWorkerPool,
	}
}

func (gc *gc) init() {
	sz := 0

	for _, v := range gc.mEventHandler {
		sz += len(v.handlers)
	}

	if sz > 0 {
		gc.workerPool = gc.workerPoolInit(sz)
	}

	gc.wg.Add(2)
	go gc.tickRemover()
	go gc.listenEvents()
}

func (gc *gc) listenEvents() {
	defer gc.wg.Done()

	for {
		var event Event

		select {
		case <-gc.stopChannel:
			return
		case event = <-gc.eventChan:
		}

		v, ok := gc.mEventHandler[event.typ()]
		if !ok {
			continue
		}

		v.cancelFunc()
		v.prevGroup.Wait()

		var ctx context.Context
		ctx, v.cancelFunc = context.WithCancel(context.Background())

		v.prevGroup.Add(len(v.handlers))

		for i := range v.handlers {
			h := v.handlers[i]

			err := gc.workerPool.Submit(func() {
				defer v.prevGroup.Done()
				h(ctx, event)
			})
			if err != nil {
				gc.log.Warn("could not submit GC job to worker pool",
					zap.Error(err),
				)

				v.prevGroup.Done()
			}
		}
	}
}

func (gc *gc) tickRemover() {
	defer gc.wg.Done()

	timer := time.NewTimer(gc.removerInterval)
	defer timer.Stop()

	for {
		select {
		case <-gc.stopChannel:
			gc.log.Debug("GC is stopped")
			return
		case <-timer.C:
			gc.remover()
			timer.Reset(gc.removerInterval)
		}
	}
}

func (gc *gc) stop() {
	gc.onceStop.Do(func() {
		close(gc.stopChannel)
	})

	gc.wg.Wait()

	for _, v := range gc.mEventHandler {
		v.cancelFunc()
		v.prevGroup.Wait()
	}

	if gc.workerPool != nil {
		gc.workerPool.Release()
	}
}

// removeGarbage iterates over metabase and deletes objects
// with GC mark and the ones covered by tombstones.
func (s *Shard) removeGarbage() {
	if m := s.GetMode(); m.ReadOnly() || m.NoMetabase() {
		return
	}

	buf := make([]oid.Address, 0, s.rmBatchSize)

	// iterate over metabase's objects with GC mark
	// (no more than s.rmBatchSize objects)
	err := s.metaBase.IterateOverGarbage(func(g meta.GarbageObject) error {
		buf = append(buf, g.Address())

		if len(buf) == s.rmBatchSize {
			return meta.ErrInterruptIterator
		}

		return nil
	})
	if err != nil {
		s.reportError("iterator over metabase graveyard failed", err)

		return
	} else if len(buf) == 0 {
		return
	}

	// delete accumulated objects
	err = s.Delete(buf)
	if err != nil {
		s.reportError("could not delete the objects", err)

		return
	}

	s.log.Debug("garbage collected", zap.Int("count", len(buf)))
}

// collectExpiredGraves drops graveyard records of the tombstones expired
// before the new epoch. Covered objects become unknown to the shard.
func (s *Shard) collectExpiredGraves(ctx context.Context, e Event) {
	epoch := e.(newEpoch).epoch

	if m := s.GetMode(); m.ReadOnly() || m.NoMetabase() {
		return
	}

	select {
	case <-ctx.Done():
		return
	default:
	}

	n, err := s.metaBase.DropExpiredGraves(epoch)
	if err != nil {
		s.log.Warn("could not drop expired graves",
			zap.Uint64("epoch", epoch),
			zap.Error(err),
		)

		return
	}

	if n > 0 {
		s.log.Debug("expired graves dropped",
			zap.Uint64("epoch", epoch),
			zap.Int("count", n),
		)
	}
}

// NotifyNewEpoch passes the new epoch event to the shard's GC. Blocks until
// the event is accepted, the context is done or the shard is closed.
func (s *Shard) NotifyNewEpoch(ctx context.Context, epoch uint64) {
	if s.gc == nil {
		return
	}

	select {
	case s.gc.eventChan <- EventNewEpoch(epoch):
	case <-s.gc.stopChannel:
	case <-ctx.Done():
	}
}

func (s *Shard) reportError(msg string, err error) {
	s.log.Warn(msg, zap.Error(err))

	if id := s.ID(); id != nil {
		s.reportErrorFunc(id.String(), msg, err)
	}
}
