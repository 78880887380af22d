package putsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	svcutil "github.com/kestrelfs/kestrel-node/pkg/services/object/util"
	"github.com/kestrelfs/kestrel-node/pkg/services/object_manager/placement"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"go.uber.org/zap"
)

type objectTarget interface {
	WriteObject(*object.Object, object.ContentMeta) error
}

type distributedTarget struct {
	ctx context.Context

	traversalState traversal
	traverser      *placement.Traverser

	remotePool, localPool util.WorkerPool

	obj     *object.Object
	objMeta object.ContentMeta

	nodeTargetInitializer func(nodeDesc) objectTarget

	isLocalKey func([]byte) bool

	log *zap.Logger
}

// parameters and state of container traversal.
type traversal struct {
	opts []placement.Option

	// need of additional broadcast after the object is saved
	extraBroadcastEnabled bool

	// mtx protects mExclude map.
	mtx sync.RWMutex

	// container nodes which was processed during the primary object placement
	mExclude map[string]struct{}
}

// updates traversal parameters after the primary placement finish and
// returns true if additional container broadcast is needed.
func (x *traversal) submitPrimaryPlacementFinish() bool {
	if x.extraBroadcastEnabled {
		// do not track success during container broadcast (best-effort)
		x.opts = append(x.opts, placement.WithoutSuccessTracking())

		// avoid 2nd broadcast
		x.extraBroadcastEnabled = false

		return true
	}

	return false
}

// marks the container node as processed during the primary object placement.
func (x *traversal) submitProcessed(n placement.Node) {
	if x.extraBroadcastEnabled {
		key := string(n.PublicKey())

		x.mtx.Lock()
		if x.mExclude == nil {
			x.mExclude = make(map[string]struct{}, 1)
		}

		x.mExclude[key] = struct{}{}
		x.mtx.Unlock()
	}
}

// checks if specified node was processed during the primary object placement.
func (x *traversal) processed(n placement.Node) bool {
	x.mtx.RLock()
	_, ok := x.mExclude[string(n.PublicKey())]
	x.mtx.RUnlock()
	return ok
}

type nodeDesc struct {
	ctx context.Context

	local bool

	info placement.Node
}

// errIncompletePut is returned if processing on a container fails.
type errIncompletePut struct {
	singleErr error // error from the last responding node
}

func (x errIncompletePut) Error() string {
	const commonMsg = "incomplete object PUT by placement"

	if x.singleErr != nil {
		return fmt.Sprintf("%s: %v", commonMsg, x.singleErr)
	}

	return commonMsg
}

func (x errIncompletePut) Unwrap() error {
	return x.singleErr
}

func (t *distributedTarget) sendObject(node nodeDesc) error {
	target := t.nodeTargetInitializer(node)

	if err := target.WriteObject(t.obj, t.objMeta); err != nil {
		return fmt.Errorf("could not write object: %w", err)
	}

	return nil
}

func (t *distributedTarget) iteratePlacement() (oid.ID, error) {
	id, _ := t.obj.ID()

	var err error

	opts := make([]placement.Option, 0, len(t.traversalState.opts)+1)
	opts = append(opts, t.traversalState.opts...)
	opts = append(opts, placement.WithLogger(t.log))

	t.traverser, err = placement.NewTraverser(opts...)
	if err != nil {
		return oid.ID{}, fmt.Errorf("(%T) could not create object placement traverser: %w", t, err)
	}

	var resErr lastError

loop:
	for {
		select {
		case <-t.ctx.Done():
			// no new requests, the previous batch is already finished
			resErr.store(t.ctx.Err())
			break loop
		default:
		}

		addrs := t.traverser.Next()
		if len(addrs) == 0 {
			break
		}

		wg := new(sync.WaitGroup)
		poolOverflow := false

		for i := range addrs {
			if t.traversalState.processed(addrs[i]) {
				// it can happen only during additional container broadcast
				continue
			}

			wg.Add(1)

			addr := addrs[i]

			isLocal := t.isLocalKey(addr.PublicKey())

			var workerPool util.WorkerPool

			if isLocal {
				workerPool = t.localPool
			} else {
				workerPool = t.remotePool
			}

			if err := workerPool.Submit(func() {
				defer wg.Done()

				err := t.sendObject(nodeDesc{ctx: t.ctx, local: isLocal, info: addr})

				// mark the container node as processed in order to exclude it
				// in subsequent container broadcast. Note that we don't
				// process this node during broadcast if primary placement
				// on it failed.
				t.traversalState.submitProcessed(addr)

				if err != nil {
					resErr.store(err)
					svcutil.LogServiceError(t.log, "PUT", addr.Addresses(), err)
					return
				}

				t.traverser.SubmitSuccess()
			}); err != nil {
				wg.Done()

				svcutil.LogWorkerPoolError(t.log, "PUT", err)

				resErr.store(err)
				poolOverflow = true

				break
			}
		}

		wg.Wait()

		if poolOverflow {
			break
		}
	}

	if !t.traverser.Success() {
		return oid.ID{}, errIncompletePut{singleErr: resErr.load()}
	}

	// perform additional container broadcast if needed
	if t.traversalState.submitPrimaryPlacementFinish() {
		_, err = t.iteratePlacement()
		if err != nil {
			t.log.Error("additional container broadcast failure",
				zap.Error(err),
			)

			// we don't fail primary operation because of broadcast failure
		}
	}

	return id, nil
}

// lastError keeps the last error stored from concurrent routines.
type lastError struct {
	mtx sync.Mutex
	err error
}

func (x *lastError) store(err error) {
	x.mtx.Lock()
	x.err = err
	x.mtx.Unlock()
}

func (x *lastError) load() error {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	return x.err
}
