package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type shardInitError struct {
	err error
	id  string
}

// Open opens all StorageEngine's components.
func (e *StorageEngine) Open() error {
	return e.open()
}

func (e *StorageEngine) open() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	var wg sync.WaitGroup
	var errCh = make(chan shardInitError, len(e.shards))

	for id, sh := range e.shards {
		wg.Add(1)
		go func(id string, sh *shard.Shard) {
			defer wg.Done()
			if err := sh.Open(); err != nil {
				errCh <- shardInitError{
					err: err,
					id:  id,
				}
			}
		}(id, sh.Shard)
	}
	wg.Wait()
	close(errCh)

	for res := range errCh {
		if res.err != nil {
			e.log.Error("could not open shard, closing and skipping",
				zap.String("id", res.id),
				zap.Error(res.err))

			sh := e.shards[res.id]
			delete(e.shards, res.id)

			err := sh.Close()
			if err != nil {
				e.log.Error("could not close partially initialized shard",
					zap.String("id", res.id),
					zap.Error(res.err))
			}

			if pool, ok := e.shardPools[res.id]; ok {
				pool.Release()
				delete(e.shardPools, res.id)
			}
		}
	}

	return nil
}

// Init initializes all StorageEngine's components.
func (e *StorageEngine) Init() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	var (
		mtx    sync.Mutex
		failed []string
		eg     errgroup.Group
	)

	for id, sh := range e.shards {
		id, sh := id, sh

		eg.Go(func() error {
			if err := sh.Init(); err != nil {
				e.log.Error("could not initialize shard, closing and skipping",
					zap.String("id", id),
					zap.Error(err))

				mtx.Lock()
				failed = append(failed, id)
				mtx.Unlock()
			}

			return nil
		})
	}

	_ = eg.Wait()

	for _, id := range failed {
		sh := e.shards[id]
		delete(e.shards, id)

		if err := sh.Close(); err != nil {
			e.log.Error("could not close partially initialized shard",
				zap.String("id", id),
				zap.Error(err))
		}

		if pool, ok := e.shardPools[id]; ok {
			pool.Release()
			delete(e.shardPools, id)
		}
	}

	if len(e.shards) == 0 {
		return errors.New("failed initialization on all shards")
	}

	go e.setModeLoop()

	return nil
}

var errClosed = errors.New("storage engine is closed")

// Close releases all StorageEngine's components. Waits for all data-related operations to complete.
// After the call, all the next ones will fail.
//
// The method MUST only be called when the application exits.
func (e *StorageEngine) Close() error {
	select {
	case <-e.closeCh:
	default:
		close(e.closeCh)
	}

	return e.setBlockExecErr(errClosed)
}

// closes all shards. Never returns an error, shard errors are logged.
func (e *StorageEngine) close(releasePools bool) error {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	if releasePools {
		for _, p := range e.shardPools {
			p.Release()
		}
	}

	var errs error

	for id, sh := range e.shards {
		if err := sh.Close(); err != nil {
			e.log.Debug("could not close shard",
				zap.String("id", id),
				zap.Error(err),
			)

			errs = multierr.Append(errs, fmt.Errorf("shard %s: %w", id, err))
		}
	}

	return errs
}

// reopen opens and initializes all shards closed by BlockExecution.
func (e *StorageEngine) reopen() error {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	var errs error

	for id, sh := range e.shards {
		err := sh.Open()
		if err == nil {
			err = sh.Init()
		}

		if err != nil {
			e.log.Error("could not reopen shard",
				zap.String("id", id),
				zap.Error(err))

			errs = multierr.Append(errs, fmt.Errorf("shard %s: %w", id, err))
		}
	}

	return errs
}

// executes op if execution is not blocked, otherwise returns blocking error.
//
// Can be called concurrently with setBlockExecErr.
func (e *StorageEngine) execIfNotBlocked(op func() error) error {
	e.blockExec.mtx.RLock()
	defer e.blockExec.mtx.RUnlock()

	if e.blockExec.err != nil {
		return e.blockExec.err
	}

	return op()
}

// sets the flag of blocking execution of all data operations according to err:
//   - err != nil, then blocks the execution. If exec wasn't blocked, calls close method
//     (if err == errClosed => additionally releases pools and does not allow to resume executions).
//   - otherwise, resumes execution. If exec was blocked, calls open method.
//
// Can be called concurrently with exec. In this case it waits for all executions to complete.
func (e *StorageEngine) setBlockExecErr(err error) error {
	e.blockExec.mtx.Lock()
	defer e.blockExec.mtx.Unlock()

	prevErr := e.blockExec.err

	wasClosed := errors.Is(prevErr, errClosed)
	if wasClosed {
		return errClosed
	}

	e.blockExec.err = err

	if err == nil {
		if prevErr != nil { // block -> ok
			return e.reopen()
		}
	} else if prevErr == nil { // ok -> block
		return e.close(errors.Is(err, errClosed))
	}

	// otherwise do nothing

	return nil
}

// BlockExecution blocks the execution of any data-related operation. All blocked ops will return err.
// To resume the execution, use ResumeExecution method.
//
// Сan be called regardless of the fact of the previous blocking. If execution wasn't blocked, releases all resources
// similar to Close. Can be called concurrently with Close and any data related method (waits for all executions
// to complete). Returns error if any Close has been called before.
//
// Must not be called concurrently with either Open or Init.
//
// Note: technically passing nil error will resume the execution, otherwise, it is recommended to call ResumeExecution
// for this.
func (e *StorageEngine) BlockExecution(err error) error {
	return e.setBlockExecErr(err)
}

// ResumeExecution resumes the execution of any data-related operation.
// To block the execution, use BlockExecution method.
//
// Сan be called regardless of the fact of the previous blocking. If execution was blocked, prepares all resources
// similar to Open. Can be called concurrently with Close and any data related method (waits for all executions
// to complete). Returns error if any Close has been called before.
//
// Must not be called concurrently with either Open or Init.
func (e *StorageEngine) ResumeExecution() error {
	return e.setBlockExecErr(nil)
}

type setModeRequest struct {
	sh         *shard.Shard
	errorCount uint32
}

// setModeLoop listens setModeCh to perform degraded mode transition of a single shard.
// Instead of creating a worker per single shard we use a single goroutine.
func (e *StorageEngine) setModeLoop() {
	for {
		select {
		case <-e.closeCh:
			return
		case r := <-e.setModeCh:
			e.moveToReadOnly(r.sh, r.errorCount)
		}
	}
}
