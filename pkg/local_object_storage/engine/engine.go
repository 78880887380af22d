package engine

import (
	"errors"
	"sync"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// StorageEngine represents local object storage: a set of shards objects
// are distributed between.
type StorageEngine struct {
	*cfg

	mtx *sync.RWMutex

	shards map[string]shardWrapper

	shardPools map[string]util.WorkerPool

	closeCh chan struct{}

	blockExec struct {
		mtx sync.RWMutex

		err error
	}
}

type shardWrapper struct {
	errorCount *atomic.Uint32
	*shard.Shard
}

// reportShardErrorBackground increases shard error counter and logs an error.
// It is intended to be used from background workers and
// doesn't change shard mode because of possible deadlocks.
func (e *StorageEngine) reportShardErrorBackground(id string, msg string, err error) {
	e.mtx.RLock()
	sh, ok := e.shards[id]
	e.mtx.RUnlock()

	if !ok {
		return
	}

	errCount := sh.errorCount.Inc()
	e.reportShardErrorWithFlags(sh.Shard, errCount, false, msg, err)
}

// reportShardError checks that the amount of errors doesn't exceed the configured threshold.
// If it does, shard is set to read-only mode.
func (e *StorageEngine) reportShardError(
	sh hashedShard,
	msg string,
	err error,
	fields ...zap.Field) {
	if isLogical(err) {
		e.log.Warn(msg,
			zap.Stringer("shard_id", sh.ID()),
			zap.String("error", err.Error()))
		return
	}

	errCount := sh.errorCount.Inc()
	e.reportShardErrorWithFlags(sh.Shard, errCount, true, msg, err, fields...)
}

func (e *StorageEngine) reportShardErrorWithFlags(
	sh *shard.Shard,
	errCount uint32,
	block bool,
	msg string,
	err error,
	fields ...zap.Field) {
	sid := sh.ID()
	e.log.Warn(msg, append([]zap.Field{
		zap.Stringer("shard_id", sid),
		zap.Uint32("error count", errCount),
		zap.String("error", err.Error()),
	}, fields...)...)

	if e.errorsThreshold == 0 || errCount < e.errorsThreshold {
		return
	}

	if block {
		e.moveToReadOnly(sh, errCount)
	} else {
		req := setModeRequest{
			errorCount: errCount,
			sh:         sh,
		}

		select {
		case e.setModeCh <- req:
		default:
			// For background workers we can have a lot of such errors,
			// thus logging is done with DEBUG level.
			e.log.Debug("mode change is in progress, ignoring set-mode request",
				zap.Stringer("shard_id", sid),
				zap.Uint32("error_count", errCount))
		}
	}
}

func (e *StorageEngine) moveToReadOnly(sh *shard.Shard, errCount uint32) {
	sid := sh.ID()

	if sh.GetMode().ReadOnly() {
		return
	}

	err := sh.SetMode(sh.GetMode() | mode.ReadOnly)
	if err != nil {
		e.log.Error("failed to move shard in read-only mode, move to degraded-read-only",
			zap.Uint32("error count", errCount),
			zap.Error(err))

		err = sh.SetMode(mode.DegradedReadOnly)
		if err != nil {
			e.log.Error("failed to move shard in degraded-read-only mode",
				zap.Uint32("error count", errCount),
				zap.Error(err))
		}

		return
	}

	e.log.Info("shard is moved in read-only mode due to error threshold",
		zap.Stringer("shard_id", sid),
		zap.Uint32("error count", errCount))
}

func isLogical(err error) bool {
	return logicerr.Is(err) || errors.As(err, new(*object.SplitInfoError))
}

// Option represents StorageEngine's constructor option.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger

	errorsThreshold uint32

	metrics MetricRegister

	shardPoolSize uint32

	setModeCh chan setModeRequest
}

const defaultErrorThreshold = 30

func defaultCfg() *cfg {
	return &cfg{
		log: zap.L(),

		errorsThreshold: defaultErrorThreshold,

		shardPoolSize: 20,
	}
}

// New creates, initializes and returns new StorageEngine instance.
func New(opts ...Option) *StorageEngine {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	c.setModeCh = make(chan setModeRequest, 1)

	return &StorageEngine{
		cfg:        c,
		mtx:        new(sync.RWMutex),
		shards:     make(map[string]shardWrapper),
		shardPools: make(map[string]util.WorkerPool),
		closeCh:    make(chan struct{}),
	}
}

// WithLogger returns option to set StorageEngine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithMetrics returns option to set StorageEngine's metrics register.
func WithMetrics(v MetricRegister) Option {
	return func(c *cfg) {
		c.metrics = v
	}
}

// WithShardPoolSize returns option to specify size of worker pool for each shard.
func WithShardPoolSize(sz uint32) Option {
	return func(c *cfg) {
		c.shardPoolSize = sz
	}
}

// WithErrorThreshold returns an option to specify size amount of errors after which
// shard is moved to read-only mode.
func WithErrorThreshold(sz uint32) Option {
	return func(c *cfg) {
		c.errorsThreshold = sz
	}
}
