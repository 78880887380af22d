package shard

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"go.uber.org/zap"
)

func (s *Shard) handleMetabaseFailure(stage string, err error) error {
	s.log.Error("metabase failure, switching mode",
		zap.String("stage", stage),
		zap.Stringer("mode", mode.ReadOnly),
		zap.Error(err))

	err = s.SetMode(mode.ReadOnly)
	if err == nil {
		return nil
	}

	s.log.Error("can't move shard to readonly, switch mode",
		zap.String("stage", stage),
		zap.Stringer("mode", mode.DegradedReadOnly),
		zap.Error(err))

	err = s.SetMode(mode.DegradedReadOnly)
	if err != nil {
		return fmt.Errorf("could not switch to mode %s", mode.DegradedReadOnly)
	}
	return nil
}

// Open opens all Shard's components.
func (s *Shard) Open() error {
	m := s.GetMode()

	components := []interface{ Open(bool) error }{s.blobStor}
	if !m.NoMetabase() {
		components = append(components, s.metaBase)
	}

	if s.hasWriteCache() {
		components = append(components, s.writeCache)
	}

	for i, component := range components {
		if err := component.Open(m.ReadOnly()); err != nil {
			if component == s.metaBase {
				// We must first open all other components to avoid
				// opening non-existent DB in read-only mode.
				for j := i + 1; j < len(components); j++ {
					if err := components[j].Open(m.ReadOnly()); err != nil {
						// Other components must be opened, fail.
						return fmt.Errorf("could not open %T: %w", components[j], err)
					}
				}
				err = s.handleMetabaseFailure("open", err)
				if err != nil {
					return err
				}

				break
			}

			return fmt.Errorf("could not open %T: %w", component, err)
		}
	}
	return nil
}

type metabaseSynchronizer Shard

func (x *metabaseSynchronizer) Init() error {
	return (*Shard)(x).refillMetabase()
}

// Init initializes all Shard's components.
func (s *Shard) Init() error {
	m := s.GetMode()

	type initializer interface {
		Init() error
	}

	var components []initializer

	if !m.NoMetabase() {
		var initMetabase initializer

		if s.needRefillMetabase() {
			initMetabase = (*metabaseSynchronizer)(s)
		} else {
			initMetabase = s.metaBase
		}

		components = []initializer{
			s.blobStor, initMetabase,
		}
	} else {
		// the metabase is not opened, make it reject requests
		if err := s.metaBase.SetMode(m); err != nil {
			return fmt.Errorf("could not set metabase mode: %w", err)
		}

		components = []initializer{s.blobStor}
	}

	if s.hasWriteCache() {
		components = append(components, s.writeCache)
	}

	for _, component := range components {
		if err := component.Init(); err != nil {
			if component == s.metaBase {
				if errors.Is(err, meta.ErrOutdatedVersion) {
					return fmt.Errorf("metabase initialization: %w", err)
				}

				err = s.handleMetabaseFailure("init", err)
				if err != nil {
					return err
				}

				break
			}

			return fmt.Errorf("could not initialize %T: %w", component, err)
		}
	}

	if m.NoMetabase() {
		if err := s.SetMode(m); err != nil {
			return err
		}
	}

	s.updateMetrics()

	s.gc = &gc{
		gcCfg:       &s.gcCfg,
		remover:     s.removeGarbage,
		stopChannel: make(chan struct{}),
		eventChan:   make(chan Event),
		mEventHandler: map[eventType]*eventHandlers{
			eventNewEpoch: {
				cancelFunc: func() {},
				handlers: []eventHandler{
					s.collectExpiredGraves,
				},
			},
		},
	}

	s.gc.init()

	return nil
}

func (s *Shard) needRefillMetabase() bool {
	return s.cfg.refillMetabase
}

func (s *Shard) refillMetabase() error {
	err := s.metaBase.Reset()
	if err != nil {
		return fmt.Errorf("could not reset metabase: %w", err)
	}

	return blobstor.IterateBinaryObjects(s.blobStor, func(addr oid.Address, data []byte, descriptor []byte) error {
		obj := object.New()

		if err := obj.Unmarshal(data); err != nil {
			s.log.Warn("could not unmarshal object",
				zap.Stringer("address", addr),
				zap.String("err", err.Error()))
			return nil
		}

		if obj.Type() == object.TypeTombstone {
			if err := s.refillTombstone(obj); err != nil {
				return err
			}
		}

		err := s.metaBase.Put(obj, descriptor)
		if err != nil && !meta.IsErrRemoved(err) {
			return err
		}

		return nil
	})
}

func (s *Shard) refillTombstone(obj *object.Object) error {
	tombstone := object.NewTombstone()

	if err := tombstone.Unmarshal(obj.Payload()); err != nil {
		return fmt.Errorf("could not unmarshal tombstone content: %w", err)
	}

	tombAddr := obj.Address()
	cnr := tombAddr.Container()
	memberIDs := tombstone.Members()
	tombMembers := make([]oid.Address, 0, len(memberIDs))

	for i := range memberIDs {
		tombMembers = append(tombMembers, oid.NewAddress(cnr, memberIDs[i]))
	}

	var inhumePrm meta.InhumePrm

	inhumePrm.SetTombstone(tombAddr, tombstone.ExpirationEpoch())
	inhumePrm.SetAddresses(tombMembers...)

	_, err := s.metaBase.Inhume(inhumePrm)
	if err != nil {
		return fmt.Errorf("could not inhume objects: %w", err)
	}

	return nil
}

// Close releases all Shard's components.
func (s *Shard) Close() error {
	// If Init/Open was unsuccessful gc can be nil.
	if s.gc != nil {
		s.gc.stop()
	}

	components := []interface{ Close() error }{}

	if s.hasWriteCache() {
		components = append(components, s.writeCache)
	}

	components = append(components, s.blobStor, s.metaBase)

	var lastErr error
	for _, component := range components {
		if err := component.Close(); err != nil {
			lastErr = err
			s.log.Error("could not close shard component", zap.Error(err))
		}
	}

	return lastErr
}
