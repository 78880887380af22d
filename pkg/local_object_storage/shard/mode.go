package shard

import (
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"go.uber.org/zap"
)

// SetMode sets mode of the shard.
//
// Returns any error encountered that did not allow
// setting shard mode.
func (s *Shard) SetMode(m mode.Mode) error {
	s.m.Lock()
	defer s.m.Unlock()

	return s.setMode(m)
}

func (s *Shard) setMode(m mode.Mode) error {
	s.log.Info("setting shard mode",
		zap.Stringer("old_mode", s.info.Mode),
		zap.Stringer("new_mode", m))

	components := []interface{ SetMode(mode.Mode) error }{
		s.metaBase, s.blobStor,
	}

	if s.hasWriteCache() {
		components = append(components, s.writeCache)

		if m.NoMetabase() && !s.info.Mode.NoMetabase() {
			s.prepareWriteCacheFlush(m)
		}
	}

	// The usual flow of the requests is
	// writecache -> blobstor -> metabase.
	// Writes are disabled in the same order and enabled in reverse.
	if m != mode.ReadWrite {
		for i, j := 0, len(components)-1; i < j; i, j = i+1, j-1 {
			components[i], components[j] = components[j], components[i]
		}
	}

	for i := range components {
		if err := components[i].SetMode(m); err != nil {
			return err
		}
	}

	s.info.Mode = m
	s.metricsWriter.SetReadonly(s.info.Mode != mode.ReadWrite)

	s.log.Info("shard mode set successfully",
		zap.Stringer("mode", m))
	return nil
}

// prepareWriteCacheFlush makes blobstor and metabase writable since the
// write-cache is flushed into them when the metabase is turned off. Metabase
// that can't be reopened is switched to m right away.
func (s *Shard) prepareWriteCacheFlush(m mode.Mode) {
	if err := s.blobStor.SetMode(mode.ReadWrite); err != nil {
		s.log.Warn("can't make blobstor writable for write-cache flush", zap.Error(err))
	}

	if err := s.metaBase.SetMode(mode.ReadWrite); err != nil {
		s.log.Warn("can't make metabase writable for write-cache flush", zap.Error(err))

		if err := s.metaBase.SetMode(m); err != nil {
			s.log.Warn("can't turn off metabase", zap.Error(err))
		}
	}
}

// GetMode returns mode of the shard.
func (s *Shard) GetMode() mode.Mode {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.info.Mode
}
