package shard

import (
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"go.uber.org/zap"
)

// updateMetrics sets the shard gauges from the metabase state. Does nothing
// without the metabase.
func (s *Shard) updateMetrics() {
	if s.GetMode().NoMetabase() {
		return
	}

	cc, err := s.metaBase.ObjectCounter()
	if err != nil {
		s.log.Error("could not get object counter value", zap.Error(err))
		return
	}

	s.metricsWriter.SetObjectCounter(cc)

	cnrList, err := s.metaBase.Containers()
	if err != nil {
		s.log.Error("could not list containers", zap.Error(err))
		return
	}

	for i := range cnrList {
		size, err := s.metaBase.ContainerSize(cnrList[i])
		if err != nil {
			s.log.Error("could not get container size",
				zap.Stringer("cid", cnrList[i]),
				zap.Error(err))
			continue
		}

		s.metricsWriter.AddToContainerSize(cnrList[i].EncodeToString(), int64(size))
	}
}

func (s *Shard) incObjectCounter(obj *object.Object) {
	s.metricsWriter.AddToObjectCounter(1)

	if obj.Type() == object.TypeRegular {
		cnr, _ := obj.Container()
		s.metricsWriter.AddToContainerSize(cnr.EncodeToString(), int64(obj.PayloadSize()))
	}
}
