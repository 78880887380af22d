package main

import (
	objectconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/object"
	objectsvc "github.com/kestrelfs/kestrel-node/pkg/services/object"
	putsvc "github.com/kestrelfs/kestrel-node/pkg/services/object/put"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/protoobject"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

type cfgObject struct {
	server protoobject.ObjectServiceServer

	putSvc *putsvc.Service
}

func initObjectService(c *cfg) {
	putCfg := objectconfig.Put(c.appCfg)

	remotePool, err := ants.NewPool(putCfg.PoolSizeRemote())
	fatalOnErrDetails("could not create remote put pool", err)

	localPool, err := ants.NewPool(putCfg.PoolSizeLocal())
	fatalOnErrDetails("could not create local put pool", err)

	c.onShutdown(func() {
		remotePool.Release()
		localPool.Release()
	})

	opts := []putsvc.Option{
		putsvc.WithLogger(c.log.With(zap.String("component", "Object Put Service"))),
		putsvc.WithObjectStorage(c.engine),
		putsvc.WithContainerSource(c.cnrSrc),
		putsvc.WithNetworkMapSource(c.netmapSource),
		putsvc.WithNetmapKeys(c.key),
		putsvc.WithClientConstructor(c.clientCache),
		putsvc.WithWorkerPools(remotePool, localPool),
		putsvc.WithMaxPayloadSize(putCfg.MaxPayloadSize()),
	}

	if c.notificator != nil {
		opts = append(opts, putsvc.WithNotifier(c.notificator))
	}

	c.cfgObject.putSvc = putsvc.NewService(opts...)

	c.cfgObject.server = objectsvc.New(
		c.engine,
		c.cfgObject.putSvc,
		c.metrics,
		c.log.With(zap.String("component", "Object Service")),
	)
}
