package main

import (
	"context"
	"fmt"

	natsconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/nats"
	"github.com/kestrelfs/kestrel-node/pkg/services/notificator"
	"github.com/kestrelfs/kestrel-node/pkg/services/notificator/nats"
)

func initNotifications(c *cfg) {
	natsCfg := natsconfig.Get(c.appCfg)
	if !natsCfg.Enabled {
		return
	}

	opts := []nats.Option{
		nats.WithConnectionName(fmt.Sprintf("kestrel-node-%x", []byte(c.key))),
		nats.WithTimeout(natsCfg.Timeout),
		nats.WithLogger(c.log.Logger),
	}

	if natsCfg.TLS.Certificate != "" || natsCfg.TLS.Key != "" {
		opts = append(opts, nats.WithClientCert(natsCfg.TLS.Certificate, natsCfg.TLS.Key))
	}

	if natsCfg.TLS.CA != "" {
		opts = append(opts, nats.WithRootCA(natsCfg.TLS.CA))
	}

	writer := nats.New(opts...)

	err := writer.Connect(c.ctx, natsCfg.Endpoint)
	fatalOnErrDetails("could not connect to a nats endpoint", err)

	var prm notificator.Prm

	prm.SetWriter(writer).
		SetDefaultTopic(natsCfg.DefaultTopic).
		SetQueueSize(natsCfg.QueueSize).
		SetLogger(c.log.Logger)

	c.notificator = notificator.New(&prm)

	c.workers = append(c.workers, newWorkerFromFunc(func(ctx context.Context) {
		c.notificator.Run(ctx)
	}))
}
