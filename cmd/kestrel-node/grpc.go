package main

import (
	"net"

	grpcconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/grpc"
	iprotobuf "github.com/kestrelfs/kestrel-node/internal/protobuf"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/protoobject"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

func initGRPC(c *cfg) {
	endpoint := grpcconfig.Endpoint(c.appCfg)

	lis, err := net.Listen("tcp", endpoint)
	fatalOnErrDetails("can't listen gRPC endpoint", err)

	serverOpts := []grpc.ServerOption{
		grpc.ForceServerCodec(iprotobuf.Codec{}),
	}

	if tls := grpcconfig.TLS(c.appCfg); tls != nil {
		creds, err := credentials.NewServerTLSFromFile(tls.CertificateFile(), tls.KeyFile())
		fatalOnErrDetails("could not read TLS credentials", err)

		serverOpts = append(serverOpts, grpc.Creds(creds))
	}

	c.grpcServer = grpc.NewServer(serverOpts...)
	c.grpcListener = lis

	protoobject.RegisterObjectServiceServer(c.grpcServer, c.cfgObject.server)

	c.onShutdown(func() {
		c.log.Info("stopping gRPC server...")

		c.grpcServer.GracefulStop()

		c.log.Info("gRPC server stopped successfully")
	})
}

func serveGRPC(c *cfg) {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		c.log.Info("start listening gRPC endpoint",
			zap.Stringer("endpoint", c.grpcListener.Addr()))

		if err := c.grpcServer.Serve(c.grpcListener); err != nil {
			c.reportInternalError(err)
		}
	}()
}
