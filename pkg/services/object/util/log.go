package util

import (
	"github.com/kestrelfs/kestrel-node/pkg/network"
	"go.uber.org/zap"
)

// LogServiceError writes debug error message of object service to provided logger.
func LogServiceError(l *zap.Logger, req string, node network.AddressGroup, err error) {
	l.Debug("object service error",
		zap.String("node", network.StringifyGroup(node)),
		zap.String("request", req),
		zap.Error(err),
	)
}

// LogWorkerPoolError writes debug error message of object worker pool to provided logger.
func LogWorkerPoolError(l *zap.Logger, req string, err error) {
	l.Debug("could not push task to worker pool",
		zap.String("request", req),
		zap.Error(err),
	)
}
