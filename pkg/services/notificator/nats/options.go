package nats

import (
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// WithClientCert returns option to set client certificate and key paths.
func WithClientCert(certPath, keyPath string) Option {
	return func(o *opts) {
		o.nOpts = append(o.nOpts, nats.ClientCert(certPath, keyPath))
	}
}

// WithRootCA returns option to set root CA paths.
func WithRootCA(paths ...string) Option {
	return func(o *opts) {
		o.nOpts = append(o.nOpts, nats.RootCAs(paths...))
	}
}

// WithTimeout returns option to set connection timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *opts) {
		o.nOpts = append(o.nOpts, nats.Timeout(timeout))
	}
}

// WithConnectionName returns option to set connection name.
func WithConnectionName(name string) Option {
	return func(o *opts) {
		o.nOpts = append(o.nOpts, nats.Name(name))
	}
}

// WithLogger returns option to set logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *opts) {
		o.log = logger
	}
}
