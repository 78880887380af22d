package grpcconfig

import (
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
)

// TLSConfig is a wrapper over the "tls" config section
// which provides access to TLS configuration of the gRPC server.
type TLSConfig config.Config

const subsection = "grpc"

// Endpoint returns the value of "endpoint" config parameter
// from "grpc" section.
//
// Panics if the value is not a non-empty string.
func Endpoint(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "endpoint")
	if v == "" {
		panic("empty gRPC endpoint")
	}

	return v
}

// TLS returns "tls" subsection of the "grpc" section as a TLSConfig.
//
// Returns nil if "enabled" value of the subsection is not true.
func TLS(c *config.Config) *TLSConfig {
	tls := c.Sub(subsection).Sub("tls")

	if !config.BoolSafe(tls, "enabled") {
		return nil
	}

	return (*TLSConfig)(tls)
}

// KeyFile returns the value of "key" config parameter.
//
// Panics if the value is not a non-empty string.
func (tls *TLSConfig) KeyFile() string {
	v := config.StringSafe((*config.Config)(tls), "key")
	if v == "" {
		panic("TLS key file path is empty")
	}

	return v
}

// CertificateFile returns the value of "certificate" config parameter.
//
// Panics if the value is not a non-empty string.
func (tls *TLSConfig) CertificateFile() string {
	v := config.StringSafe((*config.Config)(tls), "certificate")
	if v == "" {
		panic("TLS certificate file path is empty")
	}

	return v
}
