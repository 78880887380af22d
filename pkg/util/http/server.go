package httputil

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPSrvPrm groups the required parameters of the Server's constructor.
type HTTPSrvPrm struct {
	// TCP address for the server to listen on.
	//
	// Must be a valid TCP address.
	Address string

	// Must not be nil.
	Handler http.Handler
}

// Server is a wrapper over http.Server serving node service endpoints
// like metrics. Server must be created with New.
type Server struct {
	shutdownTimeout time.Duration

	srv *http.Server
}

const invalidValFmt = "invalid %s %s (%T): %v"

func panicOnPrmValue(n string, v any) {
	panicOnValue("parameter", n, v)
}

func panicOnOptValue(n string, v any) {
	panicOnValue("option", n, v)
}

func panicOnValue(t, n string, v any) {
	panic(fmt.Sprintf(invalidValFmt, t, n, v, v))
}

func checkSrvPrm(addr string, handler http.Handler) {
	switch {
	case addr == "":
		panicOnPrmValue("Address", addr)
	case handler == nil:
		panicOnPrmValue("Handler", handler)
	}
}

// New creates a new instance of the Server.
//
// Panics if at least one value of the parameters is invalid.
//
// Panics if at least one of next optional parameters is invalid:
//   - shutdown timeout is non-positive.
func New(prm HTTPSrvPrm, opts ...Option) *Server {
	checkSrvPrm(prm.Address, prm.Handler)

	c := defaultCfg()

	for _, o := range opts {
		o(c)
	}

	if c.shutdownTimeout <= 0 {
		panicOnOptValue("shutdown timeout", c.shutdownTimeout)
	}

	return &Server{
		shutdownTimeout: c.shutdownTimeout,
		srv: &http.Server{
			Addr:              prm.Address,
			Handler:           prm.Handler,
			ReadHeaderTimeout: c.readHeaderTimeout,
		},
	}
}
