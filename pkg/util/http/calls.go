package httputil

import (
	"context"
	"errors"
	"net/http"
)

// Serve listens and serves internal HTTP server.
//
// Returns any error returned by internal server
// except http.ErrServerClosed.
//
// After Shutdown call, Serve has no effect and
// returned error is always nil.
func (x *Server) Serve() error {
	err := x.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown gracefully shuts down internal HTTP server. Shutdown waits for
// active connections no longer than the configured timeout.
func (x *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), x.shutdownTimeout)
	defer cancel()

	return x.srv.Shutdown(ctx)
}

// Address returns TCP address the server listens on.
func (x *Server) Address() string {
	return x.srv.Addr
}
