package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := http.NewServeMux()

	require.Panics(t, func() { New(HTTPSrvPrm{Handler: h}) })
	require.Panics(t, func() { New(HTTPSrvPrm{Address: "localhost:0"}) })
	require.Panics(t, func() {
		New(HTTPSrvPrm{Address: "localhost:0", Handler: h}, WithShutdownTimeout(0))
	})

	srv := New(HTTPSrvPrm{Address: "localhost:0", Handler: h}, WithShutdownTimeout(time.Second))
	require.Equal(t, "localhost:0", srv.Address())
}

func TestServer_ServeShutdown(t *testing.T) {
	srv := New(HTTPSrvPrm{Address: "127.0.0.1:0", Handler: http.NewServeMux()})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	// let the listener start
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, srv.Shutdown())

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestPprofHandler(t *testing.T) {
	srv := httptest.NewServer(PprofHandler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/debug/pprof/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp2.Body.Close() })
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
