package engine

import (
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fishtls "github.com/getmockd/fishem/pkg/tls"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
}

func TestServer_HTTP(t *testing.T) {
	srv := NewServer(Config{HTTPAddr: "127.0.0.1:0"}, okHandler())
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	assert.True(t, srv.IsRunning())
	assert.Empty(t, srv.HTTPSAddr())

	resp, err := http.Get("http://" + srv.HTTPAddr() + "/redfish")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	require.NoError(t, srv.Stop())
	assert.False(t, srv.IsRunning())
	assert.NoError(t, srv.Stop(), "second stop is a no-op")
}

func TestServer_HTTPS(t *testing.T) {
	tlsConfig, err := fishtls.ServerConfig("", "")
	require.NoError(t, err)

	srv := NewServer(Config{HTTPSAddr: "127.0.0.1:0"}, okHandler(), WithTLS(tlsConfig))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // self-signed test certificate
	}}
	resp, err := client.Get("https://" + srv.HTTPSAddr() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StartErrors(t *testing.T) {
	t.Run("no address", func(t *testing.T) {
		assert.Error(t, NewServer(Config{}, okHandler()).Start())
	})

	t.Run("https without tls", func(t *testing.T) {
		assert.Error(t, NewServer(Config{HTTPSAddr: "127.0.0.1:0"}, okHandler()).Start())
	})

	t.Run("address in use", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		srv := NewServer(Config{HTTPAddr: ln.Addr().String()}, okHandler())
		assert.Error(t, srv.Start())
		assert.False(t, srv.IsRunning())
	})

	t.Run("already running", func(t *testing.T) {
		srv := NewServer(Config{HTTPAddr: "127.0.0.1:0"}, okHandler())
		require.NoError(t, srv.Start())
		defer srv.Stop()
		assert.Error(t, srv.Start())
	})
}

func TestServer_ReportsListenerFailure(t *testing.T) {
	srv := NewServer(Config{HTTPAddr: "127.0.0.1:0"}, okHandler())
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	srv.mu.Lock()
	ln := srv.httpLn
	srv.mu.Unlock()
	require.NoError(t, ln.Close())

	select {
	case err := <-srv.Errors():
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP server")
	case <-time.After(5 * time.Second):
		t.Fatal("listener failure was not reported")
	}
}

func TestServer_StopReportsNothing(t *testing.T) {
	srv := NewServer(Config{HTTPAddr: "127.0.0.1:0"}, okHandler())
	require.NoError(t, srv.Start())
	require.NoError(t, srv.Stop())

	select {
	case err := <-srv.Errors():
		t.Fatalf("unexpected error after Stop: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}
