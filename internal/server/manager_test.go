package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestManagerStartAndServe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	})

	m := NewManager(mux, testConfig(), zap.NewNop())
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + m.Addr() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestManagerDoubleStart(t *testing.T) {
	m := NewManager(http.NewServeMux(), testConfig(), zap.NewNop())
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	assert.Error(t, m.Start())
}

func TestManagerShutdown(t *testing.T) {
	m := NewManager(http.NewServeMux(), testConfig(), zap.NewNop())
	require.NoError(t, m.Start())
	addr := m.Addr()

	assert.True(t, m.IsRunning())
	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, m.IsRunning())

	// idempotent
	require.NoError(t, m.Shutdown(context.Background()))

	_, err := http.Get("http://" + addr + "/")
	assert.Error(t, err, "server should no longer accept connections")
}

func TestManagerStartAfterShutdown(t *testing.T) {
	m := NewManager(http.NewServeMux(), testConfig(), zap.NewNop())
	require.NoError(t, m.Start())
	require.NoError(t, m.Shutdown(context.Background()))

	assert.Error(t, m.Start())
}

func TestManagerListenFailure(t *testing.T) {
	cfg := testConfig()
	m1 := NewManager(http.NewServeMux(), cfg, zap.NewNop())
	require.NoError(t, m1.Start())
	t.Cleanup(func() { _ = m1.Shutdown(context.Background()) })

	// second manager on the same bound port must fail
	cfg.Addr = m1.Addr()
	m2 := NewManager(http.NewServeMux(), cfg, zap.NewNop())
	assert.Error(t, m2.Start())
}
