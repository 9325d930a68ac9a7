package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig(okHandler())

	assert.Equal(t, ":8080", config.Address)
	assert.Equal(t, 15*time.Second, config.ReadTimeout)
	assert.Equal(t, 15*time.Second, config.WriteTimeout)
	assert.Equal(t, 60*time.Second, config.IdleTimeout)
	assert.Equal(t, 10*time.Second, config.ReadHeaderTimeout)
	assert.Equal(t, 1<<20, config.MaxHeaderBytes)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Config{Address: ":0"})
	assert.Error(t, err)
}

func TestServer_Run(t *testing.T) {
	config := DefaultConfig(okHandler())
	config.Address = "127.0.0.1:0"
	srv, err := New(config)
	require.NoError(t, err)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	var hooks []int
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, time.Second,
			func(context.Context) error { hooks = append(hooks, 1); return errors.New("hook failed") },
			func(context.Context) error { hooks = append(hooks, 2); return nil },
		)
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + srv.Addr() + "/")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, []int{1, 2}, hooks, "a failing hook does not stop the rest")
}

func TestServer_ListenError(t *testing.T) {
	first, err := New(&Config{Address: "127.0.0.1:0", Handler: okHandler()})
	require.NoError(t, err)
	require.NoError(t, first.Listen())
	defer first.Close()

	second, err := New(&Config{Address: first.Addr(), Handler: okHandler()})
	require.NoError(t, err)
	assert.Error(t, second.Start())
}

func TestServer_AddrBeforeListen(t *testing.T) {
	srv, err := New(DefaultConfig(okHandler()))
	require.NoError(t, err)
	assert.Equal(t, ":8080", srv.Addr())
}
