package server

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophsite/internal/client/client"
	"github.com/dmitrijs2005/gophsite/internal/server/config"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = config.MemoryDSN
	c.S3PublicBaseURL = "http://media.test"
	c.LogLevel = "error"
	return c
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := memoryConfig()
	c.LogLevel = "loud"

	_, err := NewApp(context.Background(), c)
	require.ErrorContains(t, err, "logger init error")
}

func TestApp_ServeInMemory(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := fmt.Sprintf("http://%s", ln.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln, nil) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(base+"/api/admin/login", "application/json",
		bytes.NewBufferString(`{"username":"admin","password":"admin"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/collections/services")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestApp_ServeGRPC(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, app.rpc)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	rpcLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln, rpcLn) }()

	api, err := client.NewGRPCClient(rpcLn.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	defer api.Close()

	require.Eventually(t, func() bool {
		_, err := api.Ping(context.Background())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	_, err = api.Collection(context.Background(), "services")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = api.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	col, err := api.Collection(context.Background(), "services")
	require.NoError(t, err)
	assert.Equal(t, "services", col.Collection)

	s, err := api.BeginCreate(context.Background(), "services", nil)
	require.NoError(t, err)
	assert.Equal(t, "creating", s.Mode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewApp_GRPCDisabled(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrGRPC = ""
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, app.rpc)
}
