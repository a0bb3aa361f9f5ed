package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/api"
)

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	srv, err := api.Listen(ctx, "127.0.0.1:0", newHandler(t, &fakeStore{}), api.ServerOptions{})
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() { done <- srv.Run(ctx) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+srv.Addr()+"/healthz", http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}

func TestListen_BadAddress(t *testing.T) {
	t.Parallel()

	_, err := api.Listen(context.Background(), "256.0.0.1:http", http.NotFoundHandler(), api.ServerOptions{})
	require.Error(t, err)
}
