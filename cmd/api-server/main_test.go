package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServerReleasesHeldRequestsOnShutdown(t *testing.T) {
	entered := make(chan struct{})
	released := make(chan struct{})
	held := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-r.Context().Done()
		close(released)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := newHTTPServer(ctx, lis.Addr().String(), held)
	go srv.Serve(lis)

	go func() {
		resp, err := http.Get("http://" + lis.Addr().String() + "/rovers/Curiosity")
		if err == nil {
			resp.Body.Close()
		}
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}

	cancel()

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("held request outlived the server context")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	assert.NoError(t, srv.Shutdown(shutdownCtx))
}
