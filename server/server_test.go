// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func TestFilterInvalidHosts(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		allowed []string
		host    string
		code    int
	}{
		{name: "wildcard", allowed: []string{"*"}, host: "example.com", code: http.StatusOK},
		{name: "allowed", allowed: []string{"localhost"}, host: "LocalHost:9650", code: http.StatusOK},
		{name: "ip", allowed: []string{"localhost"}, host: "127.0.0.1:9650", code: http.StatusOK},
		{name: "empty", allowed: []string{"localhost"}, host: "", code: http.StatusOK},
		{name: "rejected", allowed: []string{"localhost"}, host: "example.com", code: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			filterInvalidHosts(ok, tt.allowed).ServeHTTP(w, req)
			require.Equal(t, tt.code, w.Code)
		})
	}
}

func TestRouterRejectsDuplicates(t *testing.T) {
	require := require.New(t)

	r := newRouter()
	h := http.NotFoundHandler()
	require.NoError(r.AddRouter("/ext/paytube", "/rpc", h))
	require.NoError(r.AddRouter("/ext/paytube", "/metrics", h))
	require.ErrorIs(r.AddRouter("/ext/paytube", "/rpc", h), errAlreadyReserved)
}

func TestServerDispatch(t *testing.T) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	s := New(logging.NoLog{}, listener, DefaultHTTPConfig(), []string{"*"}, []string{"*"}, time.Second)
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}), "paytube", "/ping"))

	done := make(chan error, 1)
	go func() { done <- s.Dispatch() }()

	resp, err := http.Get(fmt.Sprintf("http://%s/ext/paytube/ping", s.Addr()))
	require.NoError(err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal("pong", string(b))

	require.NoError(s.Shutdown())
	require.NoError(<-done)
}
