// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/paytube/channel"
	"github.com/ava-labs/paytube/server"
)

const (
	Name     = "paytube"
	Endpoint = "/rpc"

	// Path is where the service is mounted on a server.
	Path = server.BaseURL + "/" + Name + Endpoint
)

type Handler struct {
	Path    string
	Handler http.Handler
}

// NewHandler exposes [manager] over JSON-RPC under the "paytube" service.
func NewHandler(log logging.Logger, manager *channel.Manager) (Handler, error) {
	handler, err := server.NewHandler(NewJSONRPCServer(log, manager), Name)
	if err != nil {
		return Handler{}, err
	}
	return Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

// Register mounts the service on [s].
func Register(s server.PathAdder, log logging.Logger, manager *channel.Manager) error {
	h, err := NewHandler(log, manager)
	if err != nil {
		return err
	}
	return s.AddRoute(h.Handler, Name, h.Path)
}
