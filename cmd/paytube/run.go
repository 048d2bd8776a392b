// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	avatrace "github.com/ava-labs/avalanchego/trace"

	"github.com/ava-labs/paytube/api"
	"github.com/ava-labs/paytube/channel"
	"github.com/ava-labs/paytube/cmd/paytube/version"
	"github.com/ava-labs/paytube/config"
	"github.com/ava-labs/paytube/genesis"
	"github.com/ava-labs/paytube/ledger"
	"github.com/ava-labs/paytube/lockmap"
	"github.com/ava-labs/paytube/server"
	"github.com/ava-labs/paytube/trace"
)

func newRunCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs a node serving channels over a local ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(nil)
			if err != nil {
				return err
			}
			if len(configPath) > 0 {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			n, err := newNode(ctx, cfg, log)
			if err != nil {
				return err
			}
			return n.run(ctx)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a JSON or YAML config")
	return cmd
}

type node struct {
	log     logging.Logger
	tracer  avatrace.Tracer
	ledger  *ledger.Local
	manager *channel.Manager
	server  server.Server
}

func newNode(ctx context.Context, cfg *config.Config, log logging.Logger) (*node, error) {
	g := genesis.NewDefaultGenesis(nil)
	if len(cfg.GenesisFile) > 0 {
		var err error
		g, err = genesis.Load(cfg.GenesisFile)
		if err != nil {
			return nil, err
		}
	}
	chainID := cfg.ChainID
	if chainID == ids.Empty {
		b, err := json.Marshal(g)
		if err != nil {
			return nil, err
		}
		chainID = ids.ID(hashing.ComputeHash256Array(b))
	}

	traceConfig := cfg.Trace
	traceConfig.AppName = api.Name
	traceConfig.Version = version.Version.String()
	tracer, err := trace.New(&traceConfig)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics, err := channel.NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	clk := &mockable.Clock{}
	l, err := ledger.NewLocal(log, tracer, metrics.Processor(), memdb.New(), ledger.Config{
		ChainID:   chainID,
		Rules:     g.Rules,
		CacheSize: cfg.AccountCacheSize,
	}, clk)
	if err != nil {
		return nil, err
	}
	if err := g.InitializeState(ctx, tracer, l); err != nil {
		return nil, fmt.Errorf("failed to initialize genesis: %w", err)
	}
	manager := channel.NewManager(&channel.Backend{
		Log:     log,
		Tracer:  tracer,
		Metrics: metrics,
		Clock:   clk,
		Ledger:  l,
		Locks:   lockmap.New(cfg.AccountCacheSize),
	}, cfg.Rules(), cfg.GetSettlementTTL())

	listener, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return nil, err
	}
	s := server.New(log, listener, server.DefaultHTTPConfig(), cfg.AllowedOrigins, cfg.AllowedHosts, cfg.GetShutdownTimeout())
	if err := api.Register(s, log, manager); err != nil {
		_ = listener.Close()
		return nil, err
	}
	if err := s.AddRoute(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), "metrics", ""); err != nil {
		_ = listener.Close()
		return nil, err
	}
	log.Info("node initialized",
		zap.Stringer("chainID", chainID),
		zap.Stringer("addr", s.Addr()),
	)
	return &node{
		log:     log,
		tracer:  tracer,
		ledger:  l,
		manager: manager,
		server:  s,
	}, nil
}

// run serves until [ctx] is cancelled, then settles every open channel
// before shutting the server down.
func (n *node) run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() { errs <- n.server.Dispatch() }()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
	}

	if err := n.manager.CloseAll(context.Background()); err != nil {
		n.log.Error("failed to settle channels", zap.Error(err))
	}
	if err := n.server.Shutdown(); err != nil {
		n.log.Warn("failed to shutdown server", zap.Error(err))
	}
	if err := n.tracer.Close(); err != nil {
		n.log.Warn("failed to close tracer", zap.Error(err))
	}
	if serveErr != nil {
		return serveErr
	}
	return <-errs
}
