// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are shared by every Processor created from them so that many
// channels can report into one registry.
type Metrics struct {
	txsProcessed prometheus.Counter
	txsSucceeded prometheus.Counter
	txsFailed    prometheus.Counter
	computeUnits prometheus.Counter
	stateChanges prometheus.Counter

	executeBatch metric.Averager
}

func NewMetrics(r prometheus.Registerer) (*Metrics, error) {
	executeBatch, err := metric.NewAverager(
		"processor_execute_batch",
		"time spent executing a batch of transactions",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &Metrics{
		txsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "processor",
			Name:      "txs_processed",
			Help:      "number of transactions processed",
		}),
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "processor",
			Name:      "txs_succeeded",
			Help:      "number of transactions whose effects were committed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "processor",
			Name:      "txs_failed",
			Help:      "number of transactions that failed without effects",
		}),
		computeUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "processor",
			Name:      "compute_units",
			Help:      "compute units consumed by committed transactions",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "processor",
			Name:      "state_changes",
			Help:      "number of account writes committed",
		}),
		executeBatch: executeBatch,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsProcessed),
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.computeUnits),
		r.Register(m.stateChanges),
	)
	return m, errs.Err
}
