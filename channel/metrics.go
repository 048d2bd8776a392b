// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package channel

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/paytube/processor"
)

type Metrics struct {
	processor *processor.Metrics

	opened             prometheus.Counter
	openFailures       prometheus.Counter
	closed             prometheus.Counter
	transfers          prometheus.Counter
	rejected           prometheus.Counter
	settlementFailures prometheus.Counter
	active             prometheus.Gauge
}

func NewMetrics(r prometheus.Registerer) (*Metrics, error) {
	pm, err := processor.NewMetrics(r)
	if err != nil {
		return nil, err
	}
	m := &Metrics{
		processor: pm,
		opened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel",
			Name:      "opened",
			Help:      "number of channels opened",
		}),
		openFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel",
			Name:      "open_failures",
			Help:      "number of channel opens that failed to lock or read accounts",
		}),
		closed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel",
			Name:      "closed",
			Help:      "number of channels settled and closed",
		}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel",
			Name:      "transfers",
			Help:      "number of transactions executed inside channels",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel",
			Name:      "rejected",
			Help:      "number of transactions rejected before execution",
		}),
		settlementFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel",
			Name:      "settlement_failures",
			Help:      "number of failed close attempts",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "channel",
			Name:      "active",
			Help:      "number of channels not yet closed",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.opened),
		r.Register(m.openFailures),
		r.Register(m.closed),
		r.Register(m.transfers),
		r.Register(m.rejected),
		r.Register(m.settlementFailures),
		r.Register(m.active),
	)
	return m, errs.Err
}

// Processor returns the metrics shared by every channel's processor.
func (m *Metrics) Processor() *processor.Metrics { return m.processor }
