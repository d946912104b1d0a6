// Copyright 2026 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package consumer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scionproto/mcastlab/pkg/metrics"
	"github.com/scionproto/mcastlab/pkg/private/prom"
)

// Metrics are the metrics of the consumer. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	FramesReceived metrics.Counter
	BytesReceived  metrics.Counter
	Truncated      metrics.Counter
	DecodeErrors   metrics.Counter
	ReadRetries    metrics.Counter
	// States returns the counter of received datagrams in the given state.
	States func(State) metrics.Counter
	// DatagramSize observes the number of bytes read per datagram.
	DatagramSize metrics.Histogram
	// KernelDrops is the number of datagrams dropped by the kernel.
	KernelDrops metrics.Gauge
}

// NewMetrics creates and registers the consumer metrics.
func NewMetrics(opts ...metrics.Option) *Metrics {
	auto := metrics.ApplyOptions(opts...).Auto()
	states := auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: prom.Namespace,
		Subsystem: "consumer",
		Name:      "frames_classified_total",
		Help:      "Total number of received datagrams per sequence state.",
	}, []string{prom.LabelState})
	return &Metrics{
		FramesReceived: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "consumer",
			Name:      "frames_received_total",
			Help:      "Total number of datagrams received.",
		}),
		BytesReceived: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "consumer",
			Name:      "received_bytes_total",
			Help:      "Total number of payload bytes read.",
		}),
		Truncated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "consumer",
			Name:      "frames_truncated_total",
			Help:      "Total number of datagrams longer than the read buffer.",
		}),
		DecodeErrors: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "consumer",
			Name:      "decode_errors_total",
			Help:      "Total number of logged frames that could not be decoded.",
		}),
		ReadRetries: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "consumer",
			Name:      "read_retries_total",
			Help:      "Total number of reads retried after a transient error.",
		}),
		States: func(s State) metrics.Counter {
			return states.WithLabelValues(s.String())
		},
		DatagramSize: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: prom.Namespace,
			Subsystem: "consumer",
			Name:      "datagram_size_bytes",
			Help:      "Size of the received datagrams as read.",
			Buckets:   prom.DefaultSizeBuckets,
		}),
		KernelDrops: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: prom.Namespace,
			Subsystem: "consumer",
			Name:      "kernel_drops",
			Help:      "Number of datagrams dropped by the kernel on the socket.",
		}),
	}
}

func (m *Metrics) received(size int) {
	if m == nil {
		return
	}
	metrics.CounterInc(m.FramesReceived)
	metrics.CounterAdd(m.BytesReceived, float64(size))
	metrics.HistogramObserve(m.DatagramSize, float64(size))
}

func (m *Metrics) state(s State) {
	if m == nil || m.States == nil {
		return
	}
	metrics.CounterInc(m.States(s))
}

func (m *Metrics) truncated() {
	if m == nil {
		return
	}
	metrics.CounterInc(m.Truncated)
}

func (m *Metrics) decodeError() {
	if m == nil {
		return
	}
	metrics.CounterInc(m.DecodeErrors)
}

func (m *Metrics) retried() {
	if m == nil {
		return
	}
	metrics.CounterInc(m.ReadRetries)
}

func (m *Metrics) kernelDrops(n uint64) {
	if m == nil {
		return
	}
	metrics.GaugeSet(m.KernelDrops, float64(n))
}
