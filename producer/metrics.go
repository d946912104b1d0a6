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

package producer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scionproto/mcastlab/pkg/metrics"
	"github.com/scionproto/mcastlab/pkg/private/prom"
)

// Metrics are the metrics of the producer. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	FramesSent  metrics.Counter
	BytesSent   metrics.Counter
	SendRetries metrics.Counter
	SendErrors  metrics.Counter
	LastSeq     metrics.Gauge
}

// NewMetrics creates and registers the producer metrics.
func NewMetrics(opts ...metrics.Option) *Metrics {
	auto := metrics.ApplyOptions(opts...).Auto()
	return &Metrics{
		FramesSent: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "producer",
			Name:      "frames_sent_total",
			Help:      "Total number of frames sent.",
		}),
		BytesSent: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "producer",
			Name:      "sent_bytes_total",
			Help:      "Total number of payload bytes sent.",
		}),
		SendRetries: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "producer",
			Name:      "send_retries_total",
			Help:      "Total number of sends retried after a transient error.",
		}),
		SendErrors: auto.NewCounter(prometheus.CounterOpts{
			Namespace: prom.Namespace,
			Subsystem: "producer",
			Name:      "send_errors_total",
			Help:      "Total number of sends that failed after the retry.",
		}),
		LastSeq: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: prom.Namespace,
			Subsystem: "producer",
			Name:      "last_sequence_number",
			Help:      "Sequence number of the last frame sent.",
		}),
	}
}

func (m *Metrics) sent(seq uint64, size int) {
	if m == nil {
		return
	}
	metrics.CounterInc(m.FramesSent)
	metrics.CounterAdd(m.BytesSent, float64(size))
	metrics.GaugeSet(m.LastSeq, float64(seq))
}

func (m *Metrics) retried() {
	if m == nil {
		return
	}
	metrics.CounterInc(m.SendRetries)
}

func (m *Metrics) failed() {
	if m == nil {
		return
	}
	metrics.CounterInc(m.SendErrors)
}
