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

// Package prom contains helpers and shared names for prometheus metrics.
package prom

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the metric namespace of all IPTV metrics.
const Namespace = "iptv"

// Common label names.
const (
	// LabelState is the label for the classification of a received frame.
	LabelState = "state"
	// LabelRole is the label for the role of the process.
	LabelRole = "role"
)

// DefaultSizeBuckets 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384.
var DefaultSizeBuckets = []float64{32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384}

// SafeRegister registers c with the default registry and returns the
// registered collector. If an equal collector was already registered, the
// existing one is returned. Any other error panics, as with MustRegister.
func SafeRegister(c prometheus.Collector) prometheus.Collector {
	return SafeRegisterWith(prometheus.DefaultRegisterer, c)
}

// SafeRegisterWith is SafeRegister for an explicit registerer.
func SafeRegisterWith(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// ExportRole exports a constant gauge with the role of the process, so that
// dashboards can tell producer and consumer apart.
func ExportRole(reg prometheus.Registerer, role string) {
	g := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "role_info",
			Help:      "The role of this process.",
		},
		[]string{LabelRole},
	)
	SafeRegisterWith(reg, g).(*prometheus.GaugeVec).WithLabelValues(role).Set(1)
}
