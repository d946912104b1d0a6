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

// Package metrics defines the minimal metric interfaces used by the run
// loops, together with a registering factory for prometheus metrics and
// fakes for tests.
//
// All helpers accept nil metrics, in which case they do nothing. This way
// the run loops can be used without any metrics set up.
package metrics

// Counter is a monotonically increasing value.
type Counter interface {
	Add(delta float64)
}

// Gauge is a value that can go up and down.
type Gauge interface {
	Set(v float64)
	Add(delta float64)
}

// Histogram samples observations into buckets.
type Histogram interface {
	Observe(v float64)
}

// CounterInc increases c by one.
func CounterInc(c Counter) {
	if c != nil {
		c.Add(1)
	}
}

// CounterAdd increases c by delta.
func CounterAdd(c Counter, delta float64) {
	if c != nil {
		c.Add(delta)
	}
}

// GaugeSet sets g to v.
func GaugeSet(g Gauge, v float64) {
	if g != nil {
		g.Set(v)
	}
}

// HistogramObserve adds the observation v to h.
func HistogramObserve(h Histogram, v float64) {
	if h != nil {
		h.Observe(v)
	}
}
