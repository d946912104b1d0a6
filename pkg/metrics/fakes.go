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

package metrics

import (
	"sync"
)

// node is the shared implementation of the test gauges and counters.
type node struct {
	mtx sync.Mutex
	v   float64
}

func (b *node) add(delta float64, canBeNegative bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if !canBeNegative && delta < 0 {
		panic("counter increment value is < 0")
	}
	b.v += delta
}

func (b *node) set(v float64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.v = v
}

func (b *node) value() float64 {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.v
}

// TestCounter is a Counter for tests.
type TestCounter struct {
	*node
}

// NewTestCounter creates a new counter for tests.
func NewTestCounter() *TestCounter {
	return &TestCounter{node: &node{}}
}

// Add increases the counter. It panics on negative deltas.
func (c *TestCounter) Add(delta float64) {
	c.add(delta, false)
}

// CounterValue returns the value of c, which must be a *TestCounter.
func CounterValue(c Counter) float64 {
	return c.(*TestCounter).value()
}

// TestGauge is a Gauge for tests.
type TestGauge struct {
	*node
}

// NewTestGauge creates a new gauge for tests.
func NewTestGauge() *TestGauge {
	return &TestGauge{node: &node{}}
}

func (g *TestGauge) Set(v float64) {
	g.set(v)
}

func (g *TestGauge) Add(delta float64) {
	g.add(delta, true)
}

// GaugeValue returns the value of g, which must be a *TestGauge.
func GaugeValue(g Gauge) float64 {
	return g.(*TestGauge).value()
}

// TestHistogram is a Histogram for tests that records all observations.
type TestHistogram struct {
	mtx          sync.Mutex
	observations []float64
}

// NewTestHistogram creates a new histogram for tests.
func NewTestHistogram() *TestHistogram {
	return &TestHistogram{}
}

func (h *TestHistogram) Observe(v float64) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.observations = append(h.observations, v)
}

// Observations returns a copy of all observed values in order.
func (h *TestHistogram) Observations() []float64 {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return append([]float64(nil), h.observations...)
}
