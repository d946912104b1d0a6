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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/scionproto/mcastlab/pkg/metrics"
)

func TestNilSafeHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.CounterInc(nil)
		metrics.CounterAdd(nil, 3)
		metrics.GaugeSet(nil, 1)
		metrics.HistogramObserve(nil, 2)
	})
}

func TestFakes(t *testing.T) {
	c := metrics.NewTestCounter()
	metrics.CounterInc(c)
	metrics.CounterAdd(c, 2)
	assert.Equal(t, float64(3), metrics.CounterValue(c))
	assert.Panics(t, func() { c.Add(-1) })

	g := metrics.NewTestGauge()
	metrics.GaugeSet(g, 5)
	g.Add(-2)
	assert.Equal(t, float64(3), metrics.GaugeValue(g))

	h := metrics.NewTestHistogram()
	metrics.HistogramObserve(h, 42)
	metrics.HistogramObserve(h, 7)
	assert.Equal(t, []float64{42, 7}, h.Observations())
}

func TestFactory(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := metrics.ApplyOptions(metrics.WithRegistry(reg)).Auto()
	c := f.NewCounter(prometheus.CounterOpts{Name: "frames_total", Help: "Frames."})
	metrics.CounterAdd(c, 4)
	assert.Equal(t, float64(4), testutil.ToFloat64(c))

	cv := f.NewCounterVec(prometheus.CounterOpts{Name: "states_total", Help: "States."},
		[]string{"state"})
	metrics.CounterInc(cv.WithLabelValues("in_order"))
	assert.Equal(t, float64(1), testutil.ToFloat64(cv.WithLabelValues("in_order")))

	g := f.NewGauge(prometheus.GaugeOpts{Name: "last", Help: "Last."})
	metrics.GaugeSet(g, 9)
	assert.Equal(t, float64(9), testutil.ToFloat64(g))

	assert.Panics(t, func() {
		f.NewCounter(prometheus.CounterOpts{Name: "frames_total", Help: "Frames."})
	})
	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}
