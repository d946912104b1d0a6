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

package periodic_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scionproto/mcastlab/pkg/metrics"
	"github.com/scionproto/mcastlab/pkg/private/xtest"
	"github.com/scionproto/mcastlab/private/periodic"
)

type taskFunc func(context.Context)

func (tf taskFunc) Run(ctx context.Context) {
	tf(ctx)
}

func (tf taskFunc) Name() string {
	return "test_task"
}

type eventCounters struct {
	mtx      sync.Mutex
	counters map[string]*metrics.TestCounter
}

func (e *eventCounters) get(event string) metrics.Counter {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.counters == nil {
		e.counters = make(map[string]*metrics.TestCounter)
	}
	c, ok := e.counters[event]
	if !ok {
		c = metrics.NewTestCounter()
		e.counters[event] = c
	}
	return c
}

func newMetrics() *periodic.Metrics {
	events := &eventCounters{}
	return &periodic.Metrics{
		Events:    events.get,
		Period:    metrics.NewTestGauge(),
		Runtime:   metrics.NewTestGauge(),
		StartTime: metrics.NewTestGauge(),
	}
}

func TestPeriodicExecution(t *testing.T) {
	m := newMetrics()
	cnt := make(chan struct{})
	fn := taskFunc(func(ctx context.Context) {
		cnt <- struct{}{}
	})
	want := 5
	p := 20 * time.Millisecond
	r := periodic.StartWithMetrics(fn, m, p, time.Hour)

	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := 0; v < want; v++ {
			<-cnt
		}
	}()
	xtest.AssertReadReturnsBefore(t, done, time.Second)
	assert.WithinDuration(t, start, time.Now(), time.Duration(want+2)*p)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		r.Stop()
	}()
	// A run may be blocked on the channel while Stop is called.
	go func() {
		for {
			select {
			case <-cnt:
			case <-stopped:
				return
			}
		}
	}()
	xtest.AssertReadReturnsBefore(t, stopped, 2*time.Second)

	assert.Equal(t, float64(1), metrics.CounterValue(m.Events(periodic.EventStop)))
	assert.Equal(t, float64(0), metrics.CounterValue(m.Events(periodic.EventKill)))
	assert.Equal(t, p.Seconds(), metrics.GaugeValue(m.Period))
}

func TestKillCancelsRunningTask(t *testing.T) {
	m := newMetrics()
	started, errChan := make(chan struct{}), make(chan error, 1)
	p := 10 * time.Millisecond
	fn := taskFunc(func(ctx context.Context) {
		select {
		case <-started:
		default:
			close(started)
		}
		<-ctx.Done()
		select {
		case errChan <- ctx.Err():
		default:
		}
	})
	r := periodic.StartWithMetrics(fn, m, p, time.Hour)
	xtest.AssertReadReturnsBefore(t, started, time.Second)

	killed := make(chan struct{})
	go func() {
		defer close(killed)
		r.Kill()
	}()
	xtest.AssertReadReturnsBefore(t, killed, time.Second)
	assert.Equal(t, context.Canceled, <-errChan)
	assert.Equal(t, float64(1), metrics.CounterValue(m.Events(periodic.EventKill)))
	assert.Equal(t, float64(0), metrics.CounterValue(m.Events(periodic.EventStop)))
}

func TestTaskTimeout(t *testing.T) {
	errChan := make(chan error, 1)
	fn := taskFunc(func(ctx context.Context) {
		<-ctx.Done()
		select {
		case errChan <- ctx.Err():
		default:
		}
	})
	r := periodic.Start(fn, time.Hour, 10*time.Millisecond)
	defer r.Kill()

	select {
	case err := <-errChan:
		assert.Equal(t, context.DeadlineExceeded, err)
	case <-time.After(time.Second):
		t.Fatal("task context did not time out")
	}
}

func TestTriggerRun(t *testing.T) {
	m := newMetrics()
	cnt := make(chan struct{}, 10)
	fn := taskFunc(func(ctx context.Context) {
		cnt <- struct{}{}
	})
	r := periodic.StartWithMetrics(fn, m, time.Hour, time.Hour)
	defer r.Stop()

	<-cnt
	r.TriggerRun()
	select {
	case <-cnt:
	case <-time.After(time.Second):
		t.Fatal("triggered run did not happen")
	}
	assert.Equal(t, float64(1), metrics.CounterValue(m.Events(periodic.EventTrigger)))
}

func TestFunc(t *testing.T) {
	ran := make(chan struct{}, 1)
	f := periodic.Func{TaskName: "func", Task: func(context.Context) { ran <- struct{}{} }}
	assert.Equal(t, "func", f.Name())
	r := periodic.Start(f, time.Hour, time.Hour)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run on start")
	}
	r.Stop()
}
