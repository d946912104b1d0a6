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

// Package periodic runs a task at a fixed period in a background goroutine.
//
// The task is run once right after Start and then on every tick. A run that
// takes longer than the period delays the next run; runs never overlap.
package periodic

import (
	"context"
	"time"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/metrics"
)

// Events of a Runner, as passed to Metrics.Events.
const (
	EventStop    = "stop"
	EventKill    = "kill"
	EventTrigger = "trigger"
)

// Task is a task that is run periodically.
type Task interface {
	// Run runs the task. The context is cancelled when the timeout of the
	// run expires or the runner is killed.
	Run(context.Context)
	// Name returns the task name, used in logs.
	Name() string
}

// Func wraps a function as a Task.
type Func struct {
	TaskName string
	Task     func(context.Context)
}

func (f Func) Run(ctx context.Context) {
	f.Task(ctx)
}

func (f Func) Name() string {
	return f.TaskName
}

// Metrics of a Runner. All fields are optional.
type Metrics struct {
	// Events returns the counter of the given event.
	Events func(string) metrics.Counter
	// Period is set to the period in seconds on start.
	Period metrics.Gauge
	// Runtime is set to the duration of the last run in seconds.
	Runtime metrics.Gauge
	// StartTime is set to the Unix time of the last run start.
	StartTime metrics.Gauge
}

func (m *Metrics) event(name string) {
	if m == nil || m.Events == nil {
		return
	}
	metrics.CounterInc(m.Events(name))
}

// Runner runs a task periodically.
type Runner struct {
	task         Task
	ticker       *time.Ticker
	timeout      time.Duration
	stop         chan struct{}
	loopFinished chan struct{}
	ctx          context.Context
	cancelF      context.CancelFunc
	trigger      chan struct{}
	metrics      *Metrics
}

// Start creates and starts a new Runner that runs task every period. Each
// run gets a context with the given timeout.
func Start(task Task, period, timeout time.Duration) *Runner {
	return StartWithMetrics(task, nil, period, timeout)
}

// StartWithMetrics is like Start and reports to m.
func StartWithMetrics(task Task, m *Metrics, period, timeout time.Duration) *Runner {
	ctx, cancelF := context.WithCancel(context.Background())
	logger := log.New("debug_id", task.Name())
	ctx = log.CtxWith(ctx, logger)
	r := &Runner{
		task:         task,
		ticker:       time.NewTicker(period),
		timeout:      timeout,
		stop:         make(chan struct{}),
		loopFinished: make(chan struct{}),
		ctx:          ctx,
		cancelF:      cancelF,
		trigger:      make(chan struct{}),
		metrics:      m,
	}
	if m != nil {
		metrics.GaugeSet(m.Period, period.Seconds())
	}
	logger.Debug("Starting periodic task", "task", task.Name(), "period", period)
	go func() {
		defer log.HandlePanic()
		r.runLoop()
	}()
	return r
}

// Stop stops the runner and waits until a running task is finished. Stop
// must be called at most once, and not together with Kill.
func (r *Runner) Stop() {
	r.ticker.Stop()
	close(r.stop)
	<-r.loopFinished
	r.metrics.event(EventStop)
}

// Kill is like Stop, but also cancels the context of a running task.
func (r *Runner) Kill() {
	r.ticker.Stop()
	close(r.stop)
	r.cancelF()
	<-r.loopFinished
	r.metrics.event(EventKill)
}

// TriggerRun runs the task now, unless a run is in progress or the runner
// is stopped, in which case it waits for the run to finish first.
func (r *Runner) TriggerRun() {
	select {
	case <-r.stop:
		return
	case r.trigger <- struct{}{}:
		r.metrics.event(EventTrigger)
	}
}

func (r *Runner) runLoop() {
	defer close(r.loopFinished)
	defer r.cancelF()
	r.onTick()
	for {
		select {
		case <-r.stop:
			return
		case <-r.ticker.C:
			r.onTick()
		case <-r.trigger:
			r.onTick()
		}
	}
}

func (r *Runner) onTick() {
	select {
	case <-r.stop:
		return
	default:
	}
	ctx, cancelF := context.WithTimeout(r.ctx, r.timeout)
	defer cancelF()
	start := time.Now()
	r.task.Run(ctx)
	if r.metrics != nil {
		metrics.GaugeSet(r.metrics.StartTime, float64(start.Unix()))
		metrics.GaugeSet(r.metrics.Runtime, time.Since(start).Seconds())
	}
}
