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

// Package processmetrics exports process level metrics that the standard
// prometheus process collector lacks. Only Linux is supported, elsewhere
// Init does nothing.
//
// The collector reports the time the threads of the process spent waiting
// for block IO and the number of involuntary context switches. For a
// sender pacing frames with a sleep, a rising preemption count explains
// cadence jitter better than the frame timestamps do.
package processmetrics

import (
	"os"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"

	"github.com/scionproto/mcastlab/pkg/private/prom"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

var (
	iowaitTime = prometheus.NewDesc(
		"process_iowait_seconds_total",
		"IO wait time accumulated by all threads of the process.",
		nil, nil,
	)
	preemptedCount = prometheus.NewDesc(
		"process_preempted_count_total",
		"Number of involuntary context switches of the process.",
		nil, nil,
	)
	threadCount = prometheus.NewDesc(
		"process_os_threads",
		"Number of OS threads of the process.",
		nil, nil,
	)
)

type collector struct {
	fs  procfs.FS
	pid int
}

type sample struct {
	iowaitTicks uint64
	threads     int
	nivcsw      float64
}

func (c *collector) read() (sample, error) {
	threads, err := c.fs.AllThreads(c.pid)
	if err != nil {
		return sample{}, serrors.Wrap("listing threads", err, "pid", c.pid)
	}
	s := sample{threads: len(threads)}
	for _, p := range threads {
		stat, err := p.Stat()
		if err != nil {
			// Threads may exit between listing and reading.
			continue
		}
		s.iowaitTicks += stat.DelayAcctBlkIOTicks
	}
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return sample{}, serrors.Wrap("getrusage", err)
	}
	s.nivcsw = float64(ru.Nivcsw)
	return s, nil
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s, err := c.read()
	if err != nil {
		return
	}
	// Block IO delay is accounted in clock ticks of 1/100s.
	ch <- prometheus.MustNewConstMetric(iowaitTime, prometheus.CounterValue,
		float64(s.iowaitTicks)/100)
	ch <- prometheus.MustNewConstMetric(preemptedCount, prometheus.CounterValue,
		s.nivcsw)
	ch <- prometheus.MustNewConstMetric(threadCount, prometheus.GaugeValue,
		float64(s.threads))
}

// Init registers the process collector with reg. It fails if /proc cannot be
// read.
func Init(reg prometheus.Registerer) error {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return serrors.Wrap("opening procfs", err)
	}
	c := &collector{fs: fs, pid: os.Getpid()}
	if _, err := c.read(); err != nil {
		return err
	}
	prom.SafeRegisterWith(reg, c)
	return nil
}
