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

package stream

import (
	"context"
	"time"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/private/periodic"
)

// Status is a periodic task that logs the running counters of a producer or
// consumer together with the frame rate since the previous report. The first
// run only records the baseline.
type Status struct {
	// Role is the role reported in the log, e.g. "producer".
	Role string
	// Logger is used for the report. If nil, the root logger is used.
	Logger log.Logger
	// Snapshot returns the number of frames so far and additional counters
	// as log context.
	Snapshot func() (uint64, []any)
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	started  bool
	last     uint64
	lastTime time.Time
}

func (s *Status) Name() string {
	return s.Role + "_status"
}

func (s *Status) Run(context.Context) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now()
	frames, extra := s.Snapshot()
	if !s.started {
		s.started = true
		s.last, s.lastTime = frames, t
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = log.Root()
	}
	ctx := append([]any{
		"role", s.Role,
		"frames", frames,
		"rate", Rate(frames-s.last, t.Sub(s.lastTime).Seconds()),
	}, extra...)
	logger.Info("Stream status", ctx...)
	s.last, s.lastTime = frames, t
}

// StartStatus runs s every interval until the returned function is called.
// If interval is not positive, nothing is started.
func StartStatus(s *Status, interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}
	r := periodic.Start(s, interval, interval)
	return r.Kill
}
