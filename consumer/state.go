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
	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/scionproto/mcastlab/pkg/frame"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

// DuplicateWindow is the number of recently received sequence numbers that
// are remembered to detect duplicates.
const DuplicateWindow = 1024

// State is the classification of a received datagram relative to the frames
// received before it.
type State int

const (
	// StateInOrder is a frame with a sequence number higher than all before.
	// The first frame is always in order.
	StateInOrder State = iota
	// StateOutOfOrder is a frame with a sequence number lower than the
	// highest seen that was not received recently. This includes the frames
	// of a restarted producer until it passes the previous maximum.
	StateOutOfOrder
	// StateDuplicate is a frame whose sequence number is among the last
	// DuplicateWindow ones received.
	StateDuplicate
	// StateMalformed is a datagram that is not a frame.
	StateMalformed
)

func (s State) String() string {
	switch s {
	case StateInOrder:
		return "in_order"
	case StateOutOfOrder:
		return "out_of_order"
	case StateDuplicate:
		return "duplicate"
	case StateMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// sequenceTracker remembers the highest sequence number and the recently
// received ones.
type sequenceTracker struct {
	seen    bool
	highest uint64
	recent  *arc.ARCCache[uint64, struct{}]
}

func newSequenceTracker(window int) (*sequenceTracker, error) {
	recent, err := arc.NewARC[uint64, struct{}](window)
	if err != nil {
		return nil, serrors.Wrap("creating duplicate window", err, "size", window)
	}
	return &sequenceTracker{recent: recent}, nil
}

func (t *sequenceTracker) classify(payload []byte) State {
	f, err := frame.Decode(payload)
	if err != nil {
		return StateMalformed
	}
	if t.recent.Contains(f.Seq) {
		return StateDuplicate
	}
	t.recent.Add(f.Seq, struct{}{})
	if !t.seen || f.Seq > t.highest {
		t.seen = true
		t.highest = f.Seq
		return StateInOrder
	}
	return StateOutOfOrder
}
