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

// Package consumer implements the IPTV frame consumer. It joins a multicast
// group, counts the datagrams it receives and logs every n-th frame until
// its context is cancelled.
package consumer

import (
	"context"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/scionproto/mcastlab/pkg/frame"
	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/stream"
	"github.com/scionproto/mcastlab/private/underlay/conn"
)

// DefaultBufferSize is the default size of the read buffer. Longer datagrams
// are truncated.
const DefaultBufferSize = 1024

// Reader receives datagrams. It is implemented by conn.Receiver.
type Reader interface {
	Read(b []byte) (int, conn.ReadMeta, error)
	// SetReadDeadline must unblock a pending Read when called concurrently.
	SetReadDeadline(t time.Time) error
}

// Config configures a consumer run.
type Config struct {
	// Group is the multicast group to join and the port to bind.
	Group netip.AddrPort
	// Interface is the interface to join the group on. If nil, the kernel
	// picks it.
	Interface *net.Interface
	// BufferSize is the size of the read buffer. If not positive,
	// DefaultBufferSize is used.
	BufferSize int
	// SocketReceiveBuffer is the requested size of the kernel receive
	// buffer. If 0, the system default is kept.
	SocketReceiveBuffer int
	// LogEveryN is the number of frames between progress logs. If not
	// positive, stream.DefaultLogEveryN is used.
	LogEveryN int
	// StatusInterval is the period of the status report. 0 disables it.
	StatusInterval time.Duration
	// Metrics is optional.
	Metrics *Metrics
	// UpdateHandler, if set, is called for every frame that is logged.
	UpdateHandler func(Update)
}

// Update describes a logged frame.
type Update struct {
	// Count is the number of datagrams received so far, including this one.
	Count uint64
	// Payload is the frame text.
	Payload string
}

// Stats are the counters of a consumer run.
type Stats struct {
	// Received counts every datagram, whatever its content.
	Received uint64 `json:"received" yaml:"received"`
	// Bytes is the number of payload bytes read.
	Bytes uint64 `json:"bytes" yaml:"bytes"`
	// Truncated counts datagrams longer than the read buffer.
	Truncated uint64 `json:"truncated" yaml:"truncated"`
	// DecodeErrors counts logged frames that were not valid UTF-8.
	DecodeErrors uint64 `json:"decode_errors" yaml:"decode_errors"`
	// Malformed counts datagrams that are not frames.
	Malformed uint64 `json:"malformed" yaml:"malformed"`
	// InOrder counts frames with a sequence number higher than all before.
	InOrder uint64 `json:"in_order" yaml:"in_order"`
	// OutOfOrder counts frames with a sequence number lower than the
	// highest seen.
	OutOfOrder uint64 `json:"out_of_order" yaml:"out_of_order"`
	// Duplicates counts frames whose sequence number is among the last
	// DuplicateWindow sequence numbers received.
	Duplicates uint64 `json:"duplicates" yaml:"duplicates"`
	// KernelDrops is the number of datagrams the kernel dropped because the
	// socket buffer was full, as far as reported.
	KernelDrops uint64 `json:"kernel_drops" yaml:"kernel_drops"`
}

// Run binds a multicast receiver on the group port, joins the group and
// listens until ctx is cancelled. The group is left and the socket closed on
// return.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	logger := log.FromCtx(ctx)
	r, err := conn.NewReceiver(ctx, conn.ReceiverConfig{
		Port:              cfg.Group.Port(),
		ReceiveBufferSize: cfg.SocketReceiveBuffer,
	})
	if err != nil {
		return Stats{}, serrors.Wrap("opening multicast receiver", err, "port", cfg.Group.Port())
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.Error("Closing multicast receiver", "err", err)
		}
	}()
	if err := r.JoinGroup(cfg.Group.Addr(), cfg.Interface); err != nil {
		return Stats{}, serrors.Wrap("joining multicast group", err,
			"group", cfg.Group.Addr(), "interface", ifName(cfg.Interface))
	}
	logger.Info("Joined multicast group",
		"group", cfg.Group.Addr(), "interface", ifName(cfg.Interface),
		"local_addr", r.LocalAddr())

	stats, err := Listen(ctx, r, cfg)
	if leaveErr := r.LeaveGroup(cfg.Group.Addr(), cfg.Interface); leaveErr != nil {
		logger.Error("Leaving multicast group", "group", cfg.Group.Addr(), "err", leaveErr)
	}
	return stats, err
}

// Listen reads datagrams from r until ctx is cancelled. Every datagram is
// counted. Every n-th one is decoded as text and logged; a decoding error is
// logged and counted but does not stop the loop. A transient read error is
// retried once.
func Listen(ctx context.Context, r Reader, cfg Config) (Stats, error) {
	logger := log.FromCtx(ctx)
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	// A read deadline in the past unblocks the pending read on cancellation.
	stopUnblock := context.AfterFunc(ctx, func() {
		if err := r.SetReadDeadline(time.Unix(1, 0)); err != nil {
			logger.Error("Unblocking read", "err", err)
		}
	})
	defer stopUnblock()

	var stats Stats
	var received, outOfOrder, malformed atomic.Uint64
	stop := stream.StartStatus(&stream.Status{
		Role:   "consumer",
		Logger: logger,
		Snapshot: func() (uint64, []any) {
			return received.Load(), []any{
				"out_of_order", outOfOrder.Load(),
				"malformed", malformed.Load(),
			}
		},
	}, cfg.StatusInterval)
	defer stop()

	seqs, err := newSequenceTracker(DuplicateWindow)
	if err != nil {
		return stats, err
	}
	buf := make([]byte, bufSize)
	for {
		if ctx.Err() != nil {
			return stats, nil
		}
		n, meta, retried, err := read(r, buf)
		if retried {
			cfg.Metrics.retried()
		}
		if err != nil {
			if ctx.Err() != nil {
				return stats, nil
			}
			return stats, serrors.Wrap("receiving frame", err, "group", cfg.Group)
		}
		payload := buf[:n]
		stats.Received++
		stats.Bytes += uint64(n)
		received.Store(stats.Received)
		cfg.Metrics.received(n)
		if meta.Truncated {
			stats.Truncated++
			cfg.Metrics.truncated()
			logger.Debug("Truncated frame", "count", stats.Received, "buffer_size", bufSize)
		}
		if drops := uint64(meta.RcvOvfl); drops > stats.KernelDrops {
			stats.KernelDrops = drops
			cfg.Metrics.kernelDrops(drops)
		}

		state := seqs.classify(payload)
		stats.count(state)
		cfg.Metrics.state(state)
		switch state {
		case StateOutOfOrder:
			outOfOrder.Add(1)
		case StateMalformed:
			malformed.Add(1)
		}

		if !stream.ShouldLog(stats.Received, cfg.LogEveryN) {
			continue
		}
		text, err := frame.Text(payload)
		if err != nil {
			stats.DecodeErrors++
			cfg.Metrics.decodeError()
			logger.Error("Decoding frame", "count", stats.Received, "src", meta.Src, "err", err)
			continue
		}
		logger.Info("Received frame", "count", stats.Received, "payload", text)
		if cfg.UpdateHandler != nil {
			cfg.UpdateHandler(Update{Count: stats.Received, Payload: text})
		}
	}
}

// read reads one datagram and retries once if the first attempt fails with a
// transient error.
func read(r Reader, b []byte) (int, conn.ReadMeta, bool, error) {
	n, meta, err := r.Read(b)
	if err == nil || !conn.IsTransient(err) {
		return n, meta, false, err
	}
	n, meta, err = r.Read(b)
	return n, meta, true, err
}

func (s *Stats) count(state State) {
	switch state {
	case StateInOrder:
		s.InOrder++
	case StateOutOfOrder:
		s.OutOfOrder++
	case StateDuplicate:
		s.Duplicates++
	case StateMalformed:
		s.Malformed++
	}
}

func ifName(ifi *net.Interface) string {
	if ifi == nil {
		return "any"
	}
	return ifi.Name
}
