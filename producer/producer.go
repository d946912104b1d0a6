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

// Package producer implements the IPTV frame producer. It sends one
// timestamped text frame per interval to a multicast group until its
// context is cancelled.
package producer

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

// Writer sends datagrams. It is implemented by conn.Sender.
type Writer interface {
	WriteTo(b []byte, dst netip.AddrPort) (int, error)
}

// Config configures a producer run.
type Config struct {
	// Group is the multicast group and port the frames are sent to.
	Group netip.AddrPort
	// TTL is the multicast TTL of the frames.
	TTL int
	// Interval is the pause after every frame.
	Interval time.Duration
	// LogEveryN is the number of frames between progress logs. If not
	// positive, stream.DefaultLogEveryN is used.
	LogEveryN int
	// DisableLoopback stops the frames from being delivered to consumers on
	// the same host.
	DisableLoopback bool
	// Interface is the outgoing interface. If nil, the kernel picks it.
	Interface *net.Interface
	// StatusInterval is the period of the status report. 0 disables it.
	StatusInterval time.Duration
	// Metrics is optional.
	Metrics *Metrics
	// Now returns the frame timestamp. If nil, time.Now is used.
	Now func() time.Time
	// UpdateHandler, if set, is called with every frame that is logged.
	UpdateHandler func(frame.Frame)
}

// Stats are the counters of a producer run.
type Stats struct {
	Sent uint64 `json:"sent" yaml:"sent"`
}

// Run opens a multicast sender and streams frames on it until ctx is
// cancelled. Errors opening the socket and persistent send errors end the
// run. The socket is closed on return.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	sender, err := conn.NewSender(conn.SenderConfig{
		TTL:             cfg.TTL,
		DisableLoopback: cfg.DisableLoopback,
		Interface:       cfg.Interface,
	})
	if err != nil {
		return Stats{}, serrors.Wrap("opening multicast sender", err,
			"group", cfg.Group, "ttl", cfg.TTL, "interface", ifName(cfg.Interface))
	}
	defer func() {
		if err := sender.Close(); err != nil {
			log.FromCtx(ctx).Error("Closing multicast sender", "err", err)
		}
	}()
	log.FromCtx(ctx).Info("Starting IPTV stream",
		"group", cfg.Group, "ttl", cfg.TTL, "interval", cfg.Interval,
		"local_addr", sender.LocalAddr())
	return Stream(ctx, sender, cfg)
}

// Stream sends frames with increasing sequence numbers, starting at 0, to
// cfg.Group on w. Cancellation is checked before every frame, so a frame is
// either sent completely or not at all. A transient send error is retried
// once.
func Stream(ctx context.Context, w Writer, cfg Config) (Stats, error) {
	logger := log.FromCtx(ctx)
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	var stats Stats
	var sent, retries atomic.Uint64
	stop := stream.StartStatus(&stream.Status{
		Role:   "producer",
		Logger: logger,
		Snapshot: func() (uint64, []any) {
			return sent.Load(), []any{"retries", retries.Load()}
		},
	}, cfg.StatusInterval)
	defer stop()

	buf := make([]byte, 0, 64)
	for seq := uint64(0); ; seq++ {
		if ctx.Err() != nil {
			return stats, nil
		}
		f := frame.New(seq, now())
		buf = f.AppendTo(buf[:0])
		retried, err := send(w, buf, cfg.Group)
		if retried {
			retries.Add(1)
			cfg.Metrics.retried()
		}
		if err != nil {
			cfg.Metrics.failed()
			return stats, serrors.Wrap("sending frame", err, "seq", seq, "group", cfg.Group)
		}
		stats.Sent++
		sent.Store(stats.Sent)
		cfg.Metrics.sent(seq, len(buf))
		if stream.ShouldLog(seq, cfg.LogEveryN) {
			logger.Info("Sent frame", "seq", seq, "payload", string(buf))
			if cfg.UpdateHandler != nil {
				cfg.UpdateHandler(f)
			}
		}
		if !sleep(ctx, cfg.Interval) {
			return stats, nil
		}
	}
}

// send writes b to dst and retries once if the first attempt fails with a
// transient error.
func send(w Writer, b []byte, dst netip.AddrPort) (bool, error) {
	_, err := w.WriteTo(b, dst)
	if err == nil || !conn.IsTransient(err) {
		return false, err
	}
	_, err = w.WriteTo(b, dst)
	return true, err
}

// sleep waits for d and returns false if ctx is done first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func ifName(ifi *net.Interface) string {
	if ifi == nil {
		return "any"
	}
	return ifi.Name
}
