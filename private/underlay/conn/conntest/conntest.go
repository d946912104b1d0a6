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

// Package conntest provides an in-memory multicast fabric for tests of the
// producer and consumer run loops, and helpers for tests on real sockets.
package conntest

import (
	"context"
	"net/netip"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/scionproto/mcastlab/private/underlay/conn"
)

type datagram struct {
	payload []byte
	src     netip.AddrPort
}

// Fabric delivers every datagram written to a group address to all
// subscribers of that address at the time of the write. Subscribers that
// join later do not see earlier datagrams. A subscriber with a full queue
// drops the datagram, like a socket with a full receive buffer.
type Fabric struct {
	// Src is reported as the source of all datagrams.
	Src netip.AddrPort

	mtx     sync.Mutex
	subs    map[netip.AddrPort][]*Subscriber
	writes  [][]byte
	failErr []error
	written chan struct{}
}

// NewFabric creates an empty fabric.
func NewFabric() *Fabric {
	return &Fabric{
		Src:     netip.MustParseAddrPort("192.0.2.1:40000"),
		subs:    make(map[netip.AddrPort][]*Subscriber),
		written: make(chan struct{}, 1024),
	}
}

// WriteTo fans b out to the subscribers of dst. If failures are queued with
// FailWrites, the next write returns the first queued error instead.
func (f *Fabric) WriteTo(b []byte, dst netip.AddrPort) (int, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if len(f.failErr) > 0 {
		err := f.failErr[0]
		f.failErr = f.failErr[1:]
		return 0, err
	}
	payload := append([]byte(nil), b...)
	f.writes = append(f.writes, payload)
	for _, s := range f.subs[dst] {
		s.deliver(datagram{payload: payload, src: f.Src})
	}
	select {
	case f.written <- struct{}{}:
	default:
	}
	return len(b), nil
}

// FailWrites makes the next len(errs) writes fail with errs, in order.
func (f *Fabric) FailWrites(errs ...error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.failErr = append(f.failErr, errs...)
}

// Writes returns copies of all successfully written payloads in order.
func (f *Fabric) Writes() [][]byte {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return append([][]byte(nil), f.writes...)
}

// Written is signalled after every successful write. Signals are dropped if
// nobody reads them.
func (f *Fabric) Written() <-chan struct{} {
	return f.written
}

// Subscribe creates a subscriber of group with room for queue datagrams.
func (f *Fabric) Subscribe(group netip.AddrPort, queue int) *Subscriber {
	s := &Subscriber{
		fabric: f,
		group:  group,
		queue:  make(chan datagram, queue),
		wake:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.subs[group] = append(f.subs[group], s)
	return s
}

func (f *Fabric) unsubscribe(s *Subscriber) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	subs := f.subs[s.group]
	for i, other := range subs {
		if other == s {
			f.subs[s.group] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Subscriber receives the datagrams of one group. It implements the read
// side of a multicast socket, including read deadlines.
type Subscriber struct {
	fabric *Fabric
	group  netip.AddrPort
	queue  chan datagram

	mtx       sync.Mutex
	deadline  time.Time
	wake      chan struct{}
	dropped   int
	closeOnce sync.Once
	closed    chan struct{}
}

func (s *Subscriber) deliver(d datagram) {
	select {
	case <-s.closed:
	case s.queue <- d:
	default:
		s.mtx.Lock()
		s.dropped++
		s.mtx.Unlock()
	}
}

// Inject queues payload as if it had been received from src. It blocks if
// the queue is full.
func (s *Subscriber) Inject(payload []byte, src netip.AddrPort) {
	s.queue <- datagram{payload: append([]byte(nil), payload...), src: src}
}

// Read blocks until a datagram is available, the read deadline passes or
// the subscriber is closed. Datagrams longer than b are truncated and
// reported as such.
func (s *Subscriber) Read(b []byte) (int, conn.ReadMeta, error) {
	for {
		s.mtx.Lock()
		deadline, wake := s.deadline, s.wake
		s.mtx.Unlock()

		var timeout <-chan time.Time
		var timer *time.Timer
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				return 0, conn.ReadMeta{}, os.ErrDeadlineExceeded
			}
			timer = time.NewTimer(d)
			timeout = timer.C
		}
		n, meta, done, err := s.wait(b, timeout, wake)
		if timer != nil {
			timer.Stop()
		}
		if done {
			return n, meta, err
		}
	}
}

func (s *Subscriber) wait(b []byte, timeout <-chan time.Time,
	wake <-chan struct{}) (int, conn.ReadMeta, bool, error) {

	select {
	case d := <-s.queue:
		n := copy(b, d.payload)
		return n, conn.ReadMeta{
			Src:       d.src,
			Truncated: n < len(d.payload),
			Recvd:     time.Now(),
		}, true, nil
	case <-timeout:
		return 0, conn.ReadMeta{}, true, os.ErrDeadlineExceeded
	case <-s.closed:
		return 0, conn.ReadMeta{}, true, os.ErrClosed
	case <-wake:
		return 0, conn.ReadMeta{}, false, nil
	}
}

// SetReadDeadline sets the deadline of pending and future reads.
func (s *Subscriber) SetReadDeadline(t time.Time) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.deadline = t
	close(s.wake)
	s.wake = make(chan struct{})
	return nil
}

// Dropped returns the number of datagrams dropped because the queue was
// full.
func (s *Subscriber) Dropped() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.dropped
}

// Close unsubscribes from the fabric and fails pending reads.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() {
		s.fabric.unsubscribe(s)
		close(s.closed)
	})
	return nil
}

// RequireMulticastLoopback skips the test unless a datagram sent to group
// over a real socket is looped back to a receiver on this host. It returns
// the probing receiver, which has joined group and must be closed by the
// caller.
func RequireMulticastLoopback(t testing.TB, group netip.Addr) *conn.Receiver {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r, err := conn.NewReceiver(ctx, conn.ReceiverConfig{})
	if err != nil {
		t.Skipf("multicast receiver not available: %v", err)
	}
	if err := r.JoinGroup(group, nil); err != nil {
		r.Close()
		t.Skipf("joining multicast group not possible: %v", err)
	}
	s, err := conn.NewSender(conn.SenderConfig{TTL: 1})
	if err != nil {
		r.Close()
		t.Skipf("multicast sender not available: %v", err)
	}
	defer s.Close()

	dst := netip.AddrPortFrom(group, r.LocalAddr().Port())
	probe := []byte("probe")
	if _, err := s.WriteTo(probe, dst); err != nil {
		r.Close()
		t.Skipf("sending multicast not possible: %v", err)
	}
	if err := r.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
		r.Close()
		t.Fatalf("setting read deadline: %v", err)
	}
	buf := make([]byte, 64)
	n, _, err := r.Read(buf)
	if err != nil || string(buf[:n]) != string(probe) {
		r.Close()
		t.Skipf("multicast loopback not available: %v", err)
	}
	if err := r.SetReadDeadline(time.Time{}); err != nil {
		r.Close()
		t.Fatalf("clearing read deadline: %v", err)
	}
	return r
}
