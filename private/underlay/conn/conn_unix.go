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

//go:build linux || darwin

package conn

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/underlay/sockctrl"
)

// Sender is a send-only multicast socket.
type Sender struct {
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
	ttl   int

	mtx    sync.Mutex
	closed bool
}

// NewSender opens a UDP socket on an ephemeral port and configures it for
// sending multicast. The TTL is read back after setting it, and a mismatch
// is an error. The socket joins no group.
func NewSender(cfg SenderConfig) (*Sender, error) {
	if cfg.TTL < 1 || cfg.TTL > 255 {
		return nil, serrors.New("multicast TTL out of range", "ttl", cfg.TTL)
	}
	c, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, serrors.Wrap("opening sender socket", err)
	}
	s := &Sender{conn: c, pconn: ipv4.NewPacketConn(c)}
	if err := s.configure(cfg); err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sender) configure(cfg SenderConfig) error {
	if err := s.pconn.SetMulticastTTL(cfg.TTL); err != nil {
		return serrors.Wrap("setting multicast TTL", err, "ttl", cfg.TTL)
	}
	ttl, err := s.pconn.MulticastTTL()
	if err != nil {
		return serrors.Wrap("reading multicast TTL", err)
	}
	if ttl != cfg.TTL {
		return serrors.New("multicast TTL not applied", "expected", cfg.TTL, "actual", ttl)
	}
	s.ttl = ttl
	if err := s.pconn.SetMulticastLoopback(!cfg.DisableLoopback); err != nil {
		return serrors.Wrap("setting multicast loopback", err,
			"loopback", !cfg.DisableLoopback)
	}
	if cfg.Interface != nil {
		if err := s.pconn.SetMulticastInterface(cfg.Interface); err != nil {
			return serrors.Wrap("setting multicast interface", err,
				"interface", cfg.Interface.Name)
		}
	}
	return nil
}

// WriteTo sends b as a single datagram to dst.
func (s *Sender) WriteTo(b []byte, dst netip.AddrPort) (int, error) {
	return s.conn.WriteToUDPAddrPort(b, dst)
}

// MulticastTTL returns the TTL currently set on the socket.
func (s *Sender) MulticastTTL() (int, error) {
	return s.pconn.MulticastTTL()
}

// MulticastLoopback reports whether multicast loopback is enabled.
func (s *Sender) MulticastLoopback() (bool, error) {
	return s.pconn.MulticastLoopback()
}

// LocalAddr returns the address the socket is bound to.
func (s *Sender) LocalAddr() netip.AddrPort {
	return s.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Close closes the socket. Closing twice is a no-op.
func (s *Sender) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

type membership struct {
	group netip.Addr
	index int
}

// Receiver is a multicast receiving socket.
type Receiver struct {
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
	oob   []byte
	meta  ReadMeta

	mtx    sync.Mutex
	groups map[membership]*net.Interface
	closed bool
}

// NewReceiver binds a UDP socket to the wildcard address on cfg.Port. The
// port can be shared with other receivers on the same host.
func NewReceiver(ctx context.Context, cfg ReceiverConfig) (*Receiver, error) {
	lc := net.ListenConfig{Control: sockctrl.ListenControl(sockctrl.ReuseOptions...)}
	laddr := netip.AddrPortFrom(netip.IPv4Unspecified(), cfg.Port).String()
	pc, err := lc.ListenPacket(ctx, "udp4", laddr)
	if err != nil {
		return nil, serrors.Wrap("binding receiver socket", err, "address", laddr)
	}
	c := pc.(*net.UDPConn)
	r := &Receiver{
		conn:   c,
		pconn:  ipv4.NewPacketConn(c),
		oob:    make([]byte, oobSize),
		groups: make(map[membership]*net.Interface),
	}
	if err := r.configure(cfg); err != nil {
		c.Close()
		return nil, err
	}
	return r, nil
}

func (r *Receiver) configure(cfg ReceiverConfig) error {
	if err := enableDropReporting(r.conn); err != nil {
		return err
	}
	if cfg.ReceiveBufferSize == 0 {
		return nil
	}
	before, err := sockctrl.GetsockoptInt(r.conn, unix.SOL_SOCKET, unix.SO_RCVBUF)
	if err != nil {
		return serrors.Wrap("reading SO_RCVBUF (before)", err)
	}
	if err := r.conn.SetReadBuffer(cfg.ReceiveBufferSize); err != nil {
		return serrors.Wrap("setting receive buffer size", err,
			"size", cfg.ReceiveBufferSize)
	}
	after, err := sockctrl.GetsockoptInt(r.conn, unix.SOL_SOCKET, unix.SO_RCVBUF)
	if err != nil {
		return serrors.Wrap("reading SO_RCVBUF (after)", err)
	}
	if after < cfg.ReceiveBufferSize {
		log.Info("Receive buffer size smaller than requested",
			"expected", cfg.ReceiveBufferSize, "actual", after, "before", before)
	}
	return nil
}

// JoinGroup joins group on ifi, or on the interface chosen by the kernel if
// ifi is nil. Joining a group that was already joined on the same interface
// is a no-op.
func (r *Receiver) JoinGroup(group netip.Addr, ifi *net.Interface) error {
	if err := checkGroup(group); err != nil {
		return err
	}
	m := membership{group: group}
	if ifi != nil {
		m.index = ifi.Index
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.closed {
		return serrors.Wrap("joining group", net.ErrClosed, "group", group)
	}
	if _, ok := r.groups[m]; ok {
		return nil
	}
	err := r.pconn.JoinGroup(ifi, &net.UDPAddr{IP: group.AsSlice()})
	if err != nil {
		return serrors.Wrap("joining multicast group", err,
			"group", group, "interface", ifName(ifi))
	}
	r.groups[m] = ifi
	return nil
}

// LeaveGroup leaves a group joined with JoinGroup. Leaving a group that is
// not joined is a no-op.
func (r *Receiver) LeaveGroup(group netip.Addr, ifi *net.Interface) error {
	m := membership{group: group}
	if ifi != nil {
		m.index = ifi.Index
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.groups[m]; !ok {
		return nil
	}
	delete(r.groups, m)
	if err := r.pconn.LeaveGroup(ifi, &net.UDPAddr{IP: group.AsSlice()}); err != nil {
		return serrors.Wrap("leaving multicast group", err,
			"group", group, "interface", ifName(ifi))
	}
	return nil
}

// Groups returns the number of joined memberships.
func (r *Receiver) Groups() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.groups)
}

// Read reads one datagram into b. The returned ReadMeta is only valid until
// the next call to Read. Read must not be called concurrently.
func (r *Receiver) Read(b []byte) (int, ReadMeta, error) {
	r.meta.reset()
	n, oobn, flags, src, err := r.conn.ReadMsgUDPAddrPort(b, r.oob)
	r.meta.Recvd = time.Now()
	if err != nil {
		return n, r.meta, err
	}
	r.meta.Src = netip.AddrPortFrom(src.Addr().Unmap(), src.Port())
	r.meta.Truncated = flags&unix.MSG_TRUNC != 0
	if oobn > 0 {
		parseCmsg(r.oob[:oobn], &r.meta)
	}
	return n, r.meta, nil
}

// SetReadDeadline sets the deadline of pending and future reads. It may be
// called concurrently with Read.
func (r *Receiver) SetReadDeadline(t time.Time) error {
	return r.conn.SetReadDeadline(t)
}

// LocalAddr returns the address the socket is bound to.
func (r *Receiver) LocalAddr() netip.AddrPort {
	return r.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Close leaves all joined groups and closes the socket. Closing twice is a
// no-op.
func (r *Receiver) Close() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var errs serrors.List
	for m, ifi := range r.groups {
		err := r.pconn.LeaveGroup(ifi, &net.UDPAddr{IP: m.group.AsSlice()})
		if err != nil {
			errs = append(errs, serrors.Wrap("leaving multicast group", err,
				"group", m.group, "interface", ifName(ifi)))
		}
		delete(r.groups, m)
	}
	if err := r.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	return errs.ToError()
}
