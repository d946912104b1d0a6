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

// Package conn implements the multicast UDP sockets of the IPTV
// applications.
//
// A Sender is a send-only socket with the multicast TTL, loopback and
// outgoing interface configured. A Receiver is bound to the wildcard address
// on the stream port, shares that port with other receivers on the host and
// joins multicast groups. Reads report the source and whether the datagram
// was truncated.
package conn

import (
	"errors"
	"net"
	"net/netip"
	"syscall"
	"time"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

// ErrNotSupported is returned on platforms without multicast socket support.
var ErrNotSupported = errors.New("multicast sockets not supported on this platform")

// SenderConfig customizes a Sender.
type SenderConfig struct {
	// TTL is the IP_MULTICAST_TTL of outgoing datagrams. It must be in
	// [1, 255].
	TTL int
	// DisableLoopback stops the kernel from delivering sent datagrams to
	// receivers on the same host.
	DisableLoopback bool
	// Interface is the outgoing interface. If nil, the kernel picks it from
	// the routing table.
	Interface *net.Interface
}

// ReceiverConfig customizes a Receiver.
type ReceiverConfig struct {
	// Port is the UDP port to bind on the wildcard address. 0 binds an
	// ephemeral port.
	Port uint16
	// ReceiveBufferSize is the requested size of the operating system
	// receive buffer, in bytes. If 0, the system default is kept.
	ReceiveBufferSize int
}

// ReadMeta contains extra information about a read.
type ReadMeta struct {
	// Src is the address the datagram was sent from.
	Src netip.AddrPort
	// Truncated is set if the datagram was longer than the read buffer.
	Truncated bool
	// RcvOvfl is the number of datagrams the kernel dropped on this socket
	// because its receive buffer was full. It is only reported on Linux.
	RcvOvfl uint32
	// Recvd is the time the read returned.
	Recvd time.Time
}

func (m *ReadMeta) reset() {
	*m = ReadMeta{}
}

// IsTransient returns whether err is a send or receive error that may
// disappear when the operation is retried.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, syscall.EINTR),
		errors.Is(err, syscall.EAGAIN),
		errors.Is(err, syscall.ENOBUFS):
		return true
	case serrors.IsTimeout(err):
		return false
	default:
		return serrors.IsTemporary(err)
	}
}

func checkGroup(group netip.Addr) error {
	if !group.Is4() || !group.IsMulticast() {
		return serrors.New("not an IPv4 multicast group", "group", group)
	}
	return nil
}

func ifName(ifi *net.Interface) string {
	if ifi == nil {
		return "any"
	}
	return ifi.Name
}
