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

//go:build !linux && !darwin

package conn

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// Sender is a send-only multicast socket.
type Sender struct{}

// NewSender returns ErrNotSupported on this platform.
func NewSender(_ SenderConfig) (*Sender, error) {
	return nil, ErrNotSupported
}

func (s *Sender) WriteTo(_ []byte, _ netip.AddrPort) (int, error) {
	return 0, ErrNotSupported
}

func (s *Sender) MulticastTTL() (int, error) { return 0, ErrNotSupported }
func (s *Sender) MulticastLoopback() (bool, error) { return false, ErrNotSupported }
func (s *Sender) LocalAddr() netip.AddrPort { return netip.AddrPort{} }
func (s *Sender) Close() error { return nil }

// Receiver is a multicast receiving socket.
type Receiver struct{}

// NewReceiver returns ErrNotSupported on this platform.
func NewReceiver(_ context.Context, _ ReceiverConfig) (*Receiver, error) {
	return nil, ErrNotSupported
}

func (r *Receiver) JoinGroup(_ netip.Addr, _ *net.Interface) error { return ErrNotSupported }
func (r *Receiver) LeaveGroup(_ netip.Addr, _ *net.Interface) error { return ErrNotSupported }
func (r *Receiver) Groups() int { return 0 }

func (r *Receiver) Read(_ []byte) (int, ReadMeta, error) {
	return 0, ReadMeta{}, ErrNotSupported
}

func (r *Receiver) SetReadDeadline(_ time.Time) error { return ErrNotSupported }
func (r *Receiver) LocalAddr() netip.AddrPort { return netip.AddrPort{} }
func (r *Receiver) Close() error { return nil }
