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

package conn_test

import (
	"context"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/underlay/conn"
	"github.com/scionproto/mcastlab/private/underlay/conn/conntest"
)

func TestSenderTTL(t *testing.T) {
	s, err := conn.NewSender(conn.SenderConfig{TTL: 32})
	require.NoError(t, err)
	defer s.Close()

	ttl, err := s.MulticastTTL()
	require.NoError(t, err)
	assert.Equal(t, 32, ttl)

	loop, err := s.MulticastLoopback()
	require.NoError(t, err)
	assert.True(t, loop)
}

func TestSenderDisableLoopback(t *testing.T) {
	s, err := conn.NewSender(conn.SenderConfig{TTL: 1, DisableLoopback: true})
	require.NoError(t, err)
	defer s.Close()

	loop, err := s.MulticastLoopback()
	require.NoError(t, err)
	assert.False(t, loop)
}

func TestSenderInvalidTTL(t *testing.T) {
	for _, ttl := range []int{0, -1, 256} {
		_, err := conn.NewSender(conn.SenderConfig{TTL: ttl})
		assert.Error(t, err, "ttl %d", ttl)
	}
}

func TestSenderCloseTwice(t *testing.T) {
	s, err := conn.NewSender(conn.SenderConfig{TTL: 1})
	require.NoError(t, err)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestReceiverSharesPort(t *testing.T) {
	ctx := context.Background()
	first, err := conn.NewReceiver(ctx, conn.ReceiverConfig{ReceiveBufferSize: 1 << 16})
	require.NoError(t, err)
	defer first.Close()

	port := first.LocalAddr().Port()
	second, err := conn.NewReceiver(ctx, conn.ReceiverConfig{Port: port})
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, port, second.LocalAddr().Port())
}

func TestReceiverRejectsNonMulticast(t *testing.T) {
	r, err := conn.NewReceiver(context.Background(), conn.ReceiverConfig{})
	require.NoError(t, err)
	defer r.Close()

	assert.Error(t, r.JoinGroup(netip.MustParseAddr("10.0.0.1"), nil))
	assert.Error(t, r.JoinGroup(netip.MustParseAddr("ff02::1"), nil))
	assert.Zero(t, r.Groups())
}

func TestReceiverReadDeadline(t *testing.T) {
	r, err := conn.NewReceiver(context.Background(), conn.ReceiverConfig{})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.SetReadDeadline(time.Now().Add(20*time.Millisecond)))
	_, _, err = r.Read(make([]byte, 16))
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.True(t, serrors.IsTimeout(err))
	assert.False(t, conn.IsTransient(err))
}

func TestIdempotentJoin(t *testing.T) {
	group := netip.MustParseAddr("239.255.77.1")
	r := conntest.RequireMulticastLoopback(t, group)
	defer r.Close()

	require.NoError(t, r.JoinGroup(group, nil))
	require.NoError(t, r.JoinGroup(group, nil))
	assert.Equal(t, 1, r.Groups())

	s, err := conn.NewSender(conn.SenderConfig{TTL: 1})
	require.NoError(t, err)
	defer s.Close()
	dst := netip.AddrPortFrom(group, r.LocalAddr().Port())
	_, err = s.WriteTo([]byte("once"), dst)
	require.NoError(t, err)

	buf := make([]byte, 16)
	require.NoError(t, r.SetReadDeadline(time.Now().Add(time.Second)))
	n, meta, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "once", string(buf[:n]))
	assert.False(t, meta.Truncated)
	assert.Equal(t, s.LocalAddr().Port(), meta.Src.Port())

	// A second join must not duplicate delivery.
	require.NoError(t, r.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = r.Read(buf)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)

	require.NoError(t, r.LeaveGroup(group, nil))
	require.NoError(t, r.LeaveGroup(group, nil))
	assert.Zero(t, r.Groups())
}

func TestTruncation(t *testing.T) {
	group := netip.MustParseAddr("239.255.77.2")
	r := conntest.RequireMulticastLoopback(t, group)
	defer r.Close()

	s, err := conn.NewSender(conn.SenderConfig{TTL: 1})
	require.NoError(t, err)
	defer s.Close()
	dst := netip.AddrPortFrom(group, r.LocalAddr().Port())
	_, err = s.WriteTo(make([]byte, 2000), dst)
	require.NoError(t, err)

	require.NoError(t, r.SetReadDeadline(time.Now().Add(time.Second)))
	n, meta, err := r.Read(make([]byte, 1024))
	require.NoError(t, err)
	assert.Equal(t, 1024, n)
	assert.True(t, meta.Truncated)
}

func TestFanOut(t *testing.T) {
	group := netip.MustParseAddr("239.255.77.3")
	first := conntest.RequireMulticastLoopback(t, group)
	defer first.Close()

	port := first.LocalAddr().Port()
	second, err := conn.NewReceiver(context.Background(), conn.ReceiverConfig{Port: port})
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.JoinGroup(group, nil))

	s, err := conn.NewSender(conn.SenderConfig{TTL: 1})
	require.NoError(t, err)
	defer s.Close()
	_, err = s.WriteTo([]byte("both"), netip.AddrPortFrom(group, port))
	require.NoError(t, err)

	for _, r := range []*conn.Receiver{first, second} {
		buf := make([]byte, 16)
		require.NoError(t, r.SetReadDeadline(time.Now().Add(time.Second)))
		n, _, err := r.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "both", string(buf[:n]))
	}
}

func TestReceiverCloseLeavesGroups(t *testing.T) {
	group := netip.MustParseAddr("239.255.77.4")
	r := conntest.RequireMulticastLoopback(t, group)
	assert.Equal(t, 1, r.Groups())
	assert.NoError(t, r.Close())
	assert.Zero(t, r.Groups())
	assert.NoError(t, r.Close())
	assert.Error(t, r.JoinGroup(group, nil))
}

func TestIsTransient(t *testing.T) {
	testCases := map[string]struct {
		err  error
		want bool
	}{
		"nil":       {err: nil, want: false},
		"eintr":     {err: syscall.EINTR, want: true},
		"eagain":    {err: serrors.Wrap("write", syscall.EAGAIN), want: true},
		"enobufs":   {err: &os.SyscallError{Syscall: "sendto", Err: syscall.ENOBUFS}, want: true},
		"deadline":  {err: os.ErrDeadlineExceeded, want: false},
		"closed":    {err: os.ErrClosed, want: false},
		"unreach":   {err: syscall.ENETUNREACH, want: false},
		"permanent": {err: serrors.New("boom"), want: false},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, conn.IsTransient(tc.err))
		})
	}
}
