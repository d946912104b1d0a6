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

// Package xtest contains helpers shared by the tests of several packages.
package xtest

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// MustParseUDPAddr parses s into a UDP address. IPv4 addresses are returned
// in their 4 byte form.
func MustParseUDPAddr(t testing.TB, s string) *net.UDPAddr {
	t.Helper()

	a, err := net.ResolveUDPAddr("udp", s)
	require.NoError(t, err)
	if ipv4 := a.IP.To4(); ipv4 != nil {
		a.IP = ipv4
	}
	return a
}

// MustParseAddrPort parses s into an address and port.
func MustParseAddrPort(t testing.TB, s string) netip.AddrPort {
	t.Helper()

	a, err := netip.ParseAddrPort(s)
	require.NoError(t, err)
	return a
}

// AssertReadReturnsBefore calls t.Fatalf if the first read from ch doesn't
// happen before timeout.
func AssertReadReturnsBefore(t testing.TB, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("goroutine took too long to finish")
	}
}

// AssertReadDoesNotReturnBefore calls t.Fatalf if the first read from ch
// happens before timeout.
func AssertReadDoesNotReturnBefore(t testing.TB, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("goroutine finished too quickly")
	case <-time.After(timeout):
	}
}
