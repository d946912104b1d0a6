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

// Package sockctrl gives access to the socket options of UDP sockets that
// the net package does not expose.
package sockctrl

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

// SockControl runs f with the file descriptor of c.
func SockControl(c *net.UDPConn, f func(int) error) error {
	rawConn, err := c.SyscallConn()
	if err != nil {
		return serrors.Wrap("accessing raw connection", err)
	}
	return control(rawConn, f)
}

func control(rawConn syscall.RawConn, f func(int) error) error {
	var ctrlErr error
	err := rawConn.Control(func(fd uintptr) {
		ctrlErr = f(int(fd))
	})
	if err != nil {
		return serrors.Wrap("RawConn.Control", err)
	}
	return ctrlErr
}

// GetsockoptInt reads an integer socket option of c.
func GetsockoptInt(c *net.UDPConn, level, opt int) (int, error) {
	var val int
	err := SockControl(c, func(fd int) error {
		var err error
		val, err = unix.GetsockoptInt(fd, level, opt)
		return err
	})
	return val, err
}

// SetsockoptInt sets an integer socket option of c.
func SetsockoptInt(c *net.UDPConn, level, opt, value int) error {
	return SockControl(c, func(fd int) error {
		return unix.SetsockoptInt(fd, level, opt, value)
	})
}

// Option is an integer socket option.
type Option struct {
	Name  string
	Level int
	Opt   int
	Value int
}

// ListenControl returns a net.ListenConfig Control function that sets opts
// on the socket before it is bound.
func ListenControl(opts ...Option) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		return control(c, func(fd int) error {
			for _, o := range opts {
				if err := unix.SetsockoptInt(fd, o.Level, o.Opt, o.Value); err != nil {
					return serrors.Wrap("setting socket option", err,
						"option", o.Name, "address", address)
				}
			}
			return nil
		})
	}
}

// ReuseOptions are the options that let several sockets bind the same UDP
// port, as needed by multiple receivers of one multicast group on a host.
var ReuseOptions = []Option{
	{Name: "SO_REUSEADDR", Level: unix.SOL_SOCKET, Opt: unix.SO_REUSEADDR, Value: 1},
	{Name: "SO_REUSEPORT", Level: unix.SOL_SOCKET, Opt: unix.SO_REUSEPORT, Value: 1},
}
