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

package conn

import (
	"encoding/binary"
	"net"

	"golang.org/x/sys/unix"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/underlay/sockctrl"
)

var oobSize = unix.CmsgSpace(4)

// enableDropReporting makes the kernel attach the number of datagrams
// dropped on the socket to every read.
func enableDropReporting(c *net.UDPConn) error {
	if err := sockctrl.SetsockoptInt(c, unix.SOL_SOCKET, unix.SO_RXQ_OVFL, 1); err != nil {
		return serrors.Wrap("setting SO_RXQ_OVFL", err)
	}
	return nil
}

func parseCmsg(oob []byte, meta *ReadMeta) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}
	for _, m := range msgs {
		if m.Header.Level == unix.SOL_SOCKET && m.Header.Type == unix.SO_RXQ_OVFL &&
			len(m.Data) >= 4 {

			meta.RcvOvfl = binary.NativeEndian.Uint32(m.Data)
		}
	}
}
