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

package stream

const streamSample = `
# The IPv4 multicast group the frames are sent to. (default "239.1.1.1")
group_address = "239.1.1.1"

# The UDP port the frames are sent to. (default 5007)
port = 5007

# The network interface used to send or receive the group. If not set, the
# kernel picks the interface from the routing table. (default "")
interface = ""

# Number of frames between two progress log entries. (default 10)
log_every_n = 10

# Period of the status report with the running counters, e.g. "30s". "0s"
# disables the report. (default "0s")
status_interval = "0s"
`
