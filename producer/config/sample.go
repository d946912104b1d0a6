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

package config

const producerSample = `
# The multicast TTL of the frames, in [1, 255]. (default 32)
ttl = 32

# The pause after every frame in milliseconds. 0 selects the default.
# (default 100)
send_interval_ms = 100

# Stop the kernel from delivering the frames to consumers on this host.
# (default false)
disable_loopback = false
`
