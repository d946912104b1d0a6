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

const consumerSample = `
# Size of the read buffer in bytes. Longer datagrams are truncated and
# counted. (default 1024)
buffer_size = 1024

# Requested size of the kernel receive buffer of the socket in bytes. The
# kernel may grant less. 0 keeps the system default. (default 0)
socket_receive_buffer = 0
`
