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

package env

const metricsSample = `
# The address to serve the status pages on (host:port or ip:port or :port).
# Prometheus metrics are served under /metrics, the running configuration
# under /config, build information under /info and the log level under
# /log/level. If not set, nothing is served. (default "")
prometheus = ""
`
