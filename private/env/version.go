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

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version is set at link time with
// -ldflags "-X github.com/scionproto/mcastlab/private/env.Version=v1.2.3".
var Version = ""

// VersionInfo returns a multi-line description of the build.
func VersionInfo() string {
	var b strings.Builder
	version := Version
	info, ok := debug.ReadBuildInfo()
	if version == "" && ok {
		version = info.Main.Version
	}
	if version == "" {
		version = "(devel)"
	}
	fmt.Fprintf(&b, "Version:     %s\n", version)
	fmt.Fprintf(&b, "Go version:  %s\n", runtime.Version())
	fmt.Fprintf(&b, "OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Fprintf(&b, "Revision:    %s\n", s.Value)
			case "vcs.modified":
				fmt.Fprintf(&b, "Modified:    %s\n", s.Value)
			}
		}
	}
	return b.String()
}
