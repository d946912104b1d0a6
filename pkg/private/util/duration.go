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

package util

import (
	"strings"
	"time"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

// ParseDuration parses a non-negative duration like "250ms" or "1m30s". An
// empty string or a bare "0" is the zero duration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, serrors.Wrap("parsing duration", err, "input", s)
	}
	if d < 0 {
		return 0, serrors.New("negative duration", "input", s)
	}
	return d, nil
}

// FmtDuration formats d so that ParseDuration returns d again. Trailing
// zero units are dropped, e.g. 1m0s is formatted as 1m.
func FmtDuration(d time.Duration) string {
	s := d.String()
	if d == 0 {
		return s
	}
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
