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

// Package flag contains pflag values used by the IPTV commands.
package flag

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

var _ pflag.Value = (*Enum)(nil)

// Enum is a string flag restricted to a set of values.
type Enum struct {
	value   string
	allowed []string
}

// NewEnum creates an enum flag value. The default value must be one of the
// allowed values.
func NewEnum(def string, allowed ...string) *Enum {
	return &Enum{value: def, allowed: allowed}
}

func (e *Enum) Set(v string) error {
	for _, a := range e.allowed {
		if v == a {
			e.value = v
			return nil
		}
	}
	return serrors.New("invalid value", "value", v, "allowed", e.Usage())
}

func (e *Enum) Type() string   { return "string" }
func (e *Enum) String() string { return e.value }

// Usage lists the allowed values separated by "|".
func (e *Enum) Usage() string {
	return strings.Join(e.allowed, "|")
}
