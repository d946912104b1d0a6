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

package flag_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/private/app/flag"
)

func TestEnum(t *testing.T) {
	format := flag.NewEnum("human", "human", "json", "yaml")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(format, "format", "Output format ("+format.Usage()+")")

	assert.Equal(t, "human", format.String())
	require.NoError(t, fs.Parse([]string{"--format", "yaml"}))
	assert.Equal(t, "yaml", format.String())
	assert.Error(t, fs.Parse([]string{"--format", "xml"}))
	assert.Equal(t, "yaml", format.String())
}
