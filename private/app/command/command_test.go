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

package command_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/private/app/command"
	"github.com/scionproto/mcastlab/private/config"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "iptv-test", Run: func(*cobra.Command, []string) {}}
	sampler := config.StringSampler{Text: "\nkey = \"value\"\n", Name: "block"}
	root.AddCommand(
		command.NewSample(root, command.NewSampleConfig(sampler)),
		command.NewVersion(root),
		command.NewGendocs(root),
	)
	return root
}

func execute(t *testing.T, root *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestSampleConfig(t *testing.T) {
	out := execute(t, newRoot(), "sample", "config")
	assert.Equal(t, "\n[block]\n    key = \"value\"\n", out)

	var decoded struct {
		Block struct {
			Key string `toml:"key"`
		} `toml:"block"`
	}
	require.NoError(t, config.Decode([]byte(out), &decoded))
	assert.Equal(t, "value", decoded.Block.Key)
}

func TestVersion(t *testing.T) {
	out := execute(t, newRoot(), "version")
	assert.Contains(t, out, "Go version:")
}

func TestGendocs(t *testing.T) {
	dir := t.TempDir()
	execute(t, newRoot(), "gendocs", dir)
	raw, err := os.ReadFile(filepath.Join(dir, "iptv-test_sample_config.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "title: iptv-test sample config")
}
