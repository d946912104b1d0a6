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

package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/pkg/private/util"
)

func TestParseDuration(t *testing.T) {
	testCases := map[string]struct {
		input     string
		want      time.Duration
		assertErr assert.ErrorAssertionFunc
	}{
		"empty":    {input: "", want: 0, assertErr: assert.NoError},
		"zero":     {input: "0", want: 0, assertErr: assert.NoError},
		"millis":   {input: "100ms", want: 100 * time.Millisecond, assertErr: assert.NoError},
		"mixed":    {input: "1m30s", want: 90 * time.Second, assertErr: assert.NoError},
		"negative": {input: "-1s", assertErr: assert.Error},
		"garbage":  {input: "soon", assertErr: assert.Error},
		"no unit":  {input: "5", assertErr: assert.Error},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			d, err := util.ParseDuration(tc.input)
			tc.assertErr(t, err)
			assert.Equal(t, tc.want, d)
		})
	}
}

func TestFmtDuration(t *testing.T) {
	testCases := map[time.Duration]string{
		0:                       "0s",
		100 * time.Millisecond:  "100ms",
		time.Minute:             "1m",
		time.Hour:               "1h",
		90 * time.Minute:        "1h30m",
		time.Hour + time.Second: "1h0m1s",
	}
	for d, want := range testCases {
		s := util.FmtDuration(d)
		assert.Equal(t, want, s)
		parsed, err := util.ParseDuration(s)
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
}

func TestDurWrapText(t *testing.T) {
	var d util.DurWrap
	require.NoError(t, d.UnmarshalText([]byte("5s")))
	assert.Equal(t, 5*time.Second, d.Duration)
	raw, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5s", string(raw))
	assert.Error(t, d.Set("later"))
}
