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

package config_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/consumer"
	consumercfg "github.com/scionproto/mcastlab/consumer/config"
	"github.com/scionproto/mcastlab/private/config"
)

func TestSampleDecodesToDefaults(t *testing.T) {
	var sample bytes.Buffer
	var cfg consumercfg.Config
	cfg.Sample(&sample, nil, nil)

	var decoded consumercfg.Config
	require.NoError(t, config.Decode(sample.Bytes(), &decoded))
	decoded.InitDefaults()
	require.NoError(t, decoded.Validate())

	var defaults consumercfg.Config
	defaults.InitDefaults()
	assert.Equal(t, defaults, decoded)
	assert.Equal(t, consumer.DefaultBufferSize, decoded.Consumer.BufferSize)
	assert.Equal(t, 1024, decoded.Consumer.BufferSize)
	assert.Zero(t, decoded.Consumer.SocketReceiveBuffer)
	assert.Equal(t, "239.1.1.1", decoded.Stream.GroupAddress)
	assert.Equal(t, 10, decoded.Stream.LogEveryN)
}

func TestValidate(t *testing.T) {
	testCases := map[string]struct {
		raw       string
		assertErr assert.ErrorAssertionFunc
	}{
		"empty": {
			raw:       "",
			assertErr: assert.NoError,
		},
		"large buffer": {
			raw:       "[consumer]\nbuffer_size = 65535\n",
			assertErr: assert.NoError,
		},
		"negative buffer": {
			raw:       "[consumer]\nbuffer_size = -1\n",
			assertErr: assert.Error,
		},
		"oversized buffer": {
			raw:       "[consumer]\nbuffer_size = 70000\n",
			assertErr: assert.Error,
		},
		"negative socket buffer": {
			raw:       "[consumer]\nsocket_receive_buffer = -1\n",
			assertErr: assert.Error,
		},
		"negative log period": {
			raw:       "[stream]\nlog_every_n = -3\n",
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var cfg consumercfg.Config
			require.NoError(t, config.Decode([]byte(tc.raw), &cfg))
			cfg.InitDefaults()
			tc.assertErr(t, cfg.Validate())
		})
	}
}
