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

package stream_test

import (
	"bytes"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/private/config"
	"github.com/scionproto/mcastlab/private/stream"
)

func TestSampleMatchesDefaults(t *testing.T) {
	var sample bytes.Buffer
	var cfg stream.Config
	cfg.Sample(&sample, nil, nil)

	var decoded stream.Config
	require.NoError(t, config.Decode(sample.Bytes(), &decoded))
	decoded.InitDefaults()
	require.NoError(t, decoded.Validate())

	var defaults stream.Config
	defaults.InitDefaults()
	assert.Equal(t, defaults, decoded)
	assert.Equal(t, time.Duration(0), decoded.StatusInterval.Duration)
}

func TestGroup(t *testing.T) {
	var cfg stream.Config
	cfg.InitDefaults()
	group, err := cfg.Group()
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddrPort("239.1.1.1:5007"), group)
}

func TestValidate(t *testing.T) {
	testCases := map[string]struct {
		modify    func(*stream.Config)
		assertErr assert.ErrorAssertionFunc
	}{
		"defaults": {
			modify:    func(*stream.Config) {},
			assertErr: assert.NoError,
		},
		"other group": {
			modify:    func(c *stream.Config) { c.GroupAddress = "224.0.0.251" },
			assertErr: assert.NoError,
		},
		"unicast group": {
			modify:    func(c *stream.Config) { c.GroupAddress = "10.0.0.1" },
			assertErr: assert.Error,
		},
		"ipv6 group": {
			modify:    func(c *stream.Config) { c.GroupAddress = "ff02::1" },
			assertErr: assert.Error,
		},
		"garbage group": {
			modify:    func(c *stream.Config) { c.GroupAddress = "tv" },
			assertErr: assert.Error,
		},
		"negative log period": {
			modify:    func(c *stream.Config) { c.LogEveryN = -1 },
			assertErr: assert.Error,
		},
		"negative status interval": {
			modify:    func(c *stream.Config) { c.StatusInterval.Duration = -time.Second },
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var cfg stream.Config
			cfg.InitDefaults()
			tc.modify(&cfg)
			tc.assertErr(t, cfg.Validate())
		})
	}
}

func TestDecodeStatusInterval(t *testing.T) {
	var cfg stream.Config
	require.NoError(t, config.Decode([]byte(`status_interval = "1m30s"`), &cfg))
	assert.Equal(t, 90*time.Second, cfg.StatusInterval.Duration)
}

func TestNetInterface(t *testing.T) {
	var cfg stream.Config
	ifi, err := cfg.NetInterface()
	assert.NoError(t, err)
	assert.Nil(t, ifi)
	assert.Empty(t, cfg.Interfaces())

	cfg.Interface = "iptv-does-not-exist0"
	_, err = cfg.NetInterface()
	assert.Error(t, err)
	assert.Equal(t, []string{"iptv-does-not-exist0"}, cfg.Interfaces())

	ifaces, err := net.Interfaces()
	require.NoError(t, err)
	if len(ifaces) == 0 {
		t.Skip("no interfaces")
	}
	cfg.Interface = ifaces[0].Name
	ifi, err = cfg.NetInterface()
	require.NoError(t, err)
	assert.Equal(t, ifaces[0].Index, ifi.Index)
}

func TestShouldLog(t *testing.T) {
	testCases := map[string]struct {
		every int
		want  []uint64
	}{
		"every 10":     {every: 10, want: []uint64{0, 10, 20}},
		"every 7":      {every: 7, want: []uint64{0, 7, 14, 21}},
		"zero default": {every: 0, want: []uint64{0, 10, 20}},
		"negative":     {every: -3, want: []uint64{0, 10, 20}},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var logged []uint64
			for i := uint64(0); i < 25; i++ {
				if stream.ShouldLog(i, tc.every) {
					logged = append(logged, i)
				}
			}
			assert.Equal(t, tc.want, logged)
		})
	}
}

func TestRate(t *testing.T) {
	assert.Equal(t, 10.0, stream.Rate(50, 5))
	assert.Equal(t, 0.0, stream.Rate(50, 0))
}
