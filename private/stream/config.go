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

// Package stream contains the configuration shared by the producer and the
// consumer of an IPTV stream: which multicast group and port carry the
// frames, and how often progress is reported.
package stream

import (
	"io"
	"net"
	"net/netip"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/pkg/private/util"
	"github.com/scionproto/mcastlab/private/config"
)

const (
	// DefaultGroupAddress is the multicast group of the stream.
	DefaultGroupAddress = "239.1.1.1"
	// DefaultPort is the UDP port of the stream.
	DefaultPort = 5007
	// DefaultLogEveryN is the number of frames between progress logs.
	DefaultLogEveryN = 10
)

var _ config.Config = (*Config)(nil)

// Config is the stream configuration.
type Config struct {
	// GroupAddress is the IPv4 multicast group.
	GroupAddress string `toml:"group_address,omitempty"`
	// Port is the UDP port.
	Port uint16 `toml:"port,omitempty"`
	// Interface is the name of the network interface used for the group. If
	// empty, the kernel picks the interface.
	Interface string `toml:"interface,omitempty"`
	// LogEveryN is the number of frames between progress logs.
	LogEveryN int `toml:"log_every_n,omitempty"`
	// StatusInterval is the period of the status report. 0 disables it.
	StatusInterval util.DurWrap `toml:"status_interval,omitempty"`
}

// InitDefaults sets the unset fields to their defaults.
func (cfg *Config) InitDefaults() {
	if cfg.GroupAddress == "" {
		cfg.GroupAddress = DefaultGroupAddress
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.LogEveryN == 0 {
		cfg.LogEveryN = DefaultLogEveryN
	}
}

// Validate checks that the group is an IPv4 multicast address and that the
// log period is positive.
func (cfg *Config) Validate() error {
	if _, err := cfg.Group(); err != nil {
		return err
	}
	if cfg.LogEveryN <= 0 {
		return serrors.New("log_every_n must be positive", "log_every_n", cfg.LogEveryN)
	}
	if cfg.StatusInterval.Duration < 0 {
		return serrors.New("status_interval must not be negative",
			"status_interval", cfg.StatusInterval)
	}
	return nil
}

// Group returns the group address and port of the stream.
func (cfg *Config) Group() (netip.AddrPort, error) {
	group, err := netip.ParseAddr(cfg.GroupAddress)
	if err != nil {
		return netip.AddrPort{}, serrors.Wrap("parsing group address", err,
			"group_address", cfg.GroupAddress)
	}
	if !group.Is4() || !group.IsMulticast() {
		return netip.AddrPort{}, serrors.New("group address is not IPv4 multicast",
			"group_address", cfg.GroupAddress)
	}
	if cfg.Port == 0 {
		return netip.AddrPort{}, serrors.New("port not set")
	}
	return netip.AddrPortFrom(group, cfg.Port), nil
}

// NetInterface looks up the configured interface. It returns nil if no
// interface is configured.
func (cfg *Config) NetInterface() (*net.Interface, error) {
	if cfg.Interface == "" {
		return nil, nil
	}
	ifi, err := net.InterfaceByName(cfg.Interface)
	if err != nil {
		return nil, serrors.Wrap("looking up interface", err, "interface", cfg.Interface)
	}
	return ifi, nil
}

// Interfaces returns the names of the interfaces the stream needs.
func (cfg *Config) Interfaces() []string {
	if cfg.Interface == "" {
		return nil
	}
	return []string{cfg.Interface}
}

func (cfg *Config) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, streamSample)
}

func (cfg *Config) ConfigName() string {
	return "stream"
}

// ShouldLog returns whether the n-th frame is reported in the progress log
// when every logEveryN-th frame is logged. A logEveryN that is not positive
// selects DefaultLogEveryN.
func ShouldLog(n uint64, logEveryN int) bool {
	if logEveryN <= 0 {
		logEveryN = DefaultLogEveryN
	}
	return n%uint64(logEveryN) == 0
}

// Rate returns the rate of count events over the elapsed time in events per
// second. It returns 0 if no time has elapsed.
func Rate(count uint64, elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(count) / elapsed
}

