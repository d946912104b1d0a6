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

// Package config contains the configuration of the IPTV frame producer.
package config

import (
	"io"
	"time"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/config"
	"github.com/scionproto/mcastlab/private/env"
	"github.com/scionproto/mcastlab/private/stream"
)

const (
	// DefaultTTL is the default multicast TTL. It lets the frames cross up
	// to 32 multicast routers.
	DefaultTTL = 32
	// DefaultSendIntervalMS is the default pause between frames in
	// milliseconds.
	DefaultSendIntervalMS = 100
)

var _ config.Config = (*Config)(nil)

// Config is the producer configuration file.
type Config struct {
	Stream   stream.Config `toml:"stream,omitempty"`
	Producer Producer      `toml:"producer,omitempty"`
	Logging  log.Config    `toml:"log,omitempty"`
	Metrics  env.Metrics   `toml:"metrics,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(&cfg.Stream, &cfg.Producer, &cfg.Logging, &cfg.Metrics)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(&cfg.Stream, &cfg.Producer, &cfg.Logging, &cfg.Metrics)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx,
		&cfg.Stream,
		&cfg.Producer,
		&cfg.Logging,
		&cfg.Metrics,
	)
}

func (cfg *Config) ConfigName() string {
	return "producer_config"
}

var _ config.Config = (*Producer)(nil)

// Producer contains the producer specific configuration.
type Producer struct {
	// TTL is the multicast TTL of the frames. (default 32)
	TTL int `toml:"ttl,omitempty"`
	// SendIntervalMS is the pause after every frame in milliseconds. 0 selects
	// the default, negative values are rejected. (default 100)
	SendIntervalMS int `toml:"send_interval_ms,omitempty"`
	// DisableLoopback stops frames from being delivered to consumers on the
	// same host.
	DisableLoopback bool `toml:"disable_loopback,omitempty"`
}

func (cfg *Producer) InitDefaults() {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SendIntervalMS == 0 {
		cfg.SendIntervalMS = DefaultSendIntervalMS
	}
}

func (cfg *Producer) Validate() error {
	if cfg.TTL < 1 || cfg.TTL > 255 {
		return serrors.New("ttl out of range [1, 255]", "ttl", cfg.TTL)
	}
	if cfg.SendIntervalMS < 0 {
		return serrors.New("send_interval_ms must not be negative",
			"send_interval_ms", cfg.SendIntervalMS)
	}
	return nil
}

// SendInterval returns the pause after every frame.
func (cfg *Producer) SendInterval() time.Duration {
	return time.Duration(cfg.SendIntervalMS) * time.Millisecond
}

func (cfg *Producer) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, producerSample)
}

func (cfg *Producer) ConfigName() string {
	return "producer"
}
