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

// Package config contains the configuration of the IPTV frame consumer.
package config

import (
	"io"

	"github.com/scionproto/mcastlab/consumer"
	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/config"
	"github.com/scionproto/mcastlab/private/env"
	"github.com/scionproto/mcastlab/private/stream"
)

var _ config.Config = (*Config)(nil)

// Config is the consumer configuration file.
type Config struct {
	Stream   stream.Config `toml:"stream,omitempty"`
	Consumer Consumer      `toml:"consumer,omitempty"`
	Logging  log.Config    `toml:"log,omitempty"`
	Metrics  env.Metrics   `toml:"metrics,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(&cfg.Stream, &cfg.Consumer, &cfg.Logging, &cfg.Metrics)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(&cfg.Stream, &cfg.Consumer, &cfg.Logging, &cfg.Metrics)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx,
		&cfg.Stream,
		&cfg.Consumer,
		&cfg.Logging,
		&cfg.Metrics,
	)
}

func (cfg *Config) ConfigName() string {
	return "consumer_config"
}

var _ config.Config = (*Consumer)(nil)

// Consumer contains the consumer specific configuration.
type Consumer struct {
	// BufferSize is the size of the read buffer in bytes. Longer datagrams
	// are truncated. (default 1024)
	BufferSize int `toml:"buffer_size,omitempty"`
	// SocketReceiveBuffer is the requested size of the kernel receive buffer
	// in bytes. 0 keeps the system default.
	SocketReceiveBuffer int `toml:"socket_receive_buffer,omitempty"`
}

func (cfg *Consumer) InitDefaults() {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = consumer.DefaultBufferSize
	}
}

func (cfg *Consumer) Validate() error {
	if cfg.BufferSize <= 0 || cfg.BufferSize > 65535 {
		return serrors.New("buffer_size out of range [1, 65535]", "buffer_size", cfg.BufferSize)
	}
	if cfg.SocketReceiveBuffer < 0 {
		return serrors.New("socket_receive_buffer must not be negative",
			"socket_receive_buffer", cfg.SocketReceiveBuffer)
	}
	return nil
}

func (cfg *Consumer) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, consumerSample)
}

func (cfg *Consumer) ConfigName() string {
	return "consumer"
}
