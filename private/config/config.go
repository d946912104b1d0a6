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

// Package config contains the interfaces every TOML configuration block of
// the IPTV applications implements, and helpers to load, validate and
// sample them.
//
// A configuration block is a struct that knows its defaults, can check
// itself and can print a commented sample of itself. Nested blocks are
// TableSamplers: they are rendered as TOML tables named after ConfigName.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

// Config is the interface implemented by every configuration block.
type Config interface {
	Sampler
	Validator
	Defaulter
}

// Validator checks a configuration block.
type Validator interface {
	// Validate checks that all fields, including nested blocks, hold valid
	// values.
	Validate() error
}

// Defaulter fills in default values.
type Defaulter interface {
	// InitDefaults sets every unset field, including those of nested
	// blocks, to its default value.
	InitDefaults()
}

// Sampler writes a commented sample of a configuration block.
type Sampler interface {
	// Sample writes the sample to dst. Sample panics if dst cannot be
	// written to.
	Sample(dst io.Writer, path Path, ctx CtxMap)
}

// TableSampler is a Sampler that is rendered as a named TOML table.
type TableSampler interface {
	Sampler
	// ConfigName is the name of the TOML table.
	ConfigName() string
}

// Path is the path of a TOML table in the configuration file.
type Path []string

// Extend returns a copy of p with s appended.
func (p Path) Extend(s string) Path {
	c := append(Path(nil), p...)
	return append(c, s)
}

// NoValidator can be embedded by blocks that need no validation.
type NoValidator struct{}

func (NoValidator) Validate() error {
	return nil
}

// NoDefaulter can be embedded by blocks without defaults.
type NoDefaulter struct{}

func (NoDefaulter) InitDefaults() {}

// StringSampler is a TableSampler with a fixed sample text.
type StringSampler struct {
	// Text is the sample.
	Text string
	// Name is the config name.
	Name string
}

func (s StringSampler) Sample(dst io.Writer, _ Path, _ CtxMap) {
	WriteString(dst, s.Text)
}

func (s StringSampler) ConfigName() string {
	return s.Name
}

// ValidateAll validates all validators in order and returns the first
// error.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return serrors.Wrap("validating config", err, "type", fmt.Sprintf("%T", v))
		}
	}
	return nil
}

// InitAll initializes the defaults of all defaulters.
func InitAll(defaulters ...Defaulter) {
	for _, d := range defaulters {
		d.InitDefaults()
	}
}

// Decode decodes raw TOML into cfg. Unknown keys are an error.
func Decode(raw []byte, cfg any) error {
	return toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(cfg)
}

// LoadFile reads file and decodes it into cfg.
func LoadFile(file string, cfg any) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return serrors.Wrap("reading config file", err, "file", file)
	}
	if err := Decode(raw, cfg); err != nil {
		return serrors.Wrap("decoding config file", err, "file", file)
	}
	return nil
}

// Marshal encodes cfg as TOML.
func Marshal(cfg any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, serrors.Wrap("encoding config", err)
	}
	return buf.Bytes(), nil
}
