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

package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/log/testlog"
	"github.com/scionproto/mcastlab/pkg/metrics"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]struct {
		input     string
		want      log.Level
		assertErr assert.ErrorAssertionFunc
	}{
		"debug":      {input: "debug", want: log.DebugLevel, assertErr: assert.NoError},
		"upper case": {input: "INFO", want: log.InfoLevel, assertErr: assert.NoError},
		"error":      {input: "error", want: log.ErrorLevel, assertErr: assert.NoError},
		"warn":       {input: "warn", want: log.InfoLevel, assertErr: assert.Error},
		"empty":      {input: "", want: log.InfoLevel, assertErr: assert.Error},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			lvl, err := log.ParseLevel(tc.input)
			tc.assertErr(t, err)
			assert.Equal(t, tc.want, lvl)
		})
	}
}

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg log.Config
	cfg.Sample(&sample, nil, nil)

	var decoded log.Config
	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().
		Decode(&decoded)
	require.NoError(t, err)
	assert.Equal(t, log.DefaultConsoleLevel, decoded.Console.Level)
	assert.Equal(t, "human", decoded.Console.Format)
	assert.Equal(t, log.DefaultStacktraceLevel, decoded.Console.StacktraceLevel)
	assert.False(t, decoded.Console.DisableCaller)
	assert.NoError(t, decoded.Validate())
}

func TestConfigValidate(t *testing.T) {
	cfg := log.Config{Console: log.ConsoleConfig{Format: "xml"}}
	cfg.InitDefaults()
	assert.Error(t, cfg.Validate())

	cfg = log.Config{Console: log.ConsoleConfig{Level: "trace"}}
	cfg.InitDefaults()
	assert.Error(t, cfg.Validate())

	cfg = log.Config{}
	cfg.InitDefaults()
	assert.NoError(t, cfg.Validate())
}

func TestSetup(t *testing.T) {
	err := log.Setup(log.Config{Console: log.ConsoleConfig{Level: "debug", Format: "json"}})
	require.NoError(t, err)
	assert.True(t, log.Root().Enabled(log.DebugLevel))

	err = log.Setup(log.Config{Console: log.ConsoleConfig{Level: "error"}})
	require.NoError(t, err)
	assert.False(t, log.Root().Enabled(log.InfoLevel))
	assert.True(t, log.Root().Enabled(log.ErrorLevel))

	assert.Error(t, log.Setup(log.Config{Console: log.ConsoleConfig{Level: "loud"}}))
}

func TestEntriesCounter(t *testing.T) {
	ec := log.EntriesCounter{
		Debug: metrics.NewTestCounter(),
		Info:  metrics.NewTestCounter(),
		Error: metrics.NewTestCounter(),
	}
	err := log.Setup(log.Config{Console: log.ConsoleConfig{Level: "info"}},
		log.WithEntriesCounter(ec))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, log.Setup(log.Config{}))
	}()

	log.Debug("Filtered")
	log.Info("Counted")
	log.Root().Error("Counted as well")
	assert.Equal(t, float64(0), metrics.CounterValue(ec.Debug))
	assert.Equal(t, float64(1), metrics.CounterValue(ec.Info))
	assert.Equal(t, float64(1), metrics.CounterValue(ec.Error))
}

func TestFromCtx(t *testing.T) {
	assert.NotNil(t, log.FromCtx(context.Background()))

	rec := testlog.NewRecorder()
	ctx := log.CtxWith(context.Background(), rec)
	ctx, logger := log.WithLabels(ctx, "role", "consumer")
	logger.Info("Labelled")
	log.FromCtx(ctx).Info("From context")

	assert.Equal(t, []string{"Labelled", "From context"}, rec.Messages(log.InfoLevel))
	entries := rec.Entries("From context")
	require.Len(t, entries, 1)
	assert.Equal(t, "consumer", entries[0]["role"])
}
