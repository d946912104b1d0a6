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

// Package app contains helpers for the main functions of the IPTV
// applications.
package app

import (
	"context"
	"os"
	"os/signal"

	"github.com/scionproto/mcastlab/pkg/log"
)

// WithSignal derives a child context that is cancelled when one of the
// given signals is received.
func WithSignal(ctx context.Context, sig ...os.Signal) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	stop := make(chan os.Signal, len(sig))
	signal.Notify(stop, sig...)

	go func() {
		defer log.HandlePanic()
		defer signal.Stop(stop)
		select {
		case s := <-stop:
			log.Info("Received signal, shutting down", "signal", s)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
