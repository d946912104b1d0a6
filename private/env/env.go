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

// Package env contains the configuration blocks and helpers shared by the
// IPTV applications that are not specific to producing or consuming frames.
package env

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/config"
)

const (
	// ShutdownTimeout is the time the HTTP server gets to finish pending
	// requests on shutdown.
	ShutdownTimeout = 5 * time.Second
	// ReadHeaderTimeout bounds the time to read request headers.
	ReadHeaderTimeout = 10 * time.Second
)

var _ config.Config = (*Metrics)(nil)

// Metrics is the configuration of the status and metrics HTTP server.
type Metrics struct {
	config.NoDefaulter
	// Prometheus contains the address to serve metrics and status pages on.
	// If not set, nothing is served.
	Prometheus string `toml:"prometheus,omitempty"`
}

// Validate checks that the address is a valid host:port, if set.
func (cfg *Metrics) Validate() error {
	if cfg.Prometheus == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Prometheus); err != nil {
		return serrors.Wrap("invalid prometheus address", err, "addr", cfg.Prometheus)
	}
	return nil
}

func (cfg *Metrics) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}

// Serve serves handler on the configured address until ctx is done. It
// returns immediately if no address is configured.
func (cfg *Metrics) Serve(ctx context.Context, handler http.Handler) error {
	if cfg.Prometheus == "" {
		return nil
	}
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", cfg.Prometheus)
	if err != nil {
		return serrors.Wrap("listening for status pages", err, "addr", cfg.Prometheus)
	}
	log.Info("Exporting prometheus metrics", "addr", ln.Addr())
	return Serve(ctx, ln, handler)
}

// Serve serves handler on ln until ctx is done, then shuts the server down
// gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
	shutdownDone := make(chan struct{})
	go func() {
		defer log.HandlePanic()
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Shutting down status server", "err", err)
		}
	}()
	err := server.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return serrors.Wrap("serving status pages", err)
	}
	<-shutdownDone
	return nil
}
