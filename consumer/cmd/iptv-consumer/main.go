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

package main

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/scionproto/mcastlab/consumer"
	"github.com/scionproto/mcastlab/consumer/config"
	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/app/flag"
	"github.com/scionproto/mcastlab/private/app/launcher"
	"github.com/scionproto/mcastlab/private/service"
)

var (
	globalCfg config.Config
	format    = flag.NewEnum("human", "human", "json", "yaml")
)

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "IPTV Consumer",
		Role:       "consumer",
		Flags: func(fs *pflag.FlagSet) {
			fs.Var(format, "format", "Output format of the final summary ("+format.Usage()+")")
		},
		RequiredInterfaces: globalCfg.Stream.Interfaces,
		Main:               realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	group, err := globalCfg.Stream.Group()
	if err != nil {
		return err
	}
	ifi, err := globalCfg.Stream.NetInterface()
	if err != nil {
		return err
	}
	handler, err := service.NewRouter("IPTV Consumer",
		service.DefaultPages(&globalCfg), prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	var stats consumer.Stats
	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.Serve(errCtx, handler)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		var err error
		stats, err = consumer.Run(errCtx, consumer.Config{
			Group:               group,
			Interface:           ifi,
			BufferSize:          globalCfg.Consumer.BufferSize,
			SocketReceiveBuffer: globalCfg.Consumer.SocketReceiveBuffer,
			LogEveryN:           globalCfg.Stream.LogEveryN,
			StatusInterval:      globalCfg.Stream.StatusInterval.Duration,
			Metrics:             consumer.NewMetrics(),
		})
		return err
	})
	runErr := g.Wait()
	if err := printSummary(consumer.Summary{Group: group.String(), Stats: stats}); err != nil {
		if runErr != nil {
			return serrors.List{runErr, err}
		}
		return serrors.Wrap("printing summary", err)
	}
	return runErr
}

func printSummary(s consumer.Summary) error {
	switch format.String() {
	case "json":
		return s.JSON(os.Stdout)
	case "yaml":
		return s.YAML(os.Stdout)
	default:
		s.Human(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
		return nil
	}
}
