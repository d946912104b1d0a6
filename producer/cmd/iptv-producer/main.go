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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/private/app/launcher"
	"github.com/scionproto/mcastlab/private/service"
	"github.com/scionproto/mcastlab/producer"
	"github.com/scionproto/mcastlab/producer/config"
)

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig:         &globalCfg,
		ShortName:          "IPTV Producer",
		Role:               "producer",
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
	handler, err := service.NewRouter("IPTV Producer",
		service.DefaultPages(&globalCfg), prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.Serve(errCtx, handler)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		stats, err := producer.Run(errCtx, producer.Config{
			Group:           group,
			TTL:             globalCfg.Producer.TTL,
			Interval:        globalCfg.Producer.SendInterval(),
			LogEveryN:       globalCfg.Stream.LogEveryN,
			DisableLoopback: globalCfg.Producer.DisableLoopback,
			Interface:       ifi,
			StatusInterval:  globalCfg.Stream.StatusInterval.Duration,
			Metrics:         producer.NewMetrics(),
		})
		log.Info("IPTV stream stopped", "sent", stats.Sent)
		return err
	})
	return g.Wait()
}
