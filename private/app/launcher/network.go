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

package launcher

import (
	"context"
	"time"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

const retryInterval = 500 * time.Millisecond

// WaitForInterfaces blocks until all named interfaces exist and are up.
// Empty names are ignored. It returns an error if ctx is done first.
//
// In emulated topologies the interfaces of a host are often attached after
// the processes in it have been started.
func WaitForInterfaces(ctx context.Context, names []string) error {
	var pending []string
	for _, name := range names {
		if name != "" {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	log.Info("Waiting for network interfaces", "interfaces", pending)
	for _, name := range pending {
		if err := waitForInterface(ctx, name); err != nil {
			return err
		}
	}
	log.Info("Network interfaces ready")
	return nil
}

func waitForInterface(ctx context.Context, name string) error {
	for {
		if interfaceUp(name) {
			return nil
		}
		select {
		case <-ctx.Done():
			return serrors.Wrap("waiting for network interface", ctx.Err(), "interface", name)
		case <-time.After(retryInterval):
		}
	}
}
