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

//go:build linux || darwin

package app_test

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/scionproto/mcastlab/pkg/private/xtest"
	"github.com/scionproto/mcastlab/private/app"
)

func TestWithSignal(t *testing.T) {
	ctx := app.WithSignal(context.Background(), syscall.SIGUSR1)
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Signal(syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	xtest.AssertReadReturnsBefore(t, ctx.Done(), time.Second)
}

func TestWithSignalParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := app.WithSignal(parent, syscall.SIGUSR2)
	cancel()
	xtest.AssertReadReturnsBefore(t, ctx.Done(), time.Second)
}
