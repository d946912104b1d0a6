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

package conntest_test

import (
	"errors"
	"net/netip"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/mcastlab/pkg/private/xtest"
	"github.com/scionproto/mcastlab/private/underlay/conn/conntest"
)

var group = netip.MustParseAddrPort("239.1.1.1:5007")

func TestFabricFanOut(t *testing.T) {
	f := conntest.NewFabric()
	a := f.Subscribe(group, 4)
	b := f.Subscribe(group, 4)
	other := f.Subscribe(netip.MustParseAddrPort("239.1.1.2:5007"), 4)

	_, err := f.WriteTo([]byte("x"), group)
	require.NoError(t, err)

	for _, s := range []*conntest.Subscriber{a, b} {
		buf := make([]byte, 8)
		n, meta, err := s.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "x", string(buf[:n]))
		assert.Equal(t, f.Src, meta.Src)
	}
	require.NoError(t, other.SetReadDeadline(time.Now().Add(10*time.Millisecond)))
	_, _, err = other.Read(make([]byte, 8))
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestFabricLateSubscriber(t *testing.T) {
	f := conntest.NewFabric()
	_, err := f.WriteTo([]byte("early"), group)
	require.NoError(t, err)
	s := f.Subscribe(group, 4)
	_, err = f.WriteTo([]byte("late"), group)
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, _, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "late", string(buf[:n]))
	assert.Len(t, f.Writes(), 2)
}

func TestFabricDropsWhenFull(t *testing.T) {
	f := conntest.NewFabric()
	s := f.Subscribe(group, 1)
	for i := 0; i < 3; i++ {
		_, err := f.WriteTo([]byte("x"), group)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.Dropped())
}

func TestFabricFailWrites(t *testing.T) {
	f := conntest.NewFabric()
	boom := errors.New("boom")
	f.FailWrites(boom)
	_, err := f.WriteTo([]byte("x"), group)
	assert.ErrorIs(t, err, boom)
	_, err = f.WriteTo([]byte("x"), group)
	assert.NoError(t, err)
	assert.Len(t, f.Writes(), 1)
}

func TestSubscriberTruncates(t *testing.T) {
	f := conntest.NewFabric()
	s := f.Subscribe(group, 1)
	s.Inject([]byte("0123456789"), f.Src)

	buf := make([]byte, 4)
	n, meta, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, meta.Truncated)
}

func TestSubscriberDeadlineUnblocksRead(t *testing.T) {
	s := conntest.NewFabric().Subscribe(group, 1)
	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, _, err = s.Read(make([]byte, 8))
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.SetReadDeadline(time.Now()))
	xtest.AssertReadReturnsBefore(t, done, time.Second)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestSubscriberClose(t *testing.T) {
	f := conntest.NewFabric()
	s := f.Subscribe(group, 1)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err := f.WriteTo([]byte("x"), group)
	require.NoError(t, err)
	_, _, err = s.Read(make([]byte, 8))
	assert.ErrorIs(t, err, os.ErrClosed)
}
